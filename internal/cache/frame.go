package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/cognit/pkg/safeconv"
)

// Baseline frame layout: magic, format version, payload method, the
// uncompressed payload length as little-endian uint32, then the body.
const (
	formatVersion = 1

	magicLen      = 3
	versionOffset = 3
	methodOffset  = 4
	lengthOffset  = 5
	headerLen     = 9
)

// Payload methods recorded in the frame header.
const (
	methodRaw = 0
	methodLZ4 = 1
)

// maxPayloadLen bounds the decoded payload. Larger lengths in the
// header mean corruption, not a real baseline.
const maxPayloadLen = 1 << 30

var magic = [magicLen]byte{'c', 'g', 'b'}

var (
	// ErrNotBaseline reports a file that does not carry the baseline frame.
	ErrNotBaseline = errors.New("not a baseline file")

	// ErrBaselineVersion reports a baseline written by an incompatible format version.
	ErrBaselineVersion = errors.New("unsupported baseline version")
)

// compressFrame wraps a JSON payload in the baseline frame. Payloads
// the block coder cannot shrink are stored raw.
func compressFrame(payload []byte) ([]byte, error) {
	frame := make([]byte, headerLen+lz4.CompressBlockBound(len(payload)))
	copy(frame, magic[:])
	frame[versionOffset] = formatVersion
	binary.LittleEndian.PutUint32(frame[lengthOffset:], safeconv.MustIntToUint32(len(payload)))

	written, err := lz4.CompressBlock(payload, frame[headerLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("compress baseline: %w", err)
	}

	if written == 0 || written >= len(payload) {
		frame[methodOffset] = methodRaw

		return append(frame[:headerLen], payload...), nil
	}

	frame[methodOffset] = methodLZ4

	return frame[:headerLen+written], nil
}

// decodeFrame validates a baseline frame and returns the JSON payload.
func decodeFrame(framed []byte) ([]byte, error) {
	if len(framed) < headerLen || !bytes.Equal(framed[:magicLen], magic[:]) {
		return nil, ErrNotBaseline
	}

	if framed[versionOffset] != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrBaselineVersion, framed[versionOffset])
	}

	size := safeconv.SafeInt(uint64(binary.LittleEndian.Uint32(framed[lengthOffset:])))
	if size > maxPayloadLen {
		return nil, ErrNotBaseline
	}

	body := framed[headerLen:]

	switch framed[methodOffset] {
	case methodRaw:
		if len(body) != size {
			return nil, ErrNotBaseline
		}

		return body, nil
	case methodLZ4:
		payload := make([]byte, size)

		n, err := lz4.UncompressBlock(body, payload)
		if err != nil {
			return nil, fmt.Errorf("decompress baseline: %w", err)
		}

		if n != size {
			return nil, fmt.Errorf("decompress baseline: got %d bytes, want %d", n, size)
		}

		return payload, nil
	default:
		return nil, fmt.Errorf("%w: unknown payload method %d", ErrNotBaseline, framed[methodOffset])
	}
}

package cache

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressFrame_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("cognit baseline payload "), 64)

	framed, err := compressFrame(payload)
	require.NoError(t, err)

	assert.Equal(t, byte(methodLZ4), framed[methodOffset])
	assert.Less(t, len(framed), headerLen+len(payload))

	decoded, err := decodeFrame(framed)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestCompressFrame_RawFallback(t *testing.T) {
	t.Parallel()

	// No repeats of four bytes or more, so the block coder cannot
	// shrink it and the payload is stored raw.
	payload := make([]byte, 24)
	for i := range payload {
		payload[i] = byte(i)
	}

	framed, err := compressFrame(payload)
	require.NoError(t, err)

	assert.Equal(t, byte(methodRaw), framed[methodOffset])
	assert.Len(t, framed, headerLen+len(payload))

	decoded, err := decodeFrame(framed)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodeFrame_RejectsShortInput(t *testing.T) {
	t.Parallel()

	_, err := decodeFrame([]byte("cgb"))

	require.ErrorIs(t, err, ErrNotBaseline)
}

func TestDecodeFrame_RejectsBadMagic(t *testing.T) {
	t.Parallel()

	_, err := decodeFrame(bytes.Repeat([]byte{0xAB}, 32))

	require.ErrorIs(t, err, ErrNotBaseline)
}

func TestDecodeFrame_RejectsFutureVersion(t *testing.T) {
	t.Parallel()

	framed, err := compressFrame([]byte(`{"files":{}}`))
	require.NoError(t, err)

	framed[versionOffset] = formatVersion + 1

	_, err = decodeFrame(framed)

	require.ErrorIs(t, err, ErrBaselineVersion)
}

func TestDecodeFrame_RejectsUnknownMethod(t *testing.T) {
	t.Parallel()

	framed, err := compressFrame([]byte(`{"files":{}}`))
	require.NoError(t, err)

	framed[methodOffset] = 9

	_, err = decodeFrame(framed)

	require.ErrorIs(t, err, ErrNotBaseline)
}

func TestDecodeFrame_RejectsTruncatedRawBody(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 24)
	for i := range payload {
		payload[i] = byte(i)
	}

	framed, err := compressFrame(payload)
	require.NoError(t, err)
	require.Equal(t, byte(methodRaw), framed[methodOffset])

	_, err = decodeFrame(framed[:len(framed)-1])

	require.ErrorIs(t, err, ErrNotBaseline)
}

func TestDecodeFrame_RejectsOversizedLength(t *testing.T) {
	t.Parallel()

	framed := make([]byte, headerLen)
	copy(framed, magic[:])
	framed[versionOffset] = formatVersion
	framed[methodOffset] = methodLZ4
	binary.LittleEndian.PutUint32(framed[lengthOffset:], 0xFFFFFFFF)

	_, err := decodeFrame(framed)

	require.ErrorIs(t, err, ErrNotBaseline)
}

func TestDecodeFrame_RejectsLengthMismatch(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("cognit baseline payload "), 64)

	framed, err := compressFrame(payload)
	require.NoError(t, err)
	require.Equal(t, byte(methodLZ4), framed[methodOffset])

	// Understate the uncompressed length; the block no longer fits.
	binary.LittleEndian.PutUint32(framed[lengthOffset:], uint32(len(payload)-1))

	_, err = decodeFrame(framed)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decompress baseline")
}

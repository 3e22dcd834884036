// Package cache persists scored files between runs. A baseline maps
// file paths to content digests and scored rows; files whose digest
// still matches skip parsing, and the ratchet fails runs that push a
// function above its recorded score.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/cognit/internal/scan"
	"github.com/Sumatoshi-tech/cognit/pkg/report"
)

var _ scan.FileCache = (*Baseline)(nil)

// Entry is the baseline record for one scored file.
type Entry struct {
	// Digest is the hex SHA-256 of the content that produced File.
	Digest string `json:"digest"`

	File report.File `json:"file"`
}

// snapshot is the JSON payload of a baseline file.
type snapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Files       map[string]Entry `json:"files"`
}

// Baseline is a thread-safe score store keyed by slash-separated file
// path. Entries read from disk stay untouched for the lifetime of the
// value; Store writes land in a separate generation, so Ratchet always
// compares against the scores as loaded.
type Baseline struct {
	loaded map[string]Entry
	fresh  map[string]Entry
	mu     sync.RWMutex
}

// New creates an empty baseline.
func New() *Baseline {
	return &Baseline{
		loaded: make(map[string]Entry),
		fresh:  make(map[string]Entry),
	}
}

// Load reads a baseline file. A missing file surfaces as fs.ErrNotExist
// through the returned error; callers that tolerate a cold start check
// for it and fall back to New.
func Load(path string) (*Baseline, error) {
	framed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	payload, err := decodeFrame(framed)
	if err != nil {
		return nil, err
	}

	var snap snapshot

	err = json.Unmarshal(payload, &snap)
	if err != nil {
		return nil, fmt.Errorf("decode baseline: %w", err)
	}

	b := New()
	if snap.Files != nil {
		b.loaded = snap.Files
	}

	return b, nil
}

// Save writes the baseline to path. Fresh entries win over loaded ones
// for the same path; loaded entries the run never revisited are kept,
// so scanning a subtree does not erase the rest of the baseline.
func (b *Baseline) Save(path string) error {
	snap := snapshot{
		GeneratedAt: time.Now().UTC(),
		Files:       b.merged(),
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode baseline: %w", err)
	}

	framed, err := compressFrame(payload)
	if err != nil {
		return err
	}

	err = os.WriteFile(path, framed, 0o600)
	if err != nil {
		return fmt.Errorf("write baseline: %w", err)
	}

	return nil
}

// Lookup implements [scan.FileCache]. A hit requires the recorded
// digest to match sum; a stale entry is a miss.
func (b *Baseline) Lookup(path string, sum [sha256.Size]byte) (report.File, bool) {
	digest := hex.EncodeToString(sum[:])

	b.mu.RLock()
	defer b.mu.RUnlock()

	if e, ok := b.fresh[path]; ok && e.Digest == digest {
		return e.File, true
	}

	if e, ok := b.loaded[path]; ok && e.Digest == digest {
		return e.File, true
	}

	return report.File{}, false
}

// Store implements [scan.FileCache]. The entry lands in the current
// generation and shadows any loaded entry for the same path.
func (b *Baseline) Store(path string, sum [sha256.Size]byte, file report.File) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fresh[path] = Entry{
		Digest: hex.EncodeToString(sum[:]),
		File:   file,
	}
}

// Len returns the number of distinct paths on record.
func (b *Baseline) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.loaded)

	for p := range b.fresh {
		if _, ok := b.loaded[p]; !ok {
			n++
		}
	}

	return n
}

// Regression is a function scored above the baseline on record.
type Regression struct {
	// Function carries the current scores.
	Function report.Function

	// Baseline is the recorded complexity the function exceeded.
	Baseline int
}

// Ratchet compares a report against the scores read at Load time and
// returns every function that now exceeds its recorded complexity.
// Functions and files absent from the baseline pass; the bar applies
// only where one was set. Store calls during the run do not move it.
func (b *Baseline) Ratchet(current *report.Report) []Regression {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Regression

	for _, f := range current.Files {
		bars, ok := b.bars(f.Path)
		if !ok {
			continue
		}

		for _, fn := range f.Functions {
			bar, set := bars[fn.Name]
			if !set || fn.Complexity <= bar {
				continue
			}

			out = append(out, Regression{Function: fn, Baseline: bar})
		}
	}

	return out
}

// bars indexes the loaded scores for one file by function name. When a
// name repeats inside a file the highest score wins. Callers hold the
// read lock.
func (b *Baseline) bars(path string) (map[string]int, bool) {
	e, ok := b.loaded[path]
	if !ok {
		return nil, false
	}

	bars := make(map[string]int, len(e.File.Functions))

	for _, fn := range e.File.Functions {
		if prev, seen := bars[fn.Name]; !seen || fn.Complexity > prev {
			bars[fn.Name] = fn.Complexity
		}
	}

	return bars, true
}

// merged flattens both generations into one map, fresh entries winning.
func (b *Baseline) merged() map[string]Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]Entry, len(b.loaded)+len(b.fresh))

	for p, e := range b.loaded {
		out[p] = e
	}

	for p, e := range b.fresh {
		out[p] = e
	}

	return out
}

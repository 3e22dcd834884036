// Package scan orchestrates complexity analysis across file trees.
//
// A scanner walks the requested paths, detects the language of each
// candidate file, parses it, scores every function and assembles the rows
// into a report. Files are scored in parallel by a worker pool; each file
// gets an independent scorer, so workers share nothing but the result
// collector.
package scan

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cognit/internal/observability"
	"github.com/Sumatoshi-tech/cognit/pkg/cognitive"
	"github.com/Sumatoshi-tech/cognit/pkg/lang"
	"github.com/Sumatoshi-tech/cognit/pkg/measure"
	"github.com/Sumatoshi-tech/cognit/pkg/report"
	"github.com/Sumatoshi-tech/cognit/pkg/units"
	"github.com/Sumatoshi-tech/cognit/pkg/walk"
)

// defaultMaxFileSize bounds how large a file the scanner will read.
// Handwritten source rarely passes a fraction of this; bigger files are
// generated artifacts.
const defaultMaxFileSize = 1 * units.MiB

// FileCache resolves previously scored files by content digest. A hit
// skips parsing and scoring entirely.
type FileCache interface {
	// Lookup returns the cached rows for a path whose content hashes to sum.
	Lookup(path string, sum [sha256.Size]byte) (report.File, bool)
	// Store records the scored rows for a path and content digest.
	Store(path string, sum [sha256.Size]byte, file report.File)
}

// Options configures a Scanner. Zero values select defaults.
type Options struct {
	// Registry supplies the languages to detect and parse. Nil selects
	// the built-in registry.
	Registry *lang.Registry

	// Workers is the scoring pool size. Zero or negative selects NumCPU.
	Workers int

	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64

	// Logger receives skip and failure diagnostics. Nil selects the
	// default logger.
	Logger *slog.Logger

	// Tracer creates the run and per-file spans. Nil selects the global
	// tracer.
	Tracer trace.Tracer

	// Metrics receives scan-run statistics. May be nil.
	Metrics *observability.ScanMetrics

	// Cache short-circuits unchanged files. May be nil.
	Cache FileCache
}

// Scanner scores cognitive complexity across file trees.
type Scanner struct {
	registry    *lang.Registry
	workers     int
	maxFileSize int64
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *observability.ScanMetrics
	cache       FileCache
}

// New creates a scanner with the given options.
func New(opts Options) *Scanner {
	registry := opts.Registry
	if registry == nil {
		registry = lang.DefaultRegistry()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("cognit.scan")
	}

	return &Scanner{
		registry:    registry,
		workers:     workers,
		maxFileSize: maxFileSize,
		logger:      logger,
		tracer:      tracer,
		metrics:     opts.Metrics,
		cache:       opts.Cache,
	}
}

// Stats summarizes one scan run.
type Stats struct {
	Files              int64
	Functions          int64
	SkippedVendor      int64
	SkippedBinary      int64
	SkippedUnsupported int64
	SkippedOversized   int64
	ParseFailures      int64
	CacheHits          int64
	CacheMisses        int64
	Elapsed            time.Duration
}

// Run scores every supported file under the given paths and returns the
// assembled report. An empty path list scans the current directory.
// Per-file parse failures are counted and logged, not fatal; unreadable
// paths outside permission and existence races are.
func (s *Scanner) Run(ctx context.Context, paths []string) (*report.Report, Stats, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	started := time.Now()

	ctx, span := s.tracer.Start(ctx, "cognit.scan.run")
	defer span.End()

	state := &runState{}

	targets, err := s.collectTargets(paths, state)
	if err != nil {
		return nil, Stats{}, err
	}

	err = s.scoreParallel(ctx, targets, state)
	if err != nil {
		return nil, Stats{}, err
	}

	state.stats.Elapsed = time.Since(started)

	rep := report.New(scanRoot(paths), state.files)

	span.SetAttributes(
		attribute.Int64("scan.files", state.stats.Files),
		attribute.Int64("scan.functions", state.stats.Functions),
		attribute.Int64("scan.parse.failures", state.stats.ParseFailures),
	)

	s.metrics.RecordRun(ctx, state.observed())

	s.logger.Debug("scan complete",
		"files", state.stats.Files,
		"functions", state.stats.Functions,
		"skipped", state.skippedTotal(),
		"parse_failures", state.stats.ParseFailures,
		"elapsed", state.stats.Elapsed,
	)

	return rep, state.stats, nil
}

// scoreParallel processes targets using a pool of workers feeding one
// shared collector.
func (s *Scanner) scoreParallel(ctx context.Context, targets []string, state *runState) error {
	workers := max(1, min(s.workers, len(targets)))
	fileChan := make(chan string, workers)

	var wg sync.WaitGroup

	wg.Add(workers)

	for range workers {
		go s.fileWorker(ctx, &wg, fileChan, state)
	}

	for _, path := range targets {
		fileChan <- path
	}

	close(fileChan)
	wg.Wait()

	if state.firstErr != nil {
		return state.firstErr
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}

	return nil
}

// fileWorker is the body of each scoring goroutine. After a fatal error or
// cancellation it keeps draining the channel so the sender never blocks.
func (s *Scanner) fileWorker(ctx context.Context, wg *sync.WaitGroup, fileChan <-chan string, state *runState) {
	defer wg.Done()

	for path := range fileChan {
		if ctx.Err() != nil || state.failed() {
			continue
		}

		s.processFile(ctx, path, state)
	}
}

// processFile reads, detects, and scores a single file.
func (s *Scanner) processFile(ctx context.Context, path string, state *runState) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		state.setError(fmt.Errorf("read %s: %w", path, err))

		return
	}

	if enry.IsBinary(content) {
		state.noteSkip(skipBinary)

		return
	}

	language, ok := s.registry.Detect(path, content)
	if !ok {
		state.noteSkip(skipUnsupported)

		return
	}

	reported := filepath.ToSlash(path)
	sum := sha256.Sum256(content)

	if s.cache != nil {
		if cached, found := s.cache.Lookup(reported, sum); found {
			state.noteCacheHit()
			state.addFile(cached, 0)

			return
		}

		state.noteCacheMiss()
	}

	started := time.Now()

	ctx, span := s.tracer.Start(ctx, "cognit.scan.file",
		trace.WithAttributes(attribute.String("scan.path", reported)),
	)
	defer span.End()

	file, err := ScoreBytes(ctx, language, reported, content)
	if err != nil {
		state.noteParseFailure()
		s.logger.Warn("parse failed", "path", path, "language", language.Name, "error", err)

		return
	}

	if s.cache != nil {
		s.cache.Store(reported, sum, file)
	}

	state.addFile(file, time.Since(started))
}

// ScoreBytes parses one in-memory source buffer and scores every function
// in it. The returned rows use name as their path.
func ScoreBytes(ctx context.Context, language *lang.Language, name string, content []byte) (report.File, error) {
	tree, err := language.Parse(ctx, content)
	if err != nil {
		return report.File{}, fmt.Errorf("parse %s: %w", name, err)
	}

	mc := measure.NewContext(name)

	driver := walk.NewDriver(cognitive.FunctionNameOf)
	driver.Register(cognitive.NewScorer(tree))
	driver.Run(tree, mc)

	return report.FileFrom(name, language.Name, mc.Root()), nil
}

// scanRoot derives the report root label from the scanned paths.
func scanRoot(paths []string) string {
	if len(paths) == 1 {
		return filepath.ToSlash(filepath.Clean(paths[0]))
	}

	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		cleaned = append(cleaned, filepath.ToSlash(filepath.Clean(p)))
	}

	return strings.Join(cleaned, ", ")
}

// skipReason labels why a candidate file was not scored.
type skipReason uint8

const (
	skipVendor skipReason = iota
	skipBinary
	skipUnsupported
	skipOversized
)

// runState holds the shared mutable state of one scan run: the collected
// rows, the counters, and the first fatal error.
type runState struct {
	mu        sync.Mutex
	firstErr  error
	files     []report.File
	stats     Stats
	durations []time.Duration
}

// setError records the first fatal error encountered by any worker.
func (rs *runState) setError(err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.firstErr == nil {
		rs.firstErr = err
	}
}

// failed reports whether a fatal error has been recorded.
func (rs *runState) failed() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return rs.firstErr != nil
}

// addFile collects one scored file. A zero duration means the rows came
// from the cache and no scoring happened.
func (rs *runState) addFile(file report.File, elapsed time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.files = append(rs.files, file)
	rs.stats.Files++
	rs.stats.Functions += int64(len(file.Functions))

	if elapsed > 0 {
		rs.durations = append(rs.durations, elapsed)
	}
}

func (rs *runState) noteSkip(reason skipReason) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch reason {
	case skipVendor:
		rs.stats.SkippedVendor++
	case skipBinary:
		rs.stats.SkippedBinary++
	case skipUnsupported:
		rs.stats.SkippedUnsupported++
	case skipOversized:
		rs.stats.SkippedOversized++
	}
}

func (rs *runState) noteParseFailure() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.stats.ParseFailures++
}

func (rs *runState) noteCacheHit() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.stats.CacheHits++
}

func (rs *runState) noteCacheMiss() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.stats.CacheMisses++
}

func (rs *runState) skippedTotal() int64 {
	return rs.stats.SkippedVendor + rs.stats.SkippedBinary +
		rs.stats.SkippedUnsupported + rs.stats.SkippedOversized
}

// observed converts the run counters to the decoupled observability shape.
func (rs *runState) observed() observability.ScanStats {
	return observability.ScanStats{
		Files:              rs.stats.Files,
		Functions:          rs.stats.Functions,
		SkippedVendor:      rs.stats.SkippedVendor,
		SkippedBinary:      rs.stats.SkippedBinary,
		SkippedUnsupported: rs.stats.SkippedUnsupported,
		SkippedOversized:   rs.stats.SkippedOversized,
		ParseFailures:      rs.stats.ParseFailures,
		FileDurations:      rs.durations,
		CacheHits:          rs.stats.CacheHits,
		CacheMisses:        rs.stats.CacheMisses,
	}
}

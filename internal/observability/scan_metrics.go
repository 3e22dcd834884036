package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal      = "cognit.scan.files.total"
	metricFunctionsTotal  = "cognit.scan.functions.total"
	metricSkippedTotal    = "cognit.scan.skipped.total"
	metricParseFailures   = "cognit.scan.parse.failures.total"
	metricFileDuration    = "cognit.scan.file.duration.seconds"
	metricScanCacheHits   = "cognit.scan.cache.hits.total"
	metricScanCacheMisses = "cognit.scan.cache.misses.total"

	attrReason = "reason"

	reasonVendor      = "vendor"
	reasonBinary      = "binary"
	reasonUnsupported = "unsupported"
	reasonOversized   = "oversized"
)

// ScanMetrics holds OTel instruments for scan-specific metrics.
type ScanMetrics struct {
	filesTotal     metric.Int64Counter
	functionsTotal metric.Int64Counter
	skippedTotal   metric.Int64Counter
	parseFailures  metric.Int64Counter
	fileDuration   metric.Float64Histogram
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
}

// ScanStats holds the statistics for a single scan run, decoupled from
// scan package types.
type ScanStats struct {
	Files              int64
	Functions          int64
	SkippedVendor      int64
	SkippedBinary      int64
	SkippedUnsupported int64
	SkippedOversized   int64
	ParseFailures      int64
	FileDurations      []time.Duration
	CacheHits          int64
	CacheMisses        int64
}

// NewScanMetrics creates scan metric instruments from the given meter.
func NewScanMetrics(mt metric.Meter) (*ScanMetrics, error) {
	b := newMetricBuilder(mt)

	sm := &ScanMetrics{
		filesTotal:     b.counter(metricFilesTotal, "Total files scored", "{file}"),
		functionsTotal: b.counter(metricFunctionsTotal, "Total functions scored", "{function}"),
		skippedTotal:   b.counter(metricSkippedTotal, "Files skipped by reason", "{file}"),
		parseFailures:  b.counter(metricParseFailures, "Files that failed to parse", "{file}"),
		fileDuration:   b.histogram(metricFileDuration, "Per-file scoring duration in seconds", "s", durationBucketBoundaries...),
		cacheHits:      b.counter(metricScanCacheHits, "Score cache hits", "{hit}"),
		cacheMisses:    b.counter(metricScanCacheMisses, "Score cache misses", "{miss}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return sm, nil
}

// RecordRun records statistics for a completed scan run.
// Safe to call on a nil receiver (no-op).
func (sm *ScanMetrics) RecordRun(ctx context.Context, stats ScanStats) {
	if sm == nil {
		return
	}

	sm.filesTotal.Add(ctx, stats.Files)
	sm.functionsTotal.Add(ctx, stats.Functions)
	sm.parseFailures.Add(ctx, stats.ParseFailures)

	sm.skippedTotal.Add(ctx, stats.SkippedVendor,
		metric.WithAttributes(attribute.String(attrReason, reasonVendor)))
	sm.skippedTotal.Add(ctx, stats.SkippedBinary,
		metric.WithAttributes(attribute.String(attrReason, reasonBinary)))
	sm.skippedTotal.Add(ctx, stats.SkippedUnsupported,
		metric.WithAttributes(attribute.String(attrReason, reasonUnsupported)))
	sm.skippedTotal.Add(ctx, stats.SkippedOversized,
		metric.WithAttributes(attribute.String(attrReason, reasonOversized)))

	for _, d := range stats.FileDurations {
		sm.fileDuration.Record(ctx, d.Seconds())
	}

	sm.cacheHits.Add(ctx, stats.CacheHits)
	sm.cacheMisses.Add(ctx, stats.CacheMisses)
}

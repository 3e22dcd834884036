package history

import (
	"context"
	"log/slog"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/cognit/internal/cache"
	"github.com/Sumatoshi-tech/cognit/internal/gitx"
	"github.com/Sumatoshi-tech/cognit/internal/scan"
	"github.com/Sumatoshi-tech/cognit/pkg/lang"
	"github.com/Sumatoshi-tech/cognit/pkg/report"
	"github.com/Sumatoshi-tech/cognit/pkg/units"
)

// maxBlobSize caps the blobs the scorer will load. Larger blobs are
// almost always generated or embedded data.
const maxBlobSize = 1 * units.MiB

// blobScorer scores blobs by content hash, deduplicating across commits
// through an LRU cache.
type blobScorer struct {
	repo     *gitx.Repository
	registry *lang.Registry
	cache    *cache.LRUScoreCache
	logger   *slog.Logger
}

func newBlobScorer(repo *gitx.Repository, registry *lang.Registry, cacheSize int64, logger *slog.Logger) *blobScorer {
	if registry == nil {
		registry = lang.DefaultRegistry()
	}

	if cacheSize <= 0 {
		cacheSize = cache.DefaultScoreCacheSize
	}

	return &blobScorer{
		repo:     repo,
		registry: registry,
		cache:    cache.NewLRUScoreCache(cacheSize),
		logger:   logger,
	}
}

// score resolves path's blob to a scored file. The boolean is false for
// anything skipped. The cache is consulted before the blob is loaded,
// so unchanged files cost one hash lookup per commit.
func (bs *blobScorer) score(ctx context.Context, path string, hash gitx.Hash) (report.File, bool) {
	// Vendor and language checks run before the cache: identical
	// content can appear under paths that should not be scored.
	if enry.IsVendor(path) {
		return report.File{}, false
	}

	if _, ok := bs.registry.Detect(path, nil); !ok {
		return report.File{}, false
	}

	if file, ok := bs.cache.Get(hash); ok {
		return restamp(file, path), true
	}

	content, language, ok := loadBlob(bs.repo, bs.registry, bs.logger, path, hash)
	if !ok {
		return report.File{}, false
	}

	file, err := scan.ScoreBytes(ctx, language, path, content)
	if err != nil {
		bs.logger.Debug("skipping unparsable blob", "path", path, "error", err)

		return report.File{}, false
	}

	bs.cache.Put(hash, file)

	return file, true
}

// loadBlob resolves path's blob to source text and its language. The
// boolean is false for skipped blobs: vendored paths, unsupported
// languages, and missing, binary, empty or oversized content.
func loadBlob(repo *gitx.Repository, registry *lang.Registry, logger *slog.Logger, path string, hash gitx.Hash) ([]byte, *lang.Language, bool) {
	if hash.IsZero() || enry.IsVendor(path) {
		return nil, nil, false
	}

	// Cheap path-only detection first; unsupported files never load
	// their blob.
	if _, ok := registry.Detect(path, nil); !ok {
		return nil, nil, false
	}

	blob, err := repo.LookupBlob(hash)
	if err != nil {
		logger.Debug("skipping unreadable blob", "path", path, "error", err)

		return nil, nil, false
	}
	defer blob.Free()

	content := blob.Contents()
	if len(content) == 0 || len(content) > maxBlobSize {
		return nil, nil, false
	}

	if enry.IsBinary(content) {
		return nil, nil, false
	}

	language, ok := registry.Detect(path, content)
	if !ok {
		return nil, nil, false
	}

	return content, language, true
}

// restamp rewrites the path on a cached file. The cached copy is shared
// between callers, so the function slice is cloned before mutation.
func restamp(file report.File, path string) report.File {
	if file.Path == path {
		return file
	}

	functions := make([]report.Function, len(file.Functions))
	copy(functions, file.Functions)

	for i := range functions {
		functions[i].File = path
	}

	file.Path = path
	file.Functions = functions

	return file
}

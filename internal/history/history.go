// Package history scores cognitive complexity across a repository's
// commit history.
//
// The trend walks first-parent history oldest to newest, scores every
// supported blob in each sampled commit and reduces the rows to one
// point per commit. Blobs are scored once per content hash; unchanged
// files between commits resolve through the score cache without being
// parsed again.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cognit/internal/gitx"
	"github.com/Sumatoshi-tech/cognit/pkg/lang"
)

// ErrNoCommits is returned when the requested range contains no commits.
var ErrNoCommits = errors.New("no commits in range")

// TrendOptions configures a trend run. Zero values select defaults.
type TrendOptions struct {
	// Since bounds the walk: a duration ("720h"), an RFC3339 timestamp
	// or a date ("2024-01-02"). Empty walks the full history.
	Since string

	// MaxCommits samples the range down to at most this many commits,
	// evenly spaced, always keeping the newest. Zero scores every commit.
	MaxCommits int

	// CacheSize is the blob score cache budget in bytes. Zero selects
	// the default.
	CacheSize int64

	// Registry supplies the languages to detect and parse. Nil selects
	// the built-in registry.
	Registry *lang.Registry

	// Logger receives skip and failure diagnostics. Nil selects the
	// default logger.
	Logger *slog.Logger

	// Tracer creates the run span. Nil selects the global tracer.
	Tracer trace.Tracer
}

// TrendPoint is one commit's aggregate in the trend.
type TrendPoint struct {
	Commit    gitx.Hash `json:"commit"    yaml:"commit"`
	Summary   string    `json:"summary"   yaml:"summary"`
	When      time.Time `json:"when"      yaml:"when"`
	Files     int       `json:"files"     yaml:"files"`
	Functions int       `json:"functions" yaml:"functions"`
	Total     int       `json:"total"     yaml:"total"`
	Mean      float64   `json:"mean"      yaml:"mean"`
}

// Trend scores the sampled commits of the repository at repoPath and
// returns one point per commit, oldest first.
func Trend(ctx context.Context, repoPath string, opts TrendOptions) ([]TrendPoint, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("cognit.history")
	}

	ctx, span := tracer.Start(ctx, "cognit.history.trend")
	defer span.End()

	repo, err := gitx.Open(repoPath)
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	commits, err := gitx.LoadCommits(repo, gitx.CommitLoadOptions{
		FirstParent: true,
		Since:       opts.Since,
	})
	if err != nil {
		return nil, err
	}

	if len(commits) == 0 {
		return nil, ErrNoCommits
	}

	commits = sampleCommits(commits, opts.MaxCommits)
	defer freeCommits(commits)

	scorer := newBlobScorer(repo, opts.Registry, opts.CacheSize, logger)
	points := make([]TrendPoint, 0, len(commits))

	for _, commit := range commits {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("trend interrupted: %w", ctx.Err())
		}

		point, pointErr := scorer.scoreCommit(ctx, commit)
		if pointErr != nil {
			return nil, pointErr
		}

		points = append(points, point)
	}

	stats := scorer.cache.Stats()
	span.SetAttributes(
		attribute.Int("history.commits", len(points)),
		attribute.Int64("history.cache.hits", stats.Hits),
		attribute.Int64("history.cache.misses", stats.Misses),
	)

	logger.Debug("trend complete",
		"commits", len(points),
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses,
		"cache_hit_rate", stats.HitRate(),
		"bloom_fill_ratio", stats.BloomFillRatio,
	)

	return points, nil
}

// scoreCommit walks one commit's tree and reduces the scored files to a
// trend point.
func (bs *blobScorer) scoreCommit(ctx context.Context, commit *gitx.Commit) (TrendPoint, error) {
	tree, err := commit.Tree()
	if err != nil {
		return TrendPoint{}, fmt.Errorf("commit %s: %w", commit.Hash(), err)
	}
	defer tree.Free()

	point := TrendPoint{
		Commit:  commit.Hash(),
		Summary: commit.Summary(),
		When:    commit.Time(),
	}

	err = tree.Walk(func(path string, entry *gitx.TreeEntry) error {
		file, ok := bs.score(ctx, path, entry.Hash())
		if !ok {
			return nil
		}

		point.Files++
		point.Functions += len(file.Functions)
		point.Total += file.Complexity

		return nil
	})
	if err != nil {
		return TrendPoint{}, fmt.Errorf("walk tree of %s: %w", commit.Hash(), err)
	}

	if point.Functions > 0 {
		point.Mean = float64(point.Total) / float64(point.Functions)
	}

	return point, nil
}

// sampleCommits thins the commit list to at most maxCommits evenly
// spaced entries, keeping the oldest and newest. Skipped commits are
// freed.
func sampleCommits(commits []*gitx.Commit, maxCommits int) []*gitx.Commit {
	if maxCommits <= 0 || len(commits) <= maxCommits {
		return commits
	}

	keep := make(map[int]bool, maxCommits)

	if maxCommits == 1 {
		keep[len(commits)-1] = true
	} else {
		step := float64(len(commits)-1) / float64(maxCommits-1)
		for i := 0; i < maxCommits; i++ {
			keep[int(math.Round(float64(i)*step))] = true
		}
	}

	sampled := make([]*gitx.Commit, 0, maxCommits)

	for i, commit := range commits {
		if keep[i] {
			sampled = append(sampled, commit)
		} else {
			commit.Free()
		}
	}

	return sampled
}

func freeCommits(commits []*gitx.Commit) {
	for _, commit := range commits {
		commit.Free()
	}
}

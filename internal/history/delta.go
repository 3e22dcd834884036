package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cognit/internal/gitx"
	"github.com/Sumatoshi-tech/cognit/internal/scan"
	"github.com/Sumatoshi-tech/cognit/pkg/lang"
	"github.com/Sumatoshi-tech/cognit/pkg/report"
)

// ErrMissingFrom is returned when a diff is requested without a
// starting revision.
var ErrMissingFrom = errors.New("diff requires a starting revision")

// diffTimeout bounds the line diff of a single file pair. Pathological
// inputs degrade to a coarser diff instead of stalling the run.
const diffTimeout = time.Second

// ChangeKind classifies a function's fate between two revisions.
type ChangeKind string

const (
	KindChanged ChangeKind = "changed"
	KindAdded   ChangeKind = "added"
	KindRemoved ChangeKind = "removed"
)

// FunctionDelta is one function's complexity movement between the two
// revisions.
type FunctionDelta struct {
	Path          string     `json:"path"           yaml:"path"`
	Name          string     `json:"name"           yaml:"name"`
	Kind          ChangeKind `json:"kind"           yaml:"kind"`
	OldComplexity int        `json:"old_complexity" yaml:"old_complexity"`
	NewComplexity int        `json:"new_complexity" yaml:"new_complexity"`
}

// Shift returns the signed complexity movement.
func (d FunctionDelta) Shift() int {
	return d.NewComplexity - d.OldComplexity
}

// DeltaReport lists the function-level complexity movements between two
// revisions, largest increase first.
type DeltaReport struct {
	From   gitx.Hash       `json:"from"   yaml:"from"`
	To     gitx.Hash       `json:"to"     yaml:"to"`
	Files  int             `json:"files"  yaml:"files"`
	Deltas []FunctionDelta `json:"deltas" yaml:"deltas"`
}

// DiffOptions configures a revision diff. From is required; To defaults
// to HEAD.
type DiffOptions struct {
	From string
	To   string

	// Registry supplies the languages to detect and parse. Nil selects
	// the built-in registry.
	Registry *lang.Registry

	// Logger receives skip and failure diagnostics. Nil selects the
	// default logger.
	Logger *slog.Logger

	// Tracer creates the run span. Nil selects the global tracer.
	Tracer trace.Tracer
}

// Diff scores both revisions and reports per-function complexity
// movement. Only functions in files the tree diff touched are compared;
// renames with identical content produce no deltas.
func Diff(ctx context.Context, repoPath string, opts DiffOptions) (DeltaReport, error) {
	if opts.From == "" {
		return DeltaReport{}, ErrMissingFrom
	}

	to := opts.To
	if to == "" {
		to = "HEAD"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("cognit.history")
	}

	ctx, span := tracer.Start(ctx, "cognit.history.diff")
	defer span.End()

	repo, err := gitx.Open(repoPath)
	if err != nil {
		return DeltaReport{}, err
	}
	defer repo.Free()

	fromTree, fromHash, err := treeAt(repo, opts.From)
	if err != nil {
		return DeltaReport{}, err
	}
	defer fromTree.Free()

	toTree, toHash, err := treeAt(repo, to)
	if err != nil {
		return DeltaReport{}, err
	}
	defer toTree.Free()

	diff, err := repo.DiffTreeToTree(fromTree, toTree)
	if err != nil {
		return DeltaReport{}, err
	}
	defer diff.Free()

	if err := diff.FindSimilar(); err != nil {
		logger.Debug("rename detection failed", "error", err)
	}

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return DeltaReport{}, err
	}

	d := differ{repo: repo, registry: opts.Registry, logger: logger}
	if d.registry == nil {
		d.registry = lang.DefaultRegistry()
	}

	rep := DeltaReport{From: fromHash, To: toHash}

	for i := 0; i < numDeltas; i++ {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			return DeltaReport{}, deltaErr
		}

		deltas := d.fileDeltas(ctx, delta)
		if len(deltas) == 0 {
			continue
		}

		rep.Files++
		rep.Deltas = append(rep.Deltas, deltas...)
	}

	sortDeltas(rep.Deltas)

	span.SetAttributes(
		attribute.Int("history.delta.files", rep.Files),
		attribute.Int("history.delta.functions", len(rep.Deltas)),
	)

	return rep, nil
}

// treeAt resolves a revision spec to its commit's tree.
func treeAt(repo *gitx.Repository, spec string) (*gitx.Tree, gitx.Hash, error) {
	hash, err := repo.ResolveRevision(spec)
	if err != nil {
		return nil, gitx.ZeroHash(), err
	}

	commit, err := repo.LookupCommit(hash)
	if err != nil {
		return nil, gitx.ZeroHash(), err
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, gitx.ZeroHash(), fmt.Errorf("commit %s: %w", hash, err)
	}

	return tree, hash, nil
}

// differ scores the two sides of a tree diff delta.
type differ struct {
	repo     *gitx.Repository
	registry *lang.Registry
	logger   *slog.Logger
}

// fileDeltas maps one tree diff delta to its function deltas.
func (d differ) fileDeltas(ctx context.Context, delta gitx.DiffDelta) []FunctionDelta {
	switch delta.Status {
	case git2go.DeltaAdded, git2go.DeltaCopied:
		if scored, _, ok := d.score(ctx, delta.NewFile); ok {
			return addedFunctions(scored)
		}
	case git2go.DeltaDeleted:
		if scored, _, ok := d.score(ctx, delta.OldFile); ok {
			return removedFunctions(scored, delta.OldFile.Path)
		}
	case git2go.DeltaModified, git2go.DeltaRenamed:
		oldScored, oldContent, oldOK := d.score(ctx, delta.OldFile)
		newScored, newContent, newOK := d.score(ctx, delta.NewFile)

		switch {
		case oldOK && newOK:
			oldSpans, newSpans := editedSpans(string(oldContent), string(newContent))

			return matchFunctions(oldScored, newScored, oldSpans, newSpans)
		case newOK:
			return addedFunctions(newScored)
		case oldOK:
			return removedFunctions(oldScored, delta.OldFile.Path)
		}
	}

	return nil
}

// score loads and scores one side of a delta. The boolean is false for
// skipped sides: missing blobs, vendored paths, unsupported languages,
// binary, empty or oversized blobs, and parse failures.
func (d differ) score(ctx context.Context, file gitx.DiffFile) (report.File, []byte, bool) {
	content, language, ok := loadBlob(d.repo, d.registry, d.logger, file.Path, file.Hash)
	if !ok {
		return report.File{}, nil, false
	}

	scored, err := scan.ScoreBytes(ctx, language, file.Path, content)
	if err != nil {
		d.logger.Debug("skipping unparsable blob", "path", file.Path, "error", err)

		return report.File{}, nil, false
	}

	return scored, content, true
}

// span is a closed line range, 1-based.
type span struct {
	start int
	end   int
}

// editedSpans line-diffs the two sides and returns the touched line
// ranges on each. Each rune in the rune-mapped diff stands for one
// line.
func editedSpans(before, after string) (oldSpans, newSpans []span) {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = diffTimeout
	src, dst, _ := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCleanupMerge(dmp.DiffCleanupSemanticLossless(diffs))

	oldLine, newLine := 0, 0

	for _, edit := range diffs {
		size := utf8.RuneCountInString(edit.Text)

		switch edit.Type {
		case diffmatchpatch.DiffDelete:
			oldSpans = append(oldSpans, span{start: oldLine + 1, end: oldLine + size})
			oldLine += size
		case diffmatchpatch.DiffInsert:
			newSpans = append(newSpans, span{start: newLine + 1, end: newLine + size})
			newLine += size
		case diffmatchpatch.DiffEqual:
			oldLine += size
			newLine += size
		}
	}

	return oldSpans, newSpans
}

// matchFunctions pairs functions by name across the two sides and
// classifies each. A pair counts as changed when its score moved or
// when an edit touched its lines on either side. Duplicate names
// resolve to the last definition.
func matchFunctions(oldFile, newFile report.File, oldSpans, newSpans []span) []FunctionDelta {
	oldByName := make(map[string]report.Function, len(oldFile.Functions))
	for _, fn := range oldFile.Functions {
		oldByName[fn.Name] = fn
	}

	newByName := make(map[string]report.Function, len(newFile.Functions))
	for _, fn := range newFile.Functions {
		newByName[fn.Name] = fn
	}

	deltas := make([]FunctionDelta, 0, len(newByName))
	seen := make(map[string]bool, len(newByName))

	for _, fn := range newFile.Functions {
		if seen[fn.Name] {
			continue
		}

		seen[fn.Name] = true
		fn = newByName[fn.Name]

		old, existed := oldByName[fn.Name]

		switch {
		case !existed:
			deltas = append(deltas, FunctionDelta{
				Path:          newFile.Path,
				Name:          fn.Name,
				Kind:          KindAdded,
				NewComplexity: fn.Complexity,
			})
		case old.Complexity != fn.Complexity || overlapsAny(fn, newSpans) || overlapsAny(old, oldSpans):
			deltas = append(deltas, FunctionDelta{
				Path:          newFile.Path,
				Name:          fn.Name,
				Kind:          KindChanged,
				OldComplexity: old.Complexity,
				NewComplexity: fn.Complexity,
			})
		}
	}

	for _, fn := range oldFile.Functions {
		if seen[fn.Name] {
			continue
		}

		seen[fn.Name] = true
		fn = oldByName[fn.Name]

		deltas = append(deltas, FunctionDelta{
			Path:          newFile.Path,
			Name:          fn.Name,
			Kind:          KindRemoved,
			OldComplexity: fn.Complexity,
		})
	}

	return deltas
}

// overlapsAny reports whether any edited span touches the function's
// line range.
func overlapsAny(fn report.Function, spans []span) bool {
	for _, s := range spans {
		if fn.StartLine <= s.end && s.start <= fn.EndLine {
			return true
		}
	}

	return false
}

func addedFunctions(file report.File) []FunctionDelta {
	deltas := make([]FunctionDelta, 0, len(file.Functions))

	for _, fn := range file.Functions {
		deltas = append(deltas, FunctionDelta{
			Path:          file.Path,
			Name:          fn.Name,
			Kind:          KindAdded,
			NewComplexity: fn.Complexity,
		})
	}

	return deltas
}

func removedFunctions(file report.File, path string) []FunctionDelta {
	deltas := make([]FunctionDelta, 0, len(file.Functions))

	for _, fn := range file.Functions {
		deltas = append(deltas, FunctionDelta{
			Path:          path,
			Name:          fn.Name,
			Kind:          KindRemoved,
			OldComplexity: fn.Complexity,
		})
	}

	return deltas
}

// sortDeltas orders by shift descending, then path and name for a
// stable report.
func sortDeltas(deltas []FunctionDelta) {
	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].Shift() != deltas[j].Shift() {
			return deltas[i].Shift() > deltas[j].Shift()
		}

		if deltas[i].Path != deltas[j].Path {
			return deltas[i].Path < deltas[j].Path
		}

		return deltas[i].Name < deltas[j].Name
	})
}

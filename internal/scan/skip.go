package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/src-d/enry/v2"
)

// skipDirs are directory names pruned from the walk entirely. Build output
// and dependency trees dominate file counts without carrying scoreable
// source.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
	"vendors":      true,
	"dist":         true,
	"target":       true,
}

// skipFiles are lockfile names treated as vendored regardless of location.
var skipFiles = map[string]bool{
	"package-lock.json": true,
	"Gopkg.lock":        true,
	"yarn.lock":         true,
	"go.sum":            true,
}

// collectTargets resolves the requested paths into the list of candidate
// files. Directories are walked with the skip rules applied; files named
// directly always become candidates.
func (s *Scanner) collectTargets(paths []string, state *runState) ([]string, error) {
	var targets []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		if !info.IsDir() {
			targets = append(targets, p)

			continue
		}

		root := p

		err = filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
			return s.walkEntry(root, path, entry, walkErr, state, &targets)
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	return targets, nil
}

// walkEntry decides what happens to one walk entry: prune, skip, or collect.
func (s *Scanner) walkEntry(
	root, path string,
	entry os.DirEntry,
	walkErr error,
	state *runState,
	targets *[]string,
) error {
	if walkErr != nil {
		if errors.Is(walkErr, fs.ErrPermission) || errors.Is(walkErr, fs.ErrNotExist) {
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		return walkErr
	}

	if entry.IsDir() {
		if path != root && (skipDirs[entry.Name()] || enry.IsVendor(relativeTo(root, path)+"/")) {
			return filepath.SkipDir
		}

		return nil
	}

	if skipFiles[entry.Name()] || enry.IsVendor(relativeTo(root, path)) {
		state.noteSkip(skipVendor)
		s.logger.Debug("skipping vendored file", "path", path)

		return nil
	}

	info, err := entry.Info()
	if err != nil {
		return nil
	}

	if info.Size() > s.maxFileSize {
		state.noteSkip(skipOversized)
		s.logger.Debug("skipping oversized file", "path", path, "size", info.Size())

		return nil
	}

	*targets = append(*targets, path)

	return nil
}

// relativeTo returns path relative to root in slash form, falling back to
// path itself when no relative form exists.
func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(rel)
}

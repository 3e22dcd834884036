package gitx

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Tree wraps a libgit2 tree.
type Tree struct {
	tree *git2go.Tree
	repo *Repository
}

// Hash returns the tree hash.
func (t *Tree) Hash() Hash {
	return HashFromOid(t.tree.Id())
}

// EntryCount returns the number of entries in the tree.
func (t *Tree) EntryCount() uint64 {
	return t.tree.EntryCount()
}

// EntryByIndex returns the tree entry at the given index.
func (t *Tree) EntryByIndex(i uint64) *TreeEntry {
	entry := t.tree.EntryByIndex(i)
	if entry == nil {
		return nil
	}

	return &TreeEntry{entry: entry}
}

// EntryByPath returns the tree entry at the given path.
func (t *Tree) EntryByPath(path string) (*TreeEntry, error) {
	entry, err := t.tree.EntryByPath(path)
	if err != nil {
		return nil, fmt.Errorf("entry by path: %w", err)
	}

	return &TreeEntry{entry: entry}, nil
}

// Walk calls cb for every blob entry under the tree, depth first.
// Paths are slash separated and relative to the tree root.
func (t *Tree) Walk(cb func(path string, entry *TreeEntry) error) error {
	return walkTree(t.repo, t, "", cb)
}

// Free releases the tree resources.
func (t *Tree) Free() {
	if t.tree != nil {
		t.tree.Free()
		t.tree = nil
	}
}

// walkTree recursively visits every entry under tree.
func walkTree(repo *Repository, tree *Tree, prefix string, cb func(string, *TreeEntry) error) error {
	entryCount := tree.EntryCount()

	for i := uint64(0); i < entryCount; i++ {
		entry := tree.EntryByIndex(i)
		if entry == nil {
			continue
		}

		err := processTreeEntry(repo, entry, prefix, cb)
		if err != nil {
			return err
		}
	}

	return nil
}

// processTreeEntry handles a single entry, recursing into subtrees.
// Entries whose objects cannot be looked up are skipped.
func processTreeEntry(repo *Repository, entry *TreeEntry, prefix string, cb func(string, *TreeEntry) error) error {
	path := entry.Name()
	if prefix != "" {
		path = prefix + "/" + path
	}

	if entry.IsBlob() {
		return cb(path, entry)
	}

	if entry.Type() == git2go.ObjectTree {
		subtree, err := repo.LookupTree(entry.Hash())
		if err != nil {
			return nil
		}
		defer subtree.Free()

		return walkTree(repo, subtree, path, cb)
	}

	return nil
}

// TreeEntry wraps a libgit2 tree entry.
type TreeEntry struct {
	entry *git2go.TreeEntry
}

// Name returns the entry name.
func (e *TreeEntry) Name() string {
	return e.entry.Name
}

// Hash returns the entry object hash.
func (e *TreeEntry) Hash() Hash {
	return HashFromOid(e.entry.Id)
}

// Type returns the entry type.
func (e *TreeEntry) Type() git2go.ObjectType {
	return e.entry.Type
}

// IsBlob returns true if the entry is a blob.
func (e *TreeEntry) IsBlob() bool {
	return e.entry.Type == git2go.ObjectBlob
}

package gitx_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/internal/gitx"
)

// testRepo wraps a scratch repository for integration testing.
type testRepo struct {
	t       *testing.T
	path    string
	native  *git2go.Repository
	cleanup func()
}

// newTestRepo creates a new scratch repository.
func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	return &testRepo{
		t:      t,
		path:   dir,
		native: repo,
		cleanup: func() {
			repo.Free()
		},
	}
}

// createFile creates a file in the working directory.
func (tr *testRepo) createFile(name, content string) {
	tr.t.Helper()

	path := filepath.Join(tr.path, name)
	dir := filepath.Dir(path)

	if dir != tr.path {
		err := os.MkdirAll(dir, 0o755)
		require.NoError(tr.t, err)
	}

	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(tr.t, err)
}

// deleteFile removes a file from the working directory.
func (tr *testRepo) deleteFile(name string) {
	tr.t.Helper()

	err := os.Remove(filepath.Join(tr.path, name))
	require.NoError(tr.t, err)
}

// commit stages all files and creates a commit.
func (tr *testRepo) commit(message string) gitx.Hash {
	tr.t.Helper()

	index, err := tr.native.Index()
	require.NoError(tr.t, err)

	defer index.Free()

	err = index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil)
	require.NoError(tr.t, err)

	err = index.Write()
	require.NoError(tr.t, err)

	treeID, err := index.WriteTree()
	require.NoError(tr.t, err)

	tree, err := tr.native.LookupTree(treeID)
	require.NoError(tr.t, err)

	defer tree.Free()

	sig := &git2go.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  time.Now(),
	}

	var parents []*git2go.Commit

	head, err := tr.native.Head()
	if err == nil {
		headCommit, lookupErr := tr.native.LookupCommit(head.Target())
		require.NoError(tr.t, lookupErr)

		parents = append(parents, headCommit)

		head.Free()
	}

	oid, err := tr.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(tr.t, err)

	for _, parent := range parents {
		parent.Free()
	}

	return gitx.HashFromOid(oid)
}

// Repository tests.

func TestOpen(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("test.txt", "content")
	tr.commit("initial")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	assert.Equal(t, tr.path, repo.Path())
}

func TestOpenNotFound(t *testing.T) {
	repo, err := gitx.Open("/nonexistent/path/to/repo")

	assert.Nil(t, repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open repository")
}

func TestHead(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("test.txt", "hello")
	expectedHash := tr.commit("initial")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, expectedHash, head)
}

func TestRepositoryFreeTwice(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("x.txt", "x")
	tr.commit("init")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	repo.Free()
	repo.Free()
}

func TestResolveRevision(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("a.txt", "a")
	firstHash := tr.commit("first")

	tr.createFile("b.txt", "b")
	secondHash := tr.commit("second")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	head, err := repo.ResolveRevision("HEAD")
	require.NoError(t, err)
	assert.Equal(t, secondHash, head)

	parent, err := repo.ResolveRevision("HEAD~1")
	require.NoError(t, err)
	assert.Equal(t, firstHash, parent)

	byHex, err := repo.ResolveRevision(firstHash.String())
	require.NoError(t, err)
	assert.Equal(t, firstHash, byHex)

	_, err = repo.ResolveRevision("no-such-ref")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve revision")
}

// Commit tests.

func TestLookupCommit(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("file.go", "package main")
	commitHash := tr.commit("add file\n\nlonger body text")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(commitHash)
	require.NoError(t, err)

	defer commit.Free()

	assert.Equal(t, commitHash, commit.Hash())
	assert.Contains(t, commit.Message(), "longer body text")
	assert.Equal(t, "add file", commit.Summary())
	assert.Equal(t, "Test User", commit.Author().Name)
	assert.Equal(t, "test@example.com", commit.Author().Email)
	assert.WithinDuration(t, time.Now(), commit.Time(), time.Minute)
}

func TestLookupCommitNotFound(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("test.txt", "x")
	tr.commit("init")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	invalidHash := gitx.NewHash("1234567890123456789012345678901234567890")
	commit, err := repo.LookupCommit(invalidHash)

	assert.Nil(t, commit)
	assert.Error(t, err)
}

func TestCommitParent(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("first.txt", "1")
	firstHash := tr.commit("first")

	tr.createFile("second.txt", "2")
	secondHash := tr.commit("second")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(secondHash)
	require.NoError(t, err)

	defer commit.Free()

	assert.Equal(t, 1, commit.NumParents())

	parent, err := commit.Parent(0)
	require.NoError(t, err)

	defer parent.Free()

	assert.Equal(t, firstHash, parent.Hash())
}

func TestCommitParentNotFound(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("only.txt", "x")
	commitHash := tr.commit("only commit")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(commitHash)
	require.NoError(t, err)

	defer commit.Free()

	assert.Equal(t, 0, commit.NumParents())

	parent, err := commit.Parent(0)
	assert.Nil(t, parent)
	assert.ErrorIs(t, err, gitx.ErrParentNotFound)
}

// Tree tests.

func TestCommitTree(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "package main\n\nfunc main() {}\n")
	commitHash := tr.commit("add main")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(commitHash)
	require.NoError(t, err)

	defer commit.Free()

	tree, err := commit.Tree()
	require.NoError(t, err)

	defer tree.Free()

	assert.False(t, tree.Hash().IsZero())
	assert.Equal(t, uint64(1), tree.EntryCount())
}

func TestTreeEntryByPath(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("sub/deep/file.txt", "nested")
	commitHash := tr.commit("add nested")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(commitHash)
	require.NoError(t, err)

	defer commit.Free()

	tree, err := commit.Tree()
	require.NoError(t, err)

	defer tree.Free()

	entry, err := tree.EntryByPath("sub/deep/file.txt")
	require.NoError(t, err)

	assert.Equal(t, "file.txt", entry.Name())
	assert.True(t, entry.IsBlob())
	assert.Equal(t, git2go.ObjectBlob, entry.Type())

	missing, err := tree.EntryByPath("nonexistent.txt")
	assert.Nil(t, missing)
	assert.Error(t, err)
}

func TestTreeWalk(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("a.txt", "aaa")
	tr.createFile("sub/b.txt", "bbb")
	tr.createFile("sub/deep/c.txt", "ccc")
	commitHash := tr.commit("add files")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(commitHash)
	require.NoError(t, err)

	defer commit.Free()

	tree, err := commit.Tree()
	require.NoError(t, err)

	defer tree.Free()

	var paths []string

	err = tree.Walk(func(path string, entry *gitx.TreeEntry) error {
		assert.True(t, entry.IsBlob())
		assert.False(t, entry.Hash().IsZero())

		paths = append(paths, path)

		return nil
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt", "sub/deep/c.txt"}, paths)
}

func TestTreeWalkPropagatesError(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("one.txt", "1")
	tr.createFile("two.txt", "2")
	commitHash := tr.commit("add files")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(commitHash)
	require.NoError(t, err)

	defer commit.Free()

	tree, err := commit.Tree()
	require.NoError(t, err)

	defer tree.Free()

	errStop := errors.New("stop walking")

	var visited int

	err = tree.Walk(func(_ string, _ *gitx.TreeEntry) error {
		visited++

		return errStop
	})

	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, visited)
}

// Blob tests.

func TestLookupBlob(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("blob.txt", "blob content")
	commitHash := tr.commit("add blob")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(commitHash)
	require.NoError(t, err)

	defer commit.Free()

	tree, err := commit.Tree()
	require.NoError(t, err)

	defer tree.Free()

	entry, err := tree.EntryByPath("blob.txt")
	require.NoError(t, err)

	blob, err := repo.LookupBlob(entry.Hash())
	require.NoError(t, err)

	defer blob.Free()

	assert.Equal(t, entry.Hash(), blob.Hash())
	assert.Equal(t, int64(12), blob.Size())
	assert.Equal(t, []byte("blob content"), blob.Contents())
}

func TestLookupBlobNotFound(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("test.txt", "content")
	tr.commit("init")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	invalidHash := gitx.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	blob, err := repo.LookupBlob(invalidHash)

	assert.Nil(t, blob)
	assert.Error(t, err)
}

// Log tests.

func TestLog(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("1.txt", "1")
	tr.commit("first")

	tr.createFile("2.txt", "2")
	tr.commit("second")

	tr.createFile("3.txt", "3")
	lastHash := tr.commit("third")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	iter, err := repo.Log(&gitx.LogOptions{})
	require.NoError(t, err)

	var hashes []gitx.Hash

	err = iter.ForEach(func(c *gitx.Commit) error {
		hashes = append(hashes, c.Hash())

		return nil
	})

	require.NoError(t, err)
	require.Len(t, hashes, 3)
	// Newest first.
	assert.Equal(t, lastHash, hashes[0])
}

func TestLogNilOptions(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("1.txt", "1")
	tr.commit("first")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	iter, err := repo.Log(nil)
	require.NoError(t, err)

	var count int

	err = iter.ForEach(func(_ *gitx.Commit) error {
		count++

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLogWithSince(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("first.txt", "1")
	tr.commit("first commit")

	tr.createFile("second.txt", "2")
	tr.commit("second commit")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	// A cutoff in the future excludes everything.
	future := time.Now().Add(time.Hour)

	iter, err := repo.Log(&gitx.LogOptions{Since: &future})
	require.NoError(t, err)

	var count int

	err = iter.ForEach(func(_ *gitx.Commit) error {
		count++

		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, count)

	// A cutoff in the past includes everything.
	past := time.Now().Add(-time.Hour)

	iter2, err := repo.Log(&gitx.LogOptions{Since: &past})
	require.NoError(t, err)

	count = 0

	err = iter2.ForEach(func(_ *gitx.Commit) error {
		count++

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLogFirstParent(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("1.txt", "1")
	tr.commit("first")

	tr.createFile("2.txt", "2")
	tr.commit("second")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	// On a linear history first-parent traversal sees every commit.
	iter, err := repo.Log(&gitx.LogOptions{FirstParent: true})
	require.NoError(t, err)

	var count int

	err = iter.ForEach(func(_ *gitx.Commit) error {
		count++

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// TestCommitIterCloseAfterExhaustion verifies that Close() after the iterator
// has been exhausted (which frees the walk internally) does not double-free.
func TestCommitIterCloseAfterExhaustion(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("1.txt", "1")
	tr.commit("first")

	tr.createFile("2.txt", "2")
	tr.commit("second")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	iter, err := repo.Log(&gitx.LogOptions{})
	require.NoError(t, err)

	for {
		commit, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		require.NoError(t, nextErr)
		commit.Free()
	}

	// Next after exhaustion stays at EOF.
	_, err = iter.Next()
	assert.ErrorIs(t, err, io.EOF)

	iter.Close()
	iter.Close()
}

// Diff tests.

func TestDiffTreeToTree(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("unchanged.txt", "unchanged")
	tr.createFile("modified.txt", "original")
	tr.createFile("deleted.txt", "to delete")
	firstHash := tr.commit("first")

	tr.createFile("modified.txt", "modified")
	tr.createFile("added.txt", "new file")
	tr.deleteFile("deleted.txt")
	secondHash := tr.commit("second")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	firstCommit, err := repo.LookupCommit(firstHash)
	require.NoError(t, err)

	defer firstCommit.Free()

	secondCommit, err := repo.LookupCommit(secondHash)
	require.NoError(t, err)

	defer secondCommit.Free()

	firstTree, err := firstCommit.Tree()
	require.NoError(t, err)

	defer firstTree.Free()

	secondTree, err := secondCommit.Tree()
	require.NoError(t, err)

	defer secondTree.Free()

	diff, err := repo.DiffTreeToTree(firstTree, secondTree)
	require.NoError(t, err)

	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	require.NoError(t, err)
	// Modified, added, deleted.
	require.Equal(t, 3, numDeltas)

	statuses := make(map[git2go.Delta]string)

	for i := 0; i < numDeltas; i++ {
		delta, deltaErr := diff.Delta(i)
		require.NoError(t, deltaErr)

		statuses[delta.Status] = delta.NewFile.Path
	}

	assert.Equal(t, "modified.txt", statuses[git2go.DeltaModified])
	assert.Equal(t, "added.txt", statuses[git2go.DeltaAdded])
	assert.Contains(t, statuses, git2go.DeltaDeleted)
}

func TestDiffDelta(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("file.txt", "original")
	firstHash := tr.commit("first")

	tr.createFile("file.txt", "modified")
	secondHash := tr.commit("second")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	firstCommit, err := repo.LookupCommit(firstHash)
	require.NoError(t, err)

	defer firstCommit.Free()

	secondCommit, err := repo.LookupCommit(secondHash)
	require.NoError(t, err)

	defer secondCommit.Free()

	firstTree, err := firstCommit.Tree()
	require.NoError(t, err)

	defer firstTree.Free()

	secondTree, err := secondCommit.Tree()
	require.NoError(t, err)

	defer secondTree.Free()

	diff, err := repo.DiffTreeToTree(firstTree, secondTree)
	require.NoError(t, err)

	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	require.NoError(t, err)
	require.Equal(t, 1, numDeltas)

	delta, err := diff.Delta(0)
	require.NoError(t, err)
	assert.Equal(t, git2go.DeltaModified, delta.Status)
	assert.Equal(t, "file.txt", delta.OldFile.Path)
	assert.Equal(t, "file.txt", delta.NewFile.Path)
	assert.NotEqual(t, delta.OldFile.Hash, delta.NewFile.Hash)
}

func TestDiffFindSimilar(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("original.txt", "stable content that moves")
	firstHash := tr.commit("first")

	tr.deleteFile("original.txt")
	tr.createFile("renamed.txt", "stable content that moves")
	secondHash := tr.commit("second")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	firstCommit, err := repo.LookupCommit(firstHash)
	require.NoError(t, err)

	defer firstCommit.Free()

	secondCommit, err := repo.LookupCommit(secondHash)
	require.NoError(t, err)

	defer secondCommit.Free()

	firstTree, err := firstCommit.Tree()
	require.NoError(t, err)

	defer firstTree.Free()

	secondTree, err := secondCommit.Tree()
	require.NoError(t, err)

	defer secondTree.Free()

	diff, err := repo.DiffTreeToTree(firstTree, secondTree)
	require.NoError(t, err)

	defer diff.Free()

	err = diff.FindSimilar()
	require.NoError(t, err)

	numDeltas, err := diff.NumDeltas()
	require.NoError(t, err)
	require.Equal(t, 1, numDeltas)

	delta, err := diff.Delta(0)
	require.NoError(t, err)
	assert.Equal(t, git2go.DeltaRenamed, delta.Status)
	assert.Equal(t, "original.txt", delta.OldFile.Path)
	assert.Equal(t, "renamed.txt", delta.NewFile.Path)
}

func TestDiffAgainstNilTree(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("only.txt", "content")
	commitHash := tr.commit("initial")

	repo, err := gitx.Open(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.LookupCommit(commitHash)
	require.NoError(t, err)

	defer commit.Free()

	tree, err := commit.Tree()
	require.NoError(t, err)

	defer tree.Free()

	diff, err := repo.DiffTreeToTree(nil, tree)
	require.NoError(t, err)

	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	require.NoError(t, err)
	require.Equal(t, 1, numDeltas)

	delta, err := diff.Delta(0)
	require.NoError(t, err)
	assert.Equal(t, git2go.DeltaAdded, delta.Status)
	assert.Equal(t, "only.txt", delta.NewFile.Path)
}

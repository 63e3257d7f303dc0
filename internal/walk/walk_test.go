package walk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fileops/internal/filter"
	"github.com/bamsammich/fileops/internal/ioerr"
)

func memTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(f), 0o755))
		require.NoError(t, afero.WriteFile(fsys, f, []byte(f), 0o644))
	}
	return fsys
}

func relPaths(seq func(func(Entry) bool)) []string {
	var out []string
	for e := range seq {
		out = append(out, filepath.ToSlash(e.RelPath))
	}
	return out
}

func TestWalkRecursiveOrder(t *testing.T) {
	t.Parallel()
	fsys := memTree(t,
		"/root/b.txt",
		"/root/a/2.txt",
		"/root/a/1.txt",
		"/root/a/deep/x.txt",
		"/root/c/y.txt",
	)

	got := relPaths(Walk(context.Background(), fsys, "/root", Options{Recursive: true}))
	assert.Equal(t, []string{"b.txt", "a/1.txt", "a/2.txt", "a/deep/x.txt", "c/y.txt"}, got)
}

func TestWalkParentsBeforeChildren(t *testing.T) {
	t.Parallel()
	fsys := memTree(t, "/root/a/b/c.txt", "/root/d.txt")
	require.NoError(t, fsys.MkdirAll("/root/empty", 0o755))

	got := relPaths(Walk(context.Background(), fsys, "/root", Options{Recursive: true, IncludeDirs: true}))
	assert.Equal(t, []string{"a", "d.txt", "empty", "a/b", "a/b/c.txt"}, got)
	assert.Less(t, slices.Index(got, "a/b"), slices.Index(got, "a/b/c.txt"))
}

func TestWalkNonRecursive(t *testing.T) {
	t.Parallel()
	fsys := memTree(t, "/root/top.txt", "/root/sub/nested.txt")

	got := relPaths(Walk(context.Background(), fsys, "/root", Options{}))
	assert.Equal(t, []string{"top.txt"}, got)
}

func TestFilesYieldsFullPaths(t *testing.T) {
	t.Parallel()
	fsys := memTree(t, "/root/a.txt", "/root/sub/b.txt")

	got := slices.Collect(Files(context.Background(), fsys, "/root", Options{Recursive: true, IncludeDirs: true}))
	assert.Equal(t, []string{
		filepath.Join("/root", "a.txt"),
		filepath.Join("/root", "sub", "b.txt"),
	}, got)
}

func TestWalkFilter(t *testing.T) {
	t.Parallel()
	fsys := memTree(t, "/root/keep.go", "/root/drop.log", "/root/vendor/lib.go", "/root/src/main.go")

	chain := filter.NewChain()
	require.NoError(t, chain.AddExclude("*.log"))
	require.NoError(t, chain.AddExclude("vendor/"))

	got := relPaths(Walk(context.Background(), fsys, "/root", Options{Recursive: true, Filter: chain}))
	assert.Equal(t, []string{"keep.go", "src/main.go"}, got)
}

func TestWalkEarlyBreakStopsIO(t *testing.T) {
	t.Parallel()
	base := memTree(t, "/root/a/1.txt", "/root/b/2.txt", "/root/c/3.txt")
	fsys := &countingFs{Fs: base}

	for e := range Walk(context.Background(), fsys, "/root", Options{Recursive: true}) {
		assert.Equal(t, "1.txt", filepath.Base(e.Path))
		break
	}
	// Root and "a" only; "b" and "c" are never opened.
	assert.Equal(t, 2, fsys.opens)
}

func TestWalkMissingRoot(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()

	var skipped []error
	got := relPaths(Walk(context.Background(), fsys, "/nope", Options{
		Recursive: true,
		OnSkip:    func(_ string, err error) { skipped = append(skipped, err) },
	}))
	assert.Empty(t, got)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], ioerr.ErrPartialFailure)
	assert.ErrorIs(t, skipped[0], os.ErrNotExist)
}

func TestWalkRootIsFile(t *testing.T) {
	t.Parallel()
	fsys := memTree(t, "/root.txt")

	var skipped int
	got := relPaths(Walk(context.Background(), fsys, "/root.txt", Options{
		OnSkip: func(string, error) { skipped++ },
	}))
	assert.Empty(t, got)
	assert.Equal(t, 1, skipped)
}

func TestWalkSkipsUnreadableDirectory(t *testing.T) {
	t.Parallel()
	base := memTree(t, "/root/a.txt", "/root/locked/secret.txt", "/root/z/z.txt")
	fsys := &failingFs{Fs: base, fail: filepath.Join("/root", "locked")}

	var skippedPaths []string
	got := relPaths(Walk(context.Background(), fsys, "/root", Options{
		Recursive: true,
		OnSkip:    func(p string, _ error) { skippedPaths = append(skippedPaths, p) },
	}))
	assert.Equal(t, []string{"a.txt", "z/z.txt"}, got)
	assert.Equal(t, []string{filepath.Join("/root", "locked")}, skippedPaths)
}

func TestWalkCancelled(t *testing.T) {
	t.Parallel()
	fsys := memTree(t, "/root/a.txt", "/root/b.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, relPaths(Walk(ctx, fsys, "/root", Options{Recursive: true})))
}

func TestWalkRestartable(t *testing.T) {
	t.Parallel()
	fsys := memTree(t, "/root/a.txt", "/root/b.txt")
	seq := Walk(context.Background(), fsys, "/root", Options{})

	assert.Equal(t, relPaths(seq), relPaths(seq))
}

func symlinkTree(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real", "f.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "f.txt"), filepath.Join(root, "flink.txt")))
	// real/loop -> root creates a cycle when followed.
	require.NoError(t, os.Symlink(root, filepath.Join(root, "real", "loop")))
	return root
}

func TestWalkSkipsSymlinksByDefault(t *testing.T) {
	t.Parallel()
	root := symlinkTree(t)

	got := relPaths(Walk(context.Background(), afero.NewOsFs(), root, Options{Recursive: true}))
	assert.Equal(t, []string{"real/f.txt"}, got)
}

func TestWalkFollowSymlinksBreaksCycles(t *testing.T) {
	t.Parallel()
	root := symlinkTree(t)

	got := relPaths(Walk(context.Background(), afero.NewOsFs(), root, Options{
		Recursive:      true,
		FollowSymlinks: true,
	}))
	// "link" sorts first and claims the inode of "real", so "real" itself is
	// treated as a repeat. "link/loop" resolves to the root and is dropped.
	assert.Equal(t, []string{"flink.txt", "link/f.txt"}, got)
}

type countingFs struct {
	afero.Fs
	opens int
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.opens++
	return c.Fs.Open(name)
}

type failingFs struct {
	afero.Fs
	fail string
}

var errDenied = errors.New("permission denied")

func (f *failingFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == f.fail {
		return nil, &os.PathError{Op: "open", Path: name, Err: errDenied}
	}
	return f.Fs.Open(name)
}

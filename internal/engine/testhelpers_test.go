package engine

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// standardTree is a small tree with files at several depths and one empty
// directory:
//
//	root.txt
//	big.bin           (320KB)
//	sub/mid.txt
//	sub/deep/leaf.txt
//	empty/
var standardTree = map[string]string{
	"root.txt":          "root file content",
	"big.bin":           string(bigContent()),
	"sub/mid.txt":       "middle file content",
	"sub/deep/leaf.txt": "leaf file content",
}

func bigContent() []byte {
	b := make([]byte, 0, 320*1024)
	for len(b) < cap(b) {
		b = append(b, "ABCDEFGHIJKLMNOP"...)
	}
	return b
}

// writeTree creates files (slash-separated relative paths) and an empty
// "empty" directory under root.
func writeTree(t *testing.T, fsys afero.Fs, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Join(root, "empty"), 0o755))
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fsys, p, []byte(content), 0o644))
	}
}

// listTree returns every file and directory under root as sorted
// slash-separated relative paths; directories carry a trailing slash.
func listTree(t *testing.T, fsys afero.Fs, root string) []string {
	t.Helper()
	var out []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			rel += "/"
		}
		out = append(out, rel)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

// assertTreeCopy checks that dst holds byte-identical copies of files and
// the full directory skeleton.
func assertTreeCopy(t *testing.T, fsys afero.Fs, src, dst string) {
	t.Helper()
	assert.Equal(t, listTree(t, fsys, src), listTree(t, fsys, dst))
	for _, rel := range listTree(t, fsys, src) {
		if rel[len(rel)-1] == '/' {
			continue
		}
		want, err := afero.ReadFile(fsys, filepath.Join(src, filepath.FromSlash(rel)))
		require.NoError(t, err)
		got, err := afero.ReadFile(fsys, filepath.Join(dst, filepath.FromSlash(rel)))
		require.NoError(t, err, "read dst %s", rel)
		assert.Equal(t, want, got, "content mismatch for %s", rel)
	}
}

// failingFs fails Open for one path and otherwise delegates.
type failingFs struct {
	afero.Fs
	fail string
	err  error
}

func (f *failingFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == filepath.Clean(f.fail) {
		return nil, &os.PathError{Op: "open", Path: name, Err: f.err}
	}
	return f.Fs.Open(name)
}

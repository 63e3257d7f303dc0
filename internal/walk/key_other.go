//go:build !unix && !windows

package walk

import (
	"io/fs"
	"path/filepath"
)

type dirKey struct {
	path string
}

func keyFor(path string, _ fs.FileInfo) dirKey {
	return dirKey{path: filepath.Clean(path)}
}

func isReparsePoint(fs.FileInfo) bool { return false }

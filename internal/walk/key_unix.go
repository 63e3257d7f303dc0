//go:build unix

package walk

import (
	"io/fs"
	"path/filepath"
	"syscall"
)

// dirKey identifies a directory for cycle detection.
type dirKey struct {
	path string
	dev  uint64
	ino  uint64
}

// keyFor uses device and inode when the filesystem exposes them, so two
// paths reaching the same directory through a symlink collide.
func keyFor(path string, info fs.FileInfo) dirKey {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return dirKey{dev: uint64(st.Dev), ino: uint64(st.Ino)} //nolint:unconvert // dev_t width differs per OS
	}
	return dirKey{path: filepath.Clean(path)}
}

func isReparsePoint(fs.FileInfo) bool { return false }

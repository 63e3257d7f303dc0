//go:build !windows

package fileop

import (
	"io/fs"

	"github.com/spf13/afero"
)

// clearAttributes makes the file owner-writable. POSIX has no archive bit.
func clearAttributes(fsys afero.Fs, path string, info fs.FileInfo) error {
	mode := info.Mode().Perm()
	if mode&0o200 != 0 {
		return nil
	}
	return fsys.Chmod(path, mode|0o200)
}

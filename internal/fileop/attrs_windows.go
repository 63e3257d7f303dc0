//go:build windows

package fileop

import (
	"io/fs"

	"github.com/spf13/afero"
	"golang.org/x/sys/windows"
)

const strippedAttrs = windows.FILE_ATTRIBUTE_READONLY | windows.FILE_ATTRIBUTE_ARCHIVE

// clearAttributes clears FILE_ATTRIBUTE_READONLY and FILE_ATTRIBUTE_ARCHIVE.
// Filesystems other than the OS one only model the read-only bit.
func clearAttributes(fsys afero.Fs, path string, info fs.FileInfo) error {
	if _, ok := fsys.(*afero.OsFs); !ok {
		if info.Mode().Perm()&0o200 != 0 {
			return nil
		}
		return fsys.Chmod(path, info.Mode().Perm()|0o200)
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return &fs.PathError{Op: "getfileattributes", Path: path, Err: err}
	}
	if attrs&strippedAttrs == 0 {
		return nil
	}
	if err := windows.SetFileAttributes(p, attrs&^strippedAttrs); err != nil {
		return &fs.PathError{Op: "setfileattributes", Path: path, Err: err}
	}
	return nil
}

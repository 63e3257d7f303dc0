//go:build windows

package walk

import (
	"io/fs"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// dirKey identifies a directory for cycle detection.
type dirKey struct {
	path string
}

func keyFor(path string, _ fs.FileInfo) dirKey {
	return dirKey{path: strings.ToLower(filepath.Clean(path))}
}

// isReparsePoint catches junctions and other reparse points that Go does
// not surface as ModeSymlink.
func isReparsePoint(info fs.FileInfo) bool {
	if d, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return d.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0
	}
	return false
}

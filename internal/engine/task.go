package engine

import (
	"path/filepath"

	"github.com/bamsammich/fileops/internal/walk"
)

// fileTask is one file of a tree copy: the source path rebased from the
// source root onto the destination root.
type fileTask struct {
	SrcPath string
	DstPath string
	RelPath string
	Size    int64
}

func rebase(dstRoot string, e walk.Entry) fileTask {
	return fileTask{
		SrcPath: e.Path,
		DstPath: filepath.Join(dstRoot, e.RelPath),
		RelPath: e.RelPath,
		Size:    e.Info.Size(),
	}
}

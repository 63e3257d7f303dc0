package fileop

import (
	"context"
	"iter"

	"github.com/bamsammich/fileops/internal/engine"
	"github.com/bamsammich/fileops/internal/walk"
)

// Copy copies src to dst, creating dst's parent directories if needed and
// truncating an existing dst. It returns the number of bytes copied.
func (f *Files) Copy(ctx context.Context, src, dst string) (int64, error) {
	n, err := f.copier.CopyFile(ctx, src, dst)
	if err != nil {
		f.logger.Debug("file operation failed", "op", "copy", "path", src, "error", err)
		return n, err
	}
	return n, nil
}

// Move copies src to dst and then deletes src.
//
// Move is not atomic: if it is interrupted between the copy and the delete,
// both files exist. Use Rename for an atomic move within one volume.
func (f *Files) Move(ctx context.Context, src, dst string) error {
	if _, err := f.Copy(ctx, src, dst); err != nil {
		return err
	}
	if err := f.fs.Remove(src); err != nil {
		return f.fail("move", src, err)
	}
	return nil
}

// Rename atomically renames src to dst. Both must be on the same volume.
func (f *Files) Rename(src, dst string) error {
	if err := f.fs.Rename(src, dst); err != nil {
		return f.fail("rename", src, err)
	}
	return nil
}

// TreeConfig returns an engine.TreeConfig that copies src to dst with f's
// filesystem, copier, logger and worker bound. Callers may set the
// remaining fields (filter, events, verify) before passing it on.
func (f *Files) TreeConfig(src, dst string) engine.TreeConfig {
	return engine.TreeConfig{
		Fs:      f.fs,
		Copier:  f.copier,
		Logger:  f.logger,
		Src:     src,
		Dst:     dst,
		Workers: f.cfg.Workers,
	}
}

// CopyDirectory mirrors the directory src under dst. See engine.CopyTree.
func (f *Files) CopyDirectory(ctx context.Context, src, dst string) error {
	return engine.CopyTree(ctx, f.TreeConfig(src, dst)).Err
}

// Enumerate lazily yields the paths of the files under root. Symlinks are
// not followed and unreadable entries are skipped.
func (f *Files) Enumerate(ctx context.Context, root string, recursive bool) iter.Seq[string] {
	return walk.Files(ctx, f.fs, root, walk.Options{
		Recursive: recursive,
		Logger:    f.logger,
		OnSkip: func(path string, err error) {
			f.logger.Debug("enumerate skipped entry", "path", path, "error", err)
		},
	})
}

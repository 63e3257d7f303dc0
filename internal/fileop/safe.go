package fileop

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/bamsammich/fileops/internal/engine"
	"github.com/bamsammich/fileops/internal/walk"
)

// TryDelete removes path. A path that is already absent counts as success;
// false means the delete genuinely failed and the cause was logged.
func (f *Files) TryDelete(path string) bool {
	err := f.fs.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	f.warn("delete", path, err)
	return false
}

// DeleteIfExists removes the file at path. It returns false without
// attempting a delete if no file exists there, and true once deleted.
func (f *Files) DeleteIfExists(ctx context.Context, path string) bool {
	if !f.Exists(ctx, path) {
		return false
	}
	if err := f.fs.Remove(path); err != nil {
		f.warn("delete", path, err)
		return false
	}
	return true
}

// stat looks path up per the configured dispatch. ok is false if path does
// not exist, cannot be read, or ctx is done.
func (f *Files) stat(ctx context.Context, path string) (fs.FileInfo, bool) {
	return query(ctx, f.cfg.Dispatch, func() (fs.FileInfo, bool) {
		info, err := f.fs.Stat(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				f.warn("stat", path, err)
			}
			return nil, false
		}
		return info, true
	})
}

// Exists reports whether path resolves to a regular file.
func (f *Files) Exists(ctx context.Context, path string) bool {
	info, ok := f.stat(ctx, path)
	return ok && info.Mode().IsRegular()
}

// DirExists reports whether path resolves to a directory.
func (f *Files) DirExists(ctx context.Context, path string) bool {
	info, ok := f.stat(ctx, path)
	return ok && info.IsDir()
}

// GetSize returns the size of the file at path.
func (f *Files) GetSize(ctx context.Context, path string) (int64, bool) {
	info, ok := f.stat(ctx, path)
	if !ok || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// GetLastModified returns the modification time of the file at path.
func (f *Files) GetLastModified(ctx context.Context, path string) (time.Time, bool) {
	info, ok := f.stat(ctx, path)
	if !ok || !info.Mode().IsRegular() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// RemoveReadOnlyAndArchiveAttributes clears the read-only and archive
// attributes of every file below dir. It keeps going after a failure and
// returns false if any entry could not be reached or changed.
func (f *Files) RemoveReadOnlyAndArchiveAttributes(ctx context.Context, dir string) bool {
	ok := true
	opts := walk.Options{
		Recursive: true,
		Logger:    f.logger,
		OnSkip: func(path string, err error) {
			ok = false
			f.warn("strip attributes", path, err)
		},
	}
	for e := range walk.Walk(ctx, f.fs, dir, opts) {
		if err := clearAttributes(f.fs, e.Path, e.Info); err != nil {
			ok = false
			f.warn("strip attributes", e.Path, err)
		}
	}
	return ok && ctx.Err() == nil
}

// Hash returns the hex BLAKE3 digest of the file at path.
func (f *Files) Hash(ctx context.Context, path string) (string, error) {
	sum, err := engine.HashFile(ctx, f.fs, f.stream, path)
	if err != nil {
		return "", f.fail("hash", path, err)
	}
	return sum, nil
}

// EnsureDir creates dir and any missing parents. An existing directory is
// not an error.
func (f *Files) EnsureDir(dir string) error {
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return f.fail("mkdir", dir, err)
	}
	return nil
}

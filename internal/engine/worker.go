package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/bamsammich/fileops/internal/ioerr"
	"github.com/bamsammich/fileops/internal/platform"
	"github.com/bamsammich/fileops/internal/stream"
)

var (
	errIsDir    = errors.New("is a directory")
	errSameFile = errors.New("source and destination are the same file")
)

// Copier copies single files. It is safe for concurrent use and is what
// every worker of a tree copy runs per file.
type Copier struct {
	fs         afero.Fs
	stream     *stream.Engine
	logger     *slog.Logger
	progress   func(n int64)
	kernelCopy bool
	atomic     bool
}

// CopierOption configures a Copier.
type CopierOption func(*Copier)

// WithKernelCopy enables or disables the kernel offload path. It only
// applies when both files are real OS files.
func WithKernelCopy(enabled bool) CopierOption {
	return func(c *Copier) { c.kernelCopy = enabled }
}

// WithAtomicWrites writes each destination under a temporary name and
// renames it into place once complete.
func WithAtomicWrites(enabled bool) CopierOption {
	return func(c *Copier) { c.atomic = enabled }
}

// WithCopierLogger sets the logger used for diagnostics.
func WithCopierLogger(l *slog.Logger) CopierOption {
	return func(c *Copier) { c.logger = l }
}

// NewCopier creates a Copier over fsys. A nil eng uses a stream engine on
// the default buffer pool.
func NewCopier(fsys afero.Fs, eng *stream.Engine, opts ...CopierOption) *Copier {
	if eng == nil {
		eng = stream.New(nil)
	}
	c := &Copier{fs: fsys, stream: eng, logger: slog.Default(), kernelCopy: true}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream returns the engine used for user-space copies.
func (c *Copier) Stream() *stream.Engine { return c.stream }

// WithProgress returns a Copier sharing c's configuration that reports
// every byte written to fn as it is written, whichever copy path runs.
// A callback already set on c keeps running before fn.
func (c *Copier) WithProgress(fn func(n int64)) *Copier {
	if prev := c.progress; prev != nil {
		next := fn
		fn = func(n int64) {
			prev(n)
			next(n)
		}
	}
	cp := *c
	cp.progress = fn
	cp.stream = c.stream.With(stream.WithProgress(fn))
	return &cp
}

// CopyFile copies src to dst, creating dst's parent directories first and
// truncating any existing dst. Unless atomic writes are enabled, a failed
// copy leaves the partial destination in place.
func (c *Copier) CopyFile(ctx context.Context, src, dst string) (int64, error) {
	in, err := c.fs.Open(src)
	if err != nil {
		return 0, ioerr.Wrap("copy", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, ioerr.Wrap("copy", src, err)
	}
	if info.IsDir() {
		return 0, ioerr.New(ioerr.KindIOFailure, "copy", src, errIsDir)
	}
	if c.sameFile(src, dst, info) {
		return 0, ioerr.New(ioerr.KindIOFailure, "copy", dst, errSameFile)
	}

	if err := c.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, ioerr.Wrap("create parent dir", dst, err)
	}

	target := dst
	if c.atomic {
		target = TempPath(dst)
		RegisterTmp(c.fs, target)
		defer func() {
			DeregisterTmp(target)
			_ = c.fs.Remove(target) // no-op if rename succeeded
		}()
	}

	out, err := c.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, ioerr.Wrap("create", target, err)
	}

	n, err := c.copyData(ctx, out, in, info.Size())
	if err != nil {
		out.Close()
		return n, ioerr.Wrap("copy", src, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return n, ioerr.Wrap("sync", target, err)
	}
	if err := out.Close(); err != nil {
		return n, ioerr.Wrap("close", target, err)
	}

	if c.atomic {
		if err := c.fs.Rename(target, dst); err != nil {
			return n, ioerr.Wrap("rename", dst, err)
		}
	}
	return n, nil
}

func (c *Copier) sameFile(src, dst string, srcInfo os.FileInfo) bool {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return true
	}
	dstInfo, err := c.fs.Stat(dst)
	return err == nil && os.SameFile(srcInfo, dstInfo)
}

// copyData offloads to the kernel when both ends are OS files and falls back
// to the pooled stream copy otherwise.
func (c *Copier) copyData(ctx context.Context, out, in afero.File, size int64) (int64, error) {
	if c.kernelCopy {
		srcFd, srcOK := in.(*os.File)
		dstFd, dstOK := out.(*os.File)
		if srcOK && dstOK {
			result, err := platform.CopyFile(ctx, platform.Params{Src: srcFd, Dst: dstFd, Size: size})
			if !errors.Is(err, platform.ErrUnsupported) {
				c.logger.Debug("kernel copy", "path", in.Name(), "method", result.Method, "bytes", result.BytesWritten)
				if c.progress != nil && result.BytesWritten > 0 {
					c.progress(result.BytesWritten)
				}
				return result.BytesWritten, err
			}
		}
	}
	return c.stream.Copy(ctx, out, in)
}

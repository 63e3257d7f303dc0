// Package fileop is the file-access surface: whole-file reads and writes,
// copies and moves, best-effort deletes, and metadata queries over an
// injected afero filesystem.
//
// Single-file operations fail loudly with a classified *ioerr.Error.
// Try-style operations (TryReadText, TryDelete, DeleteIfExists and the
// metadata queries) log the cause and report failure as a value instead.
package fileop

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/bamsammich/fileops/internal/bufpool"
	"github.com/bamsammich/fileops/internal/engine"
	"github.com/bamsammich/fileops/internal/ioerr"
	"github.com/bamsammich/fileops/internal/memsink"
	"github.com/bamsammich/fileops/internal/stream"
)

// Operations is every file operation the package offers. *Files is the
// only implementation; the interface exists so callers can substitute fakes.
type Operations interface {
	ReadText(ctx context.Context, path string) (string, error)
	TryReadText(ctx context.Context, path string) (string, bool)
	ReadBytes(ctx context.Context, path string) ([]byte, error)
	ReadLines(ctx context.Context, path string) ([]string, error)
	ReadToMemory(ctx context.Context, path string) (*memsink.Sink, error)
	ReadLinesToSet(ctx context.Context, path string, opts SetOptions) (*LineSet, error)

	WriteText(ctx context.Context, path, content string) error
	WriteBytes(ctx context.Context, path string, data []byte) error
	WriteAllLines(ctx context.Context, path string, lines []string) error
	WriteFromStream(ctx context.Context, path string, src io.Reader) (int64, error)
	WriteAtomic(ctx context.Context, path string, data []byte) error
	AppendText(ctx context.Context, path, content string) error
	AppendLines(ctx context.Context, path string, lines []string) error

	Copy(ctx context.Context, src, dst string) (int64, error)
	Move(ctx context.Context, src, dst string) error
	Rename(src, dst string) error
	CopyDirectory(ctx context.Context, src, dst string) error
	Enumerate(ctx context.Context, root string, recursive bool) iter.Seq[string]

	TryDelete(path string) bool
	DeleteIfExists(ctx context.Context, path string) bool
	Exists(ctx context.Context, path string) bool
	DirExists(ctx context.Context, path string) bool
	GetSize(ctx context.Context, path string) (int64, bool)
	GetLastModified(ctx context.Context, path string) (time.Time, bool)
	RemoveReadOnlyAndArchiveAttributes(ctx context.Context, dir string) bool
	Hash(ctx context.Context, path string) (string, error)
	EnsureDir(path string) error
}

var _ Operations = (*Files)(nil)

// Config configures a Files. Zero fields are filled in by New.
type Config struct {
	// Fs is the raw filesystem. Defaults to the OS filesystem.
	Fs afero.Fs

	// Buffers lends transfer buffers. Defaults to a process-wide pool of
	// BufferSize buffers.
	Buffers bufpool.Pool

	// Sinks provides ReadToMemory's sinks. Defaults to memsink.Default().
	Sinks memsink.Provider

	Logger *slog.Logger

	// LineEnding terminates every line written by WriteAllLines and
	// AppendLines. Defaults to "\n".
	LineEnding string

	BufferSize int

	// BWLimit caps the aggregate transfer rate in bytes per second.
	// Zero is unlimited. A limit disables the kernel copy path.
	BWLimit int64

	// Workers bounds CopyDirectory's parallelism.
	Workers int

	Dispatch Dispatch

	DisableKernelCopy bool

	// AtomicCopy makes Copy, Move and CopyDirectory write each destination
	// under a temporary name and rename it into place.
	AtomicCopy bool
}

// DefaultConfig returns the configuration New uses for zero fields.
func DefaultConfig() Config {
	return Config{
		LineEnding: "\n",
		BufferSize: bufpool.DefaultSize,
		Workers:    engine.DefaultWorkers(),
		Dispatch:   DispatchInline,
	}
}

// Files implements Operations.
type Files struct {
	fs      afero.Fs
	buffers bufpool.Pool
	sinks   memsink.Provider
	stream  *stream.Engine
	copier  *engine.Copier
	logger  *slog.Logger
	cfg     Config
}

// New creates a Files from cfg.
func New(cfg Config) *Files {
	def := DefaultConfig()
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.Buffers == nil {
		if cfg.BufferSize == bufpool.DefaultSize {
			cfg.Buffers = bufpool.Default()
		} else {
			cfg.Buffers = bufpool.New(cfg.BufferSize)
		}
	}
	if cfg.Sinks == nil {
		cfg.Sinks = memsink.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LineEnding == "" {
		cfg.LineEnding = def.LineEnding
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	var opts []stream.Option
	if cfg.BWLimit > 0 {
		opts = append(opts, stream.WithLimiter(stream.NewBWLimiter(cfg.BWLimit)))
	}
	eng := stream.New(cfg.Buffers, opts...)

	return &Files{
		fs:      cfg.Fs,
		buffers: cfg.Buffers,
		sinks:   cfg.Sinks,
		stream:  eng,
		logger:  cfg.Logger,
		cfg:     cfg,
		copier: engine.NewCopier(cfg.Fs, eng,
			engine.WithKernelCopy(!cfg.DisableKernelCopy && cfg.BWLimit == 0),
			engine.WithAtomicWrites(cfg.AtomicCopy),
			engine.WithCopierLogger(cfg.Logger),
		),
	}
}

// Silent returns a Files sharing f's pools whose diagnostics are discarded.
func (f *Files) Silent() *Files {
	cfg := f.cfg
	cfg.Logger = slog.New(slog.DiscardHandler)
	return New(cfg)
}

// Fs returns the underlying filesystem.
func (f *Files) Fs() afero.Fs { return f.fs }

// fail classifies err for a fail-loud operation.
func (f *Files) fail(op, path string, err error) error {
	err = ioerr.Wrap(op, path, err)
	f.logger.Debug("file operation failed", "op", op, "path", path, "error", err)
	return err
}

// warn records the cause of a try-style operation's failure.
func (f *Files) warn(op, path string, err error) {
	f.logger.Warn("file operation failed", "op", op, "path", path, "error", err)
}

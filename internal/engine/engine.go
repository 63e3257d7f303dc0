// Package engine copies directory trees with bounded parallelism.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/filter"
	"github.com/bamsammich/fileops/internal/ioerr"
	"github.com/bamsammich/fileops/internal/stats"
	"github.com/bamsammich/fileops/internal/walk"
)

var (
	errNotDir       = errors.New("not a directory")
	errDstInsideSrc = errors.New("destination is inside the source tree")
)

// TreeConfig describes a recursive directory copy.
type TreeConfig struct {
	Fs     afero.Fs
	Copier *Copier
	Filter *filter.Chain
	Events chan<- event.Event
	Stats  *stats.Collector
	Logger *slog.Logger

	Src string
	Dst string

	// Workers bounds the number of files copied at once. Zero selects
	// DefaultWorkers.
	Workers int

	FollowSymlinks bool

	// Verify re-reads every copied file on both sides and compares BLAKE3
	// digests once the copy has finished.
	Verify bool
}

// Result is the outcome of a tree copy.
type Result struct {
	Err    error
	Verify *VerifyResult
	Stats  stats.Snapshot
}

// DefaultWorkers returns half the CPU count, clamped to [2, 8].
func DefaultWorkers() int {
	return min(max(runtime.NumCPU()/2, 2), 8)
}

func (cfg TreeConfig) withDefaults() TreeConfig {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Copier == nil {
		cfg.Copier = NewCopier(cfg.Fs, nil, WithCopierLogger(cfg.Logger))
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers()
	}
	return cfg
}

// CopyTree mirrors the directory Src under Dst, blocking until complete.
//
// Every directory below Src is created under Dst, including empty ones.
// Files are copied by up to Workers goroutines; each file's parent directory
// is created immediately before its copy starts. The first file that fails
// cancels the remaining copies and becomes Result.Err. Files already copied
// are left in place. Entries the walk could not read are skipped; if nothing
// else failed, Result.Err then reports a partial failure.
func CopyTree(ctx context.Context, cfg TreeConfig) Result {
	cfg = cfg.withDefaults()
	collector := cfg.Stats
	fail := func(err error) Result {
		return Result{Stats: collector.Snapshot(), Err: err}
	}

	srcInfo, err := cfg.Fs.Stat(cfg.Src)
	if err != nil {
		return fail(ioerr.Wrap("copy tree", cfg.Src, err))
	}
	if !srcInfo.IsDir() {
		return fail(ioerr.New(ioerr.KindIOFailure, "copy tree", cfg.Src, errNotDir))
	}
	if within(cfg.Src, cfg.Dst) {
		return fail(ioerr.New(ioerr.KindIOFailure, "copy tree", cfg.Dst, errDstInsideSrc))
	}
	if err := cfg.Fs.MkdirAll(cfg.Dst, 0o755); err != nil {
		return fail(ioerr.Wrap("create destination", cfg.Dst, err))
	}

	// Bytes are counted as they are written so progress moves within large
	// files. Verification hashes through the unobserved engine.
	hashStream := cfg.Copier.Stream()
	cfg.Copier = cfg.Copier.WithProgress(collector.AddBytesCopied)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	var (
		mu      sync.Mutex
		copied  []string
		skipped int64
		walkErr error
		files   int64
		walked  int64
	)

	opts := walk.Options{
		Recursive:      true,
		IncludeDirs:    true,
		FollowSymlinks: cfg.FollowSymlinks,
		Filter:         cfg.Filter,
		Logger:         cfg.Logger,
		OnSkip: func(path string, err error) {
			skipped++
			collector.AddFilesSkipped(1)
			cfg.Logger.Warn("skipping unreadable entry", "path", path, "error", err)
			event.Send(cfg.Events, event.Event{Type: event.FileSkipped, Path: path, Error: err})
		},
	}

	event.Send(cfg.Events, event.Event{Type: event.WalkStarted})
	for e := range walk.Walk(gctx, cfg.Fs, cfg.Src, opts) {
		if gctx.Err() != nil {
			break
		}
		if e.IsDir() {
			dst := filepath.Join(cfg.Dst, e.RelPath)
			if err := cfg.Fs.MkdirAll(dst, 0o755); err != nil {
				walkErr = ioerr.Wrap("mkdir", dst, err)
				cancel()
				break
			}
			collector.AddDirsCreated(1)
			event.Send(cfg.Events, event.Event{Type: event.DirCreated, Path: e.RelPath})
			continue
		}

		task := rebase(cfg.Dst, e)
		files++
		walked += task.Size
		collector.AddFilesWalked(1)
		collector.AddBytesWalked(task.Size)

		g.Go(func() error {
			if err := copyOne(gctx, cfg, task); err != nil {
				return err
			}
			mu.Lock()
			copied = append(copied, task.RelPath)
			mu.Unlock()
			return nil
		})
	}
	event.Send(cfg.Events, event.Event{Type: event.WalkComplete, Size: files, TotalSize: walked})

	err = g.Wait()
	switch {
	case walkErr != nil:
		err = walkErr
	case err == nil && ctx.Err() != nil:
		err = ctx.Err()
	}
	if err != nil {
		return fail(ioerr.Wrap("copy tree", cfg.Src, err))
	}
	if skipped > 0 {
		err = ioerr.New(ioerr.KindPartialFailure, "copy tree", cfg.Src,
			fmt.Errorf("%d entries skipped", skipped))
	}

	result := Result{Err: err}
	if cfg.Verify {
		slices.Sort(copied)
		vr := Verify(ctx, VerifyConfig{
			Fs:      cfg.Fs,
			Stream:  hashStream,
			Events:  cfg.Events,
			Stats:   collector,
			SrcRoot: cfg.Src,
			DstRoot: cfg.Dst,
			Files:   copied,
			Workers: cfg.Workers,
		})
		result.Verify = &vr
		if vr.Failed > 0 {
			result.Err = ioerr.New(ioerr.KindIOFailure, "verify", cfg.Dst,
				fmt.Errorf("%d of %d files differ", vr.Failed, len(copied)))
		}
	}
	result.Stats = collector.Snapshot()
	return result
}

// within reports whether path is root or lies below it, comparing cleaned
// absolute paths.
func within(root, path string) bool {
	if r, err := filepath.Abs(root); err == nil {
		root = r
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func copyOne(ctx context.Context, cfg TreeConfig, task fileTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event.Send(cfg.Events, event.Event{Type: event.FileStarted, Path: task.RelPath, Size: task.Size})

	n, err := cfg.Copier.CopyFile(ctx, task.SrcPath, task.DstPath)
	if err != nil {
		if ioerr.IsCancelled(err) {
			return err
		}
		cfg.Stats.AddFilesFailed(1)
		event.Send(cfg.Events, event.Event{Type: event.FileFailed, Path: task.RelPath, Error: err})
		return err
	}

	cfg.Stats.AddFilesCopied(1)
	cfg.Logger.Debug("copied file", "path", task.RelPath, "bytes", n)
	event.Send(cfg.Events, event.Event{Type: event.FileCompleted, Path: task.RelPath, Size: n})
	return nil
}

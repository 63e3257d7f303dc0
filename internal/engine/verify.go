package engine

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/stats"
	"github.com/bamsammich/fileops/internal/stream"
)

// VerifyConfig controls the post-copy verification pass.
type VerifyConfig struct {
	Fs      afero.Fs
	Stream  *stream.Engine
	Events  chan<- event.Event
	Stats   *stats.Collector
	SrcRoot string
	DstRoot string
	Files   []string // paths relative to both roots
	Workers int
}

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	Errors   []VerifyError
	Verified int64
	Failed   int64
}

// VerifyError records a single checksum mismatch or unreadable file.
type VerifyError struct {
	Err     error
	Path    string
	SrcHash string
	DstHash string
}

// Verify compares BLAKE3 checksums of every listed file in the source and
// destination trees, fanning out to cfg.Workers goroutines. Files not
// reached before ctx is cancelled are counted as neither verified nor failed.
func Verify(ctx context.Context, cfg VerifyConfig) VerifyResult {
	event.Send(cfg.Events, event.Event{Type: event.VerifyStarted})

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	eng := cfg.Stream
	if eng == nil {
		eng = stream.New(nil)
	}

	var (
		mu     sync.Mutex
		result VerifyResult
		g      errgroup.Group
	)
	g.SetLimit(workers)

	fail := func(ve VerifyError) {
		mu.Lock()
		result.Failed++
		result.Errors = append(result.Errors, ve)
		mu.Unlock()
		if cfg.Stats != nil {
			cfg.Stats.AddFilesVerifyFailed(1)
		}
		event.Send(cfg.Events, event.Event{Type: event.VerifyFailed, Path: ve.Path, Error: ve.Err})
	}

	for _, rel := range cfg.Files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			srcHash, err := HashFile(ctx, cfg.Fs, eng, filepath.Join(cfg.SrcRoot, rel))
			if err != nil {
				if ctx.Err() == nil {
					fail(VerifyError{Path: rel, SrcHash: "error", DstHash: "n/a", Err: err})
				}
				return nil
			}
			dstHash, err := HashFile(ctx, cfg.Fs, eng, filepath.Join(cfg.DstRoot, rel))
			if err != nil {
				if ctx.Err() == nil {
					fail(VerifyError{Path: rel, SrcHash: srcHash, DstHash: "error", Err: err})
				}
				return nil
			}
			if srcHash != dstHash {
				fail(VerifyError{Path: rel, SrcHash: srcHash, DstHash: dstHash})
				return nil
			}

			mu.Lock()
			result.Verified++
			mu.Unlock()
			if cfg.Stats != nil {
				cfg.Stats.AddFilesVerified(1)
			}
			event.Send(cfg.Events, event.Event{Type: event.VerifyOK, Path: rel})
			return nil
		})
	}
	_ = g.Wait()
	return result
}

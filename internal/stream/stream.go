// Package stream implements the chunked copy primitive shared by every
// file operation: file to file, file to memory and external stream to file.
package stream

import (
	"context"
	"errors"
	"io"

	"golang.org/x/time/rate"

	"github.com/bamsammich/fileops/internal/bufpool"
)

// Engine copies between byte streams through pooled transfer buffers.
// It is safe for concurrent use; each Copy borrows its own buffer.
type Engine struct {
	pool     bufpool.Pool
	limiter  *rate.Limiter
	progress func(n int64)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimiter throttles every copy made by the engine through a shared
// limiter. A nil limiter disables throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(e *Engine) { e.limiter = l }
}

// WithProgress registers a callback invoked with the byte count of every
// chunk written. It runs on the copying goroutine and must not block.
func WithProgress(fn func(n int64)) Option {
	return func(e *Engine) { e.progress = fn }
}

// New creates an Engine borrowing from pool, or from bufpool.Default if
// pool is nil.
func New(pool bufpool.Pool, opts ...Option) *Engine {
	if pool == nil {
		pool = bufpool.Default()
	}
	e := &Engine{pool: pool}
	for _, o := range opts {
		o(e)
	}
	return e
}

// With returns a copy of e sharing its pool and limiter, with opts applied.
func (e *Engine) With(opts ...Option) *Engine {
	c := *e
	for _, o := range opts {
		o(&c)
	}
	return &c
}

// maxEmptyReads bounds consecutive (0, nil) reads before Copy gives up.
const maxEmptyReads = 100

// Copy reads src until io.EOF and writes every byte read to dst in order.
// Cancellation is checked once per chunk. Neither stream is closed. On
// failure the returned count is the number of bytes written before the
// error. A reader that keeps returning no data and no error fails with
// io.ErrNoProgress.
func (e *Engine) Copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	bufp := e.pool.Get()
	defer e.pool.Put(bufp)
	buf := *bufp

	if e.limiter != nil {
		src = newRateLimitedReader(ctx, src, e.limiter)
	}

	var (
		written int64
		empty   int
	)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			if nw < 0 || nw > nr {
				nw = 0
				if werr == nil {
					werr = errInvalidWrite
				}
			}
			written += int64(nw)
			if e.progress != nil && nw > 0 {
				e.progress(int64(nw))
			}
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return written, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return written, ctxErr
			}
			return written, rerr
		}
		if nr > 0 {
			empty = 0
			continue
		}
		if empty++; empty >= maxEmptyReads {
			return written, io.ErrNoProgress
		}
	}
}

var errInvalidWrite = errors.New("invalid write result")

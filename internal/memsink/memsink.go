// Package memsink provides reusable in-memory byte sinks for reading whole
// files into memory without allocating a fresh buffer per call.
package memsink

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// ErrClosed is returned by operations on a sink that was already released.
var ErrClosed = errors.New("memsink: sink is closed")

// Provider hands out sinks. Every sink must be closed by its holder, which
// returns it to the provider.
type Provider interface {
	Acquire() *Sink
}

var (
	_ Provider           = (*Pool)(nil)
	_ io.ReadWriteCloser = (*Sink)(nil)
	_ io.Seeker          = (*Sink)(nil)
	_ io.WriterTo        = (*Sink)(nil)
	_ io.ReaderFrom      = (*Sink)(nil)
)

// Pool is a Provider backed by a bytebufferpool.Pool.
type Pool struct {
	pool        bytebufferpool.Pool
	outstanding atomic.Int64
}

// NewPool creates an empty sink pool.
func NewPool() *Pool {
	return &Pool{}
}

var defaultPool = sync.OnceValue(NewPool)

// Default returns the process-wide sink pool.
func Default() *Pool { return defaultPool() }

// Acquire returns a sink with zero length and its cursor at the start.
// The underlying buffer may be recycled, so both are reset here.
func (p *Pool) Acquire() *Sink {
	bb := p.pool.Get()
	bb.Reset()
	p.outstanding.Add(1)
	return &Sink{bb: bb, pool: p}
}

// Outstanding returns the number of sinks acquired and not yet closed.
func (p *Pool) Outstanding() int64 { return p.outstanding.Load() }

func (p *Pool) release(bb *bytebufferpool.ByteBuffer) {
	p.outstanding.Add(-1)
	p.pool.Put(bb)
}

// Sink is an in-memory byte buffer with a read cursor. Writes always append;
// reads start at the cursor. A Sink is not safe for concurrent use.
type Sink struct {
	bb   *bytebufferpool.ByteBuffer
	pool *Pool
	off  int
}

func (s *Sink) Write(p []byte) (int, error) {
	if s.bb == nil {
		return 0, ErrClosed
	}
	return s.bb.Write(p)
}

func (s *Sink) WriteString(str string) (int, error) {
	if s.bb == nil {
		return 0, ErrClosed
	}
	return s.bb.WriteString(str)
}

// ReadFrom appends everything from r.
func (s *Sink) ReadFrom(r io.Reader) (int64, error) {
	if s.bb == nil {
		return 0, ErrClosed
	}
	return s.bb.ReadFrom(r)
}

func (s *Sink) Read(p []byte) (int, error) {
	if s.bb == nil {
		return 0, ErrClosed
	}
	if s.off >= len(s.bb.B) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, s.bb.B[s.off:])
	s.off += n
	return n, nil
}

// WriteTo writes the unread portion to w and advances the cursor.
func (s *Sink) WriteTo(w io.Writer) (int64, error) {
	if s.bb == nil {
		return 0, ErrClosed
	}
	if s.off >= len(s.bb.B) {
		return 0, nil
	}
	n, err := w.Write(s.bb.B[s.off:])
	s.off += n
	if err == nil && s.off < len(s.bb.B) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

func (s *Sink) Seek(offset int64, whence int) (int64, error) {
	if s.bb == nil {
		return 0, ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.off) + offset
	case io.SeekEnd:
		abs = int64(len(s.bb.B)) + offset
	default:
		return 0, errors.New("memsink: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("memsink: negative position")
	}
	if abs > int64(len(s.bb.B)) {
		abs = int64(len(s.bb.B))
	}
	s.off = int(abs)
	return abs, nil
}

// Rewind moves the read cursor back to the start.
func (s *Sink) Rewind() {
	s.off = 0
}

// Reset discards all content and rewinds.
func (s *Sink) Reset() {
	if s.bb != nil {
		s.bb.Reset()
	}
	s.off = 0
}

// Len returns the total number of bytes held, independent of the cursor.
func (s *Sink) Len() int {
	if s.bb == nil {
		return 0
	}
	return s.bb.Len()
}

// Bytes returns the full content. The slice is only valid until Close.
func (s *Sink) Bytes() []byte {
	if s.bb == nil {
		return nil
	}
	return s.bb.B
}

// Close returns the sink to its pool. Closing twice is a no-op.
func (s *Sink) Close() error {
	if s.bb == nil {
		return nil
	}
	bb := s.bb
	s.bb = nil
	s.off = 0
	if s.pool != nil {
		s.pool.release(bb)
	}
	return nil
}

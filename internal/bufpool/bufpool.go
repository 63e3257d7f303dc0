// Package bufpool lends fixed-capacity transfer buffers for streaming copies.
package bufpool

import (
	"sync"
	"sync/atomic"
)

// DefaultSize is the transfer buffer capacity used when none is configured.
const DefaultSize = 128 << 10 // 128 KiB

// Pool lends and reclaims transfer buffers. Implementations must be safe
// for concurrent use.
type Pool interface {
	Get() *[]byte
	Put(*[]byte)
	Size() int
}

var (
	_ Pool = (*SyncPool)(nil)
	_ Pool = (*Counting)(nil)
)

// SyncPool is a Pool backed by sync.Pool.
type SyncPool struct {
	pool sync.Pool
	size int
}

// New creates a pool of buffers with the given capacity. A non-positive
// size selects DefaultSize.
func New(size int) *SyncPool {
	if size <= 0 {
		size = DefaultSize
	}
	p := &SyncPool{size: size}
	p.pool.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return p
}

func (p *SyncPool) Get() *[]byte {
	bufp := p.pool.Get().(*[]byte)
	*bufp = (*bufp)[:p.size]
	return bufp
}

// Put returns a buffer. Buffers of a foreign capacity are dropped.
func (p *SyncPool) Put(bufp *[]byte) {
	if bufp == nil || cap(*bufp) != p.size {
		return
	}
	p.pool.Put(bufp)
}

func (p *SyncPool) Size() int { return p.size }

var (
	defaultOnce sync.Once
	defaultPool *SyncPool
)

// Default returns the process-wide pool of DefaultSize buffers.
func Default() *SyncPool {
	defaultOnce.Do(func() { defaultPool = New(DefaultSize) })
	return defaultPool
}

// Counting wraps a Pool and tracks how many buffers are checked out.
type Counting struct {
	inner       Pool
	outstanding atomic.Int64
	gets        atomic.Int64
}

// NewCounting wraps inner. A nil inner uses a fresh DefaultSize pool.
func NewCounting(inner Pool) *Counting {
	if inner == nil {
		inner = New(DefaultSize)
	}
	return &Counting{inner: inner}
}

func (c *Counting) Get() *[]byte {
	c.outstanding.Add(1)
	c.gets.Add(1)
	return c.inner.Get()
}

func (c *Counting) Put(bufp *[]byte) {
	c.outstanding.Add(-1)
	c.inner.Put(bufp)
}

func (c *Counting) Size() int { return c.inner.Size() }

// Outstanding returns the number of buffers borrowed and not yet returned.
func (c *Counting) Outstanding() int64 { return c.outstanding.Load() }

// Gets returns the total number of borrows.
func (c *Counting) Gets() int64 { return c.gets.Load() }

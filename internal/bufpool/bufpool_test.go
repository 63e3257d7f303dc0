package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncPoolSize(t *testing.T) {
	t.Parallel()

	p := New(4096)
	bufp := p.Get()
	require.NotNil(t, bufp)
	assert.Len(t, *bufp, 4096)
	p.Put(bufp)

	assert.Equal(t, DefaultSize, New(0).Size())
}

func TestSyncPoolRestoresLength(t *testing.T) {
	t.Parallel()

	p := New(1024)
	bufp := p.Get()
	*bufp = (*bufp)[:10]
	p.Put(bufp)

	again := p.Get()
	assert.Len(t, *again, 1024)
}

func TestSyncPoolDropsForeignBuffers(t *testing.T) {
	t.Parallel()

	p := New(1024)
	foreign := make([]byte, 16)
	p.Put(&foreign) // must not panic or poison the pool
	p.Put(nil)

	bufp := p.Get()
	assert.Len(t, *bufp, 1024)
}

func TestCountingConcurrent(t *testing.T) {
	t.Parallel()

	c := NewCounting(New(512))
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				b := c.Get()
				c.Put(b)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), c.Outstanding())
	assert.Equal(t, int64(1600), c.Gets())
	assert.Equal(t, 512, c.Size())
}

func TestDefaultIsShared(t *testing.T) {
	t.Parallel()
	assert.Same(t, Default(), Default())
}

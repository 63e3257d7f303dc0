package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorConcurrentWorkers(t *testing.T) {
	c := NewCollector()
	const workers = 8
	const filesEach = 500

	var wg sync.WaitGroup
	for w := range workers {
		wg.Go(func() {
			for i := range filesEach {
				c.AddFilesWalked(1)
				c.AddBytesWalked(100)
				switch {
				case i%50 == 0:
					c.AddFilesFailed(1)
				case w == 0 && i%10 == 1:
					c.AddFilesSkipped(1)
				default:
					c.AddFilesCopied(1)
					c.AddBytesCopied(100)
					c.AddFilesVerified(1)
				}
			}
			c.AddDirsCreated(1)
		})
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(workers*filesEach), s.FilesWalked)
	assert.Equal(t, int64(workers*filesEach*100), s.BytesWalked)
	assert.Equal(t, int64(workers*10), s.FilesFailed)
	assert.Equal(t, int64(50), s.FilesSkipped)
	assert.Equal(t, s.FilesWalked-s.FilesFailed-s.FilesSkipped, s.FilesCopied)
	assert.Equal(t, s.FilesCopied*100, s.BytesCopied)
	assert.Equal(t, s.FilesCopied, s.FilesVerified)
	assert.Equal(t, int64(workers), s.DirsCreated)
	assert.Zero(t, s.Pending())
}

func TestSnapshotPending(t *testing.T) {
	assert.Equal(t, int64(4), Snapshot{FilesWalked: 10, FilesCopied: 5, FilesFailed: 1}.Pending())
	// Counters are read independently, so copied can briefly lead walked.
	assert.Zero(t, Snapshot{FilesWalked: 1, FilesCopied: 2}.Pending())
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		FilesWalked:  3,
		BytesWalked:  300,
		FilesCopied:  2,
		BytesCopied:  200,
		FilesSkipped: 1,
		DirsCreated:  2,
	}
	assert.Equal(t, "walked=3/300 copied=2/200 failed=0 skipped=1 dirs=2", s.String())

	s.FilesVerified, s.FilesVerifyFailed = 1, 1
	assert.Equal(t, "walked=3/300 copied=2/200 failed=0 skipped=1 dirs=2 verified=1 mismatched=1", s.String())
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:             "0 B",
		1023:          "1023 B",
		1 << 10:       "1.0 KiB",
		128 << 10:     "128.0 KiB",
		3 << 19:       "1.5 MiB",
		5 << 30:       "5.0 GiB",
		1<<40 + 1<<39: "1.5 TiB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatBytes(in), "FormatBytes(%d)", in)
	}
}

func TestRate(t *testing.T) {
	s := Snapshot{BytesCopied: 3 << 20, Elapsed: 3 * time.Second}
	assert.InDelta(t, float64(1<<20), s.BytesPerSec(), 0.5)
	assert.Equal(t, "1.0 MiB/s", FormatRate(s.BytesPerSec()))

	assert.Zero(t, Snapshot{BytesCopied: 10}.BytesPerSec())
}

func TestElapsedAdvances(t *testing.T) {
	c := NewCollector()
	first := c.Elapsed()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, c.Snapshot().Elapsed, first)
}

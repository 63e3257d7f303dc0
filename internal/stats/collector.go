// Package stats counts the work done by a tree copy.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks copy statistics using lock-free atomic counters. It is
// safe to share between workers.
type Collector struct {
	startTime         time.Time
	filesWalked       atomic.Int64
	bytesWalked       atomic.Int64
	filesCopied       atomic.Int64
	filesFailed       atomic.Int64
	filesSkipped      atomic.Int64
	bytesCopied       atomic.Int64
	dirsCreated       atomic.Int64
	filesVerified     atomic.Int64
	filesVerifyFailed atomic.Int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesWalked       int64
	BytesWalked       int64
	FilesCopied       int64
	FilesFailed       int64
	FilesSkipped      int64
	BytesCopied       int64
	DirsCreated       int64
	FilesVerified     int64
	FilesVerifyFailed int64
	Elapsed           time.Duration
}

func (c *Collector) AddFilesWalked(n int64)       { c.filesWalked.Add(n) }
func (c *Collector) AddBytesWalked(n int64)       { c.bytesWalked.Add(n) }
func (c *Collector) AddFilesCopied(n int64)       { c.filesCopied.Add(n) }
func (c *Collector) AddFilesFailed(n int64)       { c.filesFailed.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)      { c.filesSkipped.Add(n) }
func (c *Collector) AddBytesCopied(n int64)       { c.bytesCopied.Add(n) }
func (c *Collector) AddDirsCreated(n int64)       { c.dirsCreated.Add(n) }
func (c *Collector) AddFilesVerified(n int64)     { c.filesVerified.Add(n) }
func (c *Collector) AddFilesVerifyFailed(n int64) { c.filesVerifyFailed.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesWalked:       c.filesWalked.Load(),
		BytesWalked:       c.bytesWalked.Load(),
		FilesCopied:       c.filesCopied.Load(),
		FilesFailed:       c.filesFailed.Load(),
		FilesSkipped:      c.filesSkipped.Load(),
		BytesCopied:       c.bytesCopied.Load(),
		DirsCreated:       c.dirsCreated.Load(),
		FilesVerified:     c.filesVerified.Load(),
		FilesVerifyFailed: c.filesVerifyFailed.Load(),
		Elapsed:           c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// BytesPerSec is the average copy rate over the snapshot's elapsed time.
func (s Snapshot) BytesPerSec() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.BytesCopied) / s.Elapsed.Seconds()
}

// Pending is the number of walked files not yet copied, failed or skipped.
func (s Snapshot) Pending() int64 {
	return max(s.FilesWalked-s.FilesCopied-s.FilesFailed-s.FilesSkipped, 0)
}

// String renders the counters as key=value pairs for logs. Verification
// counters appear only once a verify pass has run.
func (s Snapshot) String() string {
	out := fmt.Sprintf("walked=%d/%d copied=%d/%d failed=%d skipped=%d dirs=%d",
		s.FilesWalked, s.BytesWalked, s.FilesCopied, s.BytesCopied,
		s.FilesFailed, s.FilesSkipped, s.DirsCreated)
	if s.FilesVerified+s.FilesVerifyFailed > 0 {
		out += fmt.Sprintf(" verified=%d mismatched=%d", s.FilesVerified, s.FilesVerifyFailed)
	}
	return out
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatRate returns a human-readable transfer rate.
func FormatRate(bytesPerSec float64) string {
	return FormatBytes(int64(bytesPerSec)) + "/s"
}

package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/stats"
)

func newProgress(verbose bool) (*progressPresenter, *bytes.Buffer, *stats.Collector) {
	var buf bytes.Buffer
	collector := stats.NewCollector()
	p := NewPresenter(Config{ErrWriter: &buf, Stats: collector, IsTTY: true, Verbose: verbose, Width: 120})
	return p.(*progressPresenter), &buf, collector
}

func TestNewPresenterSelection(t *testing.T) {
	assert.IsType(t, quietPresenter{}, NewPresenter(Config{Quiet: true, IsTTY: true}))
	assert.IsType(t, &plainPresenter{}, NewPresenter(Config{}))
	assert.IsType(t, &progressPresenter{}, NewPresenter(Config{IsTTY: true}))
}

func TestProgressPresenterFailuresScrollAbove(t *testing.T) {
	p, buf, _ := newProgress(false)

	events := make(chan event.Event, 4)
	events <- event.Event{Type: event.FileCompleted, Path: "ok.txt", Size: 10}
	events <- event.Event{Type: event.FileFailed, Path: "dir/bad.txt", Error: assert.AnError}
	events <- event.Event{Type: event.VerifyFailed, Path: "dir/mismatch.txt"}
	close(events)
	require.NoError(t, p.Run(events))

	out := buf.String()
	assert.NotContains(t, out, "ok.txt", "completed files only shown when verbose")
	assert.Contains(t, out, "bad.txt  "+assert.AnError.Error())
	assert.Contains(t, out, "mismatch.txt  CHECKSUM MISMATCH")
	assert.True(t, strings.HasSuffix(out, ansiClearLine), "status line cleared on exit")
}

func TestProgressPresenterVerboseFeed(t *testing.T) {
	p, buf, _ := newProgress(true)

	events := make(chan event.Event, 1)
	events <- event.Event{Type: event.FileCompleted, Path: "ok.txt", Size: 10}
	close(events)
	require.NoError(t, p.Run(events))

	assert.Contains(t, buf.String(), "✓  ok.txt  10 B")
}

func TestProgressPresenterStatusLine(t *testing.T) {
	p, _, collector := newProgress(false)
	collector.AddFilesWalked(3)
	collector.AddBytesCopied(50)
	collector.AddFilesCopied(1)

	line := p.statusLine(collector.Snapshot())
	assert.True(t, strings.HasPrefix(line, "walking  3 files  50 B copied"))

	p.handleEvent(event.Event{Type: event.WalkComplete, Size: 4, TotalSize: 100})
	line = p.statusLine(collector.Snapshot())
	assert.True(t, strings.HasPrefix(line, " 50%  "+ProgressBar(0.5, progressBarWidth)), line)
	assert.Contains(t, line, "1 / 4 files")
	assert.Contains(t, line, "50 B / 100 B")
}

func TestRateHistory(t *testing.T) {
	h := newRateHistory(3)
	start := time.Unix(1000, 0)

	h.observe(0, start)
	assert.Zero(t, h.current(), "baseline only")

	h.observe(100, start.Add(time.Second))
	assert.InDelta(t, 100.0, h.current(), 0.001)

	h.observe(400, start.Add(3*time.Second))
	assert.InDelta(t, 150.0, h.current(), 0.001)

	h.observe(400, start.Add(4*time.Second))
	h.observe(500, start.Add(5*time.Second))
	assert.Equal(t, []float64{150, 0, 100}, h.samples)
}

func TestTruncLine(t *testing.T) {
	assert.Equal(t, "abc", truncLine("abc", 5))
	assert.Equal(t, "▪▪", truncLine("▪▪▪▪", 2))
	assert.Equal(t, "", truncLine("abc", 0))
}

package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim       = "\033[2m"
	ansiReset     = "\033[0m"
	ansiClearLine = "\r\033[K"
)

const (
	sparklineWidth   = 12
	progressBarWidth = 16
	redrawInterval   = 100 * time.Millisecond
	sampleInterval   = time.Second
)

// progressPresenter keeps a single status line at the bottom of a terminal.
// Failures (and, when verbose, completed files) scroll above it.
type progressPresenter struct {
	w       io.Writer
	stats   *stats.Collector
	history *rateHistory
	width   int
	verbose bool

	walkDone   bool
	filesTotal int64
	bytesTotal int64
	drawn      bool
}

func (p *progressPresenter) Run(events <-chan event.Event) error {
	redraw := time.NewTicker(redrawInterval)
	defer redraw.Stop()
	sample := time.NewTicker(sampleInterval)
	defer sample.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clear()
				return nil
			}
			p.handleEvent(ev)
		case <-redraw.C:
			p.draw()
		case now := <-sample.C:
			p.history.observe(p.stats.Snapshot().BytesCopied, now)
		}
	}
}

func (p *progressPresenter) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.WalkComplete:
		p.walkDone = true
		p.filesTotal = ev.Size
		p.bytesTotal = ev.TotalSize
	case event.FileCompleted:
		if p.verbose {
			p.printAbove(fmt.Sprintf("✓  %s  %s", p.styledPath(ev.Path), FormatBytes(ev.Size)))
		}
	case event.FileFailed:
		p.printAbove(fmt.Sprintf("✗  %s  %s", p.styledPath(ev.Path), errText(ev.Error)))
	case event.FileSkipped:
		p.printAbove(fmt.Sprintf("–  %s  %sskipped%s", p.styledPath(ev.Path), ansiDim, ansiReset))
	case event.VerifyStarted:
		p.printAbove(ansiDim + "verifying checksums..." + ansiReset)
	case event.VerifyFailed:
		p.printAbove(fmt.Sprintf("✗  %s  CHECKSUM MISMATCH", p.styledPath(ev.Path)))
	}
}

func (p *progressPresenter) printAbove(line string) {
	p.clear()
	fmt.Fprintln(p.w, line)
	p.draw()
}

func (p *progressPresenter) clear() {
	if p.drawn {
		fmt.Fprint(p.w, ansiClearLine)
		p.drawn = false
	}
}

func (p *progressPresenter) draw() {
	fmt.Fprint(p.w, ansiClearLine+truncLine(p.statusLine(p.stats.Snapshot()), p.width-1))
	p.drawn = true
}

func (p *progressPresenter) statusLine(snap stats.Snapshot) string {
	rate := p.history.current()
	if rate == 0 {
		rate = snap.BytesPerSec()
	}
	spark := Sparkline(p.history.samples, sparklineWidth)

	if !p.walkDone || p.bytesTotal == 0 {
		return fmt.Sprintf("walking  %s files  %s copied  %s  %s",
			FormatCount(snap.FilesWalked), FormatBytes(snap.BytesCopied), FormatRate(rate), spark)
	}

	pct := float64(snap.BytesCopied) / float64(p.bytesTotal)
	var eta time.Duration
	if rate > 0 {
		eta = time.Duration(float64(p.bytesTotal-snap.BytesCopied) / rate * float64(time.Second))
	}
	return fmt.Sprintf("%3.0f%%  %s  %s / %s files  %s / %s  %s  %s  eta %s",
		pct*100, ProgressBar(pct, progressBarWidth),
		FormatCount(snap.FilesCopied), FormatCount(p.filesTotal),
		FormatBytes(snap.BytesCopied), FormatBytes(p.bytesTotal),
		FormatRate(rate), spark, FormatETA(eta))
}

// styledPath dims the directory part so the file name stands out.
func (p *progressPresenter) styledPath(path string) string {
	path = truncPath(path, max(p.width/2, 20))
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return ansiDim + path[:i+1] + ansiReset + path[i+1:]
		}
	}
	return path
}

func (p *progressPresenter) Summary() string {
	return Summary(p.stats.Snapshot())
}

// truncLine cuts s to at most n runes so the status line never wraps.
func truncLine(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// rateHistory turns a cumulative byte counter into per-interval rates.
type rateHistory struct {
	lastAt  time.Time
	samples []float64
	last    int64
	size    int
}

func newRateHistory(size int) *rateHistory {
	return &rateHistory{size: size}
}

// observe records the counter value at now. The first call only sets the
// baseline.
func (h *rateHistory) observe(total int64, now time.Time) {
	if !h.lastAt.IsZero() {
		if dt := now.Sub(h.lastAt).Seconds(); dt > 0 {
			h.samples = append(h.samples, float64(total-h.last)/dt)
			if len(h.samples) > h.size {
				h.samples = h.samples[len(h.samples)-h.size:]
			}
		}
	}
	h.last = total
	h.lastAt = now
}

// current returns the most recent rate, or zero before two observations.
func (h *rateHistory) current() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	return h.samples[len(h.samples)-1]
}

package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/stats"
)

// plainPresenter writes one line per finished file to w and periodic
// progress to errW. It is used when stderr is not a terminal.
type plainPresenter struct {
	w     io.Writer
	errW  io.Writer
	stats *stats.Collector
}

const plainProgressInterval = 5 * time.Second

func (p *plainPresenter) Run(events <-chan event.Event) error {
	ticker := time.NewTicker(plainProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.FileCompleted:
		fmt.Fprintf(p.w, "%s  %s\n", ev.Path, FormatBytes(ev.Size))
	case event.FileFailed:
		fmt.Fprintf(p.w, "%s  %s\n", ev.Path, errText(ev.Error))
	case event.FileSkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", ev.Path)
	case event.VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case event.VerifyFailed:
		fmt.Fprintf(p.w, "MISMATCH: %s\n", ev.Path)
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	fmt.Fprintf(p.errW, "progress: %s/%s files %s/%s %s, %s pending\n",
		FormatCount(snap.FilesCopied), FormatCount(snap.FilesWalked),
		FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesWalked),
		FormatRate(snap.BytesPerSec()), FormatCount(snap.Pending()),
	)
}

func (p *plainPresenter) Summary() string {
	return Summary(p.stats.Snapshot())
}

func errText(err error) string {
	if err == nil {
		return "error"
	}
	return err.Error()
}

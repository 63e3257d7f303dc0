// Package ui renders tree-copy progress and configures CLI logging.
package ui

import (
	"io"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer // per-file feed
	ErrWriter io.Writer // progress and failures
	Stats     *stats.Collector
	Width     int // terminal columns; zero means 80
	IsTTY     bool
	Quiet     bool
	Verbose   bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return quietPresenter{}
	}
	if !cfg.IsTTY {
		return &plainPresenter{
			w:     cfg.Writer,
			errW:  cfg.ErrWriter,
			stats: cfg.Stats,
		}
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	return &progressPresenter{
		w:       cfg.ErrWriter,
		stats:   cfg.Stats,
		width:   width,
		verbose: cfg.Verbose,
		history: newRateHistory(sparklineWidth),
	}
}

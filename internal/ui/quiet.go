package ui

import "github.com/bamsammich/fileops/internal/event"

// quietPresenter drains events and produces no output.
type quietPresenter struct{}

func (quietPresenter) Run(events <-chan event.Event) error {
	for range events {
	}
	return nil
}

func (quietPresenter) Summary() string { return "" }

// Package event defines the progress events a tree copy reports.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	WalkStarted Type = iota + 1
	WalkComplete
	FileStarted
	FileCompleted
	FileFailed
	FileSkipped
	DirCreated
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	WalkStarted:   "WalkStarted",
	WalkComplete:  "WalkComplete",
	FileStarted:   "FileStarted",
	FileCompleted: "FileCompleted",
	FileFailed:    "FileFailed",
	FileSkipped:   "FileSkipped",
	DirCreated:    "DirCreated",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single progress notification.
type Event struct {
	Timestamp time.Time
	Error     error
	Path      string // path relative to the tree root
	Type      Type
	Size      int64 // file size, or files walked for WalkComplete
	TotalSize int64 // bytes walked (WalkComplete)
}

// Send delivers e on ch without blocking. A nil channel drops the event,
// as does a full one; events are advisory and never slow a copy down.
func Send(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case ch <- e:
	default:
	}
}

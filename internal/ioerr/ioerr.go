// Package ioerr classifies file operation failures into a small taxonomy
// that callers can branch on with errors.Is.
package ioerr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Kind identifies the class of a failure.
type Kind int

const (
	KindIOFailure Kind = iota + 1
	KindNotFound
	KindCancelled
	KindPartialFailure
)

var kindNames = [...]string{
	KindIOFailure:      "io failure",
	KindNotFound:       "not found",
	KindCancelled:      "cancelled",
	KindPartialFailure: "partial failure",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Sentinels matched by (*Error).Is.
var (
	ErrIOFailure      = errors.New("io failure")
	ErrNotFound       = errors.New("not found")
	ErrCancelled      = errors.New("cancelled")
	ErrPartialFailure = errors.New("partial failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindCancelled:
		return ErrCancelled
	case KindPartialFailure:
		return ErrPartialFailure
	default:
		return ErrIOFailure
	}
}

// Error is a classified failure of a single operation on a single path.
type Error struct {
	Err  error
	Op   string
	Path string
	Kind Kind
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Classify maps an arbitrary error onto a Kind.
func Classify(err error) Kind {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	default:
		return KindIOFailure
	}
}

// Wrap classifies err and attaches the operation name and path. It returns
// nil for a nil error and leaves an already classified error for the same
// path untouched.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Path == path {
		return err
	}
	return &Error{Op: op, Path: path, Kind: Classify(err), Err: err}
}

// New returns an error of an explicit kind.
func New(kind Kind, op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// IsNotFound reports whether err is classified as NotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist) }

// IsCancelled reports whether err is classified as Cancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

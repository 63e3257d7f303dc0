package fileop

import (
	"context"
	"fmt"
)

// Dispatch selects where metadata queries run.
type Dispatch int

const (
	// DispatchInline runs queries on the calling goroutine. Cancellation is
	// only observed before the query starts.
	DispatchInline Dispatch = iota

	// DispatchOffload runs each query on its own goroutine so a cancelled
	// caller returns immediately, even if the filesystem call is stuck.
	DispatchOffload
)

func (d Dispatch) String() string {
	switch d {
	case DispatchInline:
		return "inline"
	case DispatchOffload:
		return "offload"
	default:
		return "unknown"
	}
}

// ParseDispatch parses the String form of a Dispatch.
func ParseDispatch(s string) (Dispatch, error) {
	switch s {
	case "inline", "":
		return DispatchInline, nil
	case "offload":
		return DispatchOffload, nil
	default:
		return DispatchInline, fmt.Errorf("unknown dispatch %q", s)
	}
}

// query runs fn according to d. A cancelled context yields the zero value
// and false.
func query[T any](ctx context.Context, d Dispatch, fn func() (T, bool)) (T, bool) {
	var zero T
	if ctx.Err() != nil {
		return zero, false
	}
	if d != DispatchOffload {
		return fn()
	}

	type result struct {
		v  T
		ok bool
	}
	ch := make(chan result, 1)
	go func() {
		v, ok := fn()
		ch <- result{v: v, ok: ok}
	}()
	select {
	case r := <-ch:
		return r.v, r.ok
	case <-ctx.Done():
		return zero, false
	}
}

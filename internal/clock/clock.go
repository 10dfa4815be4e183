// Package clock provides the time source and scheduled callbacks used by a
// round. Every callback is expected to run on the owner's event loop, so
// round state is never touched by two goroutines at once.
package clock

import (
	"errors"
	"time"
)

// ErrStopped is returned by AfterFunc once a clock can no longer deliver
// callbacks.
var ErrStopped = errors.New("clock stopped")

// Clock supplies the current time and schedules one-shot callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) (Timer, error)
}

// Timer is a scheduled callback. It fires at most once.
type Timer interface {
	// Stop prevents the callback from running and reports whether it was
	// still pending.
	Stop() bool
}

package scheduler

import "time"

// Clock abstracts wall-clock time and timer creation so tests can drive the
// scheduler deterministically. The production implementation delegates to
// the time package.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules f to run after d and returns a cancellable handle.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the callback was prevented
	// from running; stopping an already-fired timer is a no-op.
	Stop() bool
}

type realClock struct{}

// NewRealClock returns the production Clock backed by the time package.
func NewRealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Package clock provides the swappable time source shared by the software
// watcher and the debouncer.
package clock

import "time"

// Clock provides time. The default implementation uses system time.
// Tests can inject a fake clock via Set to control timing deterministically.
type Clock interface {
	Now() time.Time
}

// realClock uses system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// current is the package-level time source, replaceable for testing.
var current Clock = realClock{}

// Set replaces the clock. Returns the previous clock
// so callers can restore it during cleanup.
func Set(c Clock) Clock {
	prev := current
	if c == nil {
		c = realClock{}
	}
	current = c
	return prev
}

// Now returns the current time from the active clock.
func Now() time.Time { return current.Now() }

package clock

import (
	"sync"
	"time"
)

// Epoch is where a Manual clock created with a zero start time begins.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Manual is a clock that only moves when told to. Replays and tests drive
// debouncers and watcher timestamps with it.
// All methods are safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a clock reading start, or Epoch if start is zero.
func NewManual(start time.Time) *Manual {
	if start.IsZero() {
		start = Epoch
	}
	return &Manual{now: start}
}

// Now returns the clock's current reading.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d and returns the new reading.
// Negative durations are ignored.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.now = m.now.Add(d)
	}
	return m.now
}

// Set jumps to t, which may be in the past.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Use installs m as the active clock. The returned function restores the
// clock that was active before.
func (m *Manual) Use() (restore func()) {
	prev := Set(m)
	return func() { Set(prev) }
}

// Package debounce coalesces rapid changes into a single settled emission.
//
// Debouncers are frame-driven: Trigger records the time of the latest change
// and the engine calls StepAll once per frame; a debouncer fires once its
// quiet period has elapsed on the active clock. Tests control timing by
// installing a clock.Manual.
package debounce

import (
	"sync"
	"time"

	"github.com/go-drift/inview/pkg/clock"
)

var (
	registryMu sync.Mutex
	pending    = make(map[*Debouncer]struct{})
)

// Debouncer calls its callback once the delay has passed without a new Trigger.
//
// Debouncer is NOT thread-safe. Trigger, Stop and Step must be called from
// the UI thread.
type Debouncer struct {
	delay    time.Duration
	callback func()
	pending  bool
	last     time.Time
}

// New creates a debouncer that calls callback after delay has elapsed since
// the last Trigger.
func New(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{delay: delay, callback: callback}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.last = clock.Now()
	if d.pending {
		return
	}
	d.pending = true
	registryMu.Lock()
	pending[d] = struct{}{}
	registryMu.Unlock()
}

// Stop cancels a pending callback. Trigger may be called again afterwards.
func (d *Debouncer) Stop() {
	if !d.pending {
		return
	}
	d.pending = false
	registryMu.Lock()
	delete(pending, d)
	registryMu.Unlock()
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	return d.pending
}

// Step fires the callback if the quiet period has elapsed.
// Returns true if the callback ran.
func (d *Debouncer) Step() bool {
	if !d.pending || clock.Now().Sub(d.last) < d.delay {
		return false
	}
	d.Stop()
	if d.callback != nil {
		d.callback()
	}
	return true
}

// StepAll steps every pending debouncer.
// This should be called once per frame from the engine.
func StepAll() {
	registryMu.Lock()
	if len(pending) == 0 {
		registryMu.Unlock()
		return
	}
	due := make([]*Debouncer, 0, len(pending))
	for d := range pending {
		due = append(due, d)
	}
	registryMu.Unlock()

	for _, d := range due {
		d.Step()
	}
}

// HasPending returns true if any debouncer is waiting to fire.
func HasPending() bool {
	registryMu.Lock()
	defer registryMu.Unlock()
	return len(pending) > 0
}

// Package visibility reduces watcher notifications to one boolean per target.
//
// A Tracker sits on top of an observe.Manager. Every batch becomes
// entries.map(e => e != nil && e.IsIntersecting); the result is published
// only when it differs element-wise from the previous one. With Once set, a
// batch in which no target intersects is ignored entirely, so a value that
// became true stays true.
package visibility

import (
	"slices"

	"github.com/go-drift/inview/pkg/intersect"
	"github.com/go-drift/inview/pkg/observe"
)

// Options are the observation options plus the latch flag.
type Options struct {
	intersect.Options
	// Once ignores batches with no intersecting target.
	Once bool
}

// Result describes what a batch did to the published values.
type Result int

const (
	// ResultEmitted means new values were published.
	ResultEmitted Result = iota
	// ResultSuppressed means the values were equal to the previous ones.
	ResultSuppressed
	// ResultLatched means Once skipped a batch with nothing intersecting.
	ResultLatched
)

func (r Result) String() string {
	switch r {
	case ResultEmitted:
		return "emitted"
	case ResultSuppressed:
		return "suppressed"
	case ResultLatched:
		return "latched"
	default:
		return "unknown"
	}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRecorder reports the result of every batch to fn.
func WithRecorder(fn func(Result)) Option {
	return func(t *Tracker) { t.record = fn }
}

type listener struct {
	id int
	fn func([]bool)
}

// Tracker publishes the visibility of a target list.
//
// Tracker is NOT thread-safe. It must only be used from the UI thread.
type Tracker struct {
	manager   *observe.Manager
	refs      *observe.Refs
	once      bool
	values    []bool
	listeners []listener
	nextID    int
	record    func(Result)
}

// New creates a tracker driven by manager. The tracker owns the manager
// and disposes it in Dispose.
func New(manager *observe.Manager, opts ...Option) *Tracker {
	t := &Tracker{manager: manager}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe declares the current inputs. Call it on every build, like
// observe.Manager.Observe.
func (t *Tracker) Observe(refs *observe.Refs, opts Options, invalidators ...any) {
	t.refs = refs
	t.once = opts.Once
	t.manager.Observe(refs, t.handle, opts.Options, invalidators...)
}

// Values returns one boolean per ref. Until the first batch for the current
// target list, and on platforms that cannot watch visibility, every value
// is false.
func (t *Tracker) Values() []bool {
	n := t.refs.Len()
	if len(t.values) != n {
		return make([]bool, n)
	}
	return slices.Clone(t.values)
}

// Value returns the visibility of the first ref. It is the natural
// accessor for a list built with observe.One.
func (t *Tracker) Value() bool {
	values := t.Values()
	return len(values) > 0 && values[0]
}

// AddListener registers fn to receive published values.
// Returns a function that removes the listener.
func (t *Tracker) AddListener(fn func([]bool)) func() {
	id := t.nextID
	t.nextID++
	t.listeners = append(t.listeners, listener{id: id, fn: fn})
	return func() {
		t.listeners = slices.DeleteFunc(t.listeners, func(l listener) bool { return l.id == id })
	}
}

// Dispose tears down the underlying manager and drops all listeners.
func (t *Tracker) Dispose() {
	t.manager.Dispose()
	t.listeners = nil
}

func (t *Tracker) handle(entries []*intersect.Entry, _ bool) observe.Disposer {
	anyIntersecting := slices.ContainsFunc(entries, func(e *intersect.Entry) bool {
		return e != nil && e.IsIntersecting
	})
	if t.once && !anyIntersecting {
		t.report(ResultLatched)
		return nil
	}

	next := make([]bool, len(entries))
	for i, e := range entries {
		next[i] = e != nil && e.IsIntersecting
	}
	if slices.Equal(t.values, next) {
		t.report(ResultSuppressed)
		return nil
	}
	t.values = next
	t.report(ResultEmitted)

	for _, l := range slices.Clone(t.listeners) {
		l.fn(slices.Clone(next))
	}
	return nil
}

func (t *Tracker) report(r Result) {
	if t.record != nil {
		t.record(r)
	}
}

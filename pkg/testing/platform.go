package testing

import (
	"slices"

	"github.com/go-drift/inview/pkg/intersect"
)

// FakeTarget is a comparable element handle for tests.
type FakeTarget struct {
	Name string
}

func (t *FakeTarget) String() string { return t.Name }

// Entry builds an entry for target with the given intersecting state.
func Entry(target intersect.Target, intersecting bool) intersect.Entry {
	ratio := 0.0
	if intersecting {
		ratio = 1
	}
	return intersect.Entry{Target: target, IsIntersecting: intersecting, IntersectionRatio: ratio}
}

// FakePlatform is an intersect.Platform whose observers never fire on
// their own. Tests deliver batches with FakeObserver.Emit.
type FakePlatform struct {
	// Unavailable makes Available return false.
	Unavailable bool
	// Err, if set, is returned by NewObserver.
	Err error

	observers []*FakeObserver
}

// NewFakePlatform creates an available fake platform.
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{}
}

// Available reports whether the fake is marked available.
func (p *FakePlatform) Available() bool {
	return !p.Unavailable
}

// NewObserver records and returns a new FakeObserver.
func (p *FakePlatform) NewObserver(cb intersect.Callback, opts intersect.Options) (intersect.Observer, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	o := &FakeObserver{Options: opts, cb: cb}
	p.observers = append(p.observers, o)
	return o, nil
}

// Observers returns every observer created so far, in creation order.
func (p *FakePlatform) Observers() []*FakeObserver {
	return slices.Clone(p.observers)
}

// Live returns the observers that have not been disconnected.
func (p *FakePlatform) Live() []*FakeObserver {
	var live []*FakeObserver
	for _, o := range p.observers {
		if !o.disconnected {
			live = append(live, o)
		}
	}
	return live
}

// Last returns the most recently created observer, or nil.
func (p *FakePlatform) Last() *FakeObserver {
	if len(p.observers) == 0 {
		return nil
	}
	return p.observers[len(p.observers)-1]
}

// FakeObserver records registrations and delivers batches on Emit.
type FakeObserver struct {
	// Options are the options the observer was created with.
	Options intersect.Options

	cb           intersect.Callback
	targets      []intersect.Target
	disconnected bool
}

// Observe registers target once.
func (o *FakeObserver) Observe(target intersect.Target) {
	if o.disconnected || slices.Contains(o.targets, target) {
		return
	}
	o.targets = append(o.targets, target)
}

// Unobserve removes target.
func (o *FakeObserver) Unobserve(target intersect.Target) {
	o.targets = slices.DeleteFunc(o.targets, func(t intersect.Target) bool { return t == target })
}

// Disconnect stops the observer.
func (o *FakeObserver) Disconnect() {
	o.disconnected = true
	o.targets = nil
}

// Disconnected reports whether Disconnect was called.
func (o *FakeObserver) Disconnected() bool {
	return o.disconnected
}

// Targets returns the registered targets in registration order.
func (o *FakeObserver) Targets() []intersect.Target {
	return slices.Clone(o.targets)
}

// Emit delivers a batch as the native watcher would. Like a real watcher,
// a disconnected observer delivers nothing.
func (o *FakeObserver) Emit(entries ...intersect.Entry) {
	if o.disconnected {
		return
	}
	o.cb(entries)
}

// EmitLate delivers a batch even after Disconnect, standing in for a
// callback that was already queued when the watcher was torn down.
func (o *FakeObserver) EmitLate(entries ...intersect.Entry) {
	o.cb(entries)
}

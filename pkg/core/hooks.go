package core

import (
	"github.com/go-drift/inview/pkg/intersect"
	"github.com/go-drift/inview/pkg/observe"
	"github.com/go-drift/inview/pkg/viewport"
	"github.com/go-drift/inview/pkg/visibility"
)

// Disposable is a resource with explicit cleanup.
type Disposable interface {
	Dispose()
}

// UseController creates a controller and registers it for automatic disposal.
// The controller will be disposed when the state is disposed.
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(func() {
		controller.Dispose()
	})
	return controller
}

// UseOnIntersecting creates a lifecycle manager bound to the state. Call
// Observe on it from every build; it is disposed with the state, which runs
// the live Disposer and disconnects the watcher.
//
// The manager rebuilds its session when viewport.Window settles on a new
// size, unless opts carry their own observe.WithViewport.
//
// Example:
//
//	func (s *feedState) InitState() {
//	    s.watch = core.UseOnIntersecting(s, platform)
//	}
//
//	func (s *feedState) Build() {
//	    s.watch.Observe(s.refs, func(entries []*intersect.Entry, _ bool) observe.Disposer {
//	        analytics.Impression(entries)
//	        return nil
//	    }, intersect.Options{Threshold: []float64{0.5}})
//	}
func UseOnIntersecting(s stateBase, platform intersect.Platform, opts ...observe.Option) *observe.Manager {
	opts = followWindow(s, opts)
	return UseController(s, func() *observe.Manager {
		return observe.New(platform, opts...)
	})
}

// UseIsIntersecting creates a visibility tracker bound to the state. Each
// published change triggers a rebuild.
//
// Example:
//
//	func (s *imageState) InitState() {
//	    s.ref = observe.NewRef(nil)
//	    s.refs = observe.One(s.ref)
//	    s.visible = core.UseIsIntersecting(s, platform)
//	}
//
//	func (s *imageState) Build() {
//	    s.visible.Observe(s.refs, visibility.Options{Once: true})
//	    if s.visible.Value() {
//	        s.load()
//	    }
//	}
func UseIsIntersecting(s stateBase, platform intersect.Platform, opts ...observe.Option) *visibility.Tracker {
	base := s.state()
	opts = followWindow(s, opts)
	tracker := UseController(s, func() *visibility.Tracker {
		return visibility.New(observe.New(platform, opts...))
	})
	tracker.AddListener(func([]bool) {
		base.SetState(nil)
	})
	return tracker
}

// followWindow prepends a debounced view of viewport.Window, released with
// the state. A WithViewport in opts replaces it.
func followWindow(s stateBase, opts []observe.Option) []observe.Option {
	signal := viewport.Debounce(viewport.Window, viewport.DefaultDebounce)
	s.state().OnDispose(signal.Dispose)
	return append([]observe.Option{observe.WithViewport(signal)}, opts...)
}

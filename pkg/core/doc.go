// Package core binds visibility tracking to the lifetime of a host
// component's state.
//
// Embed StateBase in the component state, give it the host's rebuild
// function with SetRebuild, and create resources with the hooks. Resources
// created through hooks are disposed, in reverse order, when the state is
// disposed.
//
//	type feedState struct {
//	    core.StateBase
//	    ref     *observe.Ref
//	    refs    *observe.Refs
//	    visible *visibility.Tracker
//	}
//
//	func (s *feedState) InitState() {
//	    s.ref = observe.NewRef(nil)
//	    s.refs = observe.One(s.ref)
//	    s.visible = core.UseIsIntersecting(s, platform)
//	}
//
// # Hooks
//
// UseOnIntersecting exposes the raw entry sequence with the Disposer
// protocol. UseIsIntersecting reduces it to booleans and rebuilds the
// component when they change. UseController binds any Disposable.
//
// # Threading
//
// Everything in this package runs on the UI thread. Watcher callbacks,
// resize notifications and builds are serialized by the host.
package core

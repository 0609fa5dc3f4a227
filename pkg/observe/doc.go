// Package observe manages the lifetime of a visibility watcher on behalf of a
// host component.
//
// A Manager owns at most one watcher session. The host calls Observe on every
// build with its refs, handler, options and any extra invalidators; the
// manager compares them with the dependencies of the live session and only
// rebuilds the session when something changed:
//
//   - the Refs pointer (target list identity),
//   - any field of the observation options (compared by value),
//   - the debounced viewport size,
//   - any extra invalidator.
//
// Rebuilding runs the live Disposer, disconnects the old watcher and starts a
// new one with a fresh, all-nil entry sequence. The handler itself is not a
// dependency: the most recently supplied handler is always the one invoked.
//
// Each notification batch is merged into the entry sequence in input order.
// Targets missing from a batch keep their previous entry, so the sequence
// always has one slot per ref. Before the handler runs, the Disposer it
// returned last time is invoked.
//
// Manager is NOT thread-safe. Like the watcher it drives, it must only be
// used from the UI thread.
package observe

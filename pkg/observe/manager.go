package observe

import (
	stderrors "errors"
	"log/slog"

	"github.com/go-drift/inview/pkg/errors"
	"github.com/go-drift/inview/pkg/geometry"
	"github.com/go-drift/inview/pkg/intersect"
	"github.com/go-drift/inview/pkg/logging"
)

// Disposer is cleanup returned by a ChangeFunc. It runs before the next
// notification and when the session ends.
type Disposer func()

// ChangeFunc receives the entry sequence, index-aligned with the refs.
// Slots of targets that have not been reported yet are nil. didResize is
// true for the first notification of a session rebuilt after a viewport
// resize.
type ChangeFunc func(entries []*intersect.Entry, didResize bool) Disposer

// SizeSignal is the debounced viewport-dimensions collaborator.
type SizeSignal interface {
	Value() geometry.Size
	AddListener(fn func(geometry.Size)) func()
}

// Hooks receive lifecycle events, typically for metrics. Nil fields are skipped.
type Hooks struct {
	// OnSessionStart is called after a session starts with the number of
	// refs and the number of targets actually registered.
	OnSessionStart func(targets, registered int)
	// OnSessionEnd is called after a session's watcher is disconnected.
	OnSessionEnd func(reason Reason)
	// OnNotify is called for every batch delivered to a live session.
	OnNotify func(batchSize int)
	// OnDispose is called each time a Disposer is invoked.
	OnDispose func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithViewport makes sessions rebuild when the settled viewport size changes.
func WithViewport(signal SizeSignal) Option {
	return func(m *Manager) { m.viewport = signal }
}

// WithLogger sets the logger used for session lifecycle records.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHooks installs lifecycle hooks.
func WithHooks(hooks Hooks) Option {
	return func(m *Manager) { m.hooks = hooks }
}

// Manager owns one watcher session at a time.
type Manager struct {
	platform intersect.Platform
	viewport SizeSignal
	logger   *slog.Logger
	hooks    Hooks

	// handler is the latest ChangeFunc, read by the session at delivery time.
	handler ChangeFunc

	deps        deps
	initialized bool
	size        geometry.Size
	session     *session

	unsubscribeViewport func()
	disposed            bool
}

// New creates a manager creating watchers on platform. A nil platform is
// treated as intersect.Unavailable.
func New(platform intersect.Platform, opts ...Option) *Manager {
	if platform == nil {
		platform = intersect.Unavailable
	}
	m := &Manager{
		platform: platform,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.viewport != nil && platform.Available() {
		m.size = m.viewport.Value()
		m.unsubscribeViewport = m.viewport.AddListener(m.viewportChanged)
	}
	return m
}

// Observe declares the current inputs. Call it on every build: the handler
// is always updated, and the session is rebuilt only if refs, options or
// invalidators differ from the ones of the live session. Observe after
// Dispose does nothing.
func (m *Manager) Observe(refs *Refs, onChange ChangeFunc, options intersect.Options, invalidators ...any) {
	if m.disposed {
		return
	}
	m.handler = onChange
	if !m.platform.Available() {
		return
	}

	reason, changed := m.deps.diff(refs, options, invalidators)
	if m.initialized && !changed {
		return
	}
	if !m.initialized {
		reason = ReasonTargets
	}
	m.deps = newDeps(refs, options, invalidators)
	m.initialized = true
	m.restart(reason)
}

// Entries returns a copy of the live session's entry sequence, or nil if no
// session is running.
func (m *Manager) Entries() []*intersect.Entry {
	if m.session == nil {
		return nil
	}
	return m.session.snapshot()
}

// Active reports whether a watcher is currently registered.
func (m *Manager) Active() bool {
	return m.session != nil && m.session.observer != nil
}

// Available reports whether the platform can watch visibility.
func (m *Manager) Available() bool {
	return m.platform.Available()
}

// Dispose runs the live Disposer, disconnects the watcher and stops
// following the viewport. No notification is delivered afterwards.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	if m.unsubscribeViewport != nil {
		m.unsubscribeViewport()
		m.unsubscribeViewport = nil
	}
	m.endSession(ReasonTeardown)
	m.handler = nil
}

func (m *Manager) viewportChanged(size geometry.Size) {
	if m.disposed || size == m.size {
		return
	}
	m.size = size
	if !m.initialized {
		return
	}
	m.restart(ReasonViewport)
}

func (m *Manager) restart(reason Reason) {
	m.endSession(reason)
	m.startSession(reason == ReasonViewport)
}

func (m *Manager) startSession(didResize bool) {
	refs := m.deps.refs
	if refs.Len() == 0 {
		return
	}

	s := newSession(m, refs, didResize)
	m.session = s

	var mounted []intersect.Target
	for _, ref := range s.refs {
		if target := ref.Current(); target != nil {
			mounted = append(mounted, target)
		}
	}
	if len(mounted) > 0 {
		observer, err := m.platform.NewObserver(s.handle, m.deps.options)
		if err != nil {
			m.reportStartError(err)
		} else {
			s.observer = observer
			for _, target := range mounted {
				observer.Observe(target)
			}
		}
	}
	if !s.registered() {
		mounted = nil
	}

	if m.hooks.OnSessionStart != nil {
		m.hooks.OnSessionStart(len(s.refs), len(mounted))
	}
	m.logger.Debug("visibility session started",
		"targets", len(s.refs),
		"registered", len(mounted),
		"resized", didResize,
	)
}

func (m *Manager) endSession(reason Reason) {
	s := m.session
	if s == nil {
		return
	}
	m.session = nil
	s.close()

	if m.hooks.OnSessionEnd != nil {
		m.hooks.OnSessionEnd(reason)
	}
	m.logger.Debug("visibility session ended", "reason", reason.String())
}

func (m *Manager) reportStartError(err error) {
	var ierr *errors.Error
	if !stderrors.As(err, &ierr) {
		ierr = &errors.Error{
			Op:   "observe.Manager.startSession",
			Kind: errors.KindPlatform,
			Err:  err,
		}
	}
	errors.Report(ierr)
	m.logger.Warn("visibility watcher not created", "error", err)
}

func (m *Manager) invokeDisposer(dispose Disposer) {
	if dispose == nil {
		return
	}
	if m.hooks.OnDispose != nil {
		m.hooks.OnDispose()
	}
	dispose()
}

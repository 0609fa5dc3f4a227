package observe

import "github.com/go-drift/inview/pkg/intersect"

// session is one watcher lifetime. Its entries never outlive it.
type session struct {
	manager  *Manager
	refs     []*Ref
	entries  []*intersect.Entry
	observer intersect.Observer
	dispose  Disposer
	resized  bool
	closed   bool
}

func newSession(m *Manager, refs *Refs, didResize bool) *session {
	return &session{
		manager: m,
		refs:    append([]*Ref(nil), refs.refs...),
		entries: make([]*intersect.Entry, len(refs.refs)),
		resized: didResize,
	}
}

func (s *session) registered() bool {
	return s.observer != nil
}

func (s *session) snapshot() []*intersect.Entry {
	return append([]*intersect.Entry(nil), s.entries...)
}

// handle merges a batch and hands the result to the latest handler.
func (s *session) handle(batch []intersect.Entry) {
	if s.closed {
		return
	}
	m := s.manager
	if m.hooks.OnNotify != nil {
		m.hooks.OnNotify(len(batch))
	}

	next := make([]*intersect.Entry, len(s.refs))
	for i, ref := range s.refs {
		next[i] = s.entries[i]
		if target := ref.Current(); target != nil {
			if e := latestFor(batch, target); e != nil {
				next[i] = e
			}
		}
	}
	s.entries = next

	prev := s.dispose
	s.dispose = nil
	m.invokeDisposer(prev)

	didResize := s.resized
	s.resized = false
	if m.handler == nil || s.closed {
		return
	}
	dispose := m.handler(s.snapshot(), didResize)
	if s.closed {
		// The handler ended this session itself; its cleanup has nowhere to live.
		m.invokeDisposer(dispose)
		return
	}
	if nested := s.dispose; nested != nil {
		// A batch delivered while the handler ran already installed one.
		s.dispose = nil
		m.invokeDisposer(nested)
	}
	s.dispose = dispose
}

// close runs the live Disposer, then disconnects the watcher. The watcher
// is disconnected even if the Disposer panics.
func (s *session) close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.observer != nil {
		defer s.observer.Disconnect()
	}
	dispose := s.dispose
	s.dispose = nil
	s.manager.invokeDisposer(dispose)
}

// latestFor returns a copy of the newest entry for target in batch. Entries
// are ordered by Time; among equal times the later position wins. This
// deliberately differs from taking the first match in batch order.
func latestFor(batch []intersect.Entry, target intersect.Target) *intersect.Entry {
	var found *intersect.Entry
	for i := range batch {
		e := &batch[i]
		if e.Target != target {
			continue
		}
		if found == nil || !e.Time.Before(found.Time) {
			found = e
		}
	}
	if found == nil {
		return nil
	}
	entry := *found
	return &entry
}

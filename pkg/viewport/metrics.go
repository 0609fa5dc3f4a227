// Package viewport provides the viewport-dimensions signal that forces
// visibility sessions to be rebuilt after the window is resized.
package viewport

import (
	"sync"
	"time"

	"github.com/go-drift/inview/pkg/debounce"
	"github.com/go-drift/inview/pkg/geometry"
)

// DefaultDebounce is the quiet period applied to size changes by Debounce.
// Zero coalesces every change made within one frame.
const DefaultDebounce time.Duration = 0

// Window holds the dimensions of the top-level viewport. The host updates it
// from its resize events.
var Window = NewMetrics(geometry.Size{})

type sizeHandler struct {
	id int
	fn func(geometry.Size)
}

// Metrics tracks viewport dimensions and notifies handlers on change.
type Metrics struct {
	size     geometry.Size
	handlers []sizeHandler
	nextID   int
	mu       sync.RWMutex
}

// NewMetrics creates a dimensions provider with an initial size.
func NewMetrics(initial geometry.Size) *Metrics {
	return &Metrics{size: initial}
}

// Size returns the current viewport size.
func (m *Metrics) Size() geometry.Size {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// SetSize updates the viewport size and notifies handlers if it changed.
func (m *Metrics) SetSize(size geometry.Size) {
	m.mu.Lock()
	if m.size == size {
		m.mu.Unlock()
		return
	}
	m.size = size
	handlers := make([]sizeHandler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	for _, h := range handlers {
		h.fn(size)
	}
}

// AddHandler registers a handler to be called on size changes.
// Returns a function that can be called to remove the handler.
func (m *Metrics) AddHandler(handler func(geometry.Size)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.handlers = append(m.handlers, sizeHandler{id: id, fn: handler})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, h := range m.handlers {
			if h.id == id {
				m.handlers = append(m.handlers[:i:i], m.handlers[i+1:]...)
				return
			}
		}
	}
}

// Signal is a debounced view of a Metrics provider.
type Signal struct {
	value       *debounce.Value[geometry.Size]
	unsubscribe func()
}

// Debounce returns a signal that follows m but only publishes a size once
// changes have been quiet for delay.
func Debounce(m *Metrics, delay time.Duration) *Signal {
	value := debounce.NewValue(m.Size(), delay)
	return &Signal{
		value:       value,
		unsubscribe: m.AddHandler(value.Set),
	}
}

// Value returns the last settled size.
func (s *Signal) Value() geometry.Size {
	return s.value.Value()
}

// AddListener registers fn to receive settled sizes.
// Returns a function that removes the listener.
func (s *Signal) AddListener(fn func(geometry.Size)) func() {
	return s.value.AddListener(fn)
}

// Dispose detaches the signal from its provider and drops any pending update.
func (s *Signal) Dispose() {
	s.unsubscribe()
	s.value.Dispose()
}

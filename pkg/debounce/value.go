package debounce

import "time"

// Value publishes the latest of a burst of updates once they settle.
// Settling to a value equal to the current one publishes nothing.
type Value[T comparable] struct {
	settled   T
	next      T
	debouncer *Debouncer
	listeners []valueListener[T]
	nextID    int
}

type valueListener[T any] struct {
	id int
	fn func(T)
}

// NewValue creates a debounced value holding initial.
func NewValue[T comparable](initial T, delay time.Duration) *Value[T] {
	v := &Value[T]{settled: initial, next: initial}
	v.debouncer = New(delay, v.settle)
	return v
}

// Value returns the last settled value.
func (v *Value[T]) Value() T {
	return v.settled
}

// Set records an update. It is published after the quiet period.
func (v *Value[T]) Set(value T) {
	v.next = value
	v.debouncer.Trigger()
}

// AddListener registers fn to receive settled values.
// Returns a function that removes the listener.
func (v *Value[T]) AddListener(fn func(T)) func() {
	id := v.nextID
	v.nextID++
	v.listeners = append(v.listeners, valueListener[T]{id: id, fn: fn})
	return func() {
		for i, l := range v.listeners {
			if l.id == id {
				v.listeners = append(v.listeners[:i:i], v.listeners[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (v *Value[T]) ListenerCount() int {
	return len(v.listeners)
}

// Dispose cancels any pending update.
func (v *Value[T]) Dispose() {
	v.debouncer.Stop()
}

func (v *Value[T]) settle() {
	if v.next == v.settled {
		return
	}
	v.settled = v.next
	listeners := append([]valueListener[T](nil), v.listeners...)
	for _, l := range listeners {
		l.fn(v.settled)
	}
}

package observe

import "github.com/go-drift/inview/pkg/intersect"

// Ref holds an element handle that may not be mounted yet.
// The host sets it when the element mounts and clears it on unmount.
type Ref struct {
	current intersect.Target
}

// NewRef creates a ref holding target, which may be nil.
func NewRef(target intersect.Target) *Ref {
	return &Ref{current: target}
}

// Current returns the mounted element, or nil.
func (r *Ref) Current() intersect.Target {
	if r == nil {
		return nil
	}
	return r.current
}

// Set replaces the mounted element. Pass nil on unmount.
func (r *Ref) Set(target intersect.Target) {
	r.current = target
}

// Refs is a normalized, ordered target list. A Manager tracks Refs by
// pointer identity: build it once and pass the same value on every build
// unless the set of refs really changed.
type Refs struct {
	refs   []*Ref
	single bool
}

// One normalizes a single ref into a one-element list.
func One(ref *Ref) *Refs {
	return &Refs{refs: []*Ref{ref}, single: true}
}

// Many builds a list from several refs, preserving order.
func Many(refs ...*Ref) *Refs {
	return &Refs{refs: append([]*Ref(nil), refs...)}
}

// Len returns the number of refs. A nil list has length 0.
func (r *Refs) Len() int {
	if r == nil {
		return 0
	}
	return len(r.refs)
}

// At returns the ref at index i.
func (r *Refs) At(i int) *Ref {
	return r.refs[i]
}

// Single reports whether the list was built with One.
func (r *Refs) Single() bool {
	return r != nil && r.single
}

package observe

import (
	"reflect"
	"slices"

	"github.com/go-drift/inview/pkg/intersect"
)

// Reason says why a session ended.
type Reason int

const (
	// ReasonTargets means the target list identity changed.
	ReasonTargets Reason = iota
	// ReasonOptions means a field of the observation options changed.
	ReasonOptions
	// ReasonViewport means the debounced viewport size changed.
	ReasonViewport
	// ReasonInvalidators means an extra invalidator changed.
	ReasonInvalidators
	// ReasonTeardown means the manager was disposed.
	ReasonTeardown
)

func (r Reason) String() string {
	switch r {
	case ReasonTargets:
		return "targets"
	case ReasonOptions:
		return "options"
	case ReasonViewport:
		return "viewport"
	case ReasonInvalidators:
		return "invalidators"
	case ReasonTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// deps is the dependency set a session was created from.
type deps struct {
	refs         *Refs
	options      intersect.Options
	invalidators []any
}

func newDeps(refs *Refs, options intersect.Options, invalidators []any) deps {
	options.Threshold = slices.Clone(options.Threshold)
	return deps{
		refs:         refs,
		options:      options,
		invalidators: slices.Clone(invalidators),
	}
}

// diff reports the first dependency that differs from d, if any.
func (d deps) diff(refs *Refs, options intersect.Options, invalidators []any) (Reason, bool) {
	if d.refs != refs {
		return ReasonTargets, true
	}
	if !d.options.Equal(options) {
		return ReasonOptions, true
	}
	if !slices.EqualFunc(d.invalidators, invalidators, sameValue) {
		return ReasonInvalidators, true
	}
	return 0, false
}

// sameValue compares comparable values with == and everything else with
// reflect.DeepEqual. Func values are never equal unless both nil.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// Package intersect defines the contract of the platform's visibility
// watcher and ships an in-process software implementation of it.
//
// A watcher is created with a Callback and Options, then targets are
// registered with Observe. Whenever the intersection of a registered target
// with the root region crosses one of the configured thresholds, the watcher
// delivers a batch of entries. A batch reports only the targets that changed,
// never necessarily all of them.
//
//	obs, err := platform.NewObserver(func(entries []intersect.Entry) {
//	    for _, e := range entries {
//	        fmt.Println(e.Target, e.IsIntersecting)
//	    }
//	}, intersect.Options{Threshold: []float64{0, 1}})
//	obs.Observe(el)
//	defer obs.Disconnect()
package intersect

import (
	"slices"
	"time"

	"github.com/go-drift/inview/pkg/errors"
	"github.com/go-drift/inview/pkg/geometry"
)

// Target is an opaque handle to an observable element. Targets are compared
// with ==, which panics if a target's dynamic type is not comparable (a
// slice, map or func). Use pointers.
type Target = any

// Entry is one visibility result for a single target.
type Entry struct {
	Target             Target
	IsIntersecting     bool
	IntersectionRatio  float64
	BoundingClientRect geometry.Rect
	IntersectionRect   geometry.Rect
	RootBounds         geometry.Rect
	Time               time.Time
}

// Callback receives a batch of entries for a subset of the registered targets.
type Callback func(entries []Entry)

// Observer is a live watcher instance.
type Observer interface {
	// Observe registers a target. Registering a target twice is a no-op.
	Observe(target Target)
	// Unobserve stops reporting a target.
	Unobserve(target Target)
	// Disconnect stops reporting every target. No callback fires afterwards.
	Disconnect()
}

// Platform creates watchers.
type Platform interface {
	// Available reports whether the platform can watch visibility at all.
	// Headless environments return false.
	Available() bool
	// NewObserver creates a watcher delivering batches to cb.
	NewObserver(cb Callback, opts Options) (Observer, error)
}

// DefaultThreshold is used when Options.Threshold is empty.
const DefaultThreshold = 1.0

// Options configures one watcher.
type Options struct {
	// Threshold lists the intersection ratios at which to notify.
	// Empty means [DefaultThreshold].
	Threshold []float64
	// Root is the ancestor whose bounds act as the viewport. Nil means the
	// top-level viewport.
	Root Target
	// RootMargin grows or shrinks the root bounds, CSS margin style
	// (e.g. "10px 20%").
	RootMargin string
}

// Thresholds returns the sorted, de-duplicated thresholds with the default applied.
func (o Options) Thresholds() []float64 {
	if len(o.Threshold) == 0 {
		return []float64{DefaultThreshold}
	}
	out := slices.Clone(o.Threshold)
	slices.Sort(out)
	return slices.Compact(out)
}

// Validate checks the thresholds and root margin.
func (o Options) Validate() error {
	for _, t := range o.Threshold {
		if t < 0 || t > 1 || t != t {
			return &errors.Error{
				Op:   "intersect.Options.Validate",
				Kind: errors.KindConfig,
				Err: &errors.ParseError{
					Field:  "threshold",
					Input:  formatFloat(t),
					Reason: "must be within [0, 1]",
				},
			}
		}
	}
	if _, err := ParseRootMargin(o.RootMargin); err != nil {
		return err
	}
	return nil
}

// Equal compares options by value. Thresholds are compared after
// normalization, so nil and [1] are equal; roots are compared by identity.
func (o Options) Equal(other Options) bool {
	return o.Root == other.Root &&
		o.RootMargin == other.RootMargin &&
		slices.Equal(o.Thresholds(), other.Thresholds())
}

// thresholdIndex returns the number of thresholds the ratio has reached.
func thresholdIndex(thresholds []float64, ratio float64) int {
	for i, t := range thresholds {
		if ratio < t {
			return i
		}
	}
	return len(thresholds)
}

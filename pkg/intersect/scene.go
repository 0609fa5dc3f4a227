package intersect

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-drift/inview/pkg/clock"
	"github.com/go-drift/inview/pkg/errors"
	"github.com/go-drift/inview/pkg/geometry"
)

// Element is a rectangle placed in a Scene, in content coordinates.
type Element struct {
	name     string
	bounds   geometry.Rect
	attached bool
}

// Name returns the element's label.
func (e *Element) Name() string { return e.name }

// Bounds returns the element's rectangle in content coordinates.
func (e *Element) Bounds() geometry.Rect { return e.bounds }

// Attached reports whether the element is part of the scene.
func (e *Element) Attached() bool { return e.attached }

func (e *Element) String() string { return e.name }

// Scene is a software Platform. It lays out nothing itself: callers place
// elements, scroll and resize the viewport, then call Flush to deliver the
// resulting threshold crossings to every live observer.
//
// Scene is NOT thread-safe. Like the native watcher it stands in for, it
// must only be driven from the UI thread.
type Scene struct {
	viewport  geometry.Size
	scroll    geometry.Offset
	elements  []*Element
	observers []*sceneObserver
	flushing  bool
	dirty     bool
}

// NewScene creates a scene with the given viewport size and no scroll offset.
func NewScene(viewport geometry.Size) *Scene {
	return &Scene{viewport: viewport}
}

// Available always returns true.
func (s *Scene) Available() bool { return true }

// NewObserver creates a watcher bound to this scene.
func (s *Scene) NewObserver(cb Callback, opts Options) (Observer, error) {
	if cb == nil {
		return nil, &errors.Error{
			Op:   "intersect.Scene.NewObserver",
			Kind: errors.KindConfig,
			Err:  fmt.Errorf("callback is nil"),
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	margin, _ := ParseRootMargin(opts.RootMargin)

	var root *Element
	if opts.Root != nil {
		el, ok := opts.Root.(*Element)
		if !ok || !slices.Contains(s.elements, el) {
			return nil, &errors.Error{
				Op:   "intersect.Scene.NewObserver",
				Kind: errors.KindConfig,
				Err:  fmt.Errorf("root %v is not an element of this scene", opts.Root),
			}
		}
		root = el
	}

	o := &sceneObserver{
		scene:      s,
		cb:         cb,
		thresholds: opts.Thresholds(),
		root:       root,
		margin:     margin,
	}
	s.observers = append(s.observers, o)
	return o, nil
}

// Add places a new attached element.
func (s *Scene) Add(name string, bounds geometry.Rect) *Element {
	el := &Element{name: name, bounds: bounds, attached: true}
	s.elements = append(s.elements, el)
	return el
}

// Detach removes the element from the scene without forgetting it. Observed
// detached elements report as not intersecting.
func (s *Scene) Detach(el *Element) { el.attached = false }

// Attach puts a detached element back.
func (s *Scene) Attach(el *Element) { el.attached = true }

// Move changes an element's bounds.
func (s *Scene) Move(el *Element, bounds geometry.Rect) { el.bounds = bounds }

// ScrollTo sets the absolute scroll offset.
func (s *Scene) ScrollTo(offset geometry.Offset) { s.scroll = offset }

// ScrollBy adjusts the scroll offset by a delta.
func (s *Scene) ScrollBy(dx, dy float64) {
	s.scroll = geometry.Offset{X: s.scroll.X + dx, Y: s.scroll.Y + dy}
}

// Resize changes the viewport size.
func (s *Scene) Resize(size geometry.Size) { s.viewport = size }

// Viewport returns the viewport size.
func (s *Scene) Viewport() geometry.Size { return s.viewport }

// Offset returns the scroll offset.
func (s *Scene) Offset() geometry.Offset { return s.scroll }

// ObserverCount returns the number of connected observers.
func (s *Scene) ObserverCount() int { return len(s.observers) }

// Flush computes intersections for every connected observer and delivers a
// batch to each one with changes. Calls made while a flush is running (from
// inside a callback) are folded into another pass of the same flush, so
// delivery stays serialized.
func (s *Scene) Flush() {
	if s.flushing {
		s.dirty = true
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	for {
		s.dirty = false
		now := clock.Now()
		for _, o := range slices.Clone(s.observers) {
			if o.disconnected {
				continue
			}
			if batch := o.collect(now); len(batch) > 0 {
				o.cb(batch)
			}
		}
		if !s.dirty {
			return
		}
	}
}

func (s *Scene) removeObserver(o *sceneObserver) {
	s.observers = slices.DeleteFunc(s.observers, func(x *sceneObserver) bool { return x == o })
}

// viewportRect translates content coordinates to viewport coordinates.
func (s *Scene) viewportRect(r geometry.Rect) geometry.Rect {
	return r.Translate(-s.scroll.X, -s.scroll.Y)
}

type observation struct {
	el           *Element
	delivered    bool
	index        int
	intersecting bool
}

type sceneObserver struct {
	scene        *Scene
	cb           Callback
	thresholds   []float64
	root         *Element
	margin       Margin
	targets      []*observation
	disconnected bool
}

func (o *sceneObserver) Observe(target Target) {
	if o.disconnected {
		return
	}
	el, ok := target.(*Element)
	if !ok {
		errors.Report(&errors.Error{
			Op:   "intersect.Scene.Observe",
			Kind: errors.KindPlatform,
			Err:  fmt.Errorf("target %T is not a scene element", target),
		})
		return
	}
	if o.find(el) >= 0 {
		return
	}
	o.targets = append(o.targets, &observation{el: el})
}

func (o *sceneObserver) Unobserve(target Target) {
	el, ok := target.(*Element)
	if !ok {
		return
	}
	if i := o.find(el); i >= 0 {
		o.targets = slices.Delete(o.targets, i, i+1)
	}
}

func (o *sceneObserver) Disconnect() {
	if o.disconnected {
		return
	}
	o.disconnected = true
	o.targets = nil
	o.scene.removeObserver(o)
}

func (o *sceneObserver) find(el *Element) int {
	return slices.IndexFunc(o.targets, func(obs *observation) bool { return obs.el == el })
}

func (o *sceneObserver) rootBounds() (geometry.Rect, bool) {
	var root geometry.Rect
	if o.root == nil {
		root = geometry.RectFromSize(o.scene.viewport)
	} else {
		if !o.root.attached {
			return geometry.Rect{}, false
		}
		root = o.scene.viewportRect(o.root.bounds)
	}
	return root.Inflate(o.margin.Insets(root)), true
}

// collect returns entries for targets whose threshold index or
// intersecting state changed since the last delivery. A target's first
// computation is always delivered.
func (o *sceneObserver) collect(now time.Time) []Entry {
	root, rootOK := o.rootBounds()
	var batch []Entry
	for _, obs := range o.targets {
		entry := o.compute(obs.el, root, rootOK, now)
		index := thresholdIndex(o.thresholds, entry.IntersectionRatio)
		if obs.delivered && index == obs.index && entry.IsIntersecting == obs.intersecting {
			continue
		}
		obs.delivered = true
		obs.index = index
		obs.intersecting = entry.IsIntersecting
		batch = append(batch, entry)
	}
	return batch
}

func (o *sceneObserver) compute(el *Element, root geometry.Rect, rootOK bool, now time.Time) Entry {
	entry := Entry{Target: el, RootBounds: root, Time: now}
	if !el.attached || !rootOK {
		return entry
	}

	target := o.scene.viewportRect(el.bounds)
	entry.BoundingClientRect = target

	inter, touching := target.Intersect(root)
	if !touching {
		return entry
	}
	entry.IsIntersecting = true
	entry.IntersectionRect = inter
	if area := target.Area(); area > 0 {
		entry.IntersectionRatio = inter.Area() / area
	} else {
		entry.IntersectionRatio = 1
	}
	return entry
}

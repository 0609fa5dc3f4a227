package core

import (
	"testing"

	"github.com/go-drift/inview/pkg/debounce"
	"github.com/go-drift/inview/pkg/geometry"
	"github.com/go-drift/inview/pkg/intersect"
	"github.com/go-drift/inview/pkg/observe"
	fake "github.com/go-drift/inview/pkg/testing"
	"github.com/go-drift/inview/pkg/viewport"
	"github.com/go-drift/inview/pkg/visibility"
)

type mockDisposable struct {
	disposed bool
}

func (m *mockDisposable) Dispose() {
	m.disposed = true
}

type lazyImageState struct {
	StateBase
	ref     *observe.Ref
	refs    *observe.Refs
	visible *visibility.Tracker
	builds  int
}

func (s *lazyImageState) build() {
	s.builds++
	s.visible.Observe(s.refs, visibility.Options{Once: true})
}

func TestUseController(t *testing.T) {
	base := &StateBase{}

	controller := UseController(base, func() *mockDisposable {
		return &mockDisposable{}
	})

	if controller.disposed {
		t.Error("Controller should not be disposed initially")
	}

	base.Dispose()

	if !controller.disposed {
		t.Error("Controller should be disposed when StateBase is disposed")
	}
}

func TestUseIsIntersecting_RebuildsOnChange(t *testing.T) {
	scene := intersect.NewScene(geometry.Size{Width: 100, Height: 100})
	el := scene.Add("image", geometry.RectFromLTWH(0, 300, 100, 100))

	s := &lazyImageState{}
	s.SetRebuild(s.build)
	s.ref = observe.NewRef(el)
	s.refs = observe.One(s.ref)
	s.visible = UseIsIntersecting(s, scene)
	s.build()

	scene.Flush()
	if s.builds != 1 {
		t.Errorf("builds = %d, want 1 (nothing intersecting yet)", s.builds)
	}

	scene.ScrollTo(geometry.Offset{Y: 300})
	scene.Flush()
	if !s.visible.Value() {
		t.Fatal("image should be visible")
	}
	if s.builds != 2 {
		t.Errorf("builds = %d, want 2", s.builds)
	}
	if scene.ObserverCount() != 1 {
		t.Errorf("rebuild recreated the watcher: %d observers", scene.ObserverCount())
	}

	s.Dispose()
	if scene.ObserverCount() != 0 {
		t.Error("disposing the state should disconnect the watcher")
	}

	scene.ScrollTo(geometry.Offset{})
	scene.Flush()
	if s.builds != 2 {
		t.Errorf("rebuilt after dispose: builds = %d", s.builds)
	}
}

func TestUseOnIntersecting_DisposerRunsOnDispose(t *testing.T) {
	platform := fake.NewFakePlatform()
	target := &fake.FakeTarget{Name: "a"}
	base := &StateBase{}

	manager := UseOnIntersecting(base, platform)
	disposed := 0
	manager.Observe(observe.One(observe.NewRef(target)), func([]*intersect.Entry, bool) observe.Disposer {
		return func() { disposed++ }
	}, intersect.Options{})
	platform.Last().Emit(fake.Entry(target, true))

	base.Dispose()
	if disposed != 1 {
		t.Errorf("disposed = %d, want 1", disposed)
	}
	if !platform.Last().Disconnected() {
		t.Error("watcher should be disconnected")
	}
}

func TestStateBase_DisposersRunInReverse(t *testing.T) {
	base := &StateBase{}
	var order []int
	base.OnDispose(func() { order = append(order, 1) })
	remove := base.OnDispose(func() { order = append(order, 2) })
	base.OnDispose(func() { order = append(order, 3) })
	remove()

	base.Dispose()
	base.Dispose()

	if len(order) != 2 || order[0] != 3 || order[1] != 1 {
		t.Errorf("order = %v, want [3 1]", order)
	}
	if !base.IsDisposed() {
		t.Error("IsDisposed() = false")
	}

	ran := false
	base.OnDispose(func() { ran = true })
	if !ran {
		t.Error("OnDispose after disposal should run immediately")
	}
}

func TestStateBase_SetStateAfterDispose(t *testing.T) {
	base := &StateBase{}
	rebuilds := 0
	base.SetRebuild(func() { rebuilds++ })

	base.SetState(nil)
	base.Dispose()
	base.SetState(func() { t.Error("fn should not run after dispose") })

	if rebuilds != 1 {
		t.Errorf("rebuilds = %d, want 1", rebuilds)
	}
}

func TestUseOnIntersecting_FollowsWindowSize(t *testing.T) {
	initial := viewport.Window.Size()
	t.Cleanup(func() { viewport.Window.SetSize(initial) })

	platform := fake.NewFakePlatform()
	target := &fake.FakeTarget{Name: "a"}
	base := &StateBase{}

	manager := UseOnIntersecting(base, platform)
	var resized []bool
	manager.Observe(observe.One(observe.NewRef(target)), func(_ []*intersect.Entry, didResize bool) observe.Disposer {
		resized = append(resized, didResize)
		return nil
	}, intersect.Options{})

	viewport.Window.SetSize(geometry.Size{Width: initial.Width + 320, Height: initial.Height + 480})
	debounce.StepAll()

	observers := platform.Observers()
	if len(observers) != 2 {
		t.Fatalf("observers = %d, want 2 after a window resize", len(observers))
	}
	if !observers[0].Disconnected() {
		t.Error("the watcher from before the resize should be disconnected")
	}
	platform.Last().Emit(fake.Entry(target, true))
	if len(resized) != 1 || !resized[0] {
		t.Errorf("didResize = %v, want [true]", resized)
	}

	base.Dispose()
	viewport.Window.SetSize(initial)
	debounce.StepAll()
	if n := len(platform.Observers()); n != 2 {
		t.Errorf("disposed state still follows the window: %d observers", n)
	}
}

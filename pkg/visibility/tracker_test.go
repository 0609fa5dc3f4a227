package visibility

import (
	"slices"
	"testing"

	"github.com/go-drift/inview/pkg/geometry"
	"github.com/go-drift/inview/pkg/intersect"
	"github.com/go-drift/inview/pkg/observe"
	fake "github.com/go-drift/inview/pkg/testing"
)

type emissions struct {
	values  [][]bool
	results []Result
}

func (e *emissions) listen(v []bool) { e.values = append(e.values, v) }

func (e *emissions) recorder(r Result) { e.results = append(e.results, r) }

func newTracker(platform intersect.Platform, em *emissions) *Tracker {
	t := New(observe.New(platform), WithRecorder(em.recorder))
	t.AddListener(em.listen)
	return t
}

func TestTracker_SingleTargetScrollInAndOut(t *testing.T) {
	scene := intersect.NewScene(geometry.Size{Width: 100, Height: 100})
	el := scene.Add("hero", geometry.RectFromLTWH(0, 200, 100, 50))
	refs := observe.One(observe.NewRef(el))

	var em emissions
	tracker := newTracker(scene, &em)
	defer tracker.Dispose()
	tracker.Observe(refs, Options{})

	scene.Flush()
	if tracker.Value() {
		t.Fatal("element below the fold reported visible")
	}

	scene.ScrollTo(geometry.Offset{Y: 150})
	scene.Flush()
	if !tracker.Value() {
		t.Fatal("fully scrolled-in element should be visible")
	}

	scene.ScrollTo(geometry.Offset{Y: 0})
	scene.Flush()
	if tracker.Value() {
		t.Error("scrolled-out element should not be visible")
	}

	want := [][]bool{{false}, {true}, {false}}
	if !slices.EqualFunc(em.values, want, slices.Equal[[]bool]) {
		t.Errorf("emissions = %v, want %v", em.values, want)
	}
}

func TestTracker_OnceLatchesSingleTarget(t *testing.T) {
	scene := intersect.NewScene(geometry.Size{Width: 100, Height: 100})
	el := scene.Add("hero", geometry.RectFromLTWH(0, 200, 100, 50))
	refs := observe.One(observe.NewRef(el))

	var em emissions
	tracker := newTracker(scene, &em)
	defer tracker.Dispose()
	tracker.Observe(refs, Options{Once: true})

	scene.Flush()
	scene.ScrollTo(geometry.Offset{Y: 150})
	scene.Flush()
	scene.ScrollTo(geometry.Offset{Y: 0})
	scene.Flush()

	if !tracker.Value() {
		t.Error("once-latched value reverted to false")
	}
	if len(em.values) != 1 || !em.values[0][0] {
		t.Errorf("emissions = %v, want [[true]]", em.values)
	}
	wantResults := []Result{ResultLatched, ResultEmitted, ResultLatched}
	if !slices.Equal(em.results, wantResults) {
		t.Errorf("results = %v, want %v", em.results, wantResults)
	}
}

func TestTracker_SuppressesEqualValues(t *testing.T) {
	platform := fake.NewFakePlatform()
	a, b := &fake.FakeTarget{Name: "a"}, &fake.FakeTarget{Name: "b"}

	var em emissions
	tracker := newTracker(platform, &em)
	defer tracker.Dispose()
	tracker.Observe(observe.Many(observe.NewRef(a), observe.NewRef(b)), Options{})

	obs := platform.Last()
	obs.Emit(fake.Entry(a, true), fake.Entry(b, false))
	obs.Emit(fake.Entry(a, true))
	obs.Emit(fake.Entry(b, false))

	if len(em.values) != 1 {
		t.Errorf("emitted %d times, want 1: %v", len(em.values), em.values)
	}
	wantResults := []Result{ResultEmitted, ResultSuppressed, ResultSuppressed}
	if !slices.Equal(em.results, wantResults) {
		t.Errorf("results = %v, want %v", em.results, wantResults)
	}
}

func TestTracker_PartialBatchKeepsOtherSlot(t *testing.T) {
	platform := fake.NewFakePlatform()
	a, b := &fake.FakeTarget{Name: "a"}, &fake.FakeTarget{Name: "b"}

	tracker := New(observe.New(platform))
	defer tracker.Dispose()
	tracker.Observe(observe.Many(observe.NewRef(a), observe.NewRef(b)), Options{})

	obs := platform.Last()
	obs.Emit(fake.Entry(a, false), fake.Entry(b, true))
	obs.Emit(fake.Entry(a, true))

	if got := tracker.Values(); !slices.Equal(got, []bool{true, true}) {
		t.Errorf("Values() = %v, want [true true]", got)
	}
}

func TestTracker_UnreportedTargetIsFalse(t *testing.T) {
	platform := fake.NewFakePlatform()
	a, b := &fake.FakeTarget{Name: "a"}, &fake.FakeTarget{Name: "b"}

	tracker := New(observe.New(platform))
	defer tracker.Dispose()
	tracker.Observe(observe.Many(observe.NewRef(a), observe.NewRef(b)), Options{})

	if got := tracker.Values(); !slices.Equal(got, []bool{false, false}) {
		t.Errorf("Values() before any batch = %v", got)
	}

	platform.Last().Emit(fake.Entry(a, true))
	if got := tracker.Values(); !slices.Equal(got, []bool{true, false}) {
		t.Errorf("Values() = %v, want [true false]", got)
	}
}

func TestTracker_OnceIsWholeBatch(t *testing.T) {
	platform := fake.NewFakePlatform()
	a, b := &fake.FakeTarget{Name: "a"}, &fake.FakeTarget{Name: "b"}

	tracker := New(observe.New(platform))
	defer tracker.Dispose()
	tracker.Observe(observe.Many(observe.NewRef(a), observe.NewRef(b)), Options{Once: true})

	obs := platform.Last()
	obs.Emit(fake.Entry(a, true), fake.Entry(b, false))
	obs.Emit(fake.Entry(a, false))
	if got := tracker.Values(); !slices.Equal(got, []bool{true, false}) {
		t.Fatalf("batch with nothing intersecting should be ignored, got %v", got)
	}

	// b becoming visible keeps the batch live, so a's latch does not hold.
	obs.Emit(fake.Entry(b, true))
	if got := tracker.Values(); !slices.Equal(got, []bool{false, true}) {
		t.Errorf("Values() = %v, want [false true]", got)
	}
}

func TestTracker_TargetListChangeResetsValues(t *testing.T) {
	platform := fake.NewFakePlatform()
	a, b := &fake.FakeTarget{Name: "a"}, &fake.FakeTarget{Name: "b"}
	refA := observe.NewRef(a)

	tracker := New(observe.New(platform))
	defer tracker.Dispose()
	tracker.Observe(observe.One(refA), Options{})
	platform.Last().Emit(fake.Entry(a, true))

	tracker.Observe(observe.Many(refA, observe.NewRef(b)), Options{})
	if got := tracker.Values(); !slices.Equal(got, []bool{false, false}) {
		t.Errorf("Values() after list change = %v, want [false false]", got)
	}

	platform.Last().Emit(fake.Entry(b, true))
	if got := tracker.Values(); !slices.Equal(got, []bool{false, true}) {
		t.Errorf("Values() = %v, want [false true]", got)
	}
}

func TestTracker_Headless(t *testing.T) {
	tracker := New(observe.New(intersect.Unavailable))
	defer tracker.Dispose()
	tracker.Observe(observe.Many(observe.NewRef(&fake.FakeTarget{}), observe.NewRef(nil)), Options{})

	if got := tracker.Values(); !slices.Equal(got, []bool{false, false}) {
		t.Errorf("Values() = %v, want all false", got)
	}
	if tracker.Value() {
		t.Error("Value() = true in a headless environment")
	}
}

func TestTracker_ValuesAreCopies(t *testing.T) {
	platform := fake.NewFakePlatform()
	a := &fake.FakeTarget{Name: "a"}

	tracker := New(observe.New(platform))
	defer tracker.Dispose()
	tracker.AddListener(func(v []bool) { v[0] = false })
	tracker.Observe(observe.One(observe.NewRef(a)), Options{})
	platform.Last().Emit(fake.Entry(a, true))

	values := tracker.Values()
	values[0] = false
	if !tracker.Value() {
		t.Error("callers mutated the tracker's state")
	}
}

func TestTracker_RemoveListenerAndDispose(t *testing.T) {
	platform := fake.NewFakePlatform()
	a := &fake.FakeTarget{Name: "a"}

	calls := 0
	tracker := New(observe.New(platform))
	remove := tracker.AddListener(func([]bool) { calls++ })
	tracker.Observe(observe.One(observe.NewRef(a)), Options{})
	obs := platform.Last()

	obs.Emit(fake.Entry(a, true))
	remove()
	obs.Emit(fake.Entry(a, false))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	tracker.Dispose()
	if !obs.Disconnected() {
		t.Error("Dispose should disconnect the watcher")
	}
}

func TestResultString(t *testing.T) {
	for r, want := range map[Result]string{
		ResultEmitted:    "emitted",
		ResultSuppressed: "suppressed",
		ResultLatched:    "latched",
		Result(9):        "unknown",
	} {
		if got := r.String(); got != want {
			t.Errorf("Result(%d).String() = %q, want %q", int(r), got, want)
		}
	}
}

package testing

import (
	"errors"
	"testing"

	"github.com/go-drift/inview/pkg/intersect"
)

func TestFakePlatform_RecordsObservers(t *testing.T) {
	p := NewFakePlatform()
	a, b := &FakeTarget{Name: "a"}, &FakeTarget{Name: "b"}

	var got [][]intersect.Entry
	obs, err := p.NewObserver(func(e []intersect.Entry) { got = append(got, e) }, intersect.Options{RootMargin: "10px"})
	if err != nil {
		t.Fatal(err)
	}
	obs.Observe(a)
	obs.Observe(b)
	obs.Observe(a)

	fake := p.Last()
	if fake.Options.RootMargin != "10px" {
		t.Errorf("Options.RootMargin = %q", fake.Options.RootMargin)
	}
	if n := len(fake.Targets()); n != 2 {
		t.Errorf("Targets() has %d entries, want 2", n)
	}

	fake.Unobserve(a)
	if ts := fake.Targets(); len(ts) != 1 || ts[0] != b {
		t.Errorf("Targets() after Unobserve = %v", ts)
	}

	fake.Emit(Entry(b, true))
	if len(got) != 1 || !got[0][0].IsIntersecting {
		t.Errorf("Emit delivered %v", got)
	}

	fake.Disconnect()
	fake.Emit(Entry(b, false))
	if len(got) != 1 {
		t.Error("disconnected observer must not deliver")
	}
	if len(p.Live()) != 0 {
		t.Errorf("Live() = %d observers, want 0", len(p.Live()))
	}
}

func TestFakePlatform_ErrAndAvailability(t *testing.T) {
	p := NewFakePlatform()
	if !p.Available() {
		t.Error("fake platform should be available by default")
	}
	p.Unavailable = true
	if p.Available() {
		t.Error("Unavailable should be honored")
	}

	p.Err = errors.New("boom")
	if _, err := p.NewObserver(func([]intersect.Entry) {}, intersect.Options{}); err == nil {
		t.Error("expected Err to be returned")
	}
	if p.Last() != nil {
		t.Error("failed creation should not record an observer")
	}
}

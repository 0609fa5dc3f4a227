package intersect

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/go-drift/inview/pkg/errors"
)

func TestOptions_Thresholds(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"default", nil, []float64{1}},
		{"sorted", []float64{1, 0, 0.5}, []float64{0, 0.5, 1}},
		{"deduplicated", []float64{0.5, 0.5, 0}, []float64{0, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := slices.Clone(tt.in)
			got := Options{Threshold: in}.Thresholds()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Thresholds() = %v, want %v", got, tt.want)
			}
			if !slices.Equal(in, tt.in) {
				t.Errorf("Thresholds() mutated its input: %v", in)
			}
		})
	}
}

func TestOptions_Equal(t *testing.T) {
	root := &Element{name: "root"}
	other := &Element{name: "other"}

	tests := []struct {
		name string
		a, b Options
		want bool
	}{
		{"zero values", Options{}, Options{}, true},
		{"default threshold", Options{}, Options{Threshold: []float64{1}}, true},
		{"same values new slice", Options{Threshold: []float64{0, 1}}, Options{Threshold: []float64{0, 1}}, true},
		{"different threshold", Options{Threshold: []float64{0}}, Options{Threshold: []float64{1}}, false},
		{"same root", Options{Root: root}, Options{Root: root}, true},
		{"different root", Options{Root: root}, Options{Root: other}, false},
		{"different margin", Options{RootMargin: "10px"}, Options{RootMargin: "20px"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	if err := (Options{Threshold: []float64{0, 0.5, 1}, RootMargin: "10px"}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	err := Options{Threshold: []float64{1.5}}.Validate()
	var ierr *errors.Error
	if !stderrors.As(err, &ierr) {
		t.Fatalf("Validate() = %v, want *errors.Error", err)
	}
	if ierr.Kind != errors.KindConfig {
		t.Errorf("Kind = %v, want %v", ierr.Kind, errors.KindConfig)
	}

	if err := (Options{RootMargin: "1em"}).Validate(); err == nil {
		t.Error("expected invalid margin to fail validation")
	}
}

func TestThresholdIndex(t *testing.T) {
	thresholds := []float64{0, 0.5, 1}
	tests := []struct {
		ratio float64
		want  int
	}{
		{0, 1},
		{0.25, 1},
		{0.5, 2},
		{0.99, 2},
		{1, 3},
	}
	for _, tt := range tests {
		if got := thresholdIndex(thresholds, tt.ratio); got != tt.want {
			t.Errorf("thresholdIndex(%v) = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}

func TestUnavailable(t *testing.T) {
	if Unavailable.Available() {
		t.Error("Unavailable.Available() = true")
	}
	obs, err := Unavailable.NewObserver(func([]Entry) {}, Options{})
	if obs != nil {
		t.Error("expected no observer")
	}
	if !stderrors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestTarget_ComparedByIdentity(t *testing.T) {
	a := &Element{name: "card"}
	b := &Element{name: "card"}
	var ta, tb, again Target = a, b, a
	if ta == tb {
		t.Error("distinct elements with the same name should differ")
	}
	if ta != again {
		t.Error("the same element should compare equal")
	}

	type handle struct{ id int }
	if Target(handle{1}) != Target(handle{1}) {
		t.Error("comparable value targets should compare by value")
	}
}

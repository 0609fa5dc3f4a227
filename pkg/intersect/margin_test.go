package intersect

import (
	"testing"

	"github.com/go-drift/inview/pkg/geometry"
)

func TestParseRootMargin(t *testing.T) {
	px := func(v float64) Length { return Length{Value: v} }
	pct := func(v float64) Length { return Length{Value: v, Percent: true} }

	tests := []struct {
		in   string
		want Margin
	}{
		{"", Margin{}},
		{"0", Margin{}},
		{"10px", Margin{Top: px(10), Right: px(10), Bottom: px(10), Left: px(10)}},
		{"10px 20%", Margin{Top: px(10), Right: pct(20), Bottom: px(10), Left: pct(20)}},
		{"1px 2px 3px", Margin{Top: px(1), Right: px(2), Bottom: px(3), Left: px(2)}},
		{"1px 2px 3px 4px", Margin{Top: px(1), Right: px(2), Bottom: px(3), Left: px(4)}},
		{"-50px  0px", Margin{Top: px(-50), Right: px(0), Bottom: px(-50), Left: px(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRootMargin(tt.in)
			if err != nil {
				t.Fatalf("ParseRootMargin(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRootMargin(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRootMargin_Invalid(t *testing.T) {
	for _, in := range []string{"10", "10em", "px", "1px 2px 3px 4px 5px", "abc%"} {
		if _, err := ParseRootMargin(in); err == nil {
			t.Errorf("ParseRootMargin(%q) expected error", in)
		}
	}
}

func TestMargin_Insets(t *testing.T) {
	m, err := ParseRootMargin("10% 50px")
	if err != nil {
		t.Fatal(err)
	}
	got := m.Insets(geometry.RectFromLTWH(0, 0, 200, 400))
	want := geometry.EdgeInsets{Top: 40, Right: 50, Bottom: 40, Left: 50}
	if got != want {
		t.Errorf("Insets() = %+v, want %+v", got, want)
	}
}

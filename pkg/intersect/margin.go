package intersect

import (
	"strconv"
	"strings"

	"github.com/go-drift/inview/pkg/errors"
	"github.com/go-drift/inview/pkg/geometry"
)

// Length is a margin value in pixels or percent of the root size.
type Length struct {
	Value   float64
	Percent bool
}

func (l Length) resolve(basis float64) float64 {
	if l.Percent {
		return basis * l.Value / 100
	}
	return l.Value
}

// Margin is a parsed root margin.
type Margin struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

// Insets resolves the margin against the root bounds. Percentages of the
// top and bottom edges use the root height, left and right use the width.
func (m Margin) Insets(root geometry.Rect) geometry.EdgeInsets {
	return geometry.EdgeInsets{
		Top:    m.Top.resolve(root.Height()),
		Right:  m.Right.resolve(root.Width()),
		Bottom: m.Bottom.resolve(root.Height()),
		Left:   m.Left.resolve(root.Width()),
	}
}

// ParseRootMargin parses a CSS-style margin of one to four values, each in
// "px" or "%". A bare "0" is accepted. The empty string is a zero margin.
func ParseRootMargin(s string) (Margin, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Margin{}, nil
	}
	if len(fields) > 4 {
		return Margin{}, marginError(s, "expected at most 4 values")
	}

	values := make([]Length, len(fields))
	for i, f := range fields {
		l, ok := parseLength(f)
		if !ok {
			return Margin{}, marginError(s, "values must be in px or %")
		}
		values[i] = l
	}

	switch len(values) {
	case 1:
		return Margin{Top: values[0], Right: values[0], Bottom: values[0], Left: values[0]}, nil
	case 2:
		return Margin{Top: values[0], Right: values[1], Bottom: values[0], Left: values[1]}, nil
	case 3:
		return Margin{Top: values[0], Right: values[1], Bottom: values[2], Left: values[1]}, nil
	default:
		return Margin{Top: values[0], Right: values[1], Bottom: values[2], Left: values[3]}, nil
	}
}

func parseLength(f string) (Length, bool) {
	if f == "0" {
		return Length{}, true
	}
	var (
		num     string
		percent bool
	)
	switch {
	case strings.HasSuffix(f, "px"):
		num = strings.TrimSuffix(f, "px")
	case strings.HasSuffix(f, "%"):
		num = strings.TrimSuffix(f, "%")
		percent = true
	default:
		return Length{}, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: v, Percent: percent}, true
}

func marginError(input, reason string) error {
	return &errors.Error{
		Op:   "intersect.ParseRootMargin",
		Kind: errors.KindParsing,
		Err:  &errors.ParseError{Field: "rootMargin", Input: input, Reason: reason},
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

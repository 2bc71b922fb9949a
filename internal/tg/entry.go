package tg

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is one labeled span on the timeline. Invariant: Start < End.
// Intervals are immutable values; operations produce new ones.
type Interval struct {
	Start float64
	End   float64
	Label string
}

// NewInterval builds an Interval with a trimmed label.
// Returns a MalformedEntryError unless start < end.
func NewInterval(start, end float64, label string) (Interval, error) {
	if start >= end {
		return Interval{}, &MalformedEntryError{Start: start, End: end, Label: label}
	}
	return Interval{Start: start, End: end, Label: strings.TrimSpace(label)}, nil
}

// Span returns the interval's time range.
func (iv Interval) Span() Span {
	return Span{Start: iv.Start, End: iv.End}
}

// Duration returns End - Start.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// String renders the interval as (start, end, label).
func (iv Interval) String() string {
	return fmt.Sprintf("(%s, %s, %q)", formatTime(iv.Start), formatTime(iv.End), iv.Label)
}

// compareIntervals orders intervals by (Start, End, Label).
func compareIntervals(a, b Interval) int {
	switch {
	case a.Start < b.Start:
		return -1
	case a.Start > b.Start:
		return 1
	case a.End < b.End:
		return -1
	case a.End > b.End:
		return 1
	}
	return strings.Compare(a.Label, b.Label)
}

// Point is one labeled instant on the timeline.
type Point struct {
	Time  float64
	Label string
}

// NewPoint builds a Point with a trimmed label.
func NewPoint(time float64, label string) Point {
	return Point{Time: time, Label: strings.TrimSpace(label)}
}

// String renders the point as (time, label).
func (p Point) String() string {
	return fmt.Sprintf("(%s, %q)", formatTime(p.Time), p.Label)
}

// comparePoints orders points by (Time, Label).
func comparePoints(a, b Point) int {
	switch {
	case a.Time < b.Time:
		return -1
	case a.Time > b.Time:
		return 1
	}
	return strings.Compare(a.Label, b.Label)
}

// formatTime renders a timestamp in its shortest round-trip form.
func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}

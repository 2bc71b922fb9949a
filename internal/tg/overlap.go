package tg

// Span is a half-open time range used by the overlap oracle.
type Span struct {
	Start float64
	End   float64
}

// OverlapOptions tunes what counts as an overlap.
//
// Thresholds only ever add truthiness: they can turn a boundary touch or
// a marginal overlap into a positive answer, but they never veto a true
// base overlap.
type OverlapOptions struct {
	// PercentThreshold, when > 0, also reports an overlap when
	// overlapDuration / unionDuration >= PercentThreshold.
	PercentThreshold float64

	// TimeThreshold, when > 0, also reports an overlap when
	// overlapDuration > TimeThreshold.
	TimeThreshold float64

	// BoundaryInclusive counts two spans that merely touch (one's start
	// equals the other's end) as overlapping.
	BoundaryInclusive bool
}

// Overlaps decides whether two spans overlap.
//
// The base check is a strictly positive shared duration. The result is
// the logical OR of the base check, the boundary check, and the two
// threshold checks. Division by zero cannot occur: the union duration is
// positive whenever the base overlap holds.
func Overlaps(a, b Span, opts OverlapOptions) bool {
	overlap := min(a.End, b.End) - max(a.Start, b.Start)
	if overlap < 0 {
		overlap = 0
	}
	base := overlap > 0

	boundary := false
	if opts.BoundaryInclusive {
		boundary = a.Start == b.End || a.End == b.Start
	}

	percent := false
	if opts.PercentThreshold > 0 && base {
		union := max(a.End, b.End) - min(a.Start, b.Start)
		percent = overlap/union >= opts.PercentThreshold
	}

	timed := false
	if opts.TimeThreshold > 0 && base {
		timed = overlap > opts.TimeThreshold
	}

	return base || boundary || percent || timed
}

package tg

import (
	"regexp"
	"slices"
	"strings"

	"github.com/phonlab/tgkit/internal/diag"
)

// IntervalTier is an ordered container of labeled intervals.
type IntervalTier struct {
	name    string
	entries []Interval
	minTime float64
	maxTime float64
}

// NewIntervalTier builds an interval tier from a name and entries.
// Labels are trimmed; every entry must satisfy Start < End. A tier with
// no entries needs explicit bounds via WithBounds, otherwise construction
// fails with a timeless MalformedEntryError.
func NewIntervalTier(name string, entries []Interval, opts ...TierOption) (*IntervalTier, error) {
	var cfg tierConfig
	for _, o := range opts {
		o(&cfg)
	}

	cleaned := make([]Interval, 0, len(entries))
	for _, e := range entries {
		if e.Start >= e.End {
			return nil, &MalformedEntryError{Start: e.Start, End: e.End, Label: e.Label}
		}
		e.Label = strings.TrimSpace(e.Label)
		cleaned = append(cleaned, e)
	}

	if len(cleaned) == 0 && (cfg.minTime == nil || cfg.maxTime == nil) {
		return nil, &MalformedEntryError{Timeless: true}
	}

	var minTime, maxTime float64
	if len(cleaned) > 0 {
		minTime, maxTime = cleaned[0].Start, cleaned[0].End
		for _, e := range cleaned {
			minTime = min(minTime, e.Start)
			maxTime = max(maxTime, e.End)
		}
		// Explicit bounds only widen.
		if cfg.minTime != nil {
			minTime = min(minTime, *cfg.minTime)
		}
		if cfg.maxTime != nil {
			maxTime = max(maxTime, *cfg.maxTime)
		}
	} else {
		minTime, maxTime = *cfg.minTime, *cfg.maxTime
	}

	slices.SortFunc(cleaned, compareIntervals)
	return &IntervalTier{name: name, entries: cleaned, minTime: minTime, maxTime: maxTime}, nil
}

// newIntervalTier builds a tier from entries this package already
// validated. Bounds widen to cover every entry.
func newIntervalTier(name string, entries []Interval, minTime, maxTime float64) *IntervalTier {
	es := slices.Clone(entries)
	for _, e := range es {
		minTime = min(minTime, e.Start)
		maxTime = max(maxTime, e.End)
	}
	slices.SortFunc(es, compareIntervals)
	return &IntervalTier{name: name, entries: es, minTime: minTime, maxTime: maxTime}
}

// Name returns the tier name.
func (t *IntervalTier) Name() string { return t.name }

// Bounds returns the tier's min and max times.
func (t *IntervalTier) Bounds() (minTime, maxTime float64) { return t.minTime, t.maxTime }

// Len returns the number of entries.
func (t *IntervalTier) Len() int { return len(t.entries) }

// Entries returns a copy of the entry sequence in sorted order.
func (t *IntervalTier) Entries() []Interval { return slices.Clone(t.entries) }

// Duration returns the tier's time extent.
func (t *IntervalTier) Duration() float64 { return t.maxTime - t.minTime }

// Durations returns the duration of each entry in order.
func (t *IntervalTier) Durations() []float64 {
	ds := make([]float64, len(t.entries))
	for i, e := range t.entries {
		ds[i] = e.Duration()
	}
	return ds
}

func (t *IntervalTier) renamed(name string) Tier {
	return newIntervalTier(name, t.entries, t.minTime, t.maxTime)
}

// CropReport accounts for the information a crop discarded. Crop itself
// never consumes it; callers use it to report data loss.
type CropReport struct {
	// CutStart is the duration of the left-straddling entry that fell
	// before the crop window.
	CutStart float64

	// CutWithin accumulates the crop window's width once per straddling
	// entry dropped under strict mode. This is the literal accounting
	// rule of the reference behavior, not the trimmed duration.
	CutWithin float64

	// CutEnd is the duration of the right-straddling entry that fell
	// after the crop window.
	CutEnd float64

	// FirstKeptFraction is the kept proportion of the left-straddling entry.
	FirstKeptFraction float64

	// LastKeptFraction is the kept proportion of the right-straddling entry.
	LastKeptFraction float64
}

// Crop returns a new tier restricted to the window [start, end).
//
// Entries fully inside are kept as-is. With soft set, entries straddling
// one window edge are kept unchanged. With strict set, straddling and
// window-containing entries are dropped; otherwise they are truncated to
// the window. The new tier's explicit bounds are [0, end-start], widened
// as needed to cover kept entries (entries keep absolute positions).
func (t *IntervalTier) Crop(start, end float64, strict, soft bool) (*IntervalTier, CropReport) {
	var kept []Interval
	var rep CropReport

	for _, e := range t.entries {
		switch {
		case e.End <= start || e.Start >= end:
			// Fully outside, no accounting.

		case e.Start >= start && e.End <= end:
			kept = append(kept, e)

		case soft && (e.Start >= start || e.End <= end):
			// Soft crop stretches the window over single-edge straddlers.
			kept = append(kept, e)

		case e.Start >= start && e.End > end:
			// Straddles the right edge.
			rep.CutEnd = e.End - end
			rep.LastKeptFraction = (end - e.Start) / (e.End - e.Start)
			if !strict {
				kept = append(kept, Interval{Start: e.Start, End: end, Label: e.Label})
			} else {
				rep.CutWithin += end - start
			}

		case e.Start < start && e.End <= end:
			// Straddles the left edge.
			rep.CutStart = start - e.Start
			rep.FirstKeptFraction = (e.End - start) / (e.End - e.Start)
			if !strict {
				kept = append(kept, Interval{Start: start, End: e.End, Label: e.Label})
			} else {
				rep.CutWithin += end - start
			}

		default:
			// Contains the whole crop window.
			if !strict {
				kept = append(kept, Interval{Start: start, End: end, Label: e.Label})
			} else {
				rep.CutWithin += end - start
			}
		}
	}

	return newIntervalTier(t.name, kept, 0, end-start), rep
}

// Overlapping returns the entries overlapping [start, end) per the
// overlap oracle with default thresholds.
func (t *IntervalTier) Overlapping(start, end float64, boundaryInclusive bool) []Interval {
	target := Span{Start: start, End: end}
	var matches []Interval
	for _, e := range t.entries {
		if Overlaps(e.Span(), target, OverlapOptions{BoundaryInclusive: boundaryInclusive}) {
			matches = append(matches, e)
		}
	}
	return matches
}

// Insert returns a new tier with entry added, resolving collisions with
// existing overlapping entries per policy:
//
//   - Replace deletes every colliding entry, then adds the new one.
//   - Merge deletes every colliding entry and adds one fused entry
//     spanning all of them, labels joined with "-" in ascending-start order.
//   - Fail (or any unrecognized policy) returns a CollisionError and the
//     receiver is left untouched.
//
// When a collision is resolved and a reporter was supplied via
// WithCollisionReporter, a diagnostic event is emitted.
func (t *IntervalTier) Insert(entry Interval, policy CollisionPolicy, opts ...InsertOption) (*IntervalTier, error) {
	var cfg insertConfig
	for _, o := range opts {
		o(&cfg)
	}

	if entry.Start >= entry.End {
		return nil, &MalformedEntryError{Start: entry.Start, End: entry.End, Label: entry.Label}
	}
	entry.Label = strings.TrimSpace(entry.Label)

	matches := t.Overlapping(entry.Start, entry.End, false)
	if len(matches) == 0 {
		return newIntervalTier(t.name, append(t.Entries(), entry), t.minTime, t.maxTime), nil
	}

	var out *IntervalTier
	switch policy {
	case Replace:
		out = newIntervalTier(t.name, append(t.without(matches), entry), t.minTime, t.maxTime)
	case Merge:
		out = newIntervalTier(t.name, append(t.without(matches), fuseIntervals(matches, entry)), t.minTime, t.maxTime)
	default:
		return nil, &CollisionError{
			TierName:   t.name,
			Attempted:  entry.String(),
			Collisions: renderIntervals(matches),
		}
	}

	if cfg.reporter != nil {
		cfg.reporter.Collision(diag.NewEvent(t.name, "insert", string(policy), entry.String(), renderIntervals(matches)))
	}
	return out, nil
}

// fuseIntervals spans all matches plus the new entry, joining labels in
// ascending-start order.
func fuseIntervals(matches []Interval, entry Interval) Interval {
	all := append(slices.Clone(matches), entry)
	slices.SortFunc(all, compareIntervals)

	fused := Interval{Start: all[0].Start, End: all[0].End}
	labels := make([]string, len(all))
	for i, e := range all {
		fused.Start = min(fused.Start, e.Start)
		fused.End = max(fused.End, e.End)
		labels[i] = e.Label
	}
	fused.Label = strings.Join(labels, "-")
	return fused
}

// EraseInterval returns a new tier with the range [start, end) blanked.
//
// Categorical deletes every overlapping entry outright. Truncate deletes
// them and re-inserts at most two remnants: the part of the first
// overlapping entry left of the range and the part of the last one right
// of it, each only if non-empty. Any other action is a precondition
// error, but only when at least one entry overlaps; otherwise the call
// is a no-op.
func (t *IntervalTier) EraseInterval(start, end float64, action EraseAction) (*IntervalTier, error) {
	matches := t.Overlapping(start, end, false)
	if len(matches) == 0 {
		return newIntervalTier(t.name, t.entries, t.minTime, t.maxTime), nil
	}
	if action != Truncate && action != Categorical {
		return nil, precondition("eraseInterval",
			"unrecognized action %q with %d overlapping entries", action, len(matches))
	}

	kept := t.without(matches)
	if action == Truncate {
		first, last := matches[0], matches[len(matches)-1]
		if first.Start < start {
			kept = append(kept, Interval{Start: first.Start, End: start, Label: first.Label})
		}
		if last.End > end {
			kept = append(kept, Interval{Start: end, End: last.End, Label: last.Label})
		}
	}
	return newIntervalTier(t.name, kept, t.minTime, t.maxTime), nil
}

// EditTimestamps shifts every entry's start by startOffset and end by
// endOffset. Unless allowOvershoot is set, a shifted entry falling
// outside the tier's original bounds is a precondition error. Entries
// whose shifted end is not positive are dropped; negative shifted starts
// clamp to 0. The result's bounds still cover the original bounds.
func (t *IntervalTier) EditTimestamps(startOffset, endOffset float64, allowOvershoot bool) (*IntervalTier, error) {
	shifted := make([]Interval, 0, len(t.entries))
	for _, e := range t.entries {
		ns, ne := e.Start+startOffset, e.End+endOffset
		if !allowOvershoot && (ns < t.minTime || ne > t.maxTime) {
			return nil, precondition("editTimestamps",
				"entry %s shifted to (%s, %s) overshoots tier bounds [%s, %s]",
				e, formatTime(ns), formatTime(ne), formatTime(t.minTime), formatTime(t.maxTime))
		}
		if ne <= 0 {
			continue
		}
		if ns < 0 {
			ns = 0
		}
		if ns >= ne {
			return nil, &MalformedEntryError{Start: ns, End: ne, Label: e.Label}
		}
		shifted = append(shifted, Interval{Start: ns, End: ne, Label: e.Label})
	}
	return newIntervalTier(t.name, shifted, t.minTime, t.maxTime), nil
}

// GetNonEntries returns the complement of the entry coverage: gaps
// between consecutive entries, a leading gap when the first entry does
// not start at 0, and a trailing gap when the last entry does not reach
// maxTime. Zero-width gaps are omitted. An empty tier yields one gap
// spanning its bounds.
func (t *IntervalTier) GetNonEntries() []Interval {
	if len(t.entries) == 0 {
		return []Interval{{Start: t.minTime, End: t.maxTime}}
	}

	var gaps []Interval
	if first := t.entries[0]; first.Start > 0 {
		gaps = append(gaps, Interval{Start: 0, End: first.Start})
	}
	for i := 0; i < len(t.entries)-1; i++ {
		if t.entries[i].End < t.entries[i+1].Start {
			gaps = append(gaps, Interval{Start: t.entries[i].End, End: t.entries[i+1].Start})
		}
	}
	if last := t.entries[len(t.entries)-1]; last.End < t.maxTime {
		gaps = append(gaps, Interval{Start: last.End, End: t.maxTime})
	}
	return gaps
}

// FillGaps returns a new tier whose entries contiguously cover
// [startTime, endTime], inserting label-carrying entries into every gap.
// Serialization relies on this to write well-formed files. Idempotent.
func (t *IntervalTier) FillGaps(label string, startTime, endTime float64) *IntervalTier {
	if len(t.entries) == 0 {
		return newIntervalTier(t.name,
			[]Interval{{Start: startTime, End: endTime, Label: label}}, startTime, endTime)
	}

	filled := make([]Interval, 0, 2*len(t.entries)+1)
	if first := t.entries[0]; first.Start > startTime {
		filled = append(filled, Interval{Start: startTime, End: first.Start, Label: label})
	}
	prevEnd := t.entries[0].End
	filled = append(filled, t.entries[0])
	for _, e := range t.entries[1:] {
		if prevEnd < e.Start {
			filled = append(filled, Interval{Start: prevEnd, End: e.Start, Label: label})
		}
		filled = append(filled, e)
		prevEnd = e.End
	}
	if last := t.entries[len(t.entries)-1]; last.End < endTime {
		filled = append(filled, Interval{Start: last.End, End: endTime, Label: label})
	}
	return newIntervalTier(t.name, filled, startTime, endTime)
}

// Manipulate re-times the tier: for each entry, mod decides a new span
// for its duration, except entries with silence labels ("" or "sp") or
// rejected by filter, which keep their original span. The decided spans
// are then laid out back-to-back starting at 0, preserving durations and
// labels but discarding absolute placement. A nil filter accepts all
// labels.
func (t *IntervalTier) Manipulate(mod func(start, end float64) (newStart, newEnd float64), filter func(label string) bool) *IntervalTier {
	spans := make([]Interval, 0, len(t.entries))
	for _, e := range t.entries {
		ns, ne := e.Start, e.End
		if !silentLabel(e.Label) && (filter == nil || filter(e.Label)) {
			ns, ne = mod(e.Start, e.End)
		}
		spans = append(spans, Interval{Start: ns, End: ne, Label: e.Label})
	}
	return t.relayout(spans)
}

// Morph re-times the tier to match target's durations: each entry takes
// the span of the positionally aligned entry in target, except silence
// entries which keep their own span. The result is laid out contiguously
// from 0 like Manipulate. Alignment stops at the shorter tier.
func (t *IntervalTier) Morph(target *IntervalTier) *IntervalTier {
	n := min(len(t.entries), len(target.entries))
	spans := make([]Interval, 0, n)
	for i := 0; i < n; i++ {
		e := t.entries[i]
		ns, ne := e.Start, e.End
		if !silentLabel(e.Label) {
			ns, ne = target.entries[i].Start, target.entries[i].End
		}
		spans = append(spans, Interval{Start: ns, End: ne, Label: e.Label})
	}
	return t.relayout(spans)
}

// relayout places decided spans back-to-back starting at 0, chaining
// each span's duration onto the previous end.
func (t *IntervalTier) relayout(spans []Interval) *IntervalTier {
	var cursor float64
	out := make([]Interval, 0, len(spans))
	for _, s := range spans {
		d := s.End - s.Start
		out = append(out, Interval{Start: cursor, End: cursor + d, Label: s.Label})
		cursor += d
	}
	return newIntervalTier(t.name, out, t.minTime, t.maxTime)
}

// AppendTier concatenates other's entries after this tier's. With
// timeRelative set, other's entries are first shifted by this tier's
// maxTime so they follow in time.
func (t *IntervalTier) AppendTier(other *IntervalTier, timeRelative bool) *IntervalTier {
	app := other
	if timeRelative {
		// Overshoot is allowed, so the shift cannot fail.
		app, _ = other.EditTimestamps(t.maxTime, t.maxTime, true)
	}
	return newIntervalTier(t.name, append(t.Entries(), app.entries...), t.minTime, t.maxTime)
}

// EditLabels returns a new tier with every label rewritten by fn
// (and re-trimmed).
func (t *IntervalTier) EditLabels(fn func(label string) string) *IntervalTier {
	out := make([]Interval, 0, len(t.entries))
	for _, e := range t.entries {
		e.Label = strings.TrimSpace(fn(e.Label))
		out = append(out, e)
	}
	return newIntervalTier(t.name, out, t.minTime, t.maxTime)
}

// Find returns the entries whose label equals label, or contains it when
// substring is set.
func (t *IntervalTier) Find(label string, substring bool) []Interval {
	var found []Interval
	for _, e := range t.entries {
		if (substring && strings.Contains(e.Label, label)) || (!substring && e.Label == label) {
			found = append(found, e)
		}
	}
	return found
}

// FindRegexp returns the entries whose label matches re.
func (t *IntervalTier) FindRegexp(re *regexp.Regexp) []Interval {
	var found []Interval
	for _, e := range t.entries {
		if re.MatchString(e.Label) {
			found = append(found, e)
		}
	}
	return found
}

// Equals compares name, bounds, and entries, with timestamps compared
// under the given relative tolerance and labels compared exactly.
func (t *IntervalTier) Equals(other *IntervalTier, relTol float64) bool {
	if t.name != other.name || len(t.entries) != len(other.entries) {
		return false
	}
	if !closeTo(t.minTime, other.minTime, relTol) || !closeTo(t.maxTime, other.maxTime, relTol) {
		return false
	}
	for i, e := range t.entries {
		o := other.entries[i]
		if !closeTo(e.Start, o.Start, relTol) || !closeTo(e.End, o.End, relTol) || e.Label != o.Label {
			return false
		}
	}
	return true
}

// without returns the entries minus matches. Matches must appear in
// entry order, which Overlapping guarantees.
func (t *IntervalTier) without(matches []Interval) []Interval {
	kept := make([]Interval, 0, len(t.entries))
	mi := 0
	for _, e := range t.entries {
		if mi < len(matches) && e == matches[mi] {
			mi++
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func renderIntervals(entries []Interval) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

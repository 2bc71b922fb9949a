package tg

import (
	"regexp"
	"slices"
	"strings"

	"github.com/phonlab/tgkit/internal/diag"
)

// PointTier is an ordered container of labeled points.
type PointTier struct {
	name    string
	entries []Point
	minTime float64
	maxTime float64
}

// NewPointTier builds a point tier from a name and entries. Labels are
// trimmed. A tier with no entries needs explicit bounds via WithBounds.
func NewPointTier(name string, entries []Point, opts ...TierOption) (*PointTier, error) {
	var cfg tierConfig
	for _, o := range opts {
		o(&cfg)
	}

	cleaned := make([]Point, 0, len(entries))
	for _, p := range entries {
		p.Label = strings.TrimSpace(p.Label)
		cleaned = append(cleaned, p)
	}

	if len(cleaned) == 0 && (cfg.minTime == nil || cfg.maxTime == nil) {
		return nil, &MalformedEntryError{Timeless: true}
	}

	var minTime, maxTime float64
	if len(cleaned) > 0 {
		minTime, maxTime = cleaned[0].Time, cleaned[0].Time
		for _, p := range cleaned {
			minTime = min(minTime, p.Time)
			maxTime = max(maxTime, p.Time)
		}
		if cfg.minTime != nil {
			minTime = min(minTime, *cfg.minTime)
		}
		if cfg.maxTime != nil {
			maxTime = max(maxTime, *cfg.maxTime)
		}
	} else {
		minTime, maxTime = *cfg.minTime, *cfg.maxTime
	}

	slices.SortFunc(cleaned, comparePoints)
	return &PointTier{name: name, entries: cleaned, minTime: minTime, maxTime: maxTime}, nil
}

// newPointTier builds a tier from entries this package already cleaned.
// Bounds widen to cover every entry.
func newPointTier(name string, entries []Point, minTime, maxTime float64) *PointTier {
	es := slices.Clone(entries)
	for _, p := range es {
		minTime = min(minTime, p.Time)
		maxTime = max(maxTime, p.Time)
	}
	slices.SortFunc(es, comparePoints)
	return &PointTier{name: name, entries: es, minTime: minTime, maxTime: maxTime}
}

// Name returns the tier name.
func (t *PointTier) Name() string { return t.name }

// Bounds returns the tier's min and max times.
func (t *PointTier) Bounds() (minTime, maxTime float64) { return t.minTime, t.maxTime }

// Len returns the number of entries.
func (t *PointTier) Len() int { return len(t.entries) }

// Entries returns a copy of the entry sequence in sorted order.
func (t *PointTier) Entries() []Point { return slices.Clone(t.entries) }

// Duration returns the tier's time extent.
func (t *PointTier) Duration() float64 { return t.maxTime - t.minTime }

func (t *PointTier) renamed(name string) Tier {
	return newPointTier(name, t.entries, t.minTime, t.maxTime)
}

// Crop returns a new tier containing the points inside [start, end],
// boundaries included. Unlike interval crop, the result keeps absolute
// placement and takes [start, end] as its bounds.
func (t *PointTier) Crop(start, end float64) *PointTier {
	var kept []Point
	for _, p := range t.entries {
		if p.Time >= start && p.Time <= end {
			kept = append(kept, p)
		}
	}
	return newPointTier(t.name, kept, start, end)
}

// Within returns the points in [start, stop]. With boundaryInclusive
// unset the range is exclusive on both ends.
func (t *PointTier) Within(start, stop float64, boundaryInclusive bool) []Point {
	var matches []Point
	for _, p := range t.entries {
		if boundaryInclusive && (p.Time == start || p.Time == stop) {
			matches = append(matches, p)
		} else if p.Time > start && p.Time < stop {
			matches = append(matches, p)
		}
	}
	return matches
}

// Insert returns a new tier with entry added. Collisions match on exact
// timestamp equality; the policies mirror the interval variant, with
// merge joining labels with "-" in entry order.
func (t *PointTier) Insert(entry Point, policy CollisionPolicy, opts ...InsertOption) (*PointTier, error) {
	var cfg insertConfig
	for _, o := range opts {
		o(&cfg)
	}
	entry.Label = strings.TrimSpace(entry.Label)

	var matches []Point
	for _, p := range t.entries {
		if p.Time == entry.Time {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return newPointTier(t.name, append(t.Entries(), entry), t.minTime, t.maxTime), nil
	}

	var out *PointTier
	switch policy {
	case Replace:
		out = newPointTier(t.name, append(t.without(matches), entry), t.minTime, t.maxTime)
	case Merge:
		labels := make([]string, 0, len(matches)+1)
		for _, p := range matches {
			labels = append(labels, p.Label)
		}
		labels = append(labels, entry.Label)
		fused := Point{Time: entry.Time, Label: strings.Join(labels, "-")}
		out = newPointTier(t.name, append(t.without(matches), fused), t.minTime, t.maxTime)
	default:
		return nil, &CollisionError{
			TierName:   t.name,
			Attempted:  entry.String(),
			Collisions: renderPoints(matches),
		}
	}

	if cfg.reporter != nil {
		cfg.reporter.Collision(diag.NewEvent(t.name, "insert", string(policy), entry.String(), renderPoints(matches)))
	}
	return out, nil
}

// EditTimestamps shifts every point by offset. Unless allowOvershoot is
// set, a shifted point outside the tier's original bounds is a
// precondition error. Points shifted below 0 are dropped. The result's
// bounds still cover the original bounds.
func (t *PointTier) EditTimestamps(offset float64, allowOvershoot bool) (*PointTier, error) {
	shifted := make([]Point, 0, len(t.entries))
	for _, p := range t.entries {
		nt := p.Time + offset
		if !allowOvershoot && (nt < t.minTime || nt > t.maxTime) {
			return nil, precondition("editTimestamps",
				"point %s shifted to %s overshoots tier bounds [%s, %s]",
				p, formatTime(nt), formatTime(t.minTime), formatTime(t.maxTime))
		}
		if nt < 0 {
			continue
		}
		shifted = append(shifted, Point{Time: nt, Label: p.Label})
	}
	return newPointTier(t.name, shifted, t.minTime, t.maxTime), nil
}

// AppendTier concatenates other's points after this tier's. With
// timeRelative set, other's points are first shifted by this tier's
// maxTime.
func (t *PointTier) AppendTier(other *PointTier, timeRelative bool) *PointTier {
	app := other
	if timeRelative {
		app, _ = other.EditTimestamps(t.maxTime, true)
	}
	return newPointTier(t.name, append(t.Entries(), app.entries...), t.minTime, t.maxTime)
}

// EditLabels returns a new tier with every label rewritten by fn.
func (t *PointTier) EditLabels(fn func(label string) string) *PointTier {
	out := make([]Point, 0, len(t.entries))
	for _, p := range t.entries {
		p.Label = strings.TrimSpace(fn(p.Label))
		out = append(out, p)
	}
	return newPointTier(t.name, out, t.minTime, t.maxTime)
}

// Find returns the points whose label equals label, or contains it when
// substring is set.
func (t *PointTier) Find(label string, substring bool) []Point {
	var found []Point
	for _, p := range t.entries {
		if (substring && strings.Contains(p.Label, label)) || (!substring && p.Label == label) {
			found = append(found, p)
		}
	}
	return found
}

// FindRegexp returns the points whose label matches re.
func (t *PointTier) FindRegexp(re *regexp.Regexp) []Point {
	var found []Point
	for _, p := range t.entries {
		if re.MatchString(p.Label) {
			found = append(found, p)
		}
	}
	return found
}

// Equals compares name, bounds, and entries, with timestamps compared
// under the given relative tolerance and labels compared exactly.
func (t *PointTier) Equals(other *PointTier, relTol float64) bool {
	if t.name != other.name || len(t.entries) != len(other.entries) {
		return false
	}
	if !closeTo(t.minTime, other.minTime, relTol) || !closeTo(t.maxTime, other.maxTime, relTol) {
		return false
	}
	for i, p := range t.entries {
		o := other.entries[i]
		if !closeTo(p.Time, o.Time, relTol) || p.Label != o.Label {
			return false
		}
	}
	return true
}

// without returns the entries minus matches, which must appear in entry
// order.
func (t *PointTier) without(matches []Point) []Point {
	kept := make([]Point, 0, len(t.entries))
	mi := 0
	for _, p := range t.entries {
		if mi < len(matches) && p == matches[mi] {
			mi++
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func renderPoints(entries []Point) []string {
	out := make([]string, len(entries))
	for i, p := range entries {
		out[i] = p.String()
	}
	return out
}

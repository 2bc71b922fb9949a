package tg

import (
	"math"
	"slices"
	"strings"
)

// Textgrid is an ordered collection of uniquely-named tiers sharing one
// timeline. Aggregate bounds are recomputed whenever a tier is added.
//
// A Textgrid is built empty and populated with AddTier before any read
// operation; all transforming operations return a fresh Textgrid.
type Textgrid struct {
	names   []string
	tiers   map[string]Tier
	minTime float64
	maxTime float64
}

// NewTextgrid returns an empty Textgrid.
func NewTextgrid() *Textgrid {
	return &Textgrid{tiers: make(map[string]Tier)}
}

// TierNames returns the tier names in order.
func (g *Textgrid) TierNames() []string { return slices.Clone(g.names) }

// Tier looks up a tier by name.
func (g *Textgrid) Tier(name string) (Tier, bool) {
	t, ok := g.tiers[name]
	return t, ok
}

// MinTime returns the aggregate min time over all tiers.
func (g *Textgrid) MinTime() float64 { return g.minTime }

// MaxTime returns the aggregate max time over all tiers.
func (g *Textgrid) MaxTime() float64 { return g.maxTime }

// Len returns the number of tiers.
func (g *Textgrid) Len() int { return len(g.names) }

// AddTier appends a tier. Fails if a tier of that name already exists.
func (g *Textgrid) AddTier(t Tier) error {
	return g.AddTierAt(t, len(g.names))
}

// AddTierAt inserts a tier at the given position.
func (g *Textgrid) AddTierAt(t Tier, index int) error {
	if _, ok := g.tiers[t.Name()]; ok {
		return precondition("addTier", "tier %q already exists", t.Name())
	}
	if index < 0 || index > len(g.names) {
		return precondition("addTier", "index %d out of range [0, %d]", index, len(g.names))
	}
	g.names = slices.Insert(g.names, index, t.Name())
	g.tiers[t.Name()] = t

	mn, mx := t.Bounds()
	if len(g.names) == 1 {
		g.minTime, g.maxTime = mn, mx
	} else {
		g.minTime = min(g.minTime, mn)
		g.maxTime = max(g.maxTime, mx)
	}
	return nil
}

// Crop crops every tier to the Textgrid's own bounds. See CropTo.
func (g *Textgrid) Crop(strict, soft bool) *Textgrid {
	return g.CropTo(g.minTime, g.maxTime, strict, soft)
}

// CropTo applies the per-kind crop to every tier with the same window,
// discarding the interval accounting.
func (g *Textgrid) CropTo(start, end float64, strict, soft bool) *Textgrid {
	out := NewTextgrid()
	for _, name := range g.names {
		switch t := g.tiers[name].(type) {
		case *IntervalTier:
			cropped, _ := t.Crop(start, end, strict, soft)
			_ = out.AddTier(cropped)
		case *PointTier:
			_ = out.AddTier(t.Crop(start, end))
		}
	}
	return out
}

// EditTimestamps shifts interval tiers by (startOffset, endOffset) and
// point tiers by pointOffset. Empty tiers pass through unchanged.
func (g *Textgrid) EditTimestamps(startOffset, endOffset, pointOffset float64, allowOvershoot bool) (*Textgrid, error) {
	out := NewTextgrid()
	for _, name := range g.names {
		tier := g.tiers[name]
		if tier.Len() > 0 {
			switch t := tier.(type) {
			case *IntervalTier:
				shifted, err := t.EditTimestamps(startOffset, endOffset, allowOvershoot)
				if err != nil {
					return nil, err
				}
				tier = shifted
			case *PointTier:
				shifted, err := t.EditTimestamps(pointOffset, allowOvershoot)
				if err != nil {
					return nil, err
				}
				tier = shifted
			}
		}
		_ = out.AddTier(tier)
	}
	return out, nil
}

// MergeOption configures MergeTiers.
type MergeOption func(*mergeConfig)

type mergeConfig struct {
	include    func(label string) bool
	tierNames  []string
	dropOthers bool
}

// MergeInclude filters which entries take part in the merge. The default
// drops empty-label entries.
func MergeInclude(fn func(label string) bool) MergeOption {
	return func(c *mergeConfig) { c.include = fn }
}

// MergeOnly restricts the merge to the named tiers. The default merges
// all tiers.
func MergeOnly(names ...string) MergeOption {
	return func(c *mergeConfig) { c.tierNames = names }
}

// MergeDropOthers excludes unmerged tiers from the result. The default
// copies them through unchanged.
func MergeDropOthers() MergeOption {
	return func(c *mergeConfig) { c.dropOthers = true }
}

// MergeTiers concatenates the entries of the selected interval tiers,
// filters them, sorts them, and fuses any two adjacent overlapping
// entries into one spanning entry whose label joins both with " / ",
// re-checking the fused entry against its new neighbor before advancing.
// The merged tier is named by joining the source tier names with "/".
func (g *Textgrid) MergeTiers(opts ...MergeOption) (*Textgrid, error) {
	var cfg mergeConfig
	for _, o := range opts {
		o(&cfg)
	}
	names := cfg.tierNames
	if names == nil {
		names = g.names
	}
	if len(names) == 0 {
		return nil, precondition("mergeTiers", "no tiers to merge")
	}
	include := cfg.include
	if include == nil {
		include = func(label string) bool { return label != "" }
	}

	var pool []Interval
	var aggMin, aggMax float64
	for i, name := range names {
		tier, ok := g.tiers[name]
		if !ok {
			return nil, precondition("mergeTiers", "unknown tier %q", name)
		}
		it, ok := tier.(*IntervalTier)
		if !ok {
			return nil, precondition("mergeTiers", "tier %q is not an interval tier", name)
		}
		mn, mx := it.Bounds()
		if i == 0 {
			aggMin, aggMax = mn, mx
		} else {
			aggMin = min(aggMin, mn)
			aggMax = max(aggMax, mx)
		}
		for _, e := range it.entries {
			if include(e.Label) {
				pool = append(pool, e)
			}
		}
	}
	slices.SortFunc(pool, compareIntervals)

	// Fuse adjacent overlaps left to right, retrying the fused entry
	// against its new neighbor before advancing.
	i := 0
	for i < len(pool)-1 {
		cur, next := pool[i], pool[i+1]
		if Overlaps(cur.Span(), next.Span(), OverlapOptions{}) {
			pool[i] = Interval{
				Start: cur.Start,
				End:   max(cur.End, next.End),
				Label: cur.Label + " / " + next.Label,
			}
			pool = slices.Delete(pool, i+1, i+2)
		} else {
			i++
		}
	}

	out := NewTextgrid()
	if !cfg.dropOthers {
		for _, name := range g.names {
			if !slices.Contains(names, name) {
				_ = out.AddTier(g.tiers[name])
			}
		}
	}
	merged := newIntervalTier(strings.Join(names, "/"), pool, aggMin, aggMax)
	if err := out.AddTier(merged); err != nil {
		return nil, err
	}
	return out, nil
}

// Contained holds, for one super-tier entry, the entries of every other
// tier fully nested inside the super-entry's span, keyed by tier name.
type Contained struct {
	Intervals map[string][]Interval
	Points    map[string][]Point
}

// ContainedLabels returns one Contained per entry of the designated
// interval tier. Each subtier scan exits early once an entry starts
// beyond the super-entry's end, relying on sortedness; the early exit is
// an optimization and never changes results.
func (g *Textgrid) ContainedLabels(superTier string) ([]Contained, error) {
	tier, ok := g.tiers[superTier]
	if !ok {
		return nil, precondition("containedLabels", "unknown tier %q", superTier)
	}
	super, ok := tier.(*IntervalTier)
	if !ok {
		return nil, precondition("containedLabels", "tier %q is not an interval tier", superTier)
	}

	out := make([]Contained, 0, len(super.entries))
	for _, se := range super.entries {
		c := Contained{
			Intervals: make(map[string][]Interval),
			Points:    make(map[string][]Point),
		}
		for _, name := range g.names {
			if name == superTier {
				continue
			}
			switch sub := g.tiers[name].(type) {
			case *IntervalTier:
				var nested []Interval
				for _, e := range sub.entries {
					if e.Start > se.End {
						break
					}
					if e.Start >= se.Start && e.End <= se.End {
						nested = append(nested, e)
					}
				}
				c.Intervals[name] = nested
			case *PointTier:
				var nested []Point
				for _, p := range sub.entries {
					if p.Time > se.End {
						break
					}
					if p.Time >= se.Start {
						nested = append(nested, p)
					}
				}
				c.Points[name] = nested
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// RemoveLabels returns a new Textgrid with all entries carrying exactly
// the given label removed from the selected tiers (all tiers when none
// are named). Unselected tiers pass through untouched.
func (g *Textgrid) RemoveLabels(label string, tierNames ...string) *Textgrid {
	selected := tierNames
	if len(selected) == 0 {
		selected = g.names
	}

	out := NewTextgrid()
	for _, name := range g.names {
		tier := g.tiers[name]
		if slices.Contains(selected, name) {
			switch t := tier.(type) {
			case *IntervalTier:
				kept := make([]Interval, 0, len(t.entries))
				for _, e := range t.entries {
					if e.Label != label {
						kept = append(kept, e)
					}
				}
				tier = newIntervalTier(name, kept, t.minTime, t.maxTime)
			case *PointTier:
				kept := make([]Point, 0, len(t.entries))
				for _, p := range t.entries {
					if p.Label != label {
						kept = append(kept, p)
					}
				}
				tier = newPointTier(name, kept, t.minTime, t.maxTime)
			}
		}
		_ = out.AddTier(tier)
	}
	return out
}

// RenameTier returns a new Textgrid with the tier renamed in place.
func (g *Textgrid) RenameTier(oldName, newName string) (*Textgrid, error) {
	if _, ok := g.tiers[oldName]; !ok {
		return nil, precondition("renameTier", "unknown tier %q", oldName)
	}
	if _, ok := g.tiers[newName]; ok && newName != oldName {
		return nil, precondition("renameTier", "tier %q already exists", newName)
	}

	out := NewTextgrid()
	for _, name := range g.names {
		tier := g.tiers[name]
		if name == oldName {
			tier = tier.renamed(newName)
		}
		_ = out.AddTier(tier)
	}
	return out, nil
}

// ReplaceTier returns a new Textgrid with the named tier replaced,
// preserving its position. The replacement may carry a different name as
// long as it collides with no other tier.
func (g *Textgrid) ReplaceTier(name string, tier Tier) (*Textgrid, error) {
	if _, ok := g.tiers[name]; !ok {
		return nil, precondition("replaceTier", "unknown tier %q", name)
	}
	if _, ok := g.tiers[tier.Name()]; ok && tier.Name() != name {
		return nil, precondition("replaceTier", "tier %q already exists", tier.Name())
	}

	out := NewTextgrid()
	for _, existing := range g.names {
		t := g.tiers[existing]
		if existing == name {
			t = tier
		}
		_ = out.AddTier(t)
	}
	return out, nil
}

// RemoveTier returns a new Textgrid without the named tier.
func (g *Textgrid) RemoveTier(name string) (*Textgrid, error) {
	if _, ok := g.tiers[name]; !ok {
		return nil, precondition("removeTier", "unknown tier %q", name)
	}

	out := NewTextgrid()
	for _, existing := range g.names {
		if existing == name {
			continue
		}
		_ = out.AddTier(g.tiers[existing])
	}
	return out, nil
}

// AppendTextgrid appends other to the end of this Textgrid in time.
// Tiers present in both are concatenated with other's entries shifted by
// this Textgrid's maxTime. With onlyMatchingNames unset, tiers appearing
// in only one input are carried over too (other's shifted).
func (g *Textgrid) AppendTextgrid(other *Textgrid, onlyMatchingNames bool) (*Textgrid, error) {
	out := NewTextgrid()
	for _, name := range g.names {
		self := g.tiers[name]
		theirs, shared := other.tiers[name]
		if !shared {
			if !onlyMatchingNames {
				_ = out.AddTier(self)
			}
			continue
		}
		switch st := self.(type) {
		case *IntervalTier:
			ot, ok := theirs.(*IntervalTier)
			if !ok {
				return nil, precondition("appendTextgrid", "tier %q has mismatched kinds", name)
			}
			_ = out.AddTier(st.AppendTier(ot, true))
		case *PointTier:
			ot, ok := theirs.(*PointTier)
			if !ok {
				return nil, precondition("appendTextgrid", "tier %q has mismatched kinds", name)
			}
			_ = out.AddTier(st.AppendTier(ot, true))
		}
	}
	if !onlyMatchingNames {
		for _, name := range other.names {
			if _, shared := g.tiers[name]; shared {
				continue
			}
			switch ot := other.tiers[name].(type) {
			case *IntervalTier:
				shifted, _ := ot.EditTimestamps(g.maxTime, g.maxTime, true)
				_ = out.AddTier(shifted)
			case *PointTier:
				shifted, _ := ot.EditTimestamps(g.maxTime, true)
				_ = out.AddTier(shifted)
			}
		}
	}
	return out, nil
}

// FillGaps returns a new Textgrid in which every interval tier
// contiguously covers the Textgrid's bounds, gaps materialized as
// entries carrying label. Point tiers pass through unchanged. The
// serializer applies this before writing so files have full coverage.
func (g *Textgrid) FillGaps(label string) *Textgrid {
	out := NewTextgrid()
	for _, name := range g.names {
		tier := g.tiers[name]
		if t, ok := tier.(*IntervalTier); ok {
			tier = t.FillGaps(label, g.minTime, g.maxTime)
		}
		_ = out.AddTier(tier)
	}
	return out
}

// Equals compares tier order, bounds, and per-tier content, with
// timestamps compared under the given relative tolerance and labels
// compared exactly.
func (g *Textgrid) Equals(other *Textgrid, relTol float64) bool {
	if !slices.Equal(g.names, other.names) {
		return false
	}
	if !closeTo(g.minTime, other.minTime, relTol) || !closeTo(g.maxTime, other.maxTime, relTol) {
		return false
	}
	for _, name := range g.names {
		switch t := g.tiers[name].(type) {
		case *IntervalTier:
			o, ok := other.tiers[name].(*IntervalTier)
			if !ok || !t.Equals(o, relTol) {
				return false
			}
		case *PointTier:
			o, ok := other.tiers[name].(*PointTier)
			if !ok || !t.Equals(o, relTol) {
				return false
			}
		}
	}
	return true
}

// closeTo compares floats under a relative tolerance.
func closeTo(a, b, relTol float64) bool {
	return math.Abs(a-b) <= relTol*max(math.Abs(a), math.Abs(b))
}

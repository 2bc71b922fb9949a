package tg

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeIntervals(t *testing.T) *IntervalTier {
	t.Helper()
	tier, err := NewIntervalTier("words", []Interval{
		{Start: 0, End: 5, Label: "a"},
		{Start: 5, End: 10, Label: "b"},
		{Start: 10, End: 15, Label: "c"},
	})
	require.NoError(t, err)
	return tier
}

func TestNewIntervalTierSortsAndTrims(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{
		{Start: 5, End: 10, Label: "  second "},
		{Start: 0, End: 5, Label: "first"},
	})
	require.NoError(t, err)

	entries := tier.Entries()
	assert.Equal(t, []Interval{
		{Start: 0, End: 5, Label: "first"},
		{Start: 5, End: 10, Label: "second"},
	}, entries)

	minTime, maxTime := tier.Bounds()
	assert.Equal(t, 0.0, minTime)
	assert.Equal(t, 10.0, maxTime)
}

func TestNewIntervalTierRejectsInvertedSpan(t *testing.T) {
	_, err := NewIntervalTier("bad", []Interval{{Start: 5, End: 5, Label: "x"}})

	var malformed *MalformedEntryError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 5.0, malformed.Start)
	assert.Equal(t, 5.0, malformed.End)
}

func TestNewIntervalTierEmptyNeedsBounds(t *testing.T) {
	_, err := NewIntervalTier("empty", nil)
	var malformed *MalformedEntryError
	require.ErrorAs(t, err, &malformed)
	assert.True(t, malformed.Timeless)

	tier, err := NewIntervalTier("empty", nil, WithBounds(0, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, tier.Len())
}

func TestNewIntervalTierBoundsOnlyWiden(t *testing.T) {
	// Requested bounds narrower than the entries are ignored.
	tier, err := NewIntervalTier("words",
		[]Interval{{Start: 0, End: 10, Label: "a"}},
		WithBounds(2, 8))
	require.NoError(t, err)

	minTime, maxTime := tier.Bounds()
	assert.Equal(t, 0.0, minTime)
	assert.Equal(t, 10.0, maxTime)
}

func TestIntervalTierCropTruncatesStraddlers(t *testing.T) {
	tier := threeIntervals(t)

	cropped, rep := tier.Crop(3, 12, false, false)

	assert.Equal(t, []Interval{
		{Start: 3, End: 5, Label: "a"},
		{Start: 5, End: 10, Label: "b"},
		{Start: 10, End: 12, Label: "c"},
	}, cropped.Entries())
	assert.Equal(t, 3.0, rep.CutStart)
	assert.Equal(t, 3.0, rep.CutEnd)
	assert.Equal(t, 0.0, rep.CutWithin)
	assert.InDelta(t, 2.0/5.0, rep.FirstKeptFraction, 1e-12)
	assert.InDelta(t, 2.0/5.0, rep.LastKeptFraction, 1e-12)
}

func TestIntervalTierCropStrictDropsStraddlers(t *testing.T) {
	tier := threeIntervals(t)

	cropped, rep := tier.Crop(3, 12, true, false)

	assert.Equal(t, []Interval{{Start: 5, End: 10, Label: "b"}}, cropped.Entries())
	assert.Equal(t, 3.0, rep.CutStart)
	assert.Equal(t, 3.0, rep.CutEnd)
	// Strict accounting charges the window width once per dropped
	// straddler, not the trimmed duration.
	assert.Equal(t, 18.0, rep.CutWithin)
}

func TestIntervalTierCropSoftKeepsStraddlersWhole(t *testing.T) {
	tier := threeIntervals(t)

	cropped, _ := tier.Crop(3, 12, false, true)

	assert.Equal(t, []Interval{
		{Start: 0, End: 5, Label: "a"},
		{Start: 5, End: 10, Label: "b"},
		{Start: 10, End: 15, Label: "c"},
	}, cropped.Entries())
}

func TestIntervalTierCropWindowInsideSingleEntry(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{{Start: 0, End: 20, Label: "long"}})
	require.NoError(t, err)

	cropped, rep := tier.Crop(5, 10, false, false)
	assert.Equal(t, []Interval{{Start: 5, End: 10, Label: "long"}}, cropped.Entries())

	strict, strictRep := tier.Crop(5, 10, true, false)
	assert.Equal(t, 0, strict.Len())
	assert.Equal(t, 5.0, strictRep.CutWithin)
	assert.Equal(t, 0.0, rep.CutWithin)
}

func TestIntervalTierCropBoundsCoverKeptEntries(t *testing.T) {
	tier := threeIntervals(t)

	cropped, _ := tier.Crop(3, 12, false, false)

	minTime, maxTime := cropped.Bounds()
	assert.Equal(t, 0.0, minTime)
	assert.Equal(t, 12.0, maxTime)
	for _, e := range cropped.Entries() {
		assert.GreaterOrEqual(t, e.Start, minTime)
		assert.LessOrEqual(t, e.End, maxTime)
	}
}

func TestIntervalTierInsertNoCollision(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{{Start: 0, End: 5, Label: "a"}})
	require.NoError(t, err)

	inserted, err := tier.Insert(Interval{Start: 6, End: 8, Label: "b"}, Fail)
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{Start: 0, End: 5, Label: "a"},
		{Start: 6, End: 8, Label: "b"},
	}, inserted.Entries())

	// The receiver is untouched.
	assert.Equal(t, 1, tier.Len())
}

func TestIntervalTierInsertMergeFusesCollisions(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{{Start: 0, End: 5, Label: "a"}})
	require.NoError(t, err)

	merged, err := tier.Insert(Interval{Start: 3, End: 7, Label: "b"}, Merge)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Start: 0, End: 7, Label: "a-b"}}, merged.Entries())
}

func TestIntervalTierInsertReplaceDropsCollisions(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{
		{Start: 0, End: 5, Label: "a"},
		{Start: 5, End: 10, Label: "b"},
	})
	require.NoError(t, err)

	replaced, err := tier.Insert(Interval{Start: 3, End: 7, Label: "new"}, Replace)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Start: 3, End: 7, Label: "new"}}, replaced.Entries())
}

func TestIntervalTierInsertCollisionFails(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{{Start: 0, End: 5, Label: "a"}})
	require.NoError(t, err)

	_, err = tier.Insert(Interval{Start: 3, End: 7, Label: "b"}, Fail)

	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "words", collision.TierName)
	assert.Equal(t, []string{`(0, 5, "a")`}, collision.Collisions)

	// Tier entries unchanged.
	assert.Equal(t, []Interval{{Start: 0, End: 5, Label: "a"}}, tier.Entries())
}

func TestIntervalTierEraseIntervalTruncateKeepsRemnants(t *testing.T) {
	tier := threeIntervals(t)

	erased, err := tier.EraseInterval(3, 12, Truncate)
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{Start: 0, End: 3, Label: "a"},
		{Start: 12, End: 15, Label: "c"},
	}, erased.Entries())
}

func TestIntervalTierEraseIntervalCategoricalDropsAll(t *testing.T) {
	tier := threeIntervals(t)

	erased, err := tier.EraseInterval(3, 12, Categorical)
	require.NoError(t, err)
	assert.Equal(t, 0, erased.Len())
}

func TestIntervalTierEraseIntervalNoMatchesIsNoop(t *testing.T) {
	tier := threeIntervals(t)

	// The bogus action is never inspected when nothing overlaps.
	erased, err := tier.EraseInterval(20, 30, EraseAction("bogus"))
	require.NoError(t, err)
	assert.Equal(t, tier.Entries(), erased.Entries())
}

func TestIntervalTierEraseIntervalUnknownActionFails(t *testing.T) {
	tier := threeIntervals(t)

	_, err := tier.EraseInterval(3, 12, EraseAction("bogus"))

	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, "eraseInterval", pre.Op)
}

func TestIntervalTierEditTimestampsShifts(t *testing.T) {
	tier, err := NewIntervalTier("words",
		[]Interval{{Start: 2, End: 4, Label: "a"}},
		WithBounds(0, 10))
	require.NoError(t, err)

	shifted, err := tier.EditTimestamps(1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Start: 3, End: 5, Label: "a"}}, shifted.Entries())
}

func TestIntervalTierEditTimestampsOvershootFails(t *testing.T) {
	tier, err := NewIntervalTier("words",
		[]Interval{{Start: 2, End: 4, Label: "a"}},
		WithBounds(0, 5))
	require.NoError(t, err)

	_, err = tier.EditTimestamps(3, 3, false)
	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)

	shifted, err := tier.EditTimestamps(3, 3, true)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Start: 5, End: 7, Label: "a"}}, shifted.Entries())
}

func TestIntervalTierEditTimestampsClampsAndDrops(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{
		{Start: 1, End: 2, Label: "gone"},
		{Start: 3, End: 6, Label: "clamped"},
	})
	require.NoError(t, err)

	shifted, err := tier.EditTimestamps(-4, -4, true)
	require.NoError(t, err)
	// The first entry's shifted end is not positive, so it is dropped;
	// the second's negative start clamps to 0.
	assert.Equal(t, []Interval{{Start: 0, End: 2, Label: "clamped"}}, shifted.Entries())
}

func TestIntervalTierGetNonEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []Interval
		bounds  []TierOption
		want    []Interval
	}{
		{
			name: "gaps between and around entries",
			entries: []Interval{
				{Start: 1, End: 2, Label: "a"},
				{Start: 3, End: 4, Label: "b"},
			},
			bounds: []TierOption{WithBounds(0, 5)},
			want: []Interval{
				{Start: 0, End: 1},
				{Start: 2, End: 3},
				{Start: 4, End: 5},
			},
		},
		{
			name: "contiguous entries yield no gaps",
			entries: []Interval{
				{Start: 0, End: 2, Label: "a"},
				{Start: 2, End: 5, Label: "b"},
			},
			want: nil,
		},
		{
			name:   "empty tier is one gap",
			bounds: []TierOption{WithBounds(0, 5)},
			want:   []Interval{{Start: 0, End: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, err := NewIntervalTier("words", tt.entries, tt.bounds...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tier.GetNonEntries())
		})
	}
}

func TestIntervalTierFillGapsIsIdempotent(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{
		{Start: 1, End: 2, Label: "a"},
		{Start: 3, End: 4, Label: "b"},
	}, WithBounds(0, 5))
	require.NoError(t, err)

	once := tier.FillGaps("sil", 0, 5)
	twice := once.FillGaps("sil", 0, 5)

	assert.Equal(t, []Interval{
		{Start: 0, End: 1, Label: "sil"},
		{Start: 1, End: 2, Label: "a"},
		{Start: 2, End: 3, Label: "sil"},
		{Start: 3, End: 4, Label: "b"},
		{Start: 4, End: 5, Label: "sil"},
	}, once.Entries())
	assert.Equal(t, once.Entries(), twice.Entries())
}

func TestIntervalTierManipulateRelayout(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{
		{Start: 0, End: 2, Label: "a"},
		{Start: 2, End: 3, Label: "sp"},
		{Start: 3, End: 5, Label: "b"},
	})
	require.NoError(t, err)

	// Double every non-silence duration. Silence spans keep theirs.
	doubled := tier.Manipulate(func(start, end float64) (float64, float64) {
		return start, start + 2*(end-start)
	}, nil)

	assert.Equal(t, []Interval{
		{Start: 0, End: 4, Label: "a"},
		{Start: 4, End: 5, Label: "sp"},
		{Start: 5, End: 9, Label: "b"},
	}, doubled.Entries())
}

func TestIntervalTierMorphTakesTargetDurations(t *testing.T) {
	source, err := NewIntervalTier("words", []Interval{
		{Start: 0, End: 2, Label: "a"},
		{Start: 2, End: 3, Label: "sp"},
		{Start: 3, End: 5, Label: "b"},
	})
	require.NoError(t, err)
	target, err := NewIntervalTier("words", []Interval{
		{Start: 0, End: 1, Label: "x"},
		{Start: 1, End: 4, Label: "y"},
		{Start: 4, End: 8, Label: "z"},
	})
	require.NoError(t, err)

	morphed := source.Morph(target)

	// Non-silence entries take the aligned target duration; the result
	// is laid out back-to-back from 0.
	assert.Equal(t, []Interval{
		{Start: 0, End: 1, Label: "a"},
		{Start: 1, End: 2, Label: "sp"},
		{Start: 2, End: 6, Label: "b"},
	}, morphed.Entries())
}

func TestIntervalTierAppendTier(t *testing.T) {
	first, err := NewIntervalTier("words", []Interval{{Start: 0, End: 2, Label: "a"}},
		WithBounds(0, 3))
	require.NoError(t, err)
	second, err := NewIntervalTier("words", []Interval{{Start: 0, End: 1, Label: "b"}})
	require.NoError(t, err)

	joined := first.AppendTier(second, true)
	assert.Equal(t, []Interval{
		{Start: 0, End: 2, Label: "a"},
		{Start: 3, End: 4, Label: "b"},
	}, joined.Entries())

	flat := first.AppendTier(second, false)
	assert.Equal(t, []Interval{
		{Start: 0, End: 1, Label: "b"},
		{Start: 0, End: 2, Label: "a"},
	}, flat.Entries())
}

func TestIntervalTierEditLabels(t *testing.T) {
	tier := threeIntervals(t)

	upper := tier.EditLabels(strings.ToUpper)
	assert.Equal(t, []Interval{
		{Start: 0, End: 5, Label: "A"},
		{Start: 5, End: 10, Label: "B"},
		{Start: 10, End: 15, Label: "C"},
	}, upper.Entries())
}

func TestIntervalTierFind(t *testing.T) {
	tier, err := NewIntervalTier("words", []Interval{
		{Start: 0, End: 1, Label: "cat"},
		{Start: 1, End: 2, Label: "catalog"},
		{Start: 2, End: 3, Label: "dog"},
	})
	require.NoError(t, err)

	assert.Len(t, tier.Find("cat", false), 1)
	assert.Len(t, tier.Find("cat", true), 2)
	assert.Len(t, tier.FindRegexp(regexp.MustCompile(`^c.*g$`)), 1)
	assert.Empty(t, tier.Find("bird", true))
}

func TestIntervalTierEqualsTolerance(t *testing.T) {
	a, err := NewIntervalTier("words", []Interval{{Start: 0, End: 1, Label: "x"}})
	require.NoError(t, err)
	b, err := NewIntervalTier("words", []Interval{{Start: 0, End: 1 + 1e-15, Label: "x"}})
	require.NoError(t, err)
	c, err := NewIntervalTier("words", []Interval{{Start: 0, End: 1.1, Label: "x"}})
	require.NoError(t, err)

	assert.True(t, a.Equals(b, 1e-14))
	assert.False(t, a.Equals(c, 1e-14))
}

func TestIntervalTierOperationsStaySorted(t *testing.T) {
	tier := threeIntervals(t)

	results := []*IntervalTier{
		mustInsert(t, tier, Interval{Start: 2, End: 4, Label: "x"}, Merge),
		mustErase(t, tier, 6, 8, Truncate),
		tier.FillGaps("", 0, 20),
		tier.EditLabels(func(s string) string { return s + "!" }),
	}
	for _, r := range results {
		entries := r.Entries()
		for i := 1; i < len(entries); i++ {
			assert.LessOrEqual(t, entries[i-1].Start, entries[i].Start)
		}
	}
}

func mustInsert(t *testing.T, tier *IntervalTier, e Interval, p CollisionPolicy) *IntervalTier {
	t.Helper()
	out, err := tier.Insert(e, p)
	require.NoError(t, err)
	return out
}

func mustErase(t *testing.T, tier *IntervalTier, start, end float64, a EraseAction) *IntervalTier {
	t.Helper()
	out, err := tier.EraseInterval(start, end, a)
	require.NoError(t, err)
	return out
}

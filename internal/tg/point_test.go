package tg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePoints(t *testing.T) *PointTier {
	t.Helper()
	tier, err := NewPointTier("tones", []Point{
		{Time: 1, Label: "H"},
		{Time: 3, Label: "L"},
		{Time: 5, Label: "H"},
	})
	require.NoError(t, err)
	return tier
}

func TestNewPointTierSortsAndTrims(t *testing.T) {
	tier, err := NewPointTier("tones", []Point{
		{Time: 3, Label: " L "},
		{Time: 1, Label: "H"},
	})
	require.NoError(t, err)

	assert.Equal(t, []Point{
		{Time: 1, Label: "H"},
		{Time: 3, Label: "L"},
	}, tier.Entries())

	minTime, maxTime := tier.Bounds()
	assert.Equal(t, 1.0, minTime)
	assert.Equal(t, 3.0, maxTime)
}

func TestNewPointTierEmptyNeedsBounds(t *testing.T) {
	_, err := NewPointTier("empty", nil)
	var malformed *MalformedEntryError
	require.ErrorAs(t, err, &malformed)
	assert.True(t, malformed.Timeless)
}

func TestPointTierCropIsBoundaryInclusive(t *testing.T) {
	tier := threePoints(t)

	cropped := tier.Crop(1, 3)

	assert.Equal(t, []Point{
		{Time: 1, Label: "H"},
		{Time: 3, Label: "L"},
	}, cropped.Entries())

	minTime, maxTime := cropped.Bounds()
	assert.Equal(t, 1.0, minTime)
	assert.Equal(t, 3.0, maxTime)
}

func TestPointTierWithin(t *testing.T) {
	tier := threePoints(t)

	assert.Empty(t, tier.Within(1, 3, false)) // exclusive by default
	assert.Len(t, tier.Within(0, 4, false), 2)
	assert.Len(t, tier.Within(1, 3, true), 2)  // both boundaries
	assert.Len(t, tier.Within(2, 4, false), 1) // only time 3
}

func TestPointTierInsertMatchesExactTime(t *testing.T) {
	tier := threePoints(t)

	added, err := tier.Insert(Point{Time: 2, Label: "X"}, Fail)
	require.NoError(t, err)
	assert.Equal(t, 4, added.Len())

	_, err = tier.Insert(Point{Time: 3, Label: "X"}, Fail)
	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, []string{`(3, "L")`}, collision.Collisions)
}

func TestPointTierInsertMergeJoinsLabels(t *testing.T) {
	tier := threePoints(t)

	merged, err := tier.Insert(Point{Time: 3, Label: "X"}, Merge)
	require.NoError(t, err)
	assert.Contains(t, merged.Entries(), Point{Time: 3, Label: "L-X"})
	assert.Equal(t, 3, merged.Len())
}

func TestPointTierInsertReplace(t *testing.T) {
	tier := threePoints(t)

	replaced, err := tier.Insert(Point{Time: 3, Label: "X"}, Replace)
	require.NoError(t, err)
	assert.Contains(t, replaced.Entries(), Point{Time: 3, Label: "X"})
	assert.Equal(t, 3, replaced.Len())
}

func TestPointTierEditTimestamps(t *testing.T) {
	tier := threePoints(t)

	shifted, err := tier.EditTimestamps(-2, true)
	require.NoError(t, err)
	// Time 1 shifts below zero and is dropped.
	assert.Equal(t, []Point{
		{Time: 1, Label: "L"},
		{Time: 3, Label: "H"},
	}, shifted.Entries())

	_, err = tier.EditTimestamps(100, false)
	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
}

func TestPointTierAppendTier(t *testing.T) {
	first := threePoints(t)
	second, err := NewPointTier("tones", []Point{{Time: 1, Label: "X"}})
	require.NoError(t, err)

	joined := first.AppendTier(second, true)
	assert.Contains(t, joined.Entries(), Point{Time: 6, Label: "X"})
	assert.Equal(t, 4, joined.Len())
}

func TestPointTierFind(t *testing.T) {
	tier := threePoints(t)

	assert.Len(t, tier.Find("H", false), 2)
	assert.Len(t, tier.FindRegexp(regexp.MustCompile("[HL]")), 3)
	assert.Empty(t, tier.Find("M", false))
}

func TestPointTierEqualsTolerance(t *testing.T) {
	a := threePoints(t)
	b, err := NewPointTier("tones", []Point{
		{Time: 1 + 1e-15, Label: "H"},
		{Time: 3, Label: "L"},
		{Time: 5, Label: "H"},
	})
	require.NoError(t, err)

	assert.True(t, a.Equals(b, 1e-14))
	assert.False(t, a.Equals(b, 0))
}

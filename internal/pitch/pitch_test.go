package pitch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonlab/tgkit/internal/tg"
)

var sampleHeader = []string{
	`File type = "ooTextFile"`,
	`Object class = "PitchTier"`,
	``,
	`0`,
	`1`,
	`3`,
}

func writeSample(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.PitchTier")
	content := ""
	for i, l := range lines {
		if i > 0 {
			content += "\n"
		}
		content += l
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPitchTier(t *testing.T) {
	lines := append(append([]string{}, sampleHeader...),
		"0.1", "120.5",
		"0.4", "131",
		"0.9", "95.25",
	)
	path := writeSample(t, lines)

	header, samples, err := ReadPitchTier(path)
	require.NoError(t, err)

	assert.Equal(t, sampleHeader, header)
	assert.Equal(t, []Sample{
		{Value: 120.5, Time: 0.1},
		{Value: 131, Time: 0.4},
		{Value: 95.25, Time: 0.9},
	}, samples)
}

func TestReadPitchTierBadValue(t *testing.T) {
	lines := append(append([]string{}, sampleHeader...), "0.1", "not-a-number")
	path := writeSample(t, lines)

	_, _, err := ReadPitchTier(path)
	assert.Error(t, err)
}

func TestReadPitchTierTooShort(t *testing.T) {
	path := writeSample(t, []string{"just", "three", "lines"})

	_, _, err := ReadPitchTier(path)
	assert.Error(t, err)
}

func TestWritePitchTierRoundTrip(t *testing.T) {
	samples := []Sample{
		{Value: 120.5, Time: 0.1},
		{Value: 131, Time: 0.4},
	}
	path := filepath.Join(t.TempDir(), "out.PitchTier")

	require.NoError(t, WritePitchTier(path, sampleHeader, samples))

	header, back, err := ReadPitchTier(path)
	require.NoError(t, err)
	assert.Equal(t, sampleHeader, header)
	assert.Equal(t, samples, back)
}

func TestSliceByIntervals(t *testing.T) {
	tier, err := tg.NewIntervalTier("words", []tg.Interval{
		{Start: 0, End: 0.5, Label: "a"},
		{Start: 0.5, End: 1, Label: "b"},
	})
	require.NoError(t, err)

	samples := []Sample{
		{Value: 100, Time: 0.2},
		{Value: 110, Time: 0.5},
		{Value: 120, Time: 0.7},
		{Value: 130, Time: 2},
	}

	slices := SliceByIntervals(tier, samples)
	require.Len(t, slices, 2)

	// The boundary sample at 0.5 lands in both intervals.
	assert.Equal(t, []Sample{{Value: 100, Time: 0.2}, {Value: 110, Time: 0.5}},
		slices[0].Samples)
	assert.Equal(t, []Sample{{Value: 110, Time: 0.5}, {Value: 120, Time: 0.7}},
		slices[1].Samples)
}

func TestSliceByIntervalsEmptyIntervalsKept(t *testing.T) {
	tier, err := tg.NewIntervalTier("words", []tg.Interval{{Start: 0, End: 1, Label: "a"}})
	require.NoError(t, err)

	slices := SliceByIntervals(tier, nil)
	require.Len(t, slices, 1)
	assert.Empty(t, slices[0].Samples)
}

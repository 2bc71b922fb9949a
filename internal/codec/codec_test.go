package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonlab/tgkit/internal/tg"
)

func sampleGrid(t *testing.T) *tg.Textgrid {
	t.Helper()
	words, err := tg.NewIntervalTier("words", []tg.Interval{
		{Start: 0.25, End: 0.5, Label: "hello"},
		{Start: 0.5, End: 1, Label: "world"},
	}, tg.WithBounds(0, 1.5))
	require.NoError(t, err)
	tones, err := tg.NewPointTier("tones", []tg.Point{
		{Time: 0.35, Label: "H"},
		{Time: 0.8, Label: "L"},
	}, tg.WithBounds(0, 1.5))
	require.NoError(t, err)

	grid := tg.NewTextgrid()
	require.NoError(t, grid.AddTier(words))
	require.NoError(t, grid.AddTier(tones))
	return grid
}

const shortSample = `File type = "ooTextFile short"
"TextGrid"

0
1.5
<exists>
2
"IntervalTier"
"words"
0
1.5
2
0.25
0.5
"hello"
0.5
1
"world"
"TextTier"
"tones"
0
1.5
2
0.35
"H"
0.8
"L"
`

const normalSample = `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1.5
tiers? <exists>
size = 2
item []:
    item [1]:
        class = "IntervalTier"
        name = "words"
        xmin = 0
        xmax = 1.5
        intervals: size = 3
        intervals [1]:
            xmin = 0
            xmax = 0.25
            text = ""
        intervals [2]:
            xmin = 0.25
            xmax = 0.5
            text = "hello"
        intervals [3]:
            xmin = 0.5
            xmax = 1
            text = "world"
    item [2]:
        class = "TextTier"
        name = "tones"
        xmin = 0
        xmax = 1.5
        points: size = 2
        points [1]:
            number = 0.35
            mark = "H"
        points [2]:
            number = 0.8
            mark = "L"
`

func TestParseShortDialect(t *testing.T) {
	grid, err := Parse([]byte(shortSample))
	require.NoError(t, err)

	require.Equal(t, []string{"words", "tones"}, grid.TierNames())
	assert.Equal(t, 0.0, grid.MinTime())
	assert.Equal(t, 1.5, grid.MaxTime())

	words, _ := grid.Tier("words")
	assert.Equal(t, []tg.Interval{
		{Start: 0.25, End: 0.5, Label: "hello"},
		{Start: 0.5, End: 1, Label: "world"},
	}, words.(*tg.IntervalTier).Entries())

	tones, _ := grid.Tier("tones")
	assert.Equal(t, []tg.Point{
		{Time: 0.35, Label: "H"},
		{Time: 0.8, Label: "L"},
	}, tones.(*tg.PointTier).Entries())
}

func TestParseNormalDialect(t *testing.T) {
	grid, err := Parse([]byte(normalSample))
	require.NoError(t, err)

	// Both dialects describe the same grid; empty labels are stripped.
	short, err := Parse([]byte(shortSample))
	require.NoError(t, err)
	assert.True(t, grid.Equals(short, 1e-14))
}

func TestParseStripsEmptyLabels(t *testing.T) {
	grid, err := Parse([]byte(normalSample))
	require.NoError(t, err)

	words, _ := grid.Tier("words")
	for _, e := range words.(*tg.IntervalTier).Entries() {
		assert.NotEmpty(t, e.Label)
	}
}

func TestParseUTF16Input(t *testing.T) {
	encoded := encodeUTF16LE(t, shortSample)

	grid, err := Parse(encoded)
	require.NoError(t, err)
	assert.Equal(t, []string{"words", "tones"}, grid.TierNames())
}

func TestParseCRLFInput(t *testing.T) {
	crlf := []byte(crlfVariant(shortSample))

	grid, err := Parse(crlf)
	require.NoError(t, err)
	assert.Equal(t, 2, grid.Len())
}

func TestParseRejectsUndecodableBytes(t *testing.T) {
	// No BOM, and not valid UTF-8 either.
	_, err := Parse([]byte{0xc3, 0x28})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestMarshalGolden(t *testing.T) {
	grid := sampleGrid(t)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "marshal_sample", Marshal(grid))
}

func TestMarshalFillsGaps(t *testing.T) {
	grid := sampleGrid(t)

	out := string(Marshal(grid))
	// The leading and trailing gaps of the interval tier become
	// empty-label entries, so the tier block reports 4 entries.
	assert.Contains(t, out, "\"IntervalTier\"\n\"words\"\n0\n1.5\n4\n")
}

func TestRoundTrip(t *testing.T) {
	grid := sampleGrid(t)

	parsed, err := Parse(Marshal(grid))
	require.NoError(t, err)
	assert.True(t, grid.Equals(parsed, 1e-14))
}

func TestWriteAndRead(t *testing.T) {
	grid := sampleGrid(t)
	path := filepath.Join(t.TempDir(), "sample.TextGrid")

	require.NoError(t, Write(grid, path))
	back, err := Read(path)
	require.NoError(t, err)
	assert.True(t, grid.Equals(back, 1e-14))
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.TextGrid"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetchRow(t *testing.T) {
	data := "xmin = 1.5 \nxmax = 2 \ntext = \" hi \" \n"

	word, next, err := fetchRow(data, "xmin = ", 0)
	require.NoError(t, err)
	assert.Equal(t, "1.5", word)

	word, next, err = fetchRow(data, "xmax = ", next)
	require.NoError(t, err)
	assert.Equal(t, "2", word)

	word, _, err = fetchRow(data, "text = ", next)
	require.NoError(t, err)
	assert.Equal(t, "hi", word)

	_, _, err = fetchRow(data, "absent = ", 0)
	assert.ErrorIs(t, err, errNoField)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3", 3, true},
		{"3.25", 3.25, true},
		{"0", 0, true},
		{"x", 0, false},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

// encodeUTF16LE produces a little-endian UTF-16 byte stream with BOM.
func encodeUTF16LE(t *testing.T, s string) []byte {
	t.Helper()
	out := []byte{0xff, 0xfe}
	for _, r := range s {
		// The sample contains no code points above the BMP.
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}

func crlfVariant(s string) string {
	out := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, '\r')
		}
		out = append(out, s[i])
	}
	return string(out)
}

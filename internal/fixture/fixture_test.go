package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonlab/tgkit/internal/tg"
)

const sampleYAML = `name: greeting
max_time: 2
tiers:
  - name: words
    kind: interval
    intervals:
      - {start: 0, end: 0.5, label: hello}
      - {start: 0.5, end: 1, label: world}
  - name: tones
    kind: point
    points:
      - {time: 0.3, label: H}
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndBuild(t *testing.T) {
	doc, err := Load(writeFixture(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "greeting", doc.Name)
	require.Len(t, doc.Tiers, 2)

	grid, err := Build(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"words", "tones"}, grid.TierNames())
	assert.Equal(t, 2.0, grid.MaxTime())

	words, _ := grid.Tier("words")
	assert.Equal(t, []tg.Interval{
		{Start: 0, End: 0.5, Label: "hello"},
		{Start: 0.5, End: 1, Label: "world"},
	}, words.(*tg.IntervalTier).Entries())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeFixture(t, `
name: typo
teirs:
  - name: words
    kind: interval
`))
	assert.Error(t, err)
}

func TestLoadRejectsMissingTiers(t *testing.T) {
	_, err := Load(writeFixture(t, "name: empty\n"))
	assert.ErrorContains(t, err, "tiers")
}

func TestLoadRejectsDuplicateTierNames(t *testing.T) {
	_, err := Load(writeFixture(t, `
tiers:
  - name: words
    kind: interval
    intervals: [{start: 0, end: 1, label: a}]
  - name: words
    kind: interval
    intervals: [{start: 0, end: 1, label: b}]
`))
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadRejectsKindMismatch(t *testing.T) {
	_, err := Load(writeFixture(t, `
tiers:
  - name: words
    kind: interval
    points: [{time: 1, label: x}]
`))
	assert.ErrorContains(t, err, "has points")
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	_, err := Load(writeFixture(t, `
tiers:
  - name: words
    kind: wavy
`))
	assert.ErrorContains(t, err, "unknown tier kind")
}

func TestBuildPropagatesBadEntries(t *testing.T) {
	doc, err := Load(writeFixture(t, `
tiers:
  - name: words
    kind: interval
    intervals: [{start: 2, end: 1, label: backwards}]
`))
	require.NoError(t, err)

	_, err = Build(doc)
	var malformed *tg.MalformedEntryError
	require.ErrorAs(t, err, &malformed)
}

func TestLoadTextgrid(t *testing.T) {
	grid, err := LoadTextgrid(writeFixture(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, grid.Len())
}

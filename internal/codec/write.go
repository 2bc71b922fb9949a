package codec

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phonlab/tgkit/internal/tg"
)

// Marshal renders grid in the short dialect. Gaps in every interval
// tier are filled with empty-label entries first so that Praat, which
// requires contiguous interval tiers, accepts the output.
func Marshal(grid *tg.Textgrid) []byte {
	grid = grid.FillGaps("")

	var b strings.Builder
	b.WriteString("File type = \"ooTextFile short\"\n")
	b.WriteString("\"TextGrid\"\n")
	b.WriteString("\n")
	b.WriteString(formatNum(grid.MinTime()) + "\n")
	b.WriteString(formatNum(grid.MaxTime()) + "\n")
	b.WriteString("<exists>\n")
	b.WriteString(strconv.Itoa(grid.Len()) + "\n")

	for _, name := range grid.TierNames() {
		tier, _ := grid.Tier(name)
		minTime, maxTime := tier.Bounds()
		switch t := tier.(type) {
		case *tg.IntervalTier:
			b.WriteString("\"" + intervalTierClass + "\"\n")
			writeTierHeader(&b, name, minTime, maxTime, t.Len())
			for _, e := range t.Entries() {
				b.WriteString(formatNum(e.Start) + "\n")
				b.WriteString(formatNum(e.End) + "\n")
				b.WriteString("\"" + e.Label + "\"\n")
			}
		case *tg.PointTier:
			b.WriteString("\"" + pointTierClass + "\"\n")
			writeTierHeader(&b, name, minTime, maxTime, t.Len())
			for _, e := range t.Entries() {
				b.WriteString(formatNum(e.Time) + "\n")
				b.WriteString("\"" + e.Label + "\"\n")
			}
		}
	}
	return []byte(b.String())
}

// Write renders grid in the short dialect and writes it as UTF-8.
func Write(grid *tg.Textgrid, path string) error {
	if err := os.WriteFile(path, Marshal(grid), 0o644); err != nil {
		return fmt.Errorf("write textgrid %s: %w", path, err)
	}
	return nil
}

func writeTierHeader(b *strings.Builder, name string, minTime, maxTime float64, count int) {
	b.WriteString("\"" + name + "\"\n")
	b.WriteString(formatNum(minTime) + "\n")
	b.WriteString(formatNum(maxTime) + "\n")
	b.WriteString(strconv.Itoa(count) + "\n")
}

// formatNum renders a time the shortest way that round-trips, so whole
// numbers come out without a trailing ".0".
func formatNum(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}

// Package pitch reads and writes the flat PitchTier text format and
// groups pitch samples by the intervals of a tier. The format is plain
// line-oriented text and shares nothing with the TextGrid codec.
package pitch

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phonlab/tgkit/internal/tg"
)

// headerLines is the fixed number of lines before sample data begins.
const headerLines = 6

// Sample is one pitch measurement.
type Sample struct {
	Value float64
	Time  float64
}

// ReadPitchTier loads a PitchTier file: a fixed-size header followed by
// alternating time and value lines. The header is returned verbatim so
// a file can be written back unchanged.
func ReadPitchTier(path string) ([]string, []Sample, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	if len(lines) < headerLines {
		return nil, nil, fmt.Errorf("pitch tier %s: %d header lines expected, got %d",
			path, headerLines, len(lines))
	}
	header := lines[:headerLines]

	var samples []Sample
	body := lines[headerLines:]
	for i := 0; i+1 < len(body); i += 2 {
		timeWord := strings.TrimSpace(body[i])
		valueWord := strings.TrimSpace(body[i+1])
		if timeWord == "" {
			break
		}
		time, err := strconv.ParseFloat(timeWord, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("pitch tier %s: bad time %q: %w", path, timeWord, err)
		}
		value, err := strconv.ParseFloat(valueWord, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("pitch tier %s: bad value %q: %w", path, valueWord, err)
		}
		samples = append(samples, Sample{Value: value, Time: time})
	}
	return header, samples, nil
}

// WritePitchTier writes header lines followed by alternating time and
// value lines, the same shape ReadPitchTier consumes.
func WritePitchTier(path string, header []string, samples []Sample) error {
	lines := make([]string, 0, len(header)+2*len(samples))
	lines = append(lines, header...)
	for _, s := range samples {
		lines = append(lines, formatNum(s.Time), formatNum(s.Value))
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write pitch tier %s: %w", path, err)
	}
	return nil
}

// Slice pairs an interval with the samples falling inside it.
type Slice struct {
	Interval tg.Interval
	Samples  []Sample
}

// SliceByIntervals groups samples by the labeled intervals of tier.
// Boundaries are inclusive on both sides, so a sample sitting exactly
// on a shared boundary lands in both neighbors. Every interval appears
// in the result, samples or not.
func SliceByIntervals(tier *tg.IntervalTier, samples []Sample) []Slice {
	entries := tier.Entries()
	slices := make([]Slice, 0, len(entries))
	for _, e := range entries {
		s := Slice{Interval: e}
		for _, sample := range samples {
			if e.Start <= sample.Time && sample.Time <= e.End {
				s.Samples = append(s.Samples, sample)
			}
		}
		slices = append(slices, s)
	}
	return slices
}

func formatNum(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}

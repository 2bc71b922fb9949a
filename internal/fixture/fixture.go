// Package fixture loads YAML descriptions of textgrids. Fixtures give
// tests and the build command a readable way to author annotation data
// without hand-writing either textual dialect.
package fixture

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phonlab/tgkit/internal/tg"
)

// Tier kind constants.
const (
	KindInterval = "interval"
	KindPoint    = "point"
)

// Document describes a textgrid.
type Document struct {
	// Name identifies the fixture. Informational only.
	Name string `yaml:"name"`

	// MinTime and MaxTime set the grid bounds. Optional; when omitted
	// the bounds come from the tiers.
	MinTime *float64 `yaml:"min_time,omitempty"`
	MaxTime *float64 `yaml:"max_time,omitempty"`

	// Tiers lists the tiers in display order.
	Tiers []TierDoc `yaml:"tiers"`
}

// TierDoc describes one tier.
type TierDoc struct {
	// Name uniquely identifies the tier within the grid.
	Name string `yaml:"name"`

	// Kind is "interval" or "point".
	Kind string `yaml:"kind"`

	// MinTime and MaxTime set explicit tier bounds. Optional.
	MinTime *float64 `yaml:"min_time,omitempty"`
	MaxTime *float64 `yaml:"max_time,omitempty"`

	// Intervals holds the entries of an interval tier.
	Intervals []IntervalDoc `yaml:"intervals,omitempty"`

	// Points holds the entries of a point tier.
	Points []PointDoc `yaml:"points,omitempty"`
}

// IntervalDoc is one labeled span.
type IntervalDoc struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Label string  `yaml:"label"`
}

// PointDoc is one labeled instant.
type PointDoc struct {
	Time  float64 `yaml:"time"`
	Label string  `yaml:"label"`
}

// Load reads and parses a fixture YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently dropping entries.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&doc); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &doc, nil
}

// Build constructs the textgrid a document describes.
func Build(doc *Document) (*tg.Textgrid, error) {
	grid := tg.NewTextgrid()
	for _, td := range doc.Tiers {
		opts := tierOptions(td)
		var (
			tier tg.Tier
			err  error
		)
		switch td.Kind {
		case KindInterval:
			entries := make([]tg.Interval, 0, len(td.Intervals))
			for _, e := range td.Intervals {
				entries = append(entries, tg.Interval{Start: e.Start, End: e.End, Label: e.Label})
			}
			tier, err = tg.NewIntervalTier(td.Name, entries, opts...)
		case KindPoint:
			entries := make([]tg.Point, 0, len(td.Points))
			for _, e := range td.Points {
				entries = append(entries, tg.Point{Time: e.Time, Label: e.Label})
			}
			tier, err = tg.NewPointTier(td.Name, entries, opts...)
		default:
			return nil, fmt.Errorf("tier %q: unknown tier kind %q", td.Name, td.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("tier %q: %w", td.Name, err)
		}
		if err := grid.AddTier(tier); err != nil {
			return nil, err
		}
	}
	if doc.MinTime != nil || doc.MaxTime != nil {
		return widenGrid(grid, doc.MinTime, doc.MaxTime)
	}
	return grid, nil
}

// LoadTextgrid loads a fixture file and builds its textgrid in one step.
func LoadTextgrid(path string) (*tg.Textgrid, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

func tierOptions(td TierDoc) []tg.TierOption {
	var opts []tg.TierOption
	if td.MinTime != nil {
		opts = append(opts, tg.WithMinTime(*td.MinTime))
	}
	if td.MaxTime != nil {
		opts = append(opts, tg.WithMaxTime(*td.MaxTime))
	}
	return opts
}

// widenGrid rebuilds the grid with every tier widened to the document
// bounds, because grid bounds only widen through tier addition. The
// document bounds may only widen what the tiers already cover.
func widenGrid(grid *tg.Textgrid, minTime, maxTime *float64) (*tg.Textgrid, error) {
	lo, hi := grid.MinTime(), grid.MaxTime()
	if minTime != nil && *minTime < lo {
		lo = *minTime
	}
	if maxTime != nil && *maxTime > hi {
		hi = *maxTime
	}
	out := tg.NewTextgrid()
	for _, name := range grid.TierNames() {
		tier, _ := grid.Tier(name)
		if err := out.AddTier(widenTier(tier, lo, hi)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func widenTier(tier tg.Tier, lo, hi float64) tg.Tier {
	switch t := tier.(type) {
	case *tg.IntervalTier:
		widened, err := tg.NewIntervalTier(t.Name(), t.Entries(), tg.WithBounds(lo, hi))
		if err != nil {
			return tier
		}
		return widened
	case *tg.PointTier:
		widened, err := tg.NewPointTier(t.Name(), t.Entries(), tg.WithBounds(lo, hi))
		if err != nil {
			return tier
		}
		return widened
	}
	return tier
}

// validate checks required fields and entry shape per tier kind.
func validate(doc *Document) error {
	if len(doc.Tiers) == 0 {
		return fmt.Errorf("tiers list is required and must be non-empty")
	}
	seen := make(map[string]bool, len(doc.Tiers))
	for i, td := range doc.Tiers {
		if td.Name == "" {
			return fmt.Errorf("tiers[%d]: name is required", i)
		}
		if seen[td.Name] {
			return fmt.Errorf("tiers[%d]: duplicate tier name %q", i, td.Name)
		}
		seen[td.Name] = true

		switch td.Kind {
		case KindInterval:
			if len(td.Points) > 0 {
				return fmt.Errorf("tiers[%d]: interval tier %q has points", i, td.Name)
			}
		case KindPoint:
			if len(td.Intervals) > 0 {
				return fmt.Errorf("tiers[%d]: point tier %q has intervals", i, td.Name)
			}
		default:
			return fmt.Errorf("tiers[%d]: unknown tier kind %q", i, td.Kind)
		}
	}
	return nil
}

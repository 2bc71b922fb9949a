package tg

import "github.com/phonlab/tgkit/internal/diag"

// Tier is the sealed union of IntervalTier and PointTier. Callers that
// need kind-specific behavior dispatch with a type switch; both variants
// are always handled exhaustively within this package.
type Tier interface {
	// Name returns the tier name.
	Name() string

	// Bounds returns the tier's min and max times.
	Bounds() (minTime, maxTime float64)

	// Len returns the number of entries.
	Len() int

	// renamed returns a copy of the tier under a new name.
	// Unexported so only the two in-package variants implement Tier.
	renamed(name string) Tier
}

// TierOption configures tier construction.
type TierOption func(*tierConfig)

type tierConfig struct {
	minTime *float64
	maxTime *float64
}

// WithBounds supplies explicit min and max times. Explicit bounds only
// ever widen the bounds implied by the entries.
func WithBounds(minTime, maxTime float64) TierOption {
	return func(c *tierConfig) {
		c.minTime = &minTime
		c.maxTime = &maxTime
	}
}

// WithMinTime supplies an explicit min time only.
func WithMinTime(minTime float64) TierOption {
	return func(c *tierConfig) {
		c.minTime = &minTime
	}
}

// WithMaxTime supplies an explicit max time only.
func WithMaxTime(maxTime float64) TierOption {
	return func(c *tierConfig) {
		c.maxTime = &maxTime
	}
}

// CollisionPolicy selects how Insert resolves overlapping entries.
type CollisionPolicy string

const (
	// Replace deletes every colliding entry, then inserts the new one.
	Replace CollisionPolicy = "replace"

	// Merge fuses the colliding entries and the new one into a single
	// spanning entry whose label joins all labels with "-".
	Merge CollisionPolicy = "merge"

	// Fail (the zero value behavior and any unrecognized policy) makes
	// the insert return a CollisionError without mutating anything.
	Fail CollisionPolicy = "error"
)

// EraseAction selects how EraseInterval treats overlapping entries.
type EraseAction string

const (
	// Truncate removes the overlapping portion, keeping clipped remnants
	// of the first and last overlapping entries.
	Truncate EraseAction = "truncate"

	// Categorical deletes every overlapping entry outright.
	Categorical EraseAction = "categorical"
)

// InsertOption configures a single Insert call.
type InsertOption func(*insertConfig)

type insertConfig struct {
	reporter diag.Reporter
}

// WithCollisionReporter registers a diagnostics reporter that receives an
// event whenever the insert resolves a collision under the replace or
// merge policy. The algebra itself never logs.
func WithCollisionReporter(r diag.Reporter) InsertOption {
	return func(c *insertConfig) {
		c.reporter = r
	}
}

// silentLabel reports whether a label marks non-speech. Silence spans keep
// their original durations under Manipulate and Morph.
func silentLabel(label string) bool {
	return label == "" || label == "sp"
}

package tg

import (
	"fmt"
	"strings"
)

// MalformedEntryError reports an interval whose start is not strictly
// before its end, or a tier built with no entries and no explicit bounds.
type MalformedEntryError struct {
	Start float64
	End   float64
	Label string

	// Timeless is set when the problem is a tier with no time extent
	// rather than a bad interval.
	Timeless bool
}

// Error implements the error interface.
func (e *MalformedEntryError) Error() string {
	if e.Timeless {
		return "tier must have a min and max time: no entries and no explicit bounds"
	}
	return fmt.Sprintf("malformed interval (%s, %s, %q): start must be before end",
		formatTime(e.Start), formatTime(e.End), e.Label)
}

// CollisionError reports an insert that found overlapping entries and had
// no policy to resolve them. No mutation occurs when it is returned.
type CollisionError struct {
	// TierName is the tier the insert targeted.
	TierName string

	// Attempted is the rendered form of the entry being inserted.
	Attempted string

	// Collisions holds the rendered forms of the overlapping entries.
	Collisions []string
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("attempted to insert entry %s into tier %q but overlapping entries %s already exist",
		e.Attempted, e.TierName, strings.Join(e.Collisions, ", "))
}

// PreconditionError reports a call whose arguments cannot be acted on:
// an unrecognized erase action with overlapping entries present, a
// timestamp edit that overshoots the tier bounds, a duplicate or unknown
// tier name, or a tier of the wrong kind.
type PreconditionError struct {
	Op      string
	Message string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func precondition(op, format string, args ...any) *PreconditionError {
	return &PreconditionError{Op: op, Message: fmt.Sprintf(format, args...)}
}

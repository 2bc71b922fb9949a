// Package tg models time-aligned annotation data: tiers of labeled
// intervals or points anchored to a shared timeline, grouped into
// textgrids.
//
// This is the foundational layer; it imports nothing internal except
// internal/diag. The codec and CLI build on top of it.
//
// Key design constraints:
//   - Entries are immutable values. Every transforming operation on a
//     tier or textgrid returns a new structure; inputs are never mutated.
//   - Tier entries are always sorted ascending by start time (intervals)
//     or time (points), ties broken by the natural tuple order.
//   - Tier bounds cover every entry. Explicit bounds supplied at
//     construction can only widen, never shrink, the bounds implied by
//     the entries. A tier with no entries and no explicit bounds cannot
//     be constructed.
//   - The two tier kinds sit behind the sealed Tier interface; callers
//     dispatch with exhaustive type switches, not a class hierarchy.
package tg

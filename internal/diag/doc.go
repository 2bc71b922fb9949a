// Package diag provides structured diagnostics for collision resolution.
//
// The tier algebra never prints or logs on its own. When an insert resolves
// a collision (replace or merge), the operation emits an Event to an
// optional Reporter supplied by the caller. Reporters decide what to do
// with the event: log it, collect it for later inspection, or drop it.
//
// Event IDs are UUIDv7 so events from a batch run can be correlated and
// ordered by creation time.
package diag

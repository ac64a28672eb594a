// Package engine reconciles locally edited gift allocations against a
// server-confirmed baseline. A Ledger merges the roster with sparse
// contribution records for one item, a Tracker does the same for an event's
// recipients, and both compute minimal change-sets that the Client submits
// in a single batch call. A process-wide Cache and Bus coordinate
// invalidation and refetches between independent views.
package engine

import "errors"

var (
	// ErrNoChanges is returned by a save when the draft matches the
	// baseline. Callers must skip the network call and report "no changes".
	ErrNoChanges = errors.New("no changes to save")

	// ErrSuperseded is returned by a load whose result arrived after a
	// newer load for the same owner had already started.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrNotLoaded is returned when a save is attempted before a
	// successful load.
	ErrNotLoaded = errors.New("not loaded")
)

// Allocation statuses tracked per recipient and per gift row.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Bus event names announced after successful saves.
const (
	EventListUpdated     = "list.updated"
	EventItemUpdated     = "item.updated"
	EventGroupUpdated    = "group.updated"
	EventTrackingUpdated = "tracking.updated"
)

// ValidStatus reports whether s is one of the known allocation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}

	return false
}

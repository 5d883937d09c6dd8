package match

import "fmt"

// ErrNotFound is returned when a match id does not exist.
var ErrNotFound = fmt.Errorf("match not found")

// ErrConflictNotResolved is returned when the storage layer failed to
// resolve an upsert conflict even after one retry, or when a guarded status
// update lost a race with a concurrent writer. Callers may safely retry.
var ErrConflictNotResolved = fmt.Errorf("conflict not resolved")

// ValidationError wraps a user-facing validation message for malformed input
// (bad requirement/skill vectors, unknown status strings, missing fields).
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// InvalidTransitionError is returned when the requested target status is not
// reachable from the match's current status. No state change occurred.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %s → %s is not allowed", e.From, e.To)
}

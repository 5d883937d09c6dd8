// Package match implements the job-candidate match engine: scoring upserts,
// the review status state machine, and the read queries backing match lists.
//
// Valid status graph:
//
//	not_started ──► in_progress ──► completed ──► flagged ────┐
//	                                    │            │        ▼
//	                                    │            ├──► waitlisted ──► proceed
//	                                    │            │        │
//	                                    └────────────┴────────┴──► proceed | rejected
//
// Every non-terminal state may additionally move to expired (retention
// cutoff). proceed, rejected and expired are terminal. waitlisted is
// semi-terminal: it can still resolve to proceed or rejected. Once completed
// is reached, no transition leads back toward not_started or in_progress —
// re-scoring happens by submitting a new analysis, never by rewinding status.
package match

import "fmt"

// Status values mirror the match_status enum in PostgreSQL.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFlagged    Status = "flagged"
	StatusProceed    Status = "proceed"
	StatusRejected   Status = "rejected"
	StatusWaitlisted Status = "waitlisted"
	StatusExpired    Status = "expired"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusNotStarted: {StatusInProgress, StatusExpired},
	StatusInProgress: {StatusCompleted, StatusExpired},
	StatusCompleted:  {StatusFlagged, StatusProceed, StatusRejected, StatusWaitlisted, StatusExpired},
	StatusFlagged:    {StatusProceed, StatusRejected, StatusWaitlisted, StatusExpired},
	StatusWaitlisted: {StatusProceed, StatusRejected, StatusExpired},
	// proceed, rejected and expired are terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusFlagged,
		StatusProceed, StatusRejected, StatusWaitlisted, StatusExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses with no outgoing transitions
// (proceed, rejected, expired). The expiry sweep skips these rows.
func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok
}

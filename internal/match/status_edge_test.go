package match_test

// ── Additional edge-case tests ────────────────────────────────────────────
//
// This file extends status_test.go with cases around the reviewer fan-out
// and the waitlist. The core state-machine matrix is already covered in
// status_test.go.

import (
	"testing"

	"repohire/match-service/internal/match"
)

// ParseStatus must be case-sensitive — uppercase variants must not be valid.
func TestParseStatus_CaseSensitive(t *testing.T) {
	uppercase := []string{
		"NOT_STARTED", "IN_PROGRESS", "COMPLETED", "FLAGGED",
		"PROCEED", "REJECTED", "WAITLISTED", "EXPIRED",
	}
	for _, s := range uppercase {
		_, err := match.ParseStatus(s)
		if err == nil {
			t.Errorf("ParseStatus(%q) should reject uppercase value, got nil error", s)
		}
	}
}

// ParseStatus must reject whitespace-padded strings.
func TestParseStatus_WithWhitespace(t *testing.T) {
	padded := []string{" completed", "completed ", " completed "}
	for _, s := range padded {
		_, err := match.ParseStatus(s)
		if err == nil {
			t.Errorf("ParseStatus(%q) should reject padded value, got nil error", s)
		}
	}
}

// All eight constants must round-trip through ParseStatus without error.
func TestParseStatus_AllConstantsRoundTrip(t *testing.T) {
	for _, s := range allStatuses {
		got, err := match.ParseStatus(string(s))
		if err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

// waitlisted is semi-terminal: it may still resolve to proceed or rejected,
// but never back into review (flagged) or scoring states.
func TestIsTransitionAllowed_WaitlistedResolution(t *testing.T) {
	if !match.IsTransitionAllowed(match.StatusWaitlisted, match.StatusProceed) {
		t.Error("IsTransitionAllowed(waitlisted → proceed) should be true")
	}
	if !match.IsTransitionAllowed(match.StatusWaitlisted, match.StatusRejected) {
		t.Error("IsTransitionAllowed(waitlisted → rejected) should be true")
	}
	for _, to := range []match.Status{
		match.StatusNotStarted,
		match.StatusInProgress,
		match.StatusCompleted,
		match.StatusFlagged,
	} {
		if match.IsTransitionAllowed(match.StatusWaitlisted, to) {
			t.Errorf("IsTransitionAllowed(waitlisted → %s) should be false", to)
		}
	}
}

// completed is the reviewer entry point: every human verdict fans out from
// it, and nothing else fans out into scoring states.
func TestIsTransitionAllowed_CompletedFanOut(t *testing.T) {
	verdicts := []match.Status{
		match.StatusFlagged,
		match.StatusProceed,
		match.StatusRejected,
		match.StatusWaitlisted,
	}
	for _, to := range verdicts {
		if !match.IsTransitionAllowed(match.StatusCompleted, to) {
			t.Errorf("IsTransitionAllowed(completed → %s) should be true (reviewer verdict)", to)
		}
	}
}

// expired must never be a source state, even toward another terminal.
func TestIsTransitionAllowed_ExpiredIsFinal(t *testing.T) {
	for _, to := range allStatuses {
		if match.IsTransitionAllowed(match.StatusExpired, to) {
			t.Errorf("IsTransitionAllowed(expired → %s) should be false", to)
		}
	}
}

// not_started is only an initial state; verify it is never reachable.
func TestIsTransitionAllowed_NotStartedIsNeverReachable(t *testing.T) {
	for _, from := range allStatuses {
		if match.IsTransitionAllowed(from, match.StatusNotStarted) {
			t.Errorf(
				"IsTransitionAllowed(%s → not_started) must be false: not_started is only an initial state",
				from,
			)
		}
	}
}

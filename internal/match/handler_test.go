package match

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
)

// The HTTP status split is part of the contract: callers distinguish
// "retry is safe" (503) from "not permitted from this state" (409) from
// "bad input" (400).
func TestWriteError_StatusMapping(t *testing.T) {
	h := &Handler{}
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Msg: "bad vector"}, 400},
		{"invalid transition", &InvalidTransitionError{From: StatusNotStarted, To: StatusRejected}, 409},
		{"not found", ErrNotFound, 404},
		{"wrapped not found", fmt.Errorf("getMatch: %w", ErrNotFound), 404},
		{"conflict not resolved", ErrConflictNotResolved, 503},
		{"unknown", errors.New("boom"), 500},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		h.writeError(rec, "test", c.err)
		if rec.Code != c.want {
			t.Errorf("%s: writeError status = %d, want %d", c.name, rec.Code, c.want)
		}
	}
}

func TestInvalidTransitionError_Message(t *testing.T) {
	err := &InvalidTransitionError{From: StatusNotStarted, To: StatusRejected}
	want := "transition not_started → rejected is not allowed"
	if err.Error() != want {
		t.Errorf("InvalidTransitionError.Error() = %q, want %q", err.Error(), want)
	}
}

package assignment_test

import (
	"encoding/json"
	"testing"

	"repohire/match-service/internal/assignment"
)

// The canonical empty-progress object must serialize as a JSON object with
// all three fields present — never null, never a bare array. The reconciler
// writes this exact shape over historically corrupted rows.
func TestEmptyProgress_CanonicalShape(t *testing.T) {
	raw, err := json.Marshal(assignment.EmptyProgress())
	if err != nil {
		t.Fatalf("marshal EmptyProgress: %v", err)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("EmptyProgress did not serialize as a JSON object: %s", raw)
	}

	for _, field := range []string{"mainTask", "subtasks", "completedCount"} {
		if _, ok := generic[field]; !ok {
			t.Errorf("EmptyProgress missing field %q: %s", field, raw)
		}
	}

	// subtasks must be [], not null
	if string(generic["subtasks"]) != "[]" {
		t.Errorf("EmptyProgress subtasks = %s, want []", generic["subtasks"])
	}
	if string(generic["completedCount"]) != "0" {
		t.Errorf("EmptyProgress completedCount = %s, want 0", generic["completedCount"])
	}
}

func TestEmptyProgress_RoundTrip(t *testing.T) {
	raw, _ := json.Marshal(assignment.EmptyProgress())
	var p assignment.Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("unmarshal EmptyProgress: %v", err)
	}
	if p.MainTask != "" || len(p.Subtasks) != 0 || p.CompletedCount != 0 {
		t.Errorf("EmptyProgress round-trip changed values: %+v", p)
	}
}

package reconcile_test

import (
	"strings"
	"testing"

	"repohire/match-service/internal/reconcile"
)

// A re-run of the reconciler must synthesize the same placeholder for the
// same row, or the fallback-fill would not be idempotent.
func TestPlaceholderRepoName_Deterministic(t *testing.T) {
	a := reconcile.PlaceholderRepoName("match-1", "analysis-9")
	b := reconcile.PlaceholderRepoName("match-1", "analysis-9")
	if a != b {
		t.Errorf("PlaceholderRepoName not deterministic: %q != %q", a, b)
	}
}

func TestPlaceholderRepoName_UniquePerRow(t *testing.T) {
	seen := make(map[string]string)
	cases := []struct{ matchID, analysisID string }{
		{"match-1", "analysis-1"},
		{"match-1", "analysis-2"},
		{"match-2", "analysis-1"},
		{"match-2", ""},
		{"match-3", ""},
		{"", "analysis-1"},
	}
	for _, c := range cases {
		name := reconcile.PlaceholderRepoName(c.matchID, c.analysisID)
		key := c.matchID + "|" + c.analysisID
		if prev, ok := seen[name]; ok {
			t.Errorf("placeholder collision: %q produced by both %q and %q", name, prev, key)
		}
		seen[name] = key
	}
}

// Placeholders live under an owner segment no hosting platform can issue,
// so they can never shadow a real owner/repo name.
func TestPlaceholderRepoName_ReservedOwnerSegment(t *testing.T) {
	name := reconcile.PlaceholderRepoName("match-1", "analysis-1")
	if !strings.HasPrefix(name, "__missing__/") {
		t.Errorf("PlaceholderRepoName = %q, want __missing__/ prefix", name)
	}
	if strings.Count(name, "/") != 1 {
		t.Errorf("PlaceholderRepoName = %q, want exactly one / separator", name)
	}
}

// Concatenation of the two ids must not be ambiguous: ("ab","c") and
// ("a","bc") are different rows and need different placeholders.
func TestPlaceholderRepoName_NoConcatenationAmbiguity(t *testing.T) {
	a := reconcile.PlaceholderRepoName("ab", "c")
	b := reconcile.PlaceholderRepoName("a", "bc")
	if a == b {
		t.Errorf("PlaceholderRepoName ambiguous concatenation: %q == %q", a, b)
	}
}

package scoring_test

import (
	"errors"
	"math"
	"testing"

	"repohire/match-service/internal/scoring"
)

// ── Score — bounds and base cases ──────────────────────────────────────────

func TestScore_EmptyRequirementsIsZero(t *testing.T) {
	got := scoring.Score(map[string]float64{}, map[string]float64{"Go": 0.9})
	if got != 0 {
		t.Errorf("Score(empty requirements) = %v, want 0", got)
	}
	got = scoring.Score(nil, nil)
	if got != 0 {
		t.Errorf("Score(nil, nil) = %v, want 0", got)
	}
}

func TestScore_AbsentSkillCountsAsZero(t *testing.T) {
	got := scoring.Score(
		map[string]float64{"Go": 1.0},
		map[string]float64{"Rust": 1.0},
	)
	if got != 0 {
		t.Errorf("Score with disjoint vectors = %v, want 0", got)
	}
}

func TestScore_FullCoverageIsHundred(t *testing.T) {
	reqs := map[string]float64{"Go": 0.6, "SQL": 0.4, "Docker": 0.2}
	skills := map[string]float64{"Go": 1.0, "SQL": 1.0, "Docker": 1.0}
	got := scoring.Score(reqs, skills)
	if got != 100 {
		t.Errorf("Score(full coverage) = %v, want 100", got)
	}
}

// Strengths above 1 must be clamped, never push the score past 100.
func TestScore_StrengthClampedToOne(t *testing.T) {
	got := scoring.Score(
		map[string]float64{"Go": 0.5},
		map[string]float64{"Go": 3.7},
	)
	if got != 100 {
		t.Errorf("Score(strength > 1) = %v, want 100 (clamped)", got)
	}
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	cases := []struct {
		name   string
		reqs   map[string]float64
		skills map[string]float64
	}{
		{"partial overlap", map[string]float64{"Go": 0.6, "SQL": 0.4}, map[string]float64{"Go": 0.5}},
		{"oversized weights", map[string]float64{"Go": 12, "SQL": 5}, map[string]float64{"Go": 0.9, "SQL": 0.1}},
		{"tiny weights", map[string]float64{"Go": 1e-9}, map[string]float64{"Go": 1e-9}},
		{"zero-weight requirements", map[string]float64{"Go": 0, "SQL": 0}, map[string]float64{"Go": 1}},
	}
	for _, c := range cases {
		got := scoring.Score(c.reqs, c.skills)
		if got < 0 || got > 100 {
			t.Errorf("%s: Score = %v, want within [0,100]", c.name, got)
		}
	}
}

// ── Score — exact value and determinism ────────────────────────────────────

// The canonical worked example: {Go:0.6, SQL:0.4} vs {Go:0.9, SQL:0.2}
// = (0.6×0.9 + 0.4×0.2) / 1.0 × 100 = 62.
func TestScore_WeightedOverlapValue(t *testing.T) {
	reqs := map[string]float64{"Go": 0.6, "SQL": 0.4}
	skills := map[string]float64{"Go": 0.9, "SQL": 0.2}
	got := scoring.Score(reqs, skills)
	if math.Abs(got-62) > 1e-9 {
		t.Errorf("Score = %v, want 62", got)
	}
}

func TestScore_Deterministic(t *testing.T) {
	reqs := map[string]float64{"Go": 0.6, "SQL": 0.4, "Kubernetes": 0.3, "React": 0.1}
	skills := map[string]float64{"Go": 0.7, "Kubernetes": 0.2, "React": 0.95}
	first := scoring.Score(reqs, skills)
	for i := 0; i < 50; i++ {
		if got := scoring.Score(reqs, skills); got != first {
			t.Fatalf("Score not deterministic: run %d = %v, first = %v", i, got, first)
		}
	}
}

// Technology names are matched case-sensitively: "go" is not "Go".
func TestScore_CaseSensitiveKeys(t *testing.T) {
	got := scoring.Score(
		map[string]float64{"Go": 1.0},
		map[string]float64{"go": 1.0},
	)
	if got != 0 {
		t.Errorf("Score with mismatched case = %v, want 0", got)
	}
}

// ── Score — monotonicity ───────────────────────────────────────────────────

// Raising any single skill strength (others fixed) never lowers the score.
func TestScore_MonotoneInSkillStrength(t *testing.T) {
	reqs := map[string]float64{"Go": 0.6, "SQL": 0.4, "Docker": 0.25}
	for _, tech := range []string{"Go", "SQL", "Docker"} {
		prev := -1.0
		for s := 0.0; s <= 1.2; s += 0.1 {
			skills := map[string]float64{"Go": 0.3, "SQL": 0.5, "Docker": 0.1}
			skills[tech] = s
			got := scoring.Score(reqs, skills)
			if got < prev {
				t.Errorf("Score decreased when raising %s to %.1f: %v < %v", tech, s, got, prev)
			}
			prev = got
		}
	}
}

// ── ValidateVector ─────────────────────────────────────────────────────────

func TestValidateVector_AcceptsWellFormed(t *testing.T) {
	vectors := []map[string]float64{
		nil,
		{},
		{"Go": 0},
		{"Go": 0.5, "SQL": 1.0},
		{"Go": 2.5}, // above 1 is tolerated, Score clamps
	}
	for _, v := range vectors {
		if err := scoring.ValidateVector(v); err != nil {
			t.Errorf("ValidateVector(%v) unexpected error: %v", v, err)
		}
	}
}

func TestValidateVector_RejectsMalformed(t *testing.T) {
	vectors := []map[string]float64{
		{"Go": -0.1},
		{"Go": 0.5, "SQL": -3},
		{"Go": math.NaN()},
		{"Go": math.Inf(1)},
		{"Go": math.Inf(-1)},
	}
	for _, v := range vectors {
		err := scoring.ValidateVector(v)
		if err == nil {
			t.Errorf("ValidateVector(%v) expected error, got nil", v)
			continue
		}
		var iw *scoring.InvalidWeightError
		if !errors.As(err, &iw) {
			t.Errorf("ValidateVector(%v) error type = %T, want *InvalidWeightError", v, err)
		}
	}
}

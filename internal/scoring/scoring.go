// Package scoring computes the weighted compatibility score between a job's
// required technology stacks and a candidate's analyzed repository skills.
//
// Score is a pure function: no I/O, no side effects, identical inputs always
// yield the identical output. The match service relies on that determinism to
// treat a re-score of the same analysis as an in-place update.
package scoring

import "math"

// Score returns the weighted-overlap compatibility of skills against
// requirements, in [0,100].
//
// For each technology in requirements with weight w, the candidate's strength
// s (0 when absent, clamped to 1) contributes w*s to the numerator and w to
// the denominator; the result is numerator/denominator × 100. Technology
// names are compared by case-sensitive exact match. A job with no declared
// requirements scores 0.
func Score(requirements, skills map[string]float64) float64 {
	if len(requirements) == 0 {
		return 0
	}

	var num, den float64
	for tech, weight := range requirements {
		strength := skills[tech]
		if strength > 1 {
			strength = 1
		}
		num += weight * strength
		den += weight
	}
	if den <= 0 {
		return 0
	}

	score := num / den * 100
	return math.Min(100, math.Max(0, score))
}

// ValidateVector rejects malformed requirement/skill vectors before any
// write: negative weights, NaN and infinities are all invalid. Weights above
// 1 are tolerated on input (Score clamps strengths; requirement weights are
// conventionally 0–1 but unbounded).
func ValidateVector(v map[string]float64) error {
	for tech, w := range v {
		switch {
		case math.IsNaN(w) || math.IsInf(w, 0):
			return &InvalidWeightError{Tech: tech, Weight: w}
		case w < 0:
			return &InvalidWeightError{Tech: tech, Weight: w}
		}
	}
	return nil
}

// InvalidWeightError reports the offending entry of a rejected vector.
type InvalidWeightError struct {
	Tech   string
	Weight float64
}

func (e *InvalidWeightError) Error() string {
	return "invalid weight for technology " + e.Tech
}

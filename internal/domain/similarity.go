package domain

import "math"

// SimilarityThreshold is the score a historical session must strictly exceed
// to count as supporting evidence.
const SimilarityThreshold = 0.6

const similarityEpsilon = 1e-9

// Factor weights and tolerances, in metric units after normalization.
const (
	swellHeightWeight    = 0.4
	windSpeedWeight      = 0.3
	swellPeriodWeight    = 0.2
	windDirectionWeight  = 0.1
	swellHeightTolerance = 1.0  // metres
	windSpeedTolerance   = 37.0 // km/h, roughly 20 knots
	swellPeriodTolerance = 5.0  // seconds
)

// Similarity scores how alike two readings are, in [0, 1]. Factors missing
// from either side are left out of both the score and the weight total, and
// two readings with nothing in common score 0.
func Similarity(current, historical EnvironmentalReading) float64 {
	var score, weight float64

	add := func(w, s float64) {
		score += w * s
		weight += w
	}

	if present(current.SwellHeightFeet) && present(historical.SwellHeightFeet) {
		d := tenthsDiff(FeetToMetres(*current.SwellHeightFeet), FeetToMetres(*historical.SwellHeightFeet))
		add(swellHeightWeight, linearFalloff(d, swellHeightTolerance))
	}

	if present(current.WindSpeedKnots) && present(historical.WindSpeedKnots) {
		d := tenthsDiff(KnotsToKmh(*current.WindSpeedKnots), KnotsToKmh(*historical.WindSpeedKnots))
		add(windSpeedWeight, linearFalloff(d, windSpeedTolerance))
	}

	if present(current.SwellPeriodSeconds) && present(historical.SwellPeriodSeconds) {
		d := math.Abs(*current.SwellPeriodSeconds - *historical.SwellPeriodSeconds)
		add(swellPeriodWeight, linearFalloff(d, swellPeriodTolerance))
	}

	if current.WindDirection != "" && historical.WindDirection != "" {
		s := 0.0
		if current.WindDirection == historical.WindDirection {
			s = 1
		}
		add(windDirectionWeight, s)
	}

	if weight == 0 {
		return 0
	}
	return score / weight
}

// tenthsDiff is the absolute difference of two values already rounded to one
// decimal, computed in whole tenths so 1.4 - 1.0 is exactly 0.4.
func tenthsDiff(a, b float64) float64 {
	return math.Abs(math.Round(a*10)-math.Round(b*10)) / 10
}

// exceedsThreshold reports whether score is strictly above
// SimilarityThreshold. Scores within similarityEpsilon of the threshold are
// treated as equal to it, since the weighted average picks up rounding noise.
func exceedsThreshold(score float64) bool {
	return score-SimilarityThreshold > similarityEpsilon
}

// linearFalloff is 1 at zero difference, 0 at or beyond the tolerance.
func linearFalloff(diff, tolerance float64) float64 {
	return math.Max(0, 1-diff/tolerance)
}

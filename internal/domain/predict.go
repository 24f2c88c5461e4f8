package domain

// maxConfidenceSessions is the supporting session count at which confidence
// saturates at 100%.
const maxConfidenceSessions = 10

// Predict derives a prediction for b from the current reading and the user's
// rated history at that break. A nil current reading, or no session whose
// reading clears SimilarityThreshold, yields RatingUnknown with zero
// confidence. The current reading is attached whenever it exists.
func Predict(b Break, current *EnvironmentalReading, history []HistoricalSession) Prediction {
	p := Prediction{
		BreakID:         b.ID,
		BreakName:       b.Name,
		Region:          b.Region,
		PredictedRating: RatingUnknown,
		CurrentReading:  current,
		GeneratedAt:     clock.Now(),
	}
	if current == nil {
		return p
	}

	var supporting []Rating
	for _, h := range history {
		if h.Reading == nil {
			continue
		}
		if exceedsThreshold(Similarity(*current, *h.Reading)) {
			supporting = append(supporting, h.Rating)
		}
	}
	if len(supporting) == 0 {
		return p
	}

	p.PredictedRating = MajorityRating(supporting)
	p.SupportingSessionCount = len(supporting)
	p.ConfidencePercent = Confidence(len(supporting))
	return p
}

// MajorityRating returns the most frequent rating. Ties go to the rating
// listed first in RatingPriority. An empty input yields RatingUnknown.
func MajorityRating(ratings []Rating) Rating {
	counts := make(map[Rating]int, len(RatingPriority))
	for _, r := range ratings {
		counts[r]++
	}

	best, bestCount := RatingUnknown, 0
	for _, r := range RatingPriority {
		if counts[r] > bestCount {
			best, bestCount = r, counts[r]
		}
	}
	return best
}

// Confidence scales linearly with the supporting session count, 10 points per
// session, capped at 100.
func Confidence(supporting int) int {
	if supporting <= 0 {
		return 0
	}
	if supporting >= maxConfidenceSessions {
		return 100
	}
	return supporting * 100 / maxConfidenceSessions
}

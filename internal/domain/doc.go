// Package domain models surf breaks, rated sessions and the environmental
// readings recorded for them, and implements the similarity-based prediction
// of how a break will surf right now.
//
// # Reading Source
//
// Readings originate from a regional swell forecast scraper that publishes one
// JSON message per break, date and time slot to the Kafka source topic. The
// field names follow the scraper's forecast table:
//
//	{"break_id": "…", "forecast_date": "2025-01-18", "forecast_time": "8am",
//	 "swell_height": 4.5, "swell_period": 11, "wind_speed": 12,
//	 "wind_direction": "SE", "swell_direction": "SSE"}
//
// Units as stored:
//
//	swell_height    feet
//	swell_period    seconds
//	wind_speed      knots
//	*_direction     16-point compass string, e.g. "NE", "SSW"
//
// A missing, null or zero numeric value and an empty direction mean the
// scraper had no value for that factor. Such factors are skipped when scoring
// rather than penalized.
//
// # Time Slots
//
// Sessions and readings share one fixed slot vocabulary, see [TimeSlot]:
//
//	6am 8am 10am 12pm 2pm 4pm 6pm 8pm
//
// Each slot covers a two hour window starting at its label; hours before 8am
// resolve to 6am and hours from 8pm onward resolve to 8pm. The older
// morning/midday/afternoon labels are rejected so that a session can never be
// recorded under a key the prediction lookup will not ask for.
//
// # Unit Normalization
//
// All comparisons run in metric units after rounding to one decimal place:
//
//	feet  → metres  × 0.3048
//	knots → km/h    × 1.852
//
// # Similarity
//
// Each factor contributes a linear falloff clamped at zero, weighted:
//
//	swell height    0.4   tolerance 1 m
//	wind speed      0.3   tolerance 37 km/h
//	swell period    0.2   tolerance 5 s
//	wind direction  0.1   exact match
//
// The score is the weighted mean over the factors both readings carry. A
// historical session supports a prediction when its score is strictly above
// [SimilarityThreshold].
//
// # Prediction
//
// The predicted rating is the most common rating among supporting sessions,
// ties resolved by [RatingPriority]. Confidence grows by ten percentage points
// per supporting session and saturates at 100. It is a count, not a
// probability.
package domain

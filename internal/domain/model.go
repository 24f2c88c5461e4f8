package domain

import (
	"context"
	"time"
)

// DateLayout is the civil date format used for session and reading keys.
const DateLayout = "2006-01-02"

// Rating is a user's subjective verdict on a session.
type Rating string

const (
	RatingAmazing Rating = "amazing"
	RatingFun     Rating = "fun"
	RatingBad     Rating = "bad"
	RatingUnknown Rating = "unknown" // only ever predicted, never logged
)

// RatingPriority orders ratings for majority-vote tie breaks: earlier wins.
var RatingPriority = []Rating{RatingAmazing, RatingFun, RatingBad}

// EnvironmentalReading is the set of conditions recorded for a break at one
// date and time slot. Stored in imperial units; see the package docs.
type EnvironmentalReading struct {
	SwellHeightFeet    *float64 `json:"swell_height,omitempty"`
	SwellPeriodSeconds *float64 `json:"swell_period,omitempty"`
	WindSpeedKnots     *float64 `json:"wind_speed,omitempty"`
	WindDirection      string   `json:"wind_direction,omitempty"`
	SwellDirection     string   `json:"swell_direction,omitempty"`
}

// Clone returns a copy of r that shares no memory with it.
func (r EnvironmentalReading) Clone() EnvironmentalReading {
	r.SwellHeightFeet = cloneFloat(r.SwellHeightFeet)
	r.SwellPeriodSeconds = cloneFloat(r.SwellPeriodSeconds)
	r.WindSpeedKnots = cloneFloat(r.WindSpeedKnots)
	return r
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Break is a named surf location owned by a single user.
type Break struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	SourceURL string    `json:"source_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a logged, rated surf at a break.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BreakID   string    `json:"break_id"`
	Rating    Rating    `json:"rating"`
	Date      string    `json:"session_date"`
	TimeSlot  TimeSlot  `json:"session_time"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoricalSession pairs a session with the reading recorded for its break,
// date and slot. Reading is nil when nothing was recorded.
type HistoricalSession struct {
	Session
	Reading *EnvironmentalReading
}

// ReadingRecord is one keyed reading as ingested from the source topic.
type ReadingRecord struct {
	BreakID  string               `json:"break_id"`
	Date     string               `json:"forecast_date"`
	TimeSlot TimeSlot             `json:"forecast_time"`
	Reading  EnvironmentalReading `json:"reading"`
}

// Prediction is the derived forecast quality for a break. It is never stored.
type Prediction struct {
	BreakID                string                `json:"break_id"`
	BreakName              string                `json:"break_name"`
	Region                 string                `json:"region"`
	Date                   string                `json:"date,omitempty"`
	TimeSlot               TimeSlot              `json:"time_slot,omitempty"`
	PredictedRating        Rating                `json:"prediction"`
	ConfidencePercent      int                   `json:"confidence"`
	SupportingSessionCount int                   `json:"similar_sessions"`
	CurrentReading         *EnvironmentalReading `json:"current_forecast"`
	GeneratedAt            time.Time             `json:"generated_at"`
}

// SessionStats summarizes a user's logged sessions by rating.
type SessionStats struct {
	Total   int `json:"total"`
	Amazing int `json:"amazing"`
	Fun     int `json:"fun"`
	Bad     int `json:"bad"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

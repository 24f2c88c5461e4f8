package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidReading marks a source message that cannot become a ReadingRecord.
var ErrInvalidReading = errors.New("invalid reading")

// rawReading is the flat JSON structure published by the forecast scraper.
type rawReading struct {
	BreakID        string   `json:"break_id"`
	ForecastDate   string   `json:"forecast_date"`
	ForecastTime   string   `json:"forecast_time"`
	SwellHeight    *float64 `json:"swell_height"`
	SwellPeriod    *float64 `json:"swell_period"`
	WindSpeed      *float64 `json:"wind_speed"`
	WindDirection  string   `json:"wind_direction"`
	SwellDirection string   `json:"swell_direction"`
}

// ParseRawReading deserializes and validates a scraper message. The key
// fields must be present and well formed; measurements are optional but may
// not be negative. Directions are upper-cased.
func ParseRawReading(raw RawEvent) (ReadingRecord, error) {
	var rec rawReading
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return ReadingRecord{}, fmt.Errorf("parse raw reading: %w", err)
	}

	breakID := strings.TrimSpace(rec.BreakID)
	if breakID == "" {
		return ReadingRecord{}, fmt.Errorf("%w: missing break_id", ErrInvalidReading)
	}
	date, err := ParseDate(rec.ForecastDate)
	if err != nil {
		return ReadingRecord{}, err
	}
	slot, err := ParseTimeSlot(rec.ForecastTime)
	if err != nil {
		return ReadingRecord{}, err
	}

	for name, v := range map[string]*float64{
		"swell_height": rec.SwellHeight,
		"swell_period": rec.SwellPeriod,
		"wind_speed":   rec.WindSpeed,
	} {
		if v != nil && *v < 0 {
			return ReadingRecord{}, fmt.Errorf("%w: negative %s %g", ErrInvalidReading, name, *v)
		}
	}

	return ReadingRecord{
		BreakID:  breakID,
		Date:     date,
		TimeSlot: slot,
		Reading: EnvironmentalReading{
			SwellHeightFeet:    rec.SwellHeight,
			SwellPeriodSeconds: rec.SwellPeriod,
			WindSpeedKnots:     rec.WindSpeed,
			WindDirection:      normalizeDirection(rec.WindDirection),
			SwellDirection:     normalizeDirection(rec.SwellDirection),
		},
	}, nil
}

func normalizeDirection(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

package prediction_test

import (
	"context"
	"errors"
	"sync"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
)

var errUnavailable = errors.New("collaborator unavailable")

type fakeSessions struct {
	breaks      map[string][]domain.Break
	sessions    map[string][]domain.Session // by break id
	breaksErr   error
	sessionsErr map[string]error // by break id
}

func (f *fakeSessions) GetBreaksForUser(_ context.Context, userID string) ([]domain.Break, error) {
	if f.breaksErr != nil {
		return nil, f.breaksErr
	}
	return f.breaks[userID], nil
}

func (f *fakeSessions) GetSessionsForUserAndBreak(_ context.Context, _, breakID string) ([]domain.Session, error) {
	if err := f.sessionsErr[breakID]; err != nil {
		return nil, err
	}
	return f.sessions[breakID], nil
}

type fakeReadings struct {
	mu       sync.Mutex
	readings map[string]domain.EnvironmentalReading
	errs     map[string]error
	calls    int
}

func readingKey(breakID, date string, slot domain.TimeSlot) string {
	return breakID + "|" + date + "|" + string(slot)
}

func (f *fakeReadings) GetReading(_ context.Context, breakID, date string, slot domain.TimeSlot) (*domain.EnvironmentalReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	k := readingKey(breakID, date, slot)
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	r, ok := f.readings[k]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func reading(swellFt, periodS, windKt float64, windDir string) domain.EnvironmentalReading {
	return domain.EnvironmentalReading{
		SwellHeightFeet:    &swellFt,
		SwellPeriodSeconds: &periodS,
		WindSpeedKnots:     &windKt,
		WindDirection:      windDir,
	}
}

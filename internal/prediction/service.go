// Package prediction turns a user's breaks, rated sessions and recorded
// readings into current-slot predictions, on request or on a schedule.
package prediction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	"github.com/couchcryptid/surf-prediction-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// SessionSource provides a user's breaks and the sessions logged at them.
type SessionSource interface {
	GetBreaksForUser(ctx context.Context, userID string) ([]domain.Break, error)
	GetSessionsForUserAndBreak(ctx context.Context, userID, breakID string) ([]domain.Session, error)
}

// ReadingSource looks up the reading recorded for a break at a date and slot.
// It returns nil, nil when no reading exists.
type ReadingSource interface {
	GetReading(ctx context.Context, breakID, date string, slot domain.TimeSlot) (*domain.EnvironmentalReading, error)
}

// Service computes predictions for every break a user owns.
type Service struct {
	sessions    SessionSource
	readings    ReadingSource
	loc         *time.Location
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewService creates a Service. The present date and slot are resolved in
// loc; at most concurrency breaks are evaluated at once.
func NewService(sessions SessionSource, readings ReadingSource, loc *time.Location, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		sessions:    sessions,
		readings:    readings,
		loc:         loc,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// PredictForUser returns one prediction per break, in break order. A break
// whose data cannot be fetched is logged and left out; it does not affect
// the others. Only failing to list the breaks fails the call.
func (s *Service) PredictForUser(ctx context.Context, userID string) ([]domain.Prediction, error) {
	start := time.Now()
	defer func() { s.metrics.PredictionDuration.Observe(time.Since(start).Seconds()) }()

	breaks, err := s.sessions.GetBreaksForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading breaks for user %s: %w", userID, err)
	}

	date, slot := domain.CurrentKey(s.loc)
	results := make([]*domain.Prediction, len(breaks))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, b := range breaks {
		g.Go(func() error {
			p, err := s.predictBreak(ctx, userID, b, date, slot)
			if err != nil {
				s.logger.Warn("prediction failed, omitting break",
					"error", err, "user_id", userID, "break_id", b.ID)
				s.metrics.PredictionFailures.Inc()
				return nil
			}
			results[i] = &p
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	predictions := make([]domain.Prediction, 0, len(breaks))
	for _, p := range results {
		if p != nil {
			predictions = append(predictions, *p)
		}
	}
	s.logger.Debug("predictions computed", "user_id", userID, "breaks", len(breaks), "predictions", len(predictions))
	return predictions, nil
}

func (s *Service) predictBreak(ctx context.Context, userID string, b domain.Break, date string, slot domain.TimeSlot) (domain.Prediction, error) {
	sessions, err := s.sessions.GetSessionsForUserAndBreak(ctx, userID, b.ID)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("loading sessions: %w", err)
	}

	current, err := s.readings.GetReading(ctx, b.ID, date, slot)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("loading current reading: %w", err)
	}

	history := make([]domain.HistoricalSession, 0, len(sessions))
	for _, sess := range sessions {
		r, err := s.readings.GetReading(ctx, b.ID, sess.Date, sess.TimeSlot)
		if err != nil {
			return domain.Prediction{}, fmt.Errorf("loading reading for session %s: %w", sess.ID, err)
		}
		history = append(history, domain.HistoricalSession{Session: sess, Reading: r})
		if current != nil && r != nil {
			s.metrics.SimilarityScore.Observe(domain.Similarity(*current, *r))
		}
	}

	p := domain.Predict(b, current, history)
	p.Date = date
	p.TimeSlot = slot
	s.metrics.Predictions.WithLabelValues(string(p.PredictedRating)).Inc()
	return p, nil
}

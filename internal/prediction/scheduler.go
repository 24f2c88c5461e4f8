package prediction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	"github.com/couchcryptid/surf-prediction-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// UserLister enumerates users that own at least one break.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// Predictor computes predictions for a user.
type Predictor interface {
	PredictForUser(ctx context.Context, userID string) ([]domain.Prediction, error)
}

// Publisher delivers predictions downstream.
type Publisher interface {
	PublishPredictions(ctx context.Context, predictions []domain.Prediction) error
}

// Scheduler periodically predicts for every user and publishes the results.
type Scheduler struct {
	users     UserLister
	predictor Predictor
	publisher Publisher
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewScheduler creates a Scheduler that runs every interval. A nil clock uses
// real time.
func NewScheduler(users UserLister, predictor Predictor, publisher Publisher, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		users:     users,
		predictor: predictor,
		publisher: publisher,
		interval:  interval,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run publishes predictions immediately and then on every tick until the
// context is cancelled. A non-positive interval disables the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("prediction scheduler disabled")
		return nil
	}

	s.logger.Info("prediction scheduler started", "interval", s.interval)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("prediction run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("prediction scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RunOnce predicts and publishes for every user, returning how many
// predictions were published. Failures for one user are logged and do not
// stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	users, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing users: %w", err)
	}

	published := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}

		predictions, err := s.predictor.PredictForUser(ctx, userID)
		if err != nil {
			s.logger.Warn("predict for user failed", "error", err, "user_id", userID)
			continue
		}
		if len(predictions) == 0 {
			continue
		}

		if err := s.publisher.PublishPredictions(ctx, predictions); err != nil {
			s.logger.Warn("publish predictions failed", "error", err, "user_id", userID, "count", len(predictions))
			continue
		}
		s.metrics.PredictionsPublished.Add(float64(len(predictions)))
		published += len(predictions)
	}

	s.logger.Info("prediction run complete", "users", len(users), "published", published)
	return published, nil
}

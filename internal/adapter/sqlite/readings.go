package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
)

// SaveReading stores a single reading. See LoadBatch.
func (s *Store) SaveReading(ctx context.Context, rec domain.ReadingRecord) error {
	return s.LoadBatch(ctx, []domain.ReadingRecord{rec})
}

// LoadBatch stores readings in one transaction. A reading whose
// (break, date, slot) key already exists is left untouched, so readings are
// immutable once recorded and redelivered messages are harmless.
func (s *Store) LoadBatch(ctx context.Context, records []domain.ReadingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reading batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecast_data (break_id, forecast_date, forecast_time, swell_height, swell_period, wind_speed, wind_direction, swell_direction, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(break_id, forecast_date, forecast_time) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("preparing reading insert: %w", err)
	}
	defer stmt.Close()

	now := domain.Now().UTC()
	for _, rec := range records {
		r := rec.Reading
		_, err := stmt.ExecContext(ctx,
			rec.BreakID, rec.Date, string(rec.TimeSlot),
			nullFloat(r.SwellHeightFeet), nullFloat(r.SwellPeriodSeconds), nullFloat(r.WindSpeedKnots),
			nullString(r.WindDirection), nullString(r.SwellDirection),
			now)
		if err != nil {
			return fmt.Errorf("saving reading for break %s: %w", rec.BreakID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reading batch: %w", err)
	}
	return nil
}

// GetReading returns the reading recorded for a break at date and slot, or
// nil when none was recorded.
func (s *Store) GetReading(ctx context.Context, breakID, date string, slot domain.TimeSlot) (*domain.EnvironmentalReading, error) {
	var (
		swell, period, wind sql.NullFloat64
		windDir, swellDir   sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT swell_height, swell_period, wind_speed, wind_direction, swell_direction
		FROM forecast_data WHERE break_id = ? AND forecast_date = ? AND forecast_time = ?`,
		breakID, date, string(slot)).Scan(&swell, &period, &wind, &windDir, &swellDir)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying reading: %w", err)
	}

	return &domain.EnvironmentalReading{
		SwellHeightFeet:    floatPtr(swell),
		SwellPeriodSeconds: floatPtr(period),
		WindSpeedKnots:     floatPtr(wind),
		WindDirection:      windDir.String,
		SwellDirection:     swellDir.String,
	}, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

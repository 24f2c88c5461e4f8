// Package sqlite persists breaks, rated sessions and environmental readings
// in a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrBreakNotFound is returned when a break does not exist or belongs to another user.
	ErrBreakNotFound = errors.New("break not found")
	// ErrInvalidBreak is returned when a break is missing its user or name.
	ErrInvalidBreak = errors.New("break requires a user and a name")
)

// Store is the SQLite-backed source of breaks, sessions and readings.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer; serialize through one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	return nil
}

// AddBreak stores a new break for b.UserID and returns it with its ID and
// creation time filled in.
func (s *Store) AddBreak(ctx context.Context, b domain.Break) (domain.Break, error) {
	b.UserID = strings.TrimSpace(b.UserID)
	b.Name = strings.TrimSpace(b.Name)
	if b.UserID == "" || b.Name == "" {
		return domain.Break{}, ErrInvalidBreak
	}
	b.ID = uuid.NewString()
	b.CreatedAt = domain.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO surf_breaks (id, user_id, name, region, swellnet_url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Name, b.Region, b.SourceURL, b.CreatedAt)
	if err != nil {
		return domain.Break{}, fmt.Errorf("saving break: %w", err)
	}
	return b, nil
}

// DeleteBreak removes a user's break together with its sessions.
func (s *Store) DeleteBreak(ctx context.Context, userID, breakID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM surf_breaks WHERE id = ? AND user_id = ?`, breakID, userID)
	if err != nil {
		return fmt.Errorf("deleting break: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting break: %w", err)
	}
	if n == 0 {
		return ErrBreakNotFound
	}
	return nil
}

// GetBreaksForUser returns the user's breaks ordered by name.
func (s *Store) GetBreaksForUser(ctx context.Context, userID string) ([]domain.Break, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, region, swellnet_url, created_at FROM surf_breaks WHERE user_id = ? ORDER BY name, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying breaks: %w", err)
	}
	defer rows.Close()

	var breaks []domain.Break
	for rows.Next() {
		var b domain.Break
		var region, url sql.NullString
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &region, &url, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning break: %w", err)
		}
		b.Region = region.String
		b.SourceURL = url.String
		breaks = append(breaks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breaks: %w", err)
	}
	return breaks, nil
}

// LogSession validates and records a rated session on one of the user's breaks.
func (s *Store) LogSession(ctx context.Context, sess domain.Session) (domain.Session, error) {
	rating, err := domain.ParseRating(string(sess.Rating))
	if err != nil {
		return domain.Session{}, err
	}
	slot, err := domain.ParseTimeSlot(string(sess.TimeSlot))
	if err != nil {
		return domain.Session{}, err
	}
	date, err := domain.ParseDate(sess.Date)
	if err != nil {
		return domain.Session{}, err
	}

	var owned int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM surf_breaks WHERE id = ? AND user_id = ?`, sess.BreakID, sess.UserID).Scan(&owned)
	if err != nil {
		return domain.Session{}, fmt.Errorf("checking break: %w", err)
	}
	if owned == 0 {
		return domain.Session{}, ErrBreakNotFound
	}

	sess.ID = uuid.NewString()
	sess.Rating = rating
	sess.TimeSlot = slot
	sess.Date = date
	sess.CreatedAt = domain.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO surf_sessions (id, user_id, break_id, rating, session_date, session_time, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.BreakID, string(sess.Rating), sess.Date, string(sess.TimeSlot), sess.CreatedAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("saving session: %w", err)
	}
	return sess, nil
}

// GetSessionsForUserAndBreak returns the user's sessions at a break in
// chronological order.
func (s *Store) GetSessionsForUserAndBreak(ctx context.Context, userID, breakID string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, break_id, rating, session_date, session_time, created_at
		FROM surf_sessions WHERE user_id = ? AND break_id = ?
		ORDER BY session_date, created_at`,
		userID, breakID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var sess domain.Session
		var rating, slot string
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.BreakID, &rating, &sess.Date, &slot, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sess.Rating = domain.Rating(rating)
		sess.TimeSlot = domain.TimeSlot(slot)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	slices.SortStableFunc(sessions, func(a, b domain.Session) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return a.TimeSlot.StartHour() - b.TimeSlot.StartHour()
	})
	return sessions, nil
}

// SessionStats counts the user's sessions by rating.
func (s *Store) SessionStats(ctx context.Context, userID string) (domain.SessionStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rating, COUNT(*) FROM surf_sessions WHERE user_id = ? GROUP BY rating`, userID)
	if err != nil {
		return domain.SessionStats{}, fmt.Errorf("querying session stats: %w", err)
	}
	defer rows.Close()

	var stats domain.SessionStats
	for rows.Next() {
		var rating string
		var n int
		if err := rows.Scan(&rating, &n); err != nil {
			return domain.SessionStats{}, fmt.Errorf("scanning session stats: %w", err)
		}
		stats.Total += n
		switch domain.Rating(rating) {
		case domain.RatingAmazing:
			stats.Amazing = n
		case domain.RatingFun:
			stats.Fun = n
		case domain.RatingBad:
			stats.Bad = n
		}
	}
	if err := rows.Err(); err != nil {
		return domain.SessionStats{}, fmt.Errorf("iterating session stats: %w", err)
	}
	return stats, nil
}

// ListUserIDs returns every user that owns at least one break.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM surf_breaks ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return ids, nil
}

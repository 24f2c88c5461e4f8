// Command validate checks the integrity of a surf database: every stored
// session carries a valid rating, slot and date on a break its user owns,
// stored readings are physically plausible, and the predictions computed
// from the data satisfy the rating and confidence invariants.
//
// Usage:
//
//	go run ./cmd/validate -db data/surf.db -at 2025-01-18T08:30:00Z
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/surf-prediction-service/internal/adapter/sqlite"
	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	"github.com/couchcryptid/surf-prediction-service/internal/observability"
	"github.com/couchcryptid/surf-prediction-service/internal/prediction"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dbPath := flag.String("db", "data/surf.db", "SQLite database to validate")
	at := flag.String("at", "", "RFC 3339 instant to predict at (default: now)")
	tz := flag.String("tz", "UTC", "time zone the present slot is resolved in")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -tz: %v\n", err)
		os.Exit(1)
	}
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -at: %v\n", err)
			os.Exit(1)
		}
		domain.SetClock(clockwork.NewFakeClockAt(t))
	}

	os.Exit(run(*dbPath, loc))
}

func run(dbPath string, loc *time.Location) int {
	ctx := context.Background()

	fmt.Println("=== Surf Data Integrity Validation ===")
	fmt.Println()

	store, err := sqlite.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open database: %v\n", err)
		return 1
	}
	defer store.Close()

	data, err := load(ctx, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load data: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := prediction.NewService(store, store, loc, 4, logger, observability.NewMetrics())

	phases := []*phase{
		validateSessions(data),
		validateReadings(ctx, store, data),
		validateStats(ctx, store, data),
		validatePredictions(ctx, svc, data, loc),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d users, %d breaks, %d sessions\n", len(data.users), data.breakCount(), data.sessionCount())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

type dataset struct {
	users    []string
	breaks   map[string][]domain.Break   // by user
	sessions map[string][]domain.Session // by break
}

func load(ctx context.Context, store *sqlite.Store) (*dataset, error) {
	users, err := store.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	d := &dataset{
		users:    users,
		breaks:   map[string][]domain.Break{},
		sessions: map[string][]domain.Session{},
	}
	for _, u := range users {
		breaks, err := store.GetBreaksForUser(ctx, u)
		if err != nil {
			return nil, err
		}
		d.breaks[u] = breaks
		for _, b := range breaks {
			sessions, err := store.GetSessionsForUserAndBreak(ctx, u, b.ID)
			if err != nil {
				return nil, err
			}
			d.sessions[b.ID] = sessions
		}
	}
	return d, nil
}

func (d *dataset) breakCount() int {
	n := 0
	for _, bs := range d.breaks {
		n += len(bs)
	}
	return n
}

func (d *dataset) sessionCount() int {
	n := 0
	for _, ss := range d.sessions {
		n += len(ss)
	}
	return n
}

// ── Phase 1: Sessions ──

func validateSessions(d *dataset) *phase {
	p := &phase{name: "Phase 1: Sessions (rating, slot, date)"}
	for _, u := range d.users {
		for _, b := range d.breaks[u] {
			for _, s := range d.sessions[b.ID] {
				if s.UserID != u || s.BreakID != b.ID {
					p.errorf("session %s: owner %s/%s, expected %s/%s", s.ID, s.UserID, s.BreakID, u, b.ID)
				}
				if _, err := domain.ParseRating(string(s.Rating)); err != nil {
					p.errorf("session %s: %v", s.ID, err)
				}
				if !s.TimeSlot.Valid() {
					p.errorf("session %s: invalid slot %q", s.ID, s.TimeSlot)
				}
				if _, err := domain.ParseDate(s.Date); err != nil {
					p.errorf("session %s: %v", s.ID, err)
				}
			}
		}
	}
	return p
}

// ── Phase 2: Readings ──

func validateReadings(ctx context.Context, store *sqlite.Store, d *dataset) *phase {
	p := &phase{name: "Phase 2: Readings (session coverage)"}
	var covered, total int
	for _, u := range d.users {
		for _, b := range d.breaks[u] {
			for _, s := range d.sessions[b.ID] {
				total++
				r, err := store.GetReading(ctx, b.ID, s.Date, s.TimeSlot)
				if err != nil {
					p.errorf("session %s: %v", s.ID, err)
					continue
				}
				if r == nil {
					continue
				}
				covered++
				checkReading(p, s.ID, r)
			}
		}
	}
	fmt.Printf("  Note: %d of %d sessions have a recorded reading\n", covered, total)
	return p
}

func checkReading(p *phase, sessionID string, r *domain.EnvironmentalReading) {
	for name, v := range map[string]*float64{
		"swell_height": r.SwellHeightFeet,
		"swell_period": r.SwellPeriodSeconds,
		"wind_speed":   r.WindSpeedKnots,
	} {
		if v != nil && *v < 0 {
			p.errorf("session %s: negative %s %g", sessionID, name, *v)
		}
	}
}

// ── Phase 3: Stats ──

func validateStats(ctx context.Context, store *sqlite.Store, d *dataset) *phase {
	p := &phase{name: "Phase 3: Stats (counts match sessions)"}
	for _, u := range d.users {
		var want domain.SessionStats
		for _, b := range d.breaks[u] {
			for _, s := range d.sessions[b.ID] {
				want.Total++
				switch s.Rating {
				case domain.RatingAmazing:
					want.Amazing++
				case domain.RatingFun:
					want.Fun++
				case domain.RatingBad:
					want.Bad++
				}
			}
		}
		got, err := store.SessionStats(ctx, u)
		if err != nil {
			p.errorf("user %s: %v", u, err)
			continue
		}
		if got != want {
			p.errorf("user %s: stats %+v, expected %+v", u, got, want)
		}
	}
	return p
}

// ── Phase 4: Predictions ──

func validatePredictions(ctx context.Context, svc *prediction.Service, d *dataset, loc *time.Location) *phase {
	p := &phase{name: "Phase 4: Predictions (invariants)"}
	date, slot := domain.CurrentKey(loc)
	counts := map[domain.Rating]int{}

	for _, u := range d.users {
		preds, err := svc.PredictForUser(ctx, u)
		if err != nil {
			p.errorf("user %s: %v", u, err)
			continue
		}
		if len(preds) != len(d.breaks[u]) {
			p.errorf("user %s: %d predictions for %d breaks", u, len(preds), len(d.breaks[u]))
		}
		for i, pr := range preds {
			counts[pr.PredictedRating]++
			if i < len(d.breaks[u]) && pr.BreakID != d.breaks[u][i].ID {
				p.errorf("user %s: prediction %d is for break %s, expected %s", u, i, pr.BreakID, d.breaks[u][i].ID)
			}
			checkPrediction(p, pr, date, slot)
		}
	}
	fmt.Printf("  Note: predictions at %s %s: amazing=%d fun=%d bad=%d unknown=%d\n", date, slot,
		counts[domain.RatingAmazing], counts[domain.RatingFun], counts[domain.RatingBad], counts[domain.RatingUnknown])
	return p
}

func checkPrediction(p *phase, pr domain.Prediction, date string, slot domain.TimeSlot) {
	id := pr.BreakID
	if pr.Date != date || pr.TimeSlot != slot {
		p.errorf("break %s: predicted for %s %s, expected %s %s", id, pr.Date, pr.TimeSlot, date, slot)
	}
	if pr.ConfidencePercent < 0 || pr.ConfidencePercent > 100 {
		p.errorf("break %s: confidence %d out of range", id, pr.ConfidencePercent)
	}
	if pr.ConfidencePercent != domain.Confidence(pr.SupportingSessionCount) {
		p.errorf("break %s: confidence %d does not match %d supporting sessions", id, pr.ConfidencePercent, pr.SupportingSessionCount)
	}

	switch pr.PredictedRating {
	case domain.RatingUnknown:
		if pr.SupportingSessionCount != 0 {
			p.errorf("break %s: unknown with %d supporting sessions", id, pr.SupportingSessionCount)
		}
	case domain.RatingAmazing, domain.RatingFun, domain.RatingBad:
		if pr.SupportingSessionCount == 0 {
			p.errorf("break %s: %s with no supporting sessions", id, pr.PredictedRating)
		}
		if pr.CurrentReading == nil {
			p.errorf("break %s: %s without a current reading", id, pr.PredictedRating)
		}
	default:
		p.errorf("break %s: invalid rating %q", id, pr.PredictedRating)
	}
}

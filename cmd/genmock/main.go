// Command genmock seeds a SQLite database with deterministic mock breaks,
// rated sessions and environmental readings, so the predictor and the
// validate command can be exercised without a scraper or a Kafka cluster.
// Session ratings are derived from the generated conditions, so similar
// conditions tend to carry similar ratings.
//
// Usage:
//
//	go run ./cmd/genmock -db data/surf.db -users 3 -days 60
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/surf-prediction-service/internal/adapter/sqlite"
	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// mockNow is the fixed present used for generated timestamps and the
// current-slot reading. It falls in the 8am slot.
var mockNow = time.Date(2025, time.January, 18, 8, 30, 0, 0, time.UTC)

type region struct {
	name  string
	state string
	url   string
}

var regions = []region{
	{"Sydney", "NSW", "https://swell.willyweather.com.au/nsw/sydney.html"},
	{"Central Coast", "NSW", "https://swell.willyweather.com.au/nsw/central-coast.html"},
	{"Byron Bay", "NSW", "https://swell.willyweather.com.au/nsw/far-north-coast.html"},
	{"Wollongong", "NSW", "https://swell.willyweather.com.au/nsw/illawarra.html"},
	{"Gold Coast", "QLD", "https://swell.willyweather.com.au/qld/gold-coast.html"},
	{"Sunshine Coast", "QLD", "https://swell.willyweather.com.au/qld/sunshine-coast.html"},
	{"Torquay", "VIC", "https://swell.willyweather.com.au/vic/surf-coast.html"},
	{"Phillip Island", "VIC", "https://swell.willyweather.com.au/vic/gippsland.html"},
	{"Fleurieu Peninsula", "SA", "https://swell.willyweather.com.au/sa/fleurieu-peninsula.html"},
	{"Margaret River", "WA", "https://swell.willyweather.com.au/wa/south-west.html"},
}

var breakNames = []string{"Point", "Reef", "Beach Break", "North Wall", "Bombie", "Left Hander"}

var directions = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "data/surf.db", "SQLite database to seed")
	users := flag.Int("users", 3, "number of users")
	breaksPerUser := flag.Int("breaks", 3, "breaks per user")
	days := flag.Int("days", 60, "days of history")
	sessionRate := flag.Float64("session-rate", 0.15, "probability a reading has a logged session")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *users < 1 || *breaksPerUser < 1 || *days < 1 {
		flag.Usage()
		return fmt.Errorf("-users, -breaks and -days must be positive")
	}

	domain.SetClock(clockwork.NewFakeClockAt(mockNow))
	defer domain.SetClock(nil)

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	g := &generator{
		rng:   rand.New(rand.NewPCG(*seed, *seed)),
		store: store,
	}
	ctx := context.Background()

	for u := range *users {
		userID := fmt.Sprintf("user-%02d", u+1)
		for range *breaksPerUser {
			if err := g.seedBreak(ctx, userID, *days, *sessionRate); err != nil {
				return err
			}
		}
	}

	log.Printf("breaks: %d, readings: %d, sessions: %d", g.breaks, g.readings, g.sessions)
	log.Printf("ratings: amazing=%d fun=%d bad=%d",
		g.ratings[domain.RatingAmazing], g.ratings[domain.RatingFun], g.ratings[domain.RatingBad])
	log.Printf("wrote %s (present slot %s %s)", *dbPath, mockNow.Format(domain.DateLayout), domain.SlotForTime(mockNow))
	return nil
}

type generator struct {
	rng   *rand.Rand
	store *sqlite.Store

	breaks, readings, sessions int
	ratings                    map[domain.Rating]int
}

func (g *generator) seedBreak(ctx context.Context, userID string, days int, sessionRate float64) error {
	if g.ratings == nil {
		g.ratings = map[domain.Rating]int{}
	}

	r := regions[g.rng.IntN(len(regions))]
	b, err := g.store.AddBreak(ctx, domain.Break{
		UserID:    userID,
		Name:      fmt.Sprintf("%s %s", r.name, breakNames[g.rng.IntN(len(breakNames))]),
		Region:    fmt.Sprintf("%s, %s", r.name, r.state),
		SourceURL: r.url,
	})
	if err != nil {
		return fmt.Errorf("adding break: %w", err)
	}
	g.breaks++

	// Each break has a favoured swell direction.
	favoured := directions[g.rng.IntN(len(directions))]

	var records []domain.ReadingRecord
	for d := days; d >= 1; d-- {
		date := mockNow.AddDate(0, 0, -d).Format(domain.DateLayout)
		for _, slot := range domain.TimeSlots {
			reading := g.reading(favoured)
			records = append(records, domain.ReadingRecord{BreakID: b.ID, Date: date, TimeSlot: slot, Reading: reading})

			if g.rng.Float64() >= sessionRate {
				continue
			}
			rating := rate(reading, favoured)
			if _, err := g.store.LogSession(ctx, domain.Session{
				UserID: userID, BreakID: b.ID, Rating: rating, Date: date, TimeSlot: slot,
			}); err != nil {
				return fmt.Errorf("logging session: %w", err)
			}
			g.sessions++
			g.ratings[rating]++
		}
	}

	// A reading for the present slot so predictions are not all unknown.
	date, slot := domain.CurrentKey(time.UTC)
	records = append(records, domain.ReadingRecord{BreakID: b.ID, Date: date, TimeSlot: slot, Reading: g.reading(favoured)})

	if err := g.store.LoadBatch(ctx, records); err != nil {
		return fmt.Errorf("loading readings: %w", err)
	}
	g.readings += len(records)
	return nil
}

func (g *generator) reading(favoured string) domain.EnvironmentalReading {
	swell := halfStep(1 + g.rng.Float64()*9)
	period := math.Round(5 + g.rng.Float64()*11)
	wind := math.Round(g.rng.Float64() * 30)

	swellDir := favoured
	if g.rng.IntN(3) == 0 {
		swellDir = directions[g.rng.IntN(len(directions))]
	}
	r := domain.EnvironmentalReading{
		SwellHeightFeet:    &swell,
		SwellPeriodSeconds: &period,
		WindSpeedKnots:     &wind,
		WindDirection:      directions[g.rng.IntN(len(directions))],
		SwellDirection:     swellDir,
	}
	// Scrapers occasionally miss a field.
	if g.rng.IntN(20) == 0 {
		r.WindSpeedKnots = nil
	}
	return r
}

// rate scores conditions the way a surfer at this break might: solid,
// long-period swell from the favoured direction with light wind is amazing.
func rate(r domain.EnvironmentalReading, favoured string) domain.Rating {
	score := 0
	if h := *r.SwellHeightFeet; h >= 4 && h <= 8 {
		score += 2
	} else if h >= 3 {
		score++
	}
	if *r.SwellPeriodSeconds >= 11 {
		score += 2
	} else if *r.SwellPeriodSeconds >= 8 {
		score++
	}
	if r.WindSpeedKnots != nil && *r.WindSpeedKnots <= 10 {
		score++
	}
	if r.SwellDirection == favoured {
		score++
	}

	switch {
	case score >= 5:
		return domain.RatingAmazing
	case score >= 3:
		return domain.RatingFun
	default:
		return domain.RatingBad
	}
}

func halfStep(v float64) float64 {
	return math.Round(v*2) / 2
}

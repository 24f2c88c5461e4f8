package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTimeSlot = errors.New("invalid time slot")
	ErrInvalidRating   = errors.New("invalid rating")
	ErrInvalidDate     = errors.New("invalid date")
)

// TimeSlot is a two-hour window of the day that sessions and readings are
// keyed by.
type TimeSlot string

const (
	Slot6am  TimeSlot = "6am"
	Slot8am  TimeSlot = "8am"
	Slot10am TimeSlot = "10am"
	Slot12pm TimeSlot = "12pm"
	Slot2pm  TimeSlot = "2pm"
	Slot4pm  TimeSlot = "4pm"
	Slot6pm  TimeSlot = "6pm"
	Slot8pm  TimeSlot = "8pm"
)

// TimeSlots lists every slot in chronological order.
var TimeSlots = []TimeSlot{Slot6am, Slot8am, Slot10am, Slot12pm, Slot2pm, Slot4pm, Slot6pm, Slot8pm}

// slotStartHours maps each slot to the 24h hour its window starts at.
var slotStartHours = map[TimeSlot]int{
	Slot6am: 6, Slot8am: 8, Slot10am: 10, Slot12pm: 12,
	Slot2pm: 14, Slot4pm: 16, Slot6pm: 18, Slot8pm: 20,
}

// ParseTimeSlot validates a slot label. Matching is case-insensitive.
func ParseTimeSlot(s string) (TimeSlot, error) {
	slot := TimeSlot(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := slotStartHours[slot]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeSlot, s)
	}
	return slot, nil
}

// StartHour returns the hour of day the slot begins at, or -1 if invalid.
func (s TimeSlot) StartHour() int {
	h, ok := slotStartHours[s]
	if !ok {
		return -1
	}
	return h
}

// Valid reports whether s belongs to the slot vocabulary.
func (s TimeSlot) Valid() bool {
	_, ok := slotStartHours[s]
	return ok
}

// SlotForTime resolves the slot covering t's wall-clock hour.
func SlotForTime(t time.Time) TimeSlot {
	hour := t.Hour()
	if hour < 8 {
		return Slot6am
	}
	for i := len(TimeSlots) - 1; i >= 0; i-- {
		if hour >= slotStartHours[TimeSlots[i]] {
			return TimeSlots[i]
		}
	}
	return Slot6am
}

// CurrentKey returns today's date and slot in loc according to the package clock.
func CurrentKey(loc *time.Location) (string, TimeSlot) {
	now := clock.Now().In(loc)
	return now.Format(DateLayout), SlotForTime(now)
}

// ParseRating validates a logged rating. "unknown" is not a loggable rating.
func ParseRating(s string) (Rating, error) {
	r := Rating(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RatingAmazing, RatingFun, RatingBad:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
}

// ParseDate validates a civil date in DateLayout and returns it normalized.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.Format(DateLayout), nil
}

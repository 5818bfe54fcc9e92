// Package booking computes appointment availability.
package booking

import (
	"fmt"
	"sort"
	"time"

	"backoffice/internal/models"
)

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseClock parses an "HH:MM" wall clock time into an offset from midnight.
func ParseClock(clock string) (time.Duration, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Slots lists the bookable slots of length duration on day, stepping by step from each
// opening time. day's location is the organization's wall clock. A slot is dropped when
// it ends after closing, starts before now, or overlaps a busy interval. Weekdays without
// working hours have no slots.
func Slots(day time.Time, hours []*models.WorkingHours, busy []models.BusyInterval, duration, step time.Duration, now time.Time) []Slot {
	if duration <= 0 || step <= 0 {
		return nil
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	seen := make(map[time.Time]bool)
	var slots []Slot
	for _, h := range hours {
		if h == nil || h.Weekday != midnight.Weekday() {
			continue
		}
		opens, err := ParseClock(h.OpensAt)
		if err != nil {
			continue
		}
		closes, err := ParseClock(h.ClosesAt)
		if err != nil || closes <= opens {
			continue
		}

		closing := midnight.Add(closes)
		for s := midnight.Add(opens); !s.Add(duration).After(closing); s = s.Add(step) {
			e := s.Add(duration)
			if s.Before(now) || overlapsAny(s, e, busy) || seen[s] {
				continue
			}
			seen[s] = true
			slots = append(slots, Slot{Start: s, End: e})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}

func overlapsAny(s, e time.Time, busy []models.BusyInterval) bool {
	for _, b := range busy {
		if s.Before(b.End) && b.Start.Before(e) {
			return true
		}
	}
	return false
}

// Available reports whether [start, start+duration) is one of the slots of its day.
func Available(start time.Time, hours []*models.WorkingHours, busy []models.BusyInterval, duration, step time.Duration, now time.Time) bool {
	for _, slot := range Slots(start, hours, busy, duration, step, now) {
		if slot.Start.Equal(start) {
			return true
		}
	}
	return false
}

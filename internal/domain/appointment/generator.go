package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/careslot/internal/domain/availability"
	"github.com/example/careslot/internal/domain/practitioner"
)

// Generator enumerates free slots across practitioners' working hours.
type Generator struct {
	Calendar   BusyLister
	Location   *time.Location
	Now        func() time.Time
	SlotLength time.Duration
}

func (g Generator) location() *time.Location {
	if g.Location == nil {
		return time.UTC
	}
	return g.Location
}

func (g Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g Generator) slotLength() time.Duration {
	if g.SlotLength <= 0 {
		return SlotLength
	}
	return g.SlotLength
}

// bookableDays returns the weekdays among the next n calendar days,
// starting tomorrow.
func (g Generator) bookableDays(n int) []time.Time {
	loc := g.location()
	now := g.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var days []time.Time
	for d := 1; d <= n; d++ {
		day := today.AddDate(0, 0, d)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, day)
	}
	return days
}

// grid returns the slot starts that fit inside p's hours on day.
func (g Generator) grid(p practitioner.Practitioner, day time.Time) (open, closeAt time.Time, starts []time.Time) {
	h, ok := p.HoursOn(day.Weekday())
	if !ok {
		return time.Time{}, time.Time{}, nil
	}
	length := g.slotLength()
	open, closeAt = h.Open.On(day), h.Close.On(day)
	for s := alignUp(day, h.Open, length); !s.Add(length).After(closeAt); s = s.Add(length) {
		starts = append(starts, s)
	}
	return open, closeAt, starts
}

// Generate returns every free slot on the next days calendar days, starting
// tomorrow. Weekends are never offered. Slots are ordered by start time;
// ties keep practitioner order.
func (g Generator) Generate(ctx context.Context, practitioners []practitioner.Practitioner, days int) ([]Slot, error) {
	if g.Calendar == nil {
		return nil, errors.New("generator: calendar is nil")
	}
	loc := g.location()
	length := g.slotLength()

	var slots []Slot
	for _, day := range g.bookableDays(days) {
		for _, p := range practitioners {
			open, closeAt, starts := g.grid(p, day)
			if len(starts) == 0 {
				continue
			}
			busy, err := g.Calendar.ListBusyIntervals(ctx, p.CalendarID, open, closeAt)
			if err != nil {
				return nil, fmt.Errorf("list busy intervals for %s on %s: %w", p.Name, day.Format(DateLayout), err)
			}
			for _, s := range starts {
				e := s.Add(length)
				if availability.IsFree(s, e, busy, loc) {
					slots = append(slots, NewSlot(p, s, e))
				}
			}
		}
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

// Resolve re-derives the slot named by id from p's working hours over the
// same window Generate uses, without consulting the calendar. It reports
// false once the id no longer names a bookable window.
func (g Generator) Resolve(p practitioner.Practitioner, days int, id string) (Slot, bool) {
	length := g.slotLength()
	for _, day := range g.bookableDays(days) {
		_, _, starts := g.grid(p, day)
		for _, s := range starts {
			if SlotID(p.ID, s) == id {
				return NewSlot(p, s, s.Add(length)), true
			}
		}
	}
	return Slot{}, false
}

// alignUp returns the first slot boundary at or after open on day.
func alignUp(day time.Time, open practitioner.ClockTime, length time.Duration) time.Time {
	step := int(length / time.Minute)
	m := open.Minutes()
	if step > 0 {
		if rem := m % step; rem != 0 {
			m += step - rem
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, m, 0, 0, day.Location())
}

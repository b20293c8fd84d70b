package memcal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/availability"
	"github.com/example/careslot/internal/internaltypes"
)

// Event is an entry held by the in-memory calendar.
type Event struct {
	ID            string
	CalendarID    string
	Summary       string
	Description   string
	AttendeeEmail string
	Start         time.Time
	End           time.Time
	AllDay        string // YYYY-MM-DD for all-day entries
}

// Calendar is a process-local calendar used for demos, development and tests.
type Calendar struct {
	mu     sync.Mutex
	loc    *time.Location
	events map[string][]Event
}

func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, events: map[string][]Event{}}
}

func (c *Calendar) Name() string { return "memory" }

func (c *Calendar) Ping(context.Context) error { return nil }

// Block adds a timed busy entry.
func (c *Calendar) Block(calendarID string, start, end time.Time, summary string) Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev := Event{ID: uuid.NewString(), CalendarID: calendarID, Summary: summary, Start: start, End: end}
	c.events[calendarID] = append(c.events[calendarID], ev)
	return ev
}

// BlockDay adds an all-day busy entry.
func (c *Calendar) BlockDay(calendarID, date, summary string) (Event, error) {
	d, err := time.ParseInLocation(appointment.DateLayout, date, c.loc)
	if err != nil {
		return Event{}, fmt.Errorf("memcal: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ev := Event{ID: uuid.NewString(), CalendarID: calendarID, Summary: summary, Start: d, End: d.AddDate(0, 0, 1), AllDay: date}
	c.events[calendarID] = append(c.events[calendarID], ev)
	return ev, nil
}

func (c *Calendar) ListBusyIntervals(_ context.Context, calendarID string, start, end time.Time) ([]availability.BusyInterval, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []availability.BusyInterval
	for _, ev := range c.events[calendarID] {
		if !availability.Overlaps(start, end, ev.Start, ev.End) {
			continue
		}
		if ev.AllDay != "" {
			out = append(out, availability.AllDay(ev.AllDay))
			continue
		}
		out = append(out, availability.Timed(ev.Start, ev.End))
	}
	return out, nil
}

func (c *Calendar) IsAvailable(ctx context.Context, calendarID string, start, end time.Time) (bool, error) {
	return appointment.CheckAvailable(ctx, c, calendarID, start, end, c.loc)
}

// CreateEvent rejects drafts overlapping an existing entry with
// internaltypes.ErrSlotTaken.
func (c *Calendar) CreateEvent(_ context.Context, calendarID string, d appointment.EventDraft) (appointment.CreatedEvent, error) {
	if !d.End.After(d.Start) {
		return appointment.CreatedEvent{}, fmt.Errorf("memcal: event end must be after start")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.events[calendarID] {
		if availability.Overlaps(d.Start, d.End, existing.Start, existing.End) {
			return appointment.CreatedEvent{}, fmt.Errorf("memcal: %s overlaps %q: %w", d.Start.Format(time.RFC3339), existing.Summary, internaltypes.ErrSlotTaken)
		}
	}
	ev := Event{
		ID:            uuid.NewString(),
		CalendarID:    calendarID,
		Summary:       d.Summary,
		Description:   d.Description,
		AttendeeEmail: d.AttendeeEmail,
		Start:         d.Start,
		End:           d.End,
	}
	c.events[calendarID] = append(c.events[calendarID], ev)
	return appointment.CreatedEvent{ID: ev.ID, Link: fmt.Sprintf("memcal://%s/%s", calendarID, ev.ID)}, nil
}

// Events returns a calendar's entries ordered by start.
func (c *Calendar) Events(calendarID string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]Event(nil), c.events[calendarID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

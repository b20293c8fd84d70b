package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/careslot/internal/domain/availability"
)

// BusyLister reads existing entries from a calendar.
type BusyLister interface {
	ListBusyIntervals(ctx context.Context, calendarID string, start, end time.Time) ([]availability.BusyInterval, error)
}

// Calendar is the external calendar service that owns practitioner schedules.
type Calendar interface {
	BusyLister
	Name() string
	Ping(ctx context.Context) error
	IsAvailable(ctx context.Context, calendarID string, start, end time.Time) (bool, error)
	CreateEvent(ctx context.Context, calendarID string, draft EventDraft) (CreatedEvent, error)
}

// CheckAvailable implements Calendar.IsAvailable on top of a BusyLister.
func CheckAvailable(ctx context.Context, l BusyLister, calendarID string, start, end time.Time, loc *time.Location) (bool, error) {
	busy, err := l.ListBusyIntervals(ctx, calendarID, start, end)
	if err != nil {
		return false, err
	}
	return availability.IsFree(start, end, busy, loc), nil
}

type EventDraft struct {
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	TimeZone      string
	AttendeeEmail string
}

type CreatedEvent struct {
	ID   string
	Link string
}

func NewEventDraft(slot Slot, p Patient) EventDraft {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s\n", p.Name)
	fmt.Fprintf(&b, "Email: %s\n", p.Email)
	fmt.Fprintf(&b, "Type: %s\n", p.AppointmentType)
	fmt.Fprintf(&b, "Doctor: %s (%s)\n", slot.PractitionerName, slot.Specialty)
	fmt.Fprintf(&b, "Notes: %s\n", p.Notes)
	b.WriteString("\nPlease arrive 15 minutes early for your appointment.\n")

	tz := slot.Start.Location().String()
	if tz == "Local" {
		tz = ""
	}
	return EventDraft{
		Summary:       "Medical Appointment: " + p.Name,
		Description:   b.String(),
		Start:         slot.Start,
		End:           slot.End,
		TimeZone:      tz,
		AttendeeEmail: p.Email,
	}
}

package practitioner

import (
	"fmt"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// On places the clock time on day's calendar date in day's location.
func (c ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

type Hours struct {
	Open  ClockTime
	Close ClockTime
}

type Practitioner struct {
	ID         string
	Name       string
	Specialty  string
	Rating     float64
	CalendarID string
	Hours      map[time.Weekday]Hours
}

func (p Practitioner) HoursOn(d time.Weekday) (Hours, bool) {
	h, ok := p.Hours[d]
	if !ok || h.Close.Minutes() <= h.Open.Minutes() {
		return Hours{}, false
	}
	return h, true
}

// Surname is the last word of the display name, lower-cased.
func (p Practitioner) Surname() string {
	parts := strings.Fields(p.bareName())
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// FullName is the display name without an honorific, lower-cased.
func (p Practitioner) FullName() string { return p.bareName() }

func (p Practitioner) bareName() string {
	n := strings.ToLower(strings.TrimSpace(p.Name))
	for _, prefix := range []string{"dr. ", "dr "} {
		n = strings.TrimPrefix(n, prefix)
	}
	return strings.TrimSpace(n)
}

func Find(roster []Practitioner, id string) (Practitioner, bool) {
	for _, p := range roster {
		if p.ID == id {
			return p, true
		}
	}
	return Practitioner{}, false
}

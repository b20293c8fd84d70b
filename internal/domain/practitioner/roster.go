package practitioner

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func weekdayHours(open, close string, days ...time.Weekday) map[time.Weekday]Hours {
	m := make(map[time.Weekday]Hours, len(days))
	for _, d := range days {
		m[d] = Hours{Open: MustClock(open), Close: MustClock(close)}
	}
	return m
}

// DefaultRoster is the built-in practice used when no roster file is configured.
func DefaultRoster() []Practitioner {
	wilson := weekdayHours("10:00", "18:00", time.Monday, time.Tuesday, time.Wednesday, time.Thursday)
	wilson[time.Friday] = Hours{Open: MustClock("10:00"), Close: MustClock("16:00")}
	return []Practitioner{
		{
			ID:         "1",
			Name:       "Dr. Emily Smith",
			Specialty:  "General Medicine",
			Rating:     4.8,
			CalendarID: "primary",
			Hours:      weekdayHours("09:00", "17:00", time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		},
		{
			ID:         "2",
			Name:       "Dr. Michael Johnson",
			Specialty:  "Cardiology",
			Rating:     4.9,
			CalendarID: "primary",
			Hours:      weekdayHours("08:00", "16:00", time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		},
		{
			ID:         "3",
			Name:       "Dr. Sarah Wilson",
			Specialty:  "Dermatology",
			Rating:     4.7,
			CalendarID: "primary",
			Hours:      wilson,
		},
	}
}

type rosterFile struct {
	Practitioners []rosterEntry `yaml:"practitioners"`
}

type rosterEntry struct {
	ID         string                `yaml:"id"`
	Name       string                `yaml:"name"`
	Specialty  string                `yaml:"specialty"`
	Rating     float64               `yaml:"rating"`
	CalendarID string                `yaml:"calendar_id"`
	Hours      map[string]hoursEntry `yaml:"hours"`
}

type hoursEntry struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadRoster reads a YAML roster file. An empty path yields DefaultRoster.
func LoadRoster(path string) ([]Practitioner, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRoster(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(b)
}

func ParseRoster(data []byte) ([]Practitioner, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(f.Practitioners) == 0 {
		return nil, errors.New("roster has no practitioners")
	}
	seen := make(map[string]bool, len(f.Practitioners))
	out := make([]Practitioner, 0, len(f.Practitioners))
	for i, e := range f.Practitioners {
		id := strings.TrimSpace(e.ID)
		if id == "" || strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("roster entry %d: id and name are required", i)
		}
		if strings.Contains(id, "_") {
			return nil, fmt.Errorf("roster entry %s: id must not contain '_'", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("roster entry %s: duplicate id", id)
		}
		seen[id] = true

		p := Practitioner{
			ID:         id,
			Name:       strings.TrimSpace(e.Name),
			Specialty:  strings.TrimSpace(e.Specialty),
			Rating:     e.Rating,
			CalendarID: strings.TrimSpace(e.CalendarID),
			Hours:      make(map[time.Weekday]Hours, len(e.Hours)),
		}
		if p.CalendarID == "" {
			p.CalendarID = "primary"
		}
		for day, h := range e.Hours {
			wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(day))]
			if !ok {
				return nil, fmt.Errorf("roster entry %s: unknown weekday %q", id, day)
			}
			open, err := ParseClock(h.Open)
			if err != nil {
				return nil, fmt.Errorf("roster entry %s %s: %w", id, day, err)
			}
			cl, err := ParseClock(h.Close)
			if err != nil {
				return nil, fmt.Errorf("roster entry %s %s: %w", id, day, err)
			}
			if cl.Minutes() <= open.Minutes() {
				return nil, fmt.Errorf("roster entry %s %s: close %s is not after open %s", id, day, cl, open)
			}
			p.Hours[wd] = Hours{Open: open, Close: cl}
		}
		out = append(out, p)
	}
	return out, nil
}

package availability

import "time"

const dateLayout = "2006-01-02"

// EventTime mirrors a calendar entry boundary: either a timestamp (RFC 3339)
// or, for all-day entries, a bare date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// BusyInterval is an existing calendar entry as reported by the calendar service.
type BusyInterval struct {
	Start EventTime `json:"start"`
	End   EventTime `json:"end"`
}

// Timed builds a BusyInterval from concrete instants.
func Timed(start, end time.Time) BusyInterval {
	return BusyInterval{
		Start: EventTime{DateTime: start.Format(time.RFC3339)},
		End:   EventTime{DateTime: end.Format(time.RFC3339)},
	}
}

// AllDay builds a BusyInterval covering a single date.
func AllDay(date string) BusyInterval {
	return BusyInterval{Start: EventTime{Date: date}}
}

// Bounds resolves the interval to instants. All-day entries span whole days
// in loc; a missing or non-increasing end date means exactly one day.
// ok is false for entries that cannot be parsed.
func (b BusyInterval) Bounds(loc *time.Location) (start, end time.Time, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch {
	case b.Start.DateTime != "":
		s, err := time.Parse(time.RFC3339, b.Start.DateTime)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		var e time.Time
		switch {
		case b.End.DateTime != "":
			e, err = time.Parse(time.RFC3339, b.End.DateTime)
		case b.End.Date != "":
			e, err = time.ParseInLocation(dateLayout, b.End.Date, loc)
		default:
			return time.Time{}, time.Time{}, false
		}
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return s, e, true
	case b.Start.Date != "":
		s, err := time.ParseInLocation(dateLayout, b.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		e := s.AddDate(0, 0, 1)
		if b.End.Date != "" {
			if v, err := time.ParseInLocation(dateLayout, b.End.Date, loc); err == nil && v.After(s) {
				e = v
			}
		}
		return s, e, true
	}
	return time.Time{}, time.Time{}, false
}

// Overlaps reports whether [start, end) intersects [busyStart, busyEnd).
func Overlaps(start, end, busyStart, busyEnd time.Time) bool {
	return start.Before(busyEnd) && end.After(busyStart)
}

// IsFree reports whether [start, end) intersects none of the busy intervals.
// Entries that cannot be parsed never block.
func IsFree(start, end time.Time, busy []BusyInterval, loc *time.Location) bool {
	for _, b := range busy {
		bs, be, ok := b.Bounds(loc)
		if !ok {
			continue
		}
		if Overlaps(start, end, bs, be) {
			return false
		}
	}
	return true
}

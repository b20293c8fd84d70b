package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/careslot/internal/domain/availability"
	"github.com/example/careslot/internal/domain/practitioner"
)

type fakeLister struct {
	busy  map[string][]availability.BusyInterval
	err   error
	calls int
}

func (f *fakeLister) ListBusyIntervals(_ context.Context, calendarID string, _, _ time.Time) ([]availability.BusyInterval, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.busy[calendarID], nil
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func weekdays(open, close string) map[time.Weekday]practitioner.Hours {
	h := practitioner.Hours{Open: practitioner.MustClock(open), Close: practitioner.MustClock(close)}
	return map[time.Weekday]practitioner.Hours{
		time.Monday: h, time.Tuesday: h, time.Wednesday: h, time.Thursday: h, time.Friday: h,
	}
}

func TestGenerateDefaultRoster(t *testing.T) {
	loc := newYork(t)
	lister := &fakeLister{}
	g := Generator{
		Calendar: lister,
		Location: loc,
		Now:      func() time.Time { return time.Date(2025, 3, 12, 10, 0, 0, 0, loc) }, // Wednesday
	}

	slots, err := g.Generate(context.Background(), practitioner.DefaultRoster(), 1)
	require.NoError(t, err)
	require.Len(t, slots, 48)
	assert.Equal(t, 3, lister.calls)

	first := slots[0]
	assert.Equal(t, "2", first.PractitionerID)
	assert.Equal(t, time.Date(2025, 3, 13, 8, 0, 0, 0, loc), first.Start)
	assert.Equal(t, "Thursday, March 13, 2025", first.FormattedDate)
	assert.Equal(t, "08:00 AM", first.FormattedTime)
	assert.Equal(t, "2_2025-03-13T08:00:00-04:00", first.ID)

	last := slots[len(slots)-1]
	assert.Equal(t, "3", last.PractitionerID)
	assert.Equal(t, time.Date(2025, 3, 13, 17, 30, 0, 0, loc), last.Start)

	for i := 1; i < len(slots); i++ {
		assert.False(t, slots[i].Start.Before(slots[i-1].Start), "slots must be ordered")
	}
}

func TestGenerateSkipsWeekendsAndToday(t *testing.T) {
	loc := newYork(t)
	lister := &fakeLister{}
	g := Generator{
		Calendar: lister,
		Location: loc,
		Now:      func() time.Time { return time.Date(2025, 3, 14, 8, 0, 0, 0, loc) }, // Friday
	}

	slots, err := g.Generate(context.Background(), practitioner.DefaultRoster(), 2)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.Zero(t, lister.calls)

	slots, err = g.Generate(context.Background(), practitioner.DefaultRoster(), 3)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.Equal(t, time.Monday, s.Start.Weekday())
	}
}

func TestGenerateExcludesBusyAndAligns(t *testing.T) {
	loc := newYork(t)
	day := time.Date(2025, 3, 13, 0, 0, 0, 0, loc)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	roster := []practitioner.Practitioner{
		{ID: "a", Name: "Dr. A", CalendarID: "cal-a", Hours: weekdays("09:15", "10:30")},
		{ID: "b", Name: "Dr. B", CalendarID: "cal-b", Hours: weekdays("09:00", "11:00")},
	}
	lister := &fakeLister{busy: map[string][]availability.BusyInterval{
		"cal-b": {availability.Timed(at(9, 30), at(10, 15))},
	}}
	g := Generator{
		Calendar: lister,
		Location: loc,
		Now:      func() time.Time { return time.Date(2025, 3, 12, 18, 0, 0, 0, loc) },
	}

	slots, err := g.Generate(context.Background(), roster, 1)
	require.NoError(t, err)

	var got []string
	for _, s := range slots {
		got = append(got, s.PractitionerID+" "+s.Start.Format("15:04"))
	}
	assert.Equal(t, []string{"b 09:00", "a 09:30", "a 10:00", "b 10:30"}, got)
	for _, s := range slots {
		assert.Equal(t, SlotLength, s.End.Sub(s.Start))
		assert.True(t, s.Start.After(at(0, 0)))
	}
}

func TestGenerateStableOnTies(t *testing.T) {
	loc := newYork(t)
	roster := []practitioner.Practitioner{
		{ID: "z", Name: "Dr. Z", CalendarID: "c", Hours: weekdays("09:00", "09:30")},
		{ID: "y", Name: "Dr. Y", CalendarID: "c", Hours: weekdays("09:00", "09:30")},
	}
	g := Generator{
		Calendar: &fakeLister{},
		Location: loc,
		Now:      func() time.Time { return time.Date(2025, 3, 12, 9, 0, 0, 0, loc) },
	}
	slots, err := g.Generate(context.Background(), roster, 1)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "z", slots[0].PractitionerID)
	assert.Equal(t, "y", slots[1].PractitionerID)
}

func TestGenerateCalendarError(t *testing.T) {
	boom := errors.New("boom")
	g := Generator{
		Calendar: &fakeLister{err: boom},
		Now:      func() time.Time { return time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC) },
	}
	_, err := g.Generate(context.Background(), practitioner.DefaultRoster(), 14)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestResolveIgnoresCalendar(t *testing.T) {
	loc := newYork(t)
	p := practitioner.DefaultRoster()[1]
	start := time.Date(2025, 3, 13, 8, 30, 0, 0, loc)
	g := Generator{
		Location: loc,
		Now:      func() time.Time { return time.Date(2025, 3, 12, 10, 0, 0, 0, loc) },
	}

	s, ok := g.Resolve(p, 14, SlotID(p.ID, start))
	require.True(t, ok)
	assert.Equal(t, start, s.Start)
	assert.Equal(t, start.Add(SlotLength), s.End)
	assert.Equal(t, p.Name, s.PractitionerName)

	_, ok = g.Resolve(p, 14, SlotID(p.ID, time.Date(2025, 3, 13, 16, 0, 0, 0, loc)))
	assert.False(t, ok, "after closing")
	_, ok = g.Resolve(p, 14, SlotID(p.ID, time.Date(2025, 3, 12, 11, 0, 0, 0, loc)))
	assert.False(t, ok, "today is never offered")
	_, ok = g.Resolve(p, 14, SlotID("1", start))
	assert.False(t, ok, "other practitioner")
}

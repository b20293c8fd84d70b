package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestIsFree(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	at := func(h, m int) time.Time { return time.Date(2025, 3, 12, h, m, 0, 0, loc) }
	start, end := at(10, 0), at(10, 30)

	tests := []struct {
		name string
		busy []BusyInterval
		want bool
	}{
		{name: "no entries", want: true},
		{name: "ends exactly at start", busy: []BusyInterval{Timed(at(9, 30), at(10, 0))}, want: true},
		{name: "starts exactly at end", busy: []BusyInterval{Timed(at(10, 30), at(11, 0))}, want: true},
		{name: "inside", busy: []BusyInterval{Timed(at(10, 10), at(10, 20))}, want: false},
		{name: "covers", busy: []BusyInterval{Timed(at(9, 0), at(12, 0))}, want: false},
		{name: "overlaps tail", busy: []BusyInterval{Timed(at(10, 29), at(11, 0))}, want: false},
		{name: "all day", busy: []BusyInterval{AllDay("2025-03-12")}, want: false},
		{name: "all day previous", busy: []BusyInterval{AllDay("2025-03-11")}, want: true},
		{
			name: "multi day all day",
			busy: []BusyInterval{{Start: EventTime{Date: "2025-03-10"}, End: EventTime{Date: "2025-03-13"}}},
			want: false,
		},
		{
			name: "malformed is skipped",
			busy: []BusyInterval{
				{Start: EventTime{DateTime: "not-a-time"}, End: EventTime{DateTime: "also-bad"}},
				{Start: EventTime{DateTime: start.Format(time.RFC3339)}},
				{},
			},
			want: true,
		},
		{
			name: "other offset",
			busy: []BusyInterval{Timed(at(10, 0).UTC(), at(10, 30).UTC())},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFree(start, end, tt.busy, loc))
		})
	}
}

func TestBoundsAllDayInLocation(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	s, e, ok := AllDay("2025-03-12").Bounds(loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, loc), s)
	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, loc), e)

	// non-increasing end date collapses to one day
	s, e, ok = BusyInterval{Start: EventTime{Date: "2025-03-12"}, End: EventTime{Date: "2025-03-12"}}.Bounds(loc)
	require.True(t, ok)
	assert.Equal(t, 24*time.Hour, e.Sub(s))
}

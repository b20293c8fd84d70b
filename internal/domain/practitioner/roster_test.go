package practitioner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoster(t *testing.T) {
	roster := DefaultRoster()
	require.Len(t, roster, 3)

	wilson, ok := Find(roster, "3")
	require.True(t, ok)
	assert.Equal(t, "Dermatology", wilson.Specialty)

	fri, ok := wilson.HoursOn(time.Friday)
	require.True(t, ok)
	assert.Equal(t, "16:00", fri.Close.String())

	_, ok = wilson.HoursOn(time.Saturday)
	assert.False(t, ok)
}

func TestNames(t *testing.T) {
	p := Practitioner{Name: "Dr. Michael Johnson"}
	assert.Equal(t, "michael johnson", p.FullName())
	assert.Equal(t, "johnson", p.Surname())
}

func TestParseRoster(t *testing.T) {
	data := []byte(`
practitioners:
  - id: "7"
    name: Dr. Ada Lovelace
    specialty: Neurology
    rating: 4.6
    hours:
      Monday: {open: "08:30", close: "12:00"}
      wednesday: {open: "13:00", close: "17:00"}
`)
	roster, err := ParseRoster(data)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	p := roster[0]
	assert.Equal(t, "primary", p.CalendarID)
	mon, ok := p.HoursOn(time.Monday)
	require.True(t, ok)
	assert.Equal(t, ClockTime{Hour: 8, Minute: 30}, mon.Open)
	_, ok = p.HoursOn(time.Tuesday)
	assert.False(t, ok)
}

func TestParseRosterRejects(t *testing.T) {
	cases := map[string]string{
		"empty":        `practitioners: []`,
		"missing name": `practitioners: [{id: "1"}]`,
		"bad weekday":  `practitioners: [{id: "1", name: x, hours: {funday: {open: "09:00", close: "10:00"}}}]`,
		"bad clock":    `practitioners: [{id: "1", name: x, hours: {monday: {open: "9am", close: "10:00"}}}]`,
		"inverted":     `practitioners: [{id: "1", name: x, hours: {monday: {open: "10:00", close: "09:00"}}}]`,
		"duplicate":    `practitioners: [{id: "1", name: x}, {id: "1", name: y}]`,
		"underscore":   `practitioners: [{id: "a_b", name: x}]`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRoster([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadRoster(t *testing.T) {
	roster, err := LoadRoster("")
	require.NoError(t, err)
	assert.Len(t, roster, 3)

	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`practitioners: [{id: "9", name: Dr. Solo}]`), 0o600))
	roster, err = LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "solo", roster[0].Surname())

	_, err = LoadRoster(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/practitioner"
)

// Wednesday, 2025-08-13.
var fixedNow = time.Date(2025, 8, 13, 15, 0, 0, 0, time.UTC)

func newTestExtractor() *Extractor {
	return NewExtractor(practitioner.DefaultRoster(), time.UTC, func() time.Time { return fixedNow })
}

func TestExtract(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		text string
		want appointment.BookingRequest
	}{
		{
			name: "cardiology tomorrow",
			text: "I need a cardiology appointment tomorrow",
			want: appointment.BookingRequest{Specialty: "cardiology", Date: "2025-08-14", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "doctor surname afternoon",
			text: "Can I see Dr. Wilson on Friday afternoon?",
			want: appointment.BookingRequest{DoctorName: "wilson", TimeBucket: "afternoon", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "full name wins over surname",
			text: "appointment with Emily Smith please",
			want: appointment.BookingRequest{DoctorName: "emily smith", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "urgent general medicine",
			text: "URGENT: general medicine visit asap",
			want: appointment.BookingRequest{Specialty: "general medicine", AppointmentType: "consultation", Urgency: "urgent"},
		},
		{
			name: "no keywords",
			text: "hello there",
			want: appointment.NewBookingRequest(),
		},
		{
			name: "am inside a word is not morning",
			text: "my name is Sam and I need an exam",
			want: appointment.NewBookingRequest(),
		},
		{
			name: "10am is morning",
			text: "dermatology at 10am",
			want: appointment.BookingRequest{Specialty: "dermatology", TimeBucket: "morning", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "clock time afternoon",
			text: "cardiology at 2:30pm",
			want: appointment.BookingRequest{Specialty: "cardiology", TimeBucket: "afternoon", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "clock time morning",
			text: "dermatology 9:30am please",
			want: appointment.BookingRequest{Specialty: "dermatology", TimeBucket: "morning", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "clock time evening",
			text: "6:00pm tomorrow",
			want: appointment.BookingRequest{TimeBucket: "evening", Date: "2025-08-14", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "spaced meridiem",
			text: "around 3 pm",
			want: appointment.BookingRequest{TimeBucket: "afternoon", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "unlisted hour falls back to meridiem",
			text: "8:15am works",
			want: appointment.BookingRequest{TimeBucket: "morning", AppointmentType: "consultation", Urgency: "normal"},
		},
		{
			name: "am as a verb is not morning",
			text: "I am free any time",
			want: appointment.NewBookingRequest(),
		},
		{
			name: "evening",
			text: "something in the evening",
			want: appointment.BookingRequest{TimeBucket: "evening", AppointmentType: "consultation", Urgency: "normal"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text))
		})
	}
}

func TestExtractDates(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		text string
		want string
	}{
		{"tomorrow morning", "2025-08-14"},
		{"sometime next week", "2025-08-18"},
		{"next monday", "2025-08-18"},
		{"next wednesday", "2025-08-20"},
		{"next friday", "2025-08-15"},
		{"on August 20th", "2025-08-20"},
		{"aug 13", "2025-08-13"},
		{"sep 3rd", "2025-09-03"},
		{"September 1", "2025-09-01"},
		{"december 24", "2025-12-24"},
		{"august 1st", ""},
		{"february 30", ""},
		{"on 9/15", "2025-09-15"},
		{"on 1/15", ""},
		{"13/40", ""},
		{"tomorrow or aug 20", "2025-08-14"},
		{"next week, maybe 9/1", "2025-08-18"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).Date)
		})
	}
}

func TestExtractDatesFromThursday(t *testing.T) {
	thursday := time.Date(2025, 8, 14, 10, 0, 0, 0, time.UTC)
	e := NewExtractor(practitioner.DefaultRoster(), time.UTC, func() time.Time { return thursday })

	tests := []struct {
		text string
		want string
	}{
		{"tomorrow", "2025-08-15"},
		{"next monday", "2025-08-18"},
		{"next week", "2025-08-18"},
		{"next thursday", "2025-08-21"},
		{"next friday", "2025-08-15"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).Date)
		})
	}
}

func TestNextWeekday(t *testing.T) {
	mon := time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), NextWeekday(mon, time.Monday))
	assert.Equal(t, time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), NextWeekday(mon, time.Tuesday))

	sun := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), NextWeekday(sun, time.Monday))
}

func TestDoctorNames(t *testing.T) {
	assert.Equal(t,
		[]string{"emily smith", "michael johnson", "sarah wilson", "smith", "johnson", "wilson"},
		DoctorNames(practitioner.DefaultRoster()))
}

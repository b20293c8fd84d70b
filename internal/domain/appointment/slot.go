package appointment

import (
	"time"

	"github.com/example/careslot/internal/domain/practitioner"
)

const (
	SlotLength = 30 * time.Minute

	DateLayout        = "2006-01-02"
	DisplayDateLayout = "Monday, January 02, 2006"
	DisplayTimeLayout = "03:04 PM"
)

// Slot is a candidate bookable window for one practitioner. Slots are derived
// on every search and carry a snapshot of the practitioner they belong to.
type Slot struct {
	ID               string    `json:"id"`
	PractitionerID   string    `json:"practitioner_id"`
	PractitionerName string    `json:"practitioner_name"`
	Specialty        string    `json:"specialty"`
	Rating           float64   `json:"rating"`
	CalendarID       string    `json:"calendar_id"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	FormattedDate    string    `json:"formatted_date"`
	FormattedTime    string    `json:"formatted_time"`
}

// SlotID is unique per practitioner and start instant.
func SlotID(practitionerID string, start time.Time) string {
	return practitionerID + "_" + start.Format(time.RFC3339)
}

func NewSlot(p practitioner.Practitioner, start, end time.Time) Slot {
	return Slot{
		ID:               SlotID(p.ID, start),
		PractitionerID:   p.ID,
		PractitionerName: p.Name,
		Specialty:        p.Specialty,
		Rating:           p.Rating,
		CalendarID:       p.CalendarID,
		Start:            start,
		End:              end,
		FormattedDate:    start.Format(DisplayDateLayout),
		FormattedTime:    start.Format(DisplayTimeLayout),
	}
}

package appointment

import "time"

type FailureKind string

const (
	FailureInvalidInput     FailureKind = "invalid_input"
	FailureNoSearch         FailureKind = "no_search"
	FailureInvalidSelection FailureKind = "invalid_selection"
	FailureNotFound         FailureKind = "not_found"
	FailureSlotTaken        FailureKind = "slot_taken"
	FailureCalendar         FailureKind = "calendar_error"
	FailureUnavailable      FailureKind = "unavailable"
)

const StatusConfirmed = "confirmed"

type BookingResult struct {
	Success         bool        `json:"success"`
	EventID         string      `json:"event_id,omitempty"`
	EventLink       string      `json:"event_link,omitempty"`
	PatientName     string      `json:"patient_name,omitempty"`
	PatientEmail    string      `json:"patient_email,omitempty"`
	PractitionerID  string      `json:"practitioner_id,omitempty"`
	Practitioner    string      `json:"doctor,omitempty"`
	Specialty       string      `json:"specialty,omitempty"`
	Start           time.Time   `json:"start,omitzero"`
	End             time.Time   `json:"end,omitzero"`
	FormattedDate   string      `json:"date,omitempty"`
	FormattedTime   string      `json:"time,omitempty"`
	AppointmentType string      `json:"appointment_type,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	Status          string      `json:"status,omitempty"`
	BookedAt        time.Time   `json:"booked_at,omitzero"`
	Failure         FailureKind `json:"failure,omitempty"`
	Message         string      `json:"message"`
}

func Failed(kind FailureKind, message string) BookingResult {
	return BookingResult{Failure: kind, Message: message}
}

// Patient carries the details captured at booking time.
type Patient struct {
	Name            string
	Email           string
	AppointmentType string
	Notes           string
}

func Confirmed(slot Slot, ev CreatedEvent, p Patient, bookedAt time.Time) BookingResult {
	return BookingResult{
		Success:         true,
		EventID:         ev.ID,
		EventLink:       ev.Link,
		PatientName:     p.Name,
		PatientEmail:    p.Email,
		PractitionerID:  slot.PractitionerID,
		Practitioner:    slot.PractitionerName,
		Specialty:       slot.Specialty,
		Start:           slot.Start,
		End:             slot.End,
		FormattedDate:   slot.FormattedDate,
		FormattedTime:   slot.FormattedTime,
		AppointmentType: p.AppointmentType,
		Notes:           p.Notes,
		Status:          StatusConfirmed,
		BookedAt:        bookedAt,
		Message:         "Appointment booked successfully!",
	}
}

package appointment

type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
)

func (b TimeBucket) Valid() bool {
	switch b {
	case BucketMorning, BucketAfternoon, BucketEvening:
		return true
	}
	return false
}

// Contains reports whether a local hour of day falls in the bucket.
// morning [0,12), afternoon [12,17), evening [17,24).
func (b TimeBucket) Contains(hour int) bool {
	switch b {
	case BucketMorning:
		return hour < 12
	case BucketAfternoon:
		return hour >= 12 && hour < 17
	case BucketEvening:
		return hour >= 17
	}
	return false
}

type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
)

const DefaultRequestType = "consultation"

// AppointmentTypes are the types a patient may book.
var AppointmentTypes = []string{"Consultation", "Check-up", "Follow-up", "Emergency", "Screening"}

// BookingRequest is the structured intent derived from free text.
// Empty fields mean "no constraint".
type BookingRequest struct {
	Specialty       string     `json:"specialty,omitempty"`
	DoctorName      string     `json:"doctor_name,omitempty"`
	Date            string     `json:"preferred_date,omitempty"`
	TimeBucket      TimeBucket `json:"preferred_time,omitempty"`
	AppointmentType string     `json:"appointment_type"`
	PatientName     string     `json:"patient_name,omitempty"`
	Urgency         Urgency    `json:"urgency"`
}

func NewBookingRequest() BookingRequest {
	return BookingRequest{AppointmentType: DefaultRequestType, Urgency: UrgencyNormal}
}

func (r BookingRequest) Criteria() Criteria {
	return Criteria{
		Specialty:  r.Specialty,
		DoctorName: r.DoctorName,
		Date:       r.Date,
		TimeBucket: r.TimeBucket,
	}
}

// Criteria narrows a slot list. Zero values do not constrain.
type Criteria struct {
	Specialty  string
	DoctorName string
	Date       string
	TimeBucket TimeBucket
}

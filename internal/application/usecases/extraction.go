package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/assistant"
	"github.com/example/careslot/internal/domain/intent"
	"github.com/example/careslot/internal/observability/metrics"
)

// IntentExtractor turns free text into a BookingRequest. It never fails;
// unrecognized input yields the default request.
type IntentExtractor interface {
	Extract(ctx context.Context, text string) appointment.BookingRequest
}

type RuleExtractor struct {
	Rules *intent.Extractor
}

func (r RuleExtractor) Extract(_ context.Context, text string) appointment.BookingRequest {
	return r.Rules.Extract(text)
}

const extractionTemperature = 0.3

var jsonObject = regexp.MustCompile(`(?s)\{.*?\}`)

// AssistedExtractor asks a completion endpoint for the request fields and
// falls back to Fallback on any failure.
type AssistedExtractor struct {
	Completer assistant.Completer
	Fallback  IntentExtractor
	Location  *time.Location
	Now       func() time.Time
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
}

type modelIntent struct {
	DoctorName      string `json:"doctor_name"`
	Specialty       string `json:"specialty"`
	PreferredDate   string `json:"preferred_date"`
	PreferredTime   string `json:"preferred_time"`
	AppointmentType string `json:"appointment_type"`
	PatientName     string `json:"patient_name"`
	Urgency         string `json:"urgency"`
}

func (a AssistedExtractor) Extract(ctx context.Context, text string) appointment.BookingRequest {
	req, err := a.extract(ctx, text)
	if err != nil {
		a.Logger.Warn().Err(err).Str("completer", a.Completer.Name()).Msg("model-assisted extraction failed, using rules")
		a.Metrics.ObserveFallback("extraction")
		return a.Fallback.Extract(ctx, text)
	}
	return req
}

func (a AssistedExtractor) today() time.Time {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	n := now().In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}

func (a AssistedExtractor) extract(ctx context.Context, text string) (appointment.BookingRequest, error) {
	today := a.today()
	prompt := fmt.Sprintf(`You extract appointment booking details from patient messages.
Today is %s (%s).
Reply with only a JSON object with these fields, using null when unknown:
doctor_name, specialty, preferred_date (YYYY-MM-DD), preferred_time (morning, afternoon or evening),
appointment_type, patient_name, urgency (urgent or normal).`,
		today.Format(appointment.DateLayout), today.Weekday())

	out, err := a.Completer.Complete(ctx, []assistant.Message{assistant.System(prompt), assistant.User(text)}, extractionTemperature)
	if err != nil {
		return appointment.BookingRequest{}, err
	}
	raw := jsonObject.FindString(out)
	if raw == "" {
		return appointment.BookingRequest{}, fmt.Errorf("no JSON object in completion")
	}
	var mi modelIntent
	if err := json.Unmarshal([]byte(raw), &mi); err != nil {
		return appointment.BookingRequest{}, fmt.Errorf("decode completion: %w", err)
	}
	return normalizeIntent(mi, today), nil
}

func normalizeIntent(mi modelIntent, today time.Time) appointment.BookingRequest {
	req := appointment.NewBookingRequest()
	req.Specialty = strings.ToLower(strings.TrimSpace(mi.Specialty))
	req.DoctorName = doctorName(mi.DoctorName)
	req.PatientName = strings.TrimSpace(mi.PatientName)

	if t := strings.TrimSpace(mi.AppointmentType); t != "" {
		req.AppointmentType = strings.ToLower(t)
	}
	if strings.EqualFold(strings.TrimSpace(mi.Urgency), string(appointment.UrgencyUrgent)) {
		req.Urgency = appointment.UrgencyUrgent
	}
	if b := appointment.TimeBucket(strings.ToLower(strings.TrimSpace(mi.PreferredTime))); b.Valid() {
		req.TimeBucket = b
	}
	if d, err := time.ParseInLocation(appointment.DateLayout, strings.TrimSpace(mi.PreferredDate), today.Location()); err == nil {
		req.Date = correctYear(d, today).Format(appointment.DateLayout)
	}
	return req
}

// doctorName drops the title so "Dr. Smith" matches "Dr. Emily Smith".
func doctorName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, title := range []string{"dr.", "dr ", "doctor "} {
		if strings.HasPrefix(s, title) {
			return strings.TrimSpace(s[len(title):])
		}
	}
	return s
}

// correctYear moves dates the model placed in an earlier year into the
// current one, and past dates into next year.
func correctYear(d, today time.Time) time.Time {
	if d.Year() < today.Year() {
		d = time.Date(today.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	}
	if d.Before(today) {
		d = d.AddDate(1, 0, 0)
	}
	return d
}

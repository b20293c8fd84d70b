package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/practitioner"
	"github.com/example/careslot/internal/internaltypes"
	"github.com/example/careslot/internal/observability/metrics"
)

const DefaultLookaheadDays = 14

// BookingService runs the search-then-book conversation for each session.
type BookingService struct {
	Practitioners []practitioner.Practitioner
	Generator     appointment.Generator
	Calendar      appointment.Calendar
	Extractor     IntentExtractor
	Presenter     Presenter
	Sessions      SessionStore
	Ledger        BookingLedger
	Validator     *BookingValidator
	Lookahead     int
	Now           func() time.Time
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
}

type SearchResult struct {
	Request      appointment.BookingRequest `json:"request"`
	Slots        []appointment.Slot         `json:"slots"`
	Presentation string                     `json:"presentation"`
}

type BookRequest struct {
	Selection       int    `json:"selection"`
	PatientName     string `json:"patient_name" validate:"required,max=200"`
	PatientEmail    string `json:"patient_email" validate:"required,email"`
	AppointmentType string `json:"appointment_type" validate:"oneof=Consultation Check-up Follow-up Emergency Screening"`
	Notes           string `json:"notes" validate:"max=2000"`
}

func (s BookingService) lookahead() int {
	if s.Lookahead <= 0 {
		return DefaultLookaheadDays
	}
	return s.Lookahead
}

func (s BookingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// ProcessRequest extracts a request from text, searches the calendar and
// replaces the session's result set with the matches.
func (s BookingService) ProcessRequest(ctx context.Context, sessionID, text string) (SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.Metrics.ObserveSearch("invalid")
		return SearchResult{}, fmt.Errorf("empty request: %w", internaltypes.ErrInvalidInput)
	}
	req := s.Extractor.Extract(ctx, text)

	all, err := s.Generator.Generate(ctx, s.Practitioners, s.lookahead())
	if err != nil {
		s.Metrics.ObserveSearch("error")
		s.Logger.Error().Err(err).Str("session", sessionID).Msg("slot generation failed")
		// a failed search still replaces the previous result set
		if clearErr := s.Sessions.SaveResults(ctx, sessionID, nil); clearErr != nil {
			s.Logger.Error().Err(clearErr).Str("session", sessionID).Msg("clear results")
		}
		return SearchResult{Request: req}, err
	}
	matches := appointment.Filter(all, req.Criteria())

	if err := s.Sessions.SaveResults(ctx, sessionID, matches); err != nil {
		s.Metrics.ObserveSearch("error")
		return SearchResult{Request: req}, fmt.Errorf("save results: %w", err)
	}

	outcome := "matched"
	if len(matches) == 0 {
		outcome = "empty"
	}
	s.Metrics.ObserveSearch(outcome)
	s.Logger.Info().
		Str("session", sessionID).
		Str("specialty", req.Specialty).
		Str("doctor", req.DoctorName).
		Str("date", req.Date).
		Str("time", string(req.TimeBucket)).
		Int("generated", len(all)).
		Int("matches", len(matches)).
		Msg("search complete")

	return SearchResult{
		Request:      req,
		Slots:        matches,
		Presentation: s.Presenter.Present(ctx, text, req, matches),
	}, nil
}

// Book resolves a 1-based selection from the session's last search,
// re-verifies the slot against the live calendar and creates the event.
// Every failure is reported in the result, never as an error.
func (s BookingService) Book(ctx context.Context, sessionID string, in BookRequest) appointment.BookingResult {
	started := s.now()
	res := s.book(ctx, sessionID, in)

	outcome := appointment.StatusConfirmed
	if !res.Success {
		outcome = string(res.Failure)
		s.Logger.Warn().Str("session", sessionID).Str("failure", outcome).Msg(res.Message)
	} else {
		s.Logger.Info().Str("session", sessionID).Str("event_id", res.EventID).Str("doctor", res.Practitioner).
			Time("start", res.Start).Msg("appointment booked")
	}
	s.Metrics.ObserveBooking(outcome, s.now().Sub(started).Seconds())
	return res
}

func (s BookingService) book(ctx context.Context, sessionID string, in BookRequest) appointment.BookingResult {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.PatientEmail = strings.TrimSpace(in.PatientEmail)
	if in.AppointmentType == "" {
		in.AppointmentType = appointment.AppointmentTypes[0]
	}
	if res, ok := s.validate(in); !ok {
		return res
	}

	stored, err := s.Sessions.LoadResults(ctx, sessionID)
	if err != nil && !errors.Is(err, internaltypes.ErrNotFound) {
		return appointment.Failed(appointment.FailureUnavailable, UserMessage(err))
	}
	if len(stored) == 0 {
		return appointment.Failed(appointment.FailureNoSearch, "No appointments available. Please search first.")
	}
	if in.Selection < 1 || in.Selection > len(stored) {
		return appointment.Failed(appointment.FailureInvalidSelection, "Invalid slot number.")
	}
	chosen := stored[in.Selection-1]

	p, ok := practitioner.Find(s.Practitioners, chosen.PractitionerID)
	if !ok {
		return appointment.Failed(appointment.FailureNotFound, "Slot not found")
	}
	// Stored slots are snapshots; re-derive from current hours and window.
	slot, ok := s.Generator.Resolve(p, s.lookahead(), chosen.ID)
	if !ok {
		return appointment.Failed(appointment.FailureNotFound, "Slot not found")
	}

	free, err := s.Calendar.IsAvailable(ctx, slot.CalendarID, slot.Start, slot.End)
	if err != nil {
		return calendarFailure(err)
	}
	if !free {
		return appointment.Failed(appointment.FailureSlotTaken, "Slot no longer available")
	}

	patient := appointment.Patient{
		Name:            in.PatientName,
		Email:           in.PatientEmail,
		AppointmentType: in.AppointmentType,
		Notes:           in.Notes,
	}
	ev, err := s.Calendar.CreateEvent(ctx, slot.CalendarID, appointment.NewEventDraft(slot, patient))
	if err != nil {
		return calendarFailure(err)
	}
	res := appointment.Confirmed(slot, ev, patient, s.now().UTC())

	if s.Ledger != nil {
		if err := s.Ledger.Record(ctx, res); err != nil {
			s.Logger.Error().Err(err).Str("event_id", ev.ID).Msg("record booking")
		}
	}
	return res
}

func (s BookingService) validate(in BookRequest) (appointment.BookingResult, bool) {
	v := s.Validator
	if v == nil {
		v = NewBookingValidator()
	}
	err := v.Validate(in)
	if err == nil {
		return appointment.BookingResult{}, true
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) && (verrs.Has("patient_name", "required") || verrs.Has("patient_email", "required")) {
		return appointment.Failed(appointment.FailureInvalidInput, "Please provide patient name and email."), false
	}
	return appointment.Failed(appointment.FailureInvalidInput, err.Error()), false
}

func calendarFailure(err error) appointment.BookingResult {
	if errors.Is(err, internaltypes.ErrSlotTaken) {
		return appointment.Failed(appointment.FailureSlotTaken, "Slot no longer available")
	}
	if errors.Is(err, internaltypes.ErrUnauthorized) {
		return appointment.Failed(appointment.FailureCalendar, UserMessage(err))
	}
	return appointment.Failed(appointment.FailureCalendar, fmt.Sprintf("Error booking appointment: %v", err))
}

// UserMessage converts an error into text fit for the patient.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, internaltypes.ErrUnauthorized):
		return "Google Calendar not authenticated. Run `careslot calendar login` and try again."
	case errors.Is(err, internaltypes.ErrUnavailable):
		return "The calendar service is unavailable right now. Please try again later."
	case errors.Is(err, internaltypes.ErrInvalidInput):
		return "Please describe the appointment you need."
	}
	return "Something went wrong. Please try again."
}

package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/assistant"
	"github.com/example/careslot/internal/observability/metrics"
)

// PresentLimit is how many slots a presentation lists.
const PresentLimit = 5

const noMatchesText = "I couldn't find any available appointments matching your criteria. Please try different dates or specialties."

type Presenter interface {
	Present(ctx context.Context, text string, req appointment.BookingRequest, slots []appointment.Slot) string
}

type TemplatePresenter struct{}

func (TemplatePresenter) Present(_ context.Context, _ string, _ appointment.BookingRequest, slots []appointment.Slot) string {
	if len(slots) == 0 {
		return noMatchesText
	}
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d available appointments for your request:\n\n", len(slots))
	for i, s := range slots {
		if i == PresentLimit {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, s.PractitionerName, s.Specialty)
		fmt.Fprintf(&b, "   %s at %s\n", s.FormattedDate, s.FormattedTime)
		fmt.Fprintf(&b, "   Rating: %.1f/5\n\n", s.Rating)
	}
	b.WriteString("Please select an appointment number and provide your details to book.")
	return b.String()
}

const presentationTemperature = 0.8

// AssistedPresenter paraphrases results through a completion endpoint and
// degrades to Fallback on any failure.
type AssistedPresenter struct {
	Completer assistant.Completer
	Fallback  Presenter
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
}

type presentedSlot struct {
	Number    int     `json:"number"`
	Doctor    string  `json:"doctor"`
	Specialty string  `json:"specialty"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Rating    float64 `json:"rating"`
}

func (p AssistedPresenter) Present(ctx context.Context, text string, req appointment.BookingRequest, slots []appointment.Slot) string {
	out, err := p.present(ctx, text, req, slots)
	if err != nil {
		p.Logger.Warn().Err(err).Str("completer", p.Completer.Name()).Msg("model-assisted presentation failed, using template")
		p.Metrics.ObserveFallback("presentation")
		return p.Fallback.Present(ctx, text, req, slots)
	}
	return out
}

func (p AssistedPresenter) present(ctx context.Context, text string, req appointment.BookingRequest, slots []appointment.Slot) (string, error) {
	listed := make([]presentedSlot, 0, PresentLimit)
	for i, s := range slots {
		if i == PresentLimit {
			break
		}
		listed = append(listed, presentedSlot{
			Number: i + 1, Doctor: s.PractitionerName, Specialty: s.Specialty,
			Date: s.FormattedDate, Time: s.FormattedTime, Rating: s.Rating,
		})
	}
	info, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	available, err := json.Marshal(listed)
	if err != nil {
		return "", err
	}

	system := "You are a friendly medical appointment assistant. Present the available appointments as a numbered list " +
		"using exactly the numbers given, then ask the patient to choose a number and provide their name and email. " +
		"If there are none, apologise and suggest different dates or specialties. Never invent appointments."
	user := fmt.Sprintf("Patient request: %s\nExtracted information: %s\nTotal matches: %d\nAvailable appointments: %s",
		text, info, len(slots), available)

	out, err := p.Completer.Complete(ctx, []assistant.Message{assistant.System(system), assistant.User(user)}, presentationTemperature)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("empty completion")
	}
	return strings.TrimSpace(out), nil
}

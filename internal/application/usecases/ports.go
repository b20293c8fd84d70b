package usecases

import (
	"context"

	"github.com/example/careslot/internal/domain/appointment"
)

// SessionStore holds each session's most recent result set. LoadResults
// returns internaltypes.ErrNotFound when the session has not searched.
type SessionStore interface {
	SaveResults(ctx context.Context, sessionID string, slots []appointment.Slot) error
	LoadResults(ctx context.Context, sessionID string) ([]appointment.Slot, error)
}

// BookingLedger records confirmed bookings.
type BookingLedger interface {
	Record(ctx context.Context, b appointment.BookingResult) error
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/internaltypes"
)

func TestTokenRepo(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTokenRepo(mock)
	ctx := context.Background()

	mock.ExpectQuery("SELECT token_ciphertext FROM calendar_tokens").
		WithArgs("default").
		WillReturnRows(pgxmock.NewRows([]string{"token_ciphertext"}).AddRow("sealed"))
	ct, err := repo.Get(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "sealed", ct)

	mock.ExpectQuery("SELECT token_ciphertext FROM calendar_tokens").
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.Get(ctx, "nobody")
	assert.ErrorIs(t, err, internaltypes.ErrNotFound)

	mock.ExpectExec("INSERT INTO calendar_tokens").
		WithArgs("default", "sealed-2", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Put(ctx, "default", "sealed-2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func confirmedBooking() appointment.BookingResult {
	start := time.Date(2025, 3, 13, 13, 0, 0, 0, time.UTC)
	return appointment.BookingResult{
		Success:         true,
		EventID:         "evt-1",
		EventLink:       "https://calendar.example/evt-1",
		PatientName:     "Jane Doe",
		PatientEmail:    "jane@example.com",
		PractitionerID:  "2",
		Practitioner:    "Dr. Michael Johnson",
		Specialty:       "Cardiology",
		Start:           start,
		End:             start.Add(30 * time.Minute),
		AppointmentType: "Consultation",
		Status:          appointment.StatusConfirmed,
		BookedAt:        start.Add(-24 * time.Hour),
	}
}

func TestBookingRepoRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookingRepo(mock)
	b := confirmedBooking()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.EventID, b.EventLink, b.PractitionerID, b.Practitioner, b.Specialty,
			b.PatientName, b.PatientEmail, b.AppointmentType, b.Notes,
			b.Start, b.End, b.Status, b.BookedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Record(context.Background(), b))

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	assert.Error(t, repo.Record(context.Background(), b))

	assert.Error(t, repo.Record(context.Background(), appointment.Failed(appointment.FailureNotFound, "Slot not found")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	b := confirmedBooking()
	rows := pgxmock.NewRows([]string{
		"event_id", "event_link", "practitioner_id", "practitioner_name", "specialty",
		"patient_name", "patient_email", "appointment_type", "notes", "starts_at", "ends_at", "status", "booked_at",
	}).AddRow(b.EventID, b.EventLink, b.PractitionerID, b.Practitioner, b.Specialty,
		b.PatientName, b.PatientEmail, b.AppointmentType, b.Notes, b.Start, b.End, b.Status, b.BookedAt)

	mock.ExpectQuery("FROM bookings ORDER BY booked_at DESC").WithArgs(20).WillReturnRows(rows)

	got, err := NewBookingRepo(mock).Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"fmt"

	"github.com/example/careslot/internal/domain/appointment"
)

// BookingRepo is the ledger of confirmed bookings.
type BookingRepo struct{ db DBTX }

func NewBookingRepo(db DBTX) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) Record(ctx context.Context, b appointment.BookingResult) error {
	if !b.Success || b.EventID == "" {
		return fmt.Errorf("record booking: only confirmed bookings are recorded")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (event_id, event_link, practitioner_id, practitioner_name, specialty,
			patient_name, patient_email, appointment_type, notes, starts_at, ends_at, status, booked_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (event_id) DO NOTHING
	`, b.EventID, b.EventLink, b.PractitionerID, b.Practitioner, b.Specialty,
		b.PatientName, b.PatientEmail, b.AppointmentType, b.Notes,
		b.Start.UTC(), b.End.UTC(), b.Status, b.BookedAt.UTC())
	if err != nil {
		return fmt.Errorf("record booking: %w", err)
	}
	return nil
}

// Recent lists the most recently booked appointments, newest first.
func (r *BookingRepo) Recent(ctx context.Context, limit int) ([]appointment.BookingResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT event_id, event_link, practitioner_id, practitioner_name, specialty,
			patient_name, patient_email, appointment_type, notes, starts_at, ends_at, status, booked_at
		FROM bookings ORDER BY booked_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []appointment.BookingResult
	for rows.Next() {
		var b appointment.BookingResult
		if err := rows.Scan(&b.EventID, &b.EventLink, &b.PractitionerID, &b.Practitioner, &b.Specialty,
			&b.PatientName, &b.PatientEmail, &b.AppointmentType, &b.Notes,
			&b.Start, &b.End, &b.Status, &b.BookedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.Success = true
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

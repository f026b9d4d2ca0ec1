package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apptColumns = `id, user_id, user_name, doctor_id, token_number, booking_date,
	time_slot, status, diagnosis, prescription, created_at, updated_at, completed_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var diagnosis, prescription *string
	var completedAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.UserName,
		&a.DoctorID,
		&a.TokenNumber,
		&a.BookingDate,
		&a.TimeSlot,
		&a.Status,
		&diagnosis,
		&prescription,
		&a.CreatedAt,
		&a.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Diagnosis = diagnosis
	a.Prescription = prescription
	a.CompletedAt = completedAt
	return &a, nil
}

func (r *PgRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, user_id, user_name, doctor_id, token_number, booking_date, time_slot, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING `+apptColumns,
		appt.ID, appt.UserID, appt.UserName, appt.DoctorID,
		appt.TokenNumber, appt.BookingDate, appt.TimeSlot, appt.Status)

	created, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return created, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+apptColumns,
		id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) Complete(ctx context.Context, id uuid.UUID, from Status, notes CompletionNotes, at time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    diagnosis = $4,
		    prescription = $5,
		    completed_at = $6,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+apptColumns,
		id, StatusCompleted, from, nullableText(notes.Diagnosis), nullableText(notes.Prescription), at)

	return scanAppointment(row)
}

func (r *PgRepository) ListQueue(ctx context.Context, doctorID uuid.UUID, day string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND booking_date = $2::date
		ORDER BY token_number ASC
	`, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("query queue: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query user appointments: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) QueueStats(ctx context.Context, doctorID uuid.UUID, day string) (*DayStats, error) {
	stats := DayStats{Day: day}

	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'completed'),
		       count(*) FILTER (WHERE status = 'waiting')
		FROM appointments
		WHERE doctor_id = $1
		  AND booking_date = $2::date
	`, doctorID, day).Scan(&stats.Total, &stats.Completed, &stats.Waiting)
	if err != nil {
		return nil, fmt.Errorf("query queue stats: %w", err)
	}

	return &stats, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

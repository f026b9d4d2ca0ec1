package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository contains all DB interactions needed by the service.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Conditional updates: both mutate only when the row still holds the
	// expected status, so a concurrent transition loses cleanly. A lost race
	// surfaces as ErrAppointmentNotFound.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	Complete(ctx context.Context, id uuid.UUID, from Status, notes CompletionNotes, at time.Time) (*Appointment, error)

	ListQueue(ctx context.Context, doctorID uuid.UUID, day string) ([]Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Appointment, error)
	QueueStats(ctx context.Context, doctorID uuid.UUID, day string) (*DayStats, error)
}

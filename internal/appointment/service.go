package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/AbhishekS200607/MEDIHUB/internal/redis"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
)

const (
	defaultPatientListLimit = 20
	maxPatientListLimit     = 100
)

var (
	ErrMissingField      = errors.New("required booking field missing")
	ErrUnknownStatus     = errors.New("unknown appointment status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TokenIssuer allocates queue tokens. Satisfied by *token.Issuer.
type TokenIssuer interface {
	IssueNext(ctx context.Context, doctorID uuid.UUID, day string) (int, error)
}

type Service struct {
	repo     Repository
	tokens   TokenIssuer
	notifier redisclient.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer, notifier redisclient.Notifier, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Book validates the request, allocates the next queue token, and only then
// creates the appointment in state waiting. The ordering is deliberate: a
// crash between the two writes wastes a token number but can never produce a
// duplicate, and a failed issuance never leaves an appointment behind.
func (s *Service) Book(ctx context.Context, in BookInput) (*Appointment, error) {
	if in.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: doctor id", ErrMissingField)
	}
	if in.TimeSlot == "" {
		return nil, fmt.Errorf("%w: time slot", ErrMissingField)
	}
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id", ErrMissingField)
	}

	day := in.Day
	if day == "" {
		day = token.Today()
	}

	tokenNumber, err := s.tokens.IssueNext(ctx, in.DoctorID, day)
	if err != nil {
		return nil, err
	}

	bookingDate, err := time.Parse(token.DayFormat, day)
	if err != nil {
		// IssueNext already validated the day; this is unreachable in practice.
		return nil, fmt.Errorf("parse booking day: %w", err)
	}

	appt := &Appointment{
		ID:          uuid.New(),
		UserID:      in.UserID,
		UserName:    in.UserName,
		DoctorID:    in.DoctorID,
		TokenNumber: tokenNumber,
		BookingDate: bookingDate,
		TimeSlot:    in.TimeSlot,
		Status:      StatusWaiting,
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.log.Info().
		Stringer("appointment_id", created.ID).
		Stringer("doctor_id", created.DoctorID).
		Int("token", created.TokenNumber).
		Str("day", day).
		Msg("appointment booked")

	s.publishChange(ctx, created.DoctorID, day)
	return created, nil
}

// Transition moves an appointment through the status machine. Completion
// stamps completed_at and attaches the write-once diagnosis/prescription
// notes; all other targets ignore notes.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target Status, notes CompletionNotes) (*Appointment, error) {
	if !ValidStatus(target) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appt.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, target)
	}

	var updated *Appointment
	if target == StatusCompleted {
		updated, err = s.repo.Complete(ctx, id, appt.Status, notes, s.now())
	} else {
		updated, err = s.repo.UpdateStatus(ctx, id, appt.Status, target)
	}
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The row existed moments ago, so the conditional update lost to a
			// concurrent transition.
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.log.Info().
		Stringer("appointment_id", updated.ID).
		Str("from", string(appt.Status)).
		Str("to", string(updated.Status)).
		Msg("appointment status changed")

	s.publishChange(ctx, updated.DoctorID, updated.BookingDate.Format(token.DayFormat))
	return updated, nil
}

// Queue returns a doctor's appointments for a day, ascending by token number.
// Re-queryable at will; live updates come from the notifier subscription, not
// from this call.
func (s *Service) Queue(ctx context.Context, doctorID uuid.UUID, day string) ([]Appointment, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: doctor id", ErrMissingField)
	}
	if !token.ValidDay(day) {
		return nil, fmt.Errorf("%w: day must be %s", token.ErrValidation, token.DayFormat)
	}
	return s.repo.ListQueue(ctx, doctorID, day)
}

// ListForPatient returns a patient's appointments, newest first.
func (s *Service) ListForPatient(ctx context.Context, userID uuid.UUID, limit int) ([]Appointment, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id", ErrMissingField)
	}
	if limit <= 0 {
		limit = defaultPatientListLimit
	}
	if limit > maxPatientListLimit {
		limit = maxPatientListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DoctorStats(ctx context.Context, doctorID uuid.UUID, day string) (*DayStats, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: doctor id", ErrMissingField)
	}
	if !token.ValidDay(day) {
		return nil, fmt.Errorf("%w: day must be %s", token.ErrValidation, token.DayFormat)
	}
	return s.repo.QueueStats(ctx, doctorID, day)
}

// publishChange is best effort: a missed notification only delays a client
// re-fetch, it never loses data.
func (s *Service) publishChange(ctx context.Context, doctorID uuid.UUID, day string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishQueueChange(ctx, doctorID, day); err != nil {
		s.log.Warn().Err(err).Stringer("doctor_id", doctorID).Str("day", day).
			Msg("queue change notification failed")
	}
}

package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Issuer hands out the next queue token for a (doctor, day) key. For a fixed
// key the committed values are exactly 1, 2, 3, ... in transaction
// serialization order: gap-free and duplicate-free, but not FIFO by arrival.
// Concurrency control is entirely the store's transaction mechanism; no
// in-process locking is attempted because bookings may be served by
// independent server instances.
type Issuer struct {
	store       Store
	maxAttempts int
	log         zerolog.Logger
}

func NewIssuer(store Store, maxAttempts int, log zerolog.Logger) *Issuer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Issuer{
		store:       store,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// IssueNext allocates the next token for the key, retrying the whole
// read-compute-write unit on transaction conflict. Exhausted retries surface
// as ErrContention and the caller must not create an appointment.
func (i *Issuer) IssueNext(ctx context.Context, doctorID uuid.UUID, day string) (int, error) {
	if err := validateKey(doctorID, day); err != nil {
		return 0, err
	}

	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		n, err := i.store.IncrementOnce(ctx, doctorID, day)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, ErrConflict) {
			return 0, fmt.Errorf("issue token: %w", err)
		}

		i.log.Debug().
			Stringer("doctor_id", doctorID).
			Str("day", day).
			Int("attempt", attempt).
			Msg("token counter conflict, retrying")
	}

	return 0, ErrContention
}

// Current returns the last issued token for the key, 0 when none has been
// issued. Advisory only: callers use it to show "now serving #N", never to
// predict the next token.
func (i *Issuer) Current(ctx context.Context, doctorID uuid.UUID, day string) (int, error) {
	if err := validateKey(doctorID, day); err != nil {
		return 0, err
	}
	return i.store.Current(ctx, doctorID, day)
}

// SweepExpired deletes every counter strictly before asOf. Idempotent, and
// safe to run while issuance proceeds for asOf or later days.
func (i *Issuer) SweepExpired(ctx context.Context, asOf string) (int64, error) {
	if !ValidDay(asOf) {
		return 0, fmt.Errorf("%w: as-of day must be %s", ErrValidation, DayFormat)
	}

	removed, err := i.store.DeleteBefore(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("sweep counters: %w", err)
	}

	if removed > 0 {
		i.log.Info().Int64("removed", removed).Str("before", asOf).Msg("swept stale token counters")
	}
	return removed, nil
}

func validateKey(doctorID uuid.UUID, day string) error {
	if doctorID == uuid.Nil {
		return fmt.Errorf("%w: doctor id is required", ErrValidation)
	}
	if !ValidDay(day) {
		return fmt.Errorf("%w: day must be %s", ErrValidation, DayFormat)
	}
	return nil
}

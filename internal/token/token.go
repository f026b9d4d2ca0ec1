package token

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DayFormat is the calendar-day key format used to partition counters.
const DayFormat = "2006-01-02"

var (
	ErrValidation = errors.New("invalid token request")
	ErrContention = errors.New("token counter contention, retries exhausted")

	// ErrConflict is returned by Store implementations when a single
	// read-modify-write attempt lost to a concurrent transaction. The issuer
	// retries the whole attempt; callers never see this error.
	ErrConflict = errors.New("token counter transaction conflict")
)

// Today returns the current calendar day in the counter key format.
func Today() string {
	return time.Now().Format(DayFormat)
}

// ValidDay reports whether day is a well-formed calendar day key.
func ValidDay(day string) bool {
	_, err := time.Parse(DayFormat, day)
	return err == nil
}

// Store performs counter mutations against the transactional store.
// IncrementOnce is a single serializable read-modify-write attempt: read the
// counter (missing means zero), write back current+1, return it. It must fail
// with ErrConflict when the store aborts the transaction due to a concurrent
// writer, never commit a partial result.
type Store interface {
	IncrementOnce(ctx context.Context, doctorID uuid.UUID, day string) (int, error)
	Current(ctx context.Context, doctorID uuid.UUID, day string) (int, error)
	DeleteBefore(ctx context.Context, day string) (int64, error)
}

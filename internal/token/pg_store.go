package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// IncrementOnce runs one read-modify-write of the counter inside a
// serializable transaction. A lost-update race (two transactions reading the
// same current and writing the same next) is rejected by the store, surfaced
// here as ErrConflict for the issuer to retry in full.
func (s *PgStore) IncrementOnce(ctx context.Context, doctorID uuid.UUID, day string) (int, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, fmt.Errorf("begin counter tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int
	err = tx.QueryRow(ctx, `
		SELECT current FROM token_counters
		WHERE doctor_id = $1 AND day = $2::date
	`, doctorID, day).Scan(&current)

	var next int
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		next = 1
		_, err = tx.Exec(ctx, `
			INSERT INTO token_counters (doctor_id, day, current)
			VALUES ($1, $2::date, 1)
		`, doctorID, day)
	case err != nil:
		// Serializable isolation can abort on the read itself; that is a
		// conflict to retry, not a hard failure.
		if isRetryable(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("read counter: %w", err)
	default:
		next = current + 1
		_, err = tx.Exec(ctx, `
			UPDATE token_counters
			SET current = $3
			WHERE doctor_id = $1 AND day = $2::date
		`, doctorID, day, next)
	}
	if err != nil {
		if isRetryable(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("write counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isRetryable(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("commit counter: %w", err)
	}

	return next, nil
}

func (s *PgStore) Current(ctx context.Context, doctorID uuid.UUID, day string) (int, error) {
	var current int
	err := s.pool.QueryRow(ctx, `
		SELECT current FROM token_counters
		WHERE doctor_id = $1 AND day = $2::date
	`, doctorID, day).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	return current, nil
}

func (s *PgStore) DeleteBefore(ctx context.Context, day string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM token_counters
		WHERE day < $1::date
	`, day)
	if err != nil {
		return 0, fmt.Errorf("delete counters: %w", err)
	}
	return tag.RowsAffected(), nil
}

// isRetryable recognizes conflicts worth retrying in full: serialization
// failures, deadlocks, and the duplicate-key race when two first bookings of
// the day both try to create the counter row.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}

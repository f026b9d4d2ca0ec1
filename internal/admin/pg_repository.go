package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `
		SELECT value FROM clinic_config WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrConfigNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read config %q: %w", key, err)
	}
	return value, nil
}

func (r *PgRepository) Set(ctx context.Context, key, value string, updatedBy uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clinic_config (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = now()
	`, key, value, updatedBy)
	if err != nil {
		return fmt.Errorf("write config %q: %w", key, err)
	}
	return nil
}

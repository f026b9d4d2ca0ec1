package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, name, role, phone, specialization, active, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var specialization *string
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.Phone,
		&specialization,
		&u.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u.Specialization = specialization
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt
	return &u, nil
}

func (r *PgRepository) Upsert(ctx context.Context, u *User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role, phone, specialization, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    specialization = EXCLUDED.specialization,
		    updated_at = now()
		RETURNING `+userColumns,
		u.ID, u.Email, u.Name, u.Role, u.Phone, u.Specialization)

	stored, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return stored, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) (*User, error) {
	// Empty fields keep their stored value; role is never touched here.
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    phone = COALESCE(NULLIF($3, ''), phone),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, name, phone)

	return scanUser(row)
}

// ListDoctors is the public doctor directory; restricted doctors are hidden.
func (r *PgRepository) ListDoctors(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = 'doctor' AND active
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListByRole returns every account with the role, or all accounts when role
// is empty. Admin view, so restricted doctors are included.
func (r *PgRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE $1 = '' OR role = $1
		ORDER BY role ASC, name ASC
	`, role)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *PgRepository) SetDoctorActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET active = $2, updated_at = now()
		WHERE id = $1 AND role = 'doctor'
		RETURNING `+userColumns,
		id, active)
	return scanUser(row)
}

// DeleteDoctor removes a doctor account; the schema cascades the delete to
// the doctor's appointments and token counters.
func (r *PgRepository) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM users
		WHERE id = $1 AND role = 'doctor'
	`, id)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

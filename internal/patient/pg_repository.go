package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientColumns = `id, name, phone, email, address, medical_history, created_by, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Phone,
		&p.Email,
		&p.Address,
		&p.MedicalHistory,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) Create(ctx context.Context, p *Patient) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, name, phone, email, address, medical_history, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+patientColumns,
		p.ID, p.Name, p.Phone, p.Email, p.Address, p.MedicalHistory, p.CreatedBy)

	created, err := scanPatient(row)
	if err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	return created, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) List(ctx context.Context, limit, offset int) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Search matches a name or phone prefix, case-insensitive on the name.
func (r *PgRepository) Search(ctx context.Context, q string, limit int) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE name ILIKE $1 || '%' OR phone LIKE $1 || '%'
		ORDER BY name ASC
		LIMIT $2
	`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET name = COALESCE(NULLIF($2, ''), name),
		    phone = COALESCE(NULLIF($3, ''), phone),
		    email = COALESCE(NULLIF($4, ''), email),
		    address = COALESCE(NULLIF($5, ''), address),
		    medical_history = COALESCE(NULLIF($6, ''), medical_history),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+patientColumns,
		id, in.Name, in.Phone, in.Email, in.Address, in.MedicalHistory)

	return scanPatient(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

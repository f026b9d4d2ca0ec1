package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrPatientNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) (*Patient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]Patient, error)
	Search(ctx context.Context, q string, limit int) ([]Patient, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

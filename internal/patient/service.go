package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	searchLimit      = 20
)

var ErrMissingField = errors.New("required patient field missing")

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, in Input) (*Patient, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	if in.Phone == "" {
		return nil, fmt.Errorf("%w: phone", ErrMissingField)
	}

	p := &Patient{
		ID:             uuid.New(),
		Name:           in.Name,
		Phone:          in.Phone,
		Email:          in.Email,
		Address:        in.Address,
		MedicalHistory: in.MedicalHistory,
		CreatedBy:      createdBy,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.log.Info().Stringer("patient_id", created.ID).Msg("patient record created")
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Patient, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Search finds directory records by name or phone prefix; the result is
// bounded so the picker UI stays small.
func (s *Service) Search(ctx context.Context, q string) ([]Patient, error) {
	if q == "" {
		return nil, fmt.Errorf("%w: search query", ErrMissingField)
	}
	return s.repo.Search(ctx, q, searchLimit)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error) {
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

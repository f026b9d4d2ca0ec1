package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrUnknownRole  = errors.New("unknown role")
)

type RegisterInput struct {
	Name           string
	Phone          string
	Role           string // "doctor" or anything else, coerced to patient
	Specialization string // doctors only
}

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates or refreshes the profile for a verified identity. Admin
// accounts are provisioned out of band; self-registration only yields patient
// or doctor roles.
func (s *Service) Register(ctx context.Context, uid uuid.UUID, email string, in RegisterInput) (*User, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}

	role := RolePatient
	if in.Role == string(RoleDoctor) {
		role = RoleDoctor
	}

	u := &User{
		ID:     uid,
		Email:  email,
		Name:   in.Name,
		Role:   role,
		Phone:  in.Phone,
		Active: true,
	}
	if role == RoleDoctor && in.Specialization != "" {
		spec := in.Specialization
		u.Specialization = &spec
	}

	stored, err := s.repo.Upsert(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.log.Info().Stringer("user_id", stored.ID).Str("role", string(stored.Role)).Msg("user registered")
	return stored, nil
}

func (s *Service) Profile(ctx context.Context, uid uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, uid)
}

// UpdateProfile changes name and/or phone; empty fields are left untouched
// and the role can never be changed this way.
func (s *Service) UpdateProfile(ctx context.Context, uid uuid.UUID, name, phone string) (*User, error) {
	return s.repo.UpdateProfile(ctx, uid, name, phone)
}

func (s *Service) ListDoctors(ctx context.Context) ([]User, error) {
	return s.repo.ListDoctors(ctx)
}

// ListUsers is the admin account view, optionally filtered by role. Unlike
// the public doctor directory it includes restricted accounts.
func (s *Service) ListUsers(ctx context.Context, role string) ([]User, error) {
	if role != "" && role != string(RolePatient) && role != string(RoleDoctor) && role != string(RoleAdmin) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return s.repo.ListByRole(ctx, role)
}

// SetDoctorStatus restricts or reinstates a doctor account. A restricted
// doctor disappears from the public directory but keeps existing
// appointments.
func (s *Service) SetDoctorStatus(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	u, err := s.repo.SetDoctorActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.log.Info().Stringer("doctor_id", id).Bool("active", active).Msg("doctor status changed")
	return u, nil
}

// DeleteDoctor removes a doctor account together with its appointments and
// token counters (storage-level cascade).
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDoctor(ctx, id); err != nil {
		return err
	}
	s.log.Warn().Stringer("doctor_id", id).Msg("doctor account deleted")
	return nil
}

// RoleOf resolves the role for an identity uid. Used by the HTTP role
// middleware; satisfies auth.RoleLookup.
func (s *Service) RoleOf(ctx context.Context, uid uuid.UUID) (string, error) {
	u, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return "", err
	}
	return string(u.Role), nil
}

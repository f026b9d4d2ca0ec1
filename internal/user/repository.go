package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	Upsert(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) (*User, error)
	ListDoctors(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	SetDoctorActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
}

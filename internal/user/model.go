package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// User is the profile behind an identity-provider uid. The uid is the primary
// key; email comes from the verified credential, never the request body.
type User struct {
	ID             uuid.UUID
	Email          string
	Name           string
	Role           Role
	Phone          string
	Specialization *string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a clinic-managed directory record, distinct from a login user.
type Patient struct {
	ID             uuid.UUID
	Name           string
	Phone          string
	Email          string
	Address        string
	MedicalHistory string
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Input struct {
	Name           string
	Phone          string
	Email          string
	Address        string
	MedicalHistory string
}

package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusCalled     Status = "called"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type Appointment struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	UserName     string
	DoctorID     uuid.UUID
	TokenNumber  int
	BookingDate  time.Time
	TimeSlot     string
	Status       Status
	Diagnosis    *string
	Prescription *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// BookInput is a booking request after identity resolution: UserID and
// UserName come from the caller's verified profile, never the request body.
type BookInput struct {
	UserID   uuid.UUID
	UserName string
	DoctorID uuid.UUID
	TimeSlot string
	Day      string // optional, defaults to today
}

// CompletionNotes is the optional payload attached when an appointment is
// completed. Both fields are write-once.
type CompletionNotes struct {
	Diagnosis    string
	Prescription string
}

// DayStats summarizes a doctor's day for the dashboard.
type DayStats struct {
	Day       string
	Total     int
	Completed int
	Waiting   int
}

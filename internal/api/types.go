package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/AbhishekS200607/MEDIHUB/internal/appointment"
	"github.com/AbhishekS200607/MEDIHUB/internal/patient"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
	"github.com/AbhishekS200607/MEDIHUB/internal/user"
)

type BookAppointmentRequest struct {
	DoctorID string `json:"doctorId"`
	Time     string `json:"time"`
	Date     string `json:"date,omitempty"`
}

type UpdateStatusRequest struct {
	Status       string `json:"status"`
	Diagnosis    string `json:"diagnosis,omitempty"`
	Prescription string `json:"prescription,omitempty"`
}

type RegisterRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	Role           string `json:"role,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	DoctorCode     string `json:"doctorCode,omitempty"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type PatientRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	Address        string `json:"address,omitempty"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
}

type DoctorCodeRequest struct {
	Code string `json:"code"`
}

type DoctorStatusRequest struct {
	Active *bool `json:"active"`
}

type HospitalConfigPayload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type AppointmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	UserName     string     `json:"userName"`
	DoctorID     uuid.UUID  `json:"doctorId"`
	TokenNumber  int        `json:"tokenNumber"`
	BookingDate  string     `json:"bookingDate"`
	Time         string     `json:"time"`
	Status       string     `json:"status"`
	Diagnosis    *string    `json:"diagnosis,omitempty"`
	Prescription *string    `json:"prescription,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		UserName:     a.UserName,
		DoctorID:     a.DoctorID,
		TokenNumber:  a.TokenNumber,
		BookingDate:  a.BookingDate.Format(token.DayFormat),
		Time:         a.TimeSlot,
		Status:       string(a.Status),
		Diagnosis:    a.Diagnosis,
		Prescription: a.Prescription,
		CreatedAt:    a.CreatedAt,
		CompletedAt:  a.CompletedAt,
	}
}

func toAppointmentResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	Phone          string    `json:"phone,omitempty"`
	Specialization *string   `json:"specialization,omitempty"`
	Active         bool      `json:"active"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           string(u.Role),
		Phone:          u.Phone,
		Specialization: u.Specialization,
		Active:         u.Active,
	}
}

type PatientResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	MedicalHistory string    `json:"medicalHistory,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toPatientResponse(p *patient.Patient) PatientResponse {
	return PatientResponse{
		ID:             p.ID,
		Name:           p.Name,
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		MedicalHistory: p.MedicalHistory,
		CreatedAt:      p.CreatedAt,
	}
}

type CurrentTokenResponse struct {
	CurrentToken int    `json:"currentToken"`
	Date         string `json:"date"`
}

type StatsResponse struct {
	TotalToday int    `json:"totalToday"`
	Completed  int    `json:"completed"`
	Waiting    int    `json:"waiting"`
	Date       string `json:"date"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

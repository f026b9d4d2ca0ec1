package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AbhishekS200607/MEDIHUB/internal/admin"
	"github.com/AbhishekS200607/MEDIHUB/internal/appointment"
	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
	"github.com/AbhishekS200607/MEDIHUB/internal/patient"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
	"github.com/AbhishekS200607/MEDIHUB/internal/user"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, contention 503, invalid transition 409, not found 404,
// access denied 403.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrMissingField),
		errors.Is(err, appointment.ErrUnknownStatus),
		errors.Is(err, token.ErrValidation),
		errors.Is(err, user.ErrNameRequired),
		errors.Is(err, user.ErrUnknownRole),
		errors.Is(err, patient.ErrMissingField),
		errors.Is(err, admin.ErrCodeTooShort),
		errors.Is(err, admin.ErrFieldRequired):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())

	case errors.Is(err, token.ErrContention):
		// The whole booking may be retried; issuance left nothing behind.
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "token_contention", "booking is busy, please retry")

	case errors.Is(err, appointment.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())

	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, patient.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())

	case errors.Is(err, auth.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access_denied", "access denied")

	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

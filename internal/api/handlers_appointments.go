package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AbhishekS200607/MEDIHUB/internal/appointment"
	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
)

func bookAppointmentHandler(svc AppointmentService, users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId must be a valid UUID")
			return
		}

		// The booking carries the caller's profile name, not a client-supplied one.
		profile, err := users.Profile(r.Context(), id.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		appt, err := svc.Book(r.Context(), appointment.BookInput{
			UserID:   id.UID,
			UserName: profile.Name,
			DoctorID: doctorID,
			TimeSlot: req.Time,
			Day:      req.Date,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func currentTokenHandler(tokens TokenReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		day := r.URL.Query().Get("date")
		if day == "" {
			day = token.Today()
		}

		current, err := tokens.Current(r.Context(), doctorID, day)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CurrentTokenResponse{CurrentToken: current, Date: day})
	}
}

func queueHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		day := r.URL.Query().Get("date")
		if day == "" {
			day = token.Today()
		}

		queue, err := svc.Queue(r.Context(), doctorID, day)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"queue": toAppointmentResponses(queue),
			"date":  day,
		})
	}
}

func myAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		appts, err := svc.ListForPatient(r.Context(), id.UID, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"appointments": toAppointmentResponses(appts),
		})
	}
}

func getAppointmentHandler(svc AppointmentService, users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		apptID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), apptID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		role, err := users.RoleOf(r.Context(), id.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !auth.CanViewAppointment(id, role, appt.UserID, appt.DoctorID) {
			writeServiceError(w, auth.ErrAccessDenied)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func updateStatusHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apptID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Transition(r.Context(), apptID, appointment.Status(req.Status), appointment.CompletionNotes{
			Diagnosis:    req.Diagnosis,
			Prescription: req.Prescription,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func doctorScheduleHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		day := r.URL.Query().Get("date")
		if day == "" {
			day = token.Today()
		}

		schedule, err := svc.Queue(r.Context(), doctorID, day)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"schedule": toAppointmentResponses(schedule),
			"date":     day,
		})
	}
}

func doctorStatsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		day := r.URL.Query().Get("date")
		if day == "" {
			day = token.Today()
		}

		stats, err := svc.DoctorStats(r.Context(), doctorID, day)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"stats": StatsResponse{
				TotalToday: stats.Total,
				Completed:  stats.Completed,
				Waiting:    stats.Waiting,
				Date:       stats.Day,
			},
		})
	}
}

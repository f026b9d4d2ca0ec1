package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
	"github.com/AbhishekS200607/MEDIHUB/internal/patient"
)

func patientInput(req PatientRequest) patient.Input {
	return patient.Input{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
	}
}

func createPatientHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		var req PatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := svc.Create(r.Context(), id.UID, patientInput(req))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func listPatientsHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		patients, err := svc.List(r.Context(), limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]PatientResponse, 0, len(patients))
		for i := range patients {
			out = append(out, toPatientResponse(&patients[i]))
		}

		writeJSON(w, http.StatusOK, map[string]any{"patients": out})
	}
}

func searchPatientsHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")

		patients, err := svc.Search(r.Context(), q)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]PatientResponse, 0, len(patients))
		for i := range patients {
			out = append(out, toPatientResponse(&patients[i]))
		}

		writeJSON(w, http.StatusOK, map[string]any{"patients": out})
	}
}

func getPatientHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func updatePatientHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		var req PatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := svc.Update(r.Context(), id, patientInput(req))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func deletePatientHandler(svc PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "patient deleted"})
	}
}

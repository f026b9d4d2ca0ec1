package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AbhishekS200607/MEDIHUB/internal/admin"
	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
)

func doctorCodeHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		code, err := svc.DoctorCode(r.Context(), id.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"code": code})
	}
}

func setDoctorCodeHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		var req DoctorCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := svc.SetDoctorCode(r.Context(), req.Code, id.UID); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"code": req.Code})
	}
}

func generateDoctorCodeHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		code, err := svc.GenerateDoctorCode(r.Context(), id.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"code": code})
	}
}

func listUsersHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")

		list, err := users.ListUsers(r.Context(), role)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]UserResponse, 0, len(list))
		for i := range list {
			out = append(out, toUserResponse(&list[i]))
		}

		writeJSON(w, http.StatusOK, map[string]any{"users": out})
	}
}

func setDoctorStatusHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		var req DoctorStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Active == nil {
			writeError(w, http.StatusBadRequest, "missing_active", "active is required")
			return
		}

		u, err := users.SetDoctorStatus(r.Context(), doctorID, *req.Active)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func deleteDoctorHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		if err := users.DeleteDoctor(r.Context(), doctorID); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "doctor deleted"})
	}
}

func hospitalConfigHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.HospitalConfig(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if cfg == nil {
			writeJSON(w, http.StatusOK, map[string]any{"config": nil})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"config": HospitalConfigPayload{
			Name:    cfg.Name,
			Address: cfg.Address,
			Phone:   cfg.Phone,
			Email:   cfg.Email,
		}})
	}
}

func setHospitalConfigHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		var req HospitalConfigPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		cfg := admin.HospitalConfig{
			Name:    req.Name,
			Address: req.Address,
			Phone:   req.Phone,
			Email:   req.Email,
		}
		if err := svc.SetHospitalConfig(r.Context(), cfg, id.UID); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "hospital configuration updated"})
	}
}

// verifyDoctorCodeHandler is public: the registration page calls it before an
// account exists.
func verifyDoctorCodeHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Code == "" {
			writeError(w, http.StatusBadRequest, "missing_code", "code is required")
			return
		}

		ok, err := svc.VerifyDoctorCode(r.Context(), req.Code)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"valid": ok})
	}
}

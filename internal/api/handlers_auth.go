package api

import (
	"encoding/json"
	"net/http"

	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
	"github.com/AbhishekS200607/MEDIHUB/internal/user"
)

func registerHandler(users UserService, admins AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		// Doctor accounts need the clinic's registration code.
		if req.Role == "doctor" {
			ok, err := admins.VerifyDoctorCode(r.Context(), req.DoctorCode)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if !ok {
				writeError(w, http.StatusForbidden, "invalid_doctor_code", "doctor registration code is incorrect")
				return
			}
		}

		u, err := users.Register(r.Context(), id.UID, id.Email, user.RegisterInput{
			Name:           req.Name,
			Phone:          req.Phone,
			Role:           req.Role,
			Specialization: req.Specialization,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func profileHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		u, err := users.Profile(r.Context(), id.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func updateProfileHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		u, err := users.UpdateProfile(r.Context(), id.UID, req.Name, req.Phone)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func listDoctorsHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := users.ListDoctors(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]UserResponse, 0, len(doctors))
		for i := range doctors {
			out = append(out, toUserResponse(&doctors[i]))
		}

		writeJSON(w, http.StatusOK, map[string]any{"doctors": out})
	}
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	roleKey     contextKey = "role"
)

// RoleLookup resolves the stored role for a verified identity. Satisfied by
// the user service.
type RoleLookup interface {
	RoleOf(ctx context.Context, uid uuid.UUID) (string, error)
}

// Authenticate verifies the Bearer token and stores the identity in the
// request context. Requests without a valid credential never reach the next
// handler.
func Authenticate(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				denyJSON(w, http.StatusUnauthorized, "no token provided")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				denyJSON(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			id, err := v.Verify(parts[1])
			if err != nil {
				denyJSON(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole loads the caller's stored role and allows the request only when
// it is one of the listed roles. Must run after Authenticate.
func RequireRole(lookup RoleLookup, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				denyJSON(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			role, err := lookup.RoleOf(r.Context(), id.UID)
			if err != nil {
				denyJSON(w, http.StatusNotFound, "user profile not found")
				return
			}

			for _, allowed := range roles {
				if role == allowed {
					ctx := context.WithValue(r.Context(), roleKey, role)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			denyJSON(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}

func denyJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ErrAccessDenied is returned by capability checks layered above the core
// services.
var ErrAccessDenied = errors.New("access denied")

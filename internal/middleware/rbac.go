package middleware

import (
	"log/slog"
	"net/http"
	"slices"
)

// RoleLookup returns the role labels held by a user
type RoleLookup interface {
	GetUserRoles(userID uint) ([]string, error)
}

// RBACMiddleware handles role-based access control
type RBACMiddleware struct {
	roles RoleLookup
}

// NewRBACMiddleware creates a new RBAC middleware
func NewRBACMiddleware(roles RoleLookup) *RBACMiddleware {
	return &RBACMiddleware{roles: roles}
}

// RequireRole checks if the user holds the required role
func (m *RBACMiddleware) RequireRole(roleName string) func(http.Handler) http.Handler {
	return m.RequireAnyRole(roleName)
}

// RequireAnyRole checks if the user holds any of the given roles.
// Roles are read from the store on every request so revocations apply immediately.
func (m *RBACMiddleware) RequireAnyRole(roleNames ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			held, err := m.roles.GetUserRoles(userID)
			if err != nil {
				slog.Error("Failed to get user roles", "user_id", userID, "error", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to get user roles")
				return
			}

			for _, role := range roleNames {
				if slices.Contains(held, role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

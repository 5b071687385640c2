package auth

import (
	"log/slog"
	"net/http"
)

// RoleAuthorization gates handlers on the ordered role hierarchy.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

// RequireAdmin rejects requests from non-admin users with 403.
func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRole(roleAdmin)
}

// RequireRole rejects requests from users below the given role.
func (ra *RoleAuthorization) RequireRole(minRole int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok || u == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if u.Role < minRole {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", u.ID,
					"user_role", u.Role,
					"required_role", minRole)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

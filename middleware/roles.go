package middleware

import (
	"encoding/json"
	"net/http"

	"vipkeyserver/models"
)

// RequireRoles wraps a handler and allows access only if the admin role is one of allowedRoles.
// The role comes from the JWT claims placed in the context by AuthMiddleware.
func RequireRoles(allowedRoles ...string) func(http.HandlerFunc) http.HandlerFunc {
	set := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		set[r] = struct{}{}
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			adminID, _ := r.Context().Value("admin_id").(string)
			if adminID == "" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse("Unauthorized", nil))
				return
			}
			role, _ := r.Context().Value("role").(string)
			if _, ok := set[role]; !ok {
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse("Forbidden: insufficient role", nil))
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

package middleware

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

// AdminOnly allows platform operators only.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := tenant.FromContext(r.Context())
		if !ok || !s.IsPlatformAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

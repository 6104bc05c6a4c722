package middleware

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

// RequireCenter rejects callers without a center, such as platform admins.
func RequireCenter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := tenant.FromContext(r.Context())
		if !ok {
			response.HandleError(w, tenant.ErrForbidden)
			return
		}
		if err := s.RequireCenter(); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireCenterAdmin allows the center's owner only.
func RequireCenterAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := tenant.FromContext(r.Context())
		if !ok {
			response.HandleError(w, tenant.ErrForbidden)
			return
		}
		if err := s.RequireCenterAdmin(); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects callers that do not hold p. Services check again;
// this only fails fast at the route.
func RequirePermission(p user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := tenant.FromContext(r.Context())
			if !ok {
				response.HandleError(w, tenant.ErrForbidden)
				return
			}
			if err := s.Require(p); err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

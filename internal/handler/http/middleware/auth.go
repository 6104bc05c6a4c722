package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/auth"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
	"github.com/tutora/tutora-backend/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified access token and stores
// the caller's tenant.Scope in the request context. The user row is read on
// every request so deactivation and permission changes apply at once.
func AuthRequired(users user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claimsMap, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := jwt.ClaimsFromMap(claimsMap)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			u, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					response.HandleError(w, auth.ErrInvalidToken)
					return
				}
				response.HandleError(w, err)
				return
			}
			if !u.IsActive {
				response.HandleError(w, auth.ErrAccountDisabled)
				return
			}

			scope := tenant.Scope{
				UserID:    u.ID,
				Role:      u.Role,
				TeacherID: u.TeacherID,
			}
			if u.CenterID != nil {
				scope.CenterID = *u.CenterID
			}
			if u.Role == user.RoleAssistant {
				perms, err := users.GetPermissions(r.Context(), u.ID)
				if err != nil {
					response.HandleError(w, err)
					return
				}
				scope.Permissions = perms
			}

			next.ServeHTTP(w, r.WithContext(tenant.NewContext(r.Context(), scope)))
		}
		return http.HandlerFunc(hfn)
	}
}

// Scope returns the scope stored by AuthRequired. Routes behind AuthRequired
// always have one.
func Scope(r *http.Request) tenant.Scope {
	s, _ := tenant.FromContext(r.Context())
	return s
}

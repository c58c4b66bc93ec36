package middleware

import (
	"net/http"

	"github.com/forgo/clubhub/api/internal/model"
)

// RequireRole returns a middleware that admits only the listed roles. It
// must run after Auth.
func RequireRole(roles ...model.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := GetCaller(r.Context())
			if caller.UserID == "" {
				model.NewUnauthorizedError(model.ErrCodeNoToken, "access token required").WriteJSON(w)
				return
			}

			for _, role := range roles {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			model.NewForbiddenError(model.ErrCodeInsufficientPermissions, "insufficient permissions").WriteJSON(w)
		})
	}
}

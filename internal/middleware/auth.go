package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/forgo/clubhub/api/internal/access"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
	"github.com/forgo/clubhub/api/pkg/jwt"
)

// TokenVerifier verifies a session token and its subject
type TokenVerifier interface {
	ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// ClaimsKey is the context key for JWT claims
const ClaimsKey contextKey = "claims"

// Auth returns a middleware that requires a verified session token
func Auth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				model.NewUnauthorizedError(model.ErrCodeNoToken, "access token required").WriteJSON(w)
				return
			}

			claims, err := verifier.ValidateAccessToken(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					model.NewUnauthorizedError(model.ErrCodeTokenExpired, "token expired").WriteJSON(w)
				case errors.Is(err, service.ErrTokenMalformed):
					model.NewUnauthorizedError(model.ErrCodeInvalidToken, "invalid token").WriteJSON(w)
				case errors.Is(err, service.ErrUnknownSubject):
					model.NewUnauthorizedError(model.ErrCodeUserNotFound, "user not found").WriteJSON(w)
				default:
					slog.Error("token verification failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					model.NewInternalError("").WriteJSON(w)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetUserID extracts the user ID from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the JWT claims from context
func GetClaims(ctx context.Context) *jwt.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}

// GetCaller returns the authenticated caller, or the zero Caller when the
// request is unauthenticated.
func GetCaller(ctx context.Context) access.Caller {
	claims := GetClaims(ctx)
	if claims == nil {
		return access.Caller{}
	}
	return access.Caller{UserID: claims.UserID, Role: model.Role(claims.Role)}
}

// Package middleware contains the HTTP middleware of the API: the bearer-token
// authentication gate, request logging and panic recovery.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/todo-service/internal/auth"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type contextKey string

const userKey contextKey = "currentUser"

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(token string) (*models.Claims, error)
}

// CallerResolver re-resolves the token subject on every request
type CallerResolver interface {
	ResolveCaller(ctx context.Context, id string) (models.PublicUser, error)
}

// AuthMiddleware rejects requests without a valid bearer token for a known user
// and stores the resolved user in the request context.
func AuthMiddleware(tokens TokenVerifier, users CallerResolver, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearer(r.Header.Get("Authorization"))
			if err != nil {
				log.WithError(err).Debug("Authentication failed")
				msg := "Authentication failed"
				if errors.Is(err, auth.ErrMissingToken) {
					msg = "Access token required"
				}
				writeUnauthorized(w, msg)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			user, err := users.ResolveCaller(r.Context(), claims.Subject)
			if err != nil {
				log.WithError(err).WithField("user_id", claims.Subject).Warn("Token subject could not be resolved")
				writeUnauthorized(w, "User not found")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user models.PublicUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by AuthMiddleware
func UserFromContext(ctx context.Context) (models.PublicUser, bool) {
	user, ok := ctx.Value(userKey).(models.PublicUser)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

// internal/handler/middleware.go
package handler

import (
	"context"
	"net/http"
	"strings"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

type contextKey string

const userIDKey contextKey = "user_id"

// AuthMiddleware verifies the bearer token and stores the account id in the
// request context for downstream handlers.
func AuthMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondError(w, appErrors.Unauthorized("missing bearer token"))
				return
			}

			userID, err := auth.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				respondError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated account id placed by AuthMiddleware.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// WithUserID injects an account id directly; used by tests that bypass the
// middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

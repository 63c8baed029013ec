package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// SessionValidator checks a bearer session token against the admin directory
// and returns the identified admin's id when the token is live.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (adminID string, err error)
}

type contextKeyAdminID struct{}
type contextKeySessionToken struct{}

// GetAdminID retrieves the authenticated admin id from the context.
func GetAdminID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyAdminID{}).(string); ok {
		return id
	}
	return ""
}

// GetSessionToken retrieves the bearer session token from the context.
func GetSessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(contextKeySessionToken{}).(string); ok {
		return token
	}
	return ""
}

// WithAdminID returns a context carrying the admin id. Exposed for tests and
// internal callers that bypass HTTP.
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, contextKeyAdminID{}, adminID)
}

// RequireSession rejects requests without a valid bearer session token and
// stores the acting admin id on the request context. Tokens are opaque; the
// validator is the authority on their liveness.
func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			adminID, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "invalid or expired session")
				return
			}

			ctx = context.WithValue(ctx, contextKeyAdminID{}, adminID)
			ctx = context.WithValue(ctx, contextKeySessionToken{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}

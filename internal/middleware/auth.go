package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hearthledger/hearthledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// UserIDKey is the context key for storing the authenticated user ID.
const UserIDKey contextKey = "user_id"

// GetUserID extracts the user ID from the context. Returns empty string
// if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// WithUser returns a context carrying the given user identity. Exposed
// for tests that exercise handlers without the HTTP layer.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// RequireAuth validates the bearer token and rejects unauthenticated
// requests. On success the user ID is added to the request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := claimsFromRequest(jwtManager, r)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID)))
		})
	}
}

func claimsFromRequest(jwtManager *auth.JWTManager, r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, auth.ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}

	return jwtManager.Validate(parts[1])
}

func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":  "unauthenticated",
		"detail": err.Error(),
	})
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskdock/taskdock-go/internal/crypto"
	"github.com/taskdock/taskdock-go/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// UserLookup resolves a verified token subject to a persisted user.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Authenticate returns middleware that resolves the Authorization bearer
// token to a user record and stores it in the request context. Every failure
// mode (missing header, bad scheme, invalid or expired token, subject with
// no matching user) gets the same 401 so callers cannot tell which check
// rejected them. The user lookup runs on every request; tokens are stateless
// and nothing is cached.
func Authenticate(secret string, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			email, err := crypto.ValidateToken(token, secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			// The subject may reference a user that no longer exists; that is
			// still a plain 401.
			user, err := users.GetByEmail(r.Context(), email)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

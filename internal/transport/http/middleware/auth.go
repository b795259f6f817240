package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-auth-api/internal/domain"
	jwtinfra "github.com/go-auth-api/internal/infrastructure/jwt"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookie is the cookie carrying the JWT for browser clients.
const SessionCookie = "session"

// UserStore is the lookup the middleware needs to resolve a token's subject.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Auth returns middleware that resolves the authenticated identity from a
// Bearer token (preferred) or the session cookie, and injects it into the
// request context. The user is re-looked-up on every request so a valid token
// for a deleted account is still rejected.
func Auth(tokens *jwtinfra.Provider, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, domain.ErrNoToken.Error())
				return
			}
			claims, err := tokens.Verify(token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrExpiredToken):
					writeJSONError(w, http.StatusUnauthorized, "unauthorized: token expired")
				default:
					writeJSONError(w, http.StatusUnauthorized, "unauthorized: invalid token")
				}
				return
			}
			u, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				// Deleted accounts can hold structurally valid tokens.
				writeJSONError(w, http.StatusUnauthorized, "unauthorized: user not found")
				return
			}

			identity := *u
			identity.PasswordHash = ""
			ctx := context.WithValue(r.Context(), identityKey, &identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated user from the request context.
// The identity carries no password hash and lives only for the request.
func IdentityFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(identityKey).(*domain.User)
	return u, ok
}

// extractToken prefers the Authorization header over the session cookie.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

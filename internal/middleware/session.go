package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/webseeker/server/internal/session"
)

type contextKey string

const claimsKey contextKey = "session_claims"

// SignInPath is where unauthenticated requests are sent.
const SignInPath = "/sign-in"

// SessionCookieName is the cookie checked when no Authorization header is present.
const SessionCookieName = "session"

// RequireSession validates the session token and attaches its claims to the
// request context. A missing or invalid session is not an error response:
// the caller is redirected to the sign-in flow instead.
func RequireSession(verifier session.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				http.Redirect(w, r, SignInPath, http.StatusTemporaryRedirect)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				http.Redirect(w, r, SignInPath, http.StatusTemporaryRedirect)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims returns the session claims attached by RequireSession
func GetClaims(ctx context.Context) (*session.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*session.Claims)
	return c, ok
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the session cookie for browser page loads.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

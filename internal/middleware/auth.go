package middleware

import (
	"context"
	"net/http"
	"strings"
)

// SessionCookie is the name of the cookie that carries the admin session token.
const SessionCookie = "session"

// Authenticator resolves a session token to the subject it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type subjectKey struct{}

// RequireSession rejects requests without a valid session with 401.
// The token is read from an "Authorization: Bearer" header first, then from
// the session cookie. The authenticated subject is stored in the request
// context; read it back with Subject.
func RequireSession(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
				return
			}
			subject, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "session is invalid or expired")
				return
			}
			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the session token from r, or "" when there is none.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Subject returns the authenticated subject stored by RequireSession.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey{}).(string)
	return s, ok
}

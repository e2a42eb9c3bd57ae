package middleware

import (
	"context"
	"net/http"
	"strings"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "sid"

type userKey string

const (
	userIDKey userKey = "user_id"
)

// SessionLookup resolves a session token to a user id. It returns an empty
// string when the token is unknown or expired.
type SessionLookup func(ctx context.Context, token string) (string, error)

// SessionAuth guards routes behind a valid session cookie and stores the
// resolved user id in the request context.
func SessionAuth(lookup SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || strings.TrimSpace(cookie.Value) == "" {
				http.Error(w, "missing session", http.StatusUnauthorized)
				return
			}
			userID, err := lookup(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				http.Error(w, "invalid session", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionAuth(t *testing.T) {
	lookup := func(ctx context.Context, token string) (string, error) {
		if token == "valid-token" {
			return "user-123", nil
		}
		return "", errors.New("unauthorized")
	}

	var seenUserID string
	handler := SessionAuth(lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
		wantUser   string
	}{
		{"no cookie", nil, http.StatusUnauthorized, ""},
		{"empty cookie", &http.Cookie{Name: SessionCookieName, Value: ""}, http.StatusUnauthorized, ""},
		{"unknown token", &http.Cookie{Name: SessionCookieName, Value: "stale"}, http.StatusUnauthorized, ""},
		{"valid token", &http.Cookie{Name: SessionCookieName, Value: "valid-token"}, http.StatusOK, "user-123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seenUserID = ""
			req := httptest.NewRequest("GET", "/api/user/thumbnails", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			if seenUserID != tc.wantUser {
				t.Fatalf("user id = %q, want %q", seenUserID, tc.wantUser)
			}
		})
	}
}

func TestUserIDContextRoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-9")
	if got := UserIDFromContext(ctx); got != "user-9" {
		t.Fatalf("UserIDFromContext = %q", got)
	}
	if got := UserIDFromContext(context.Background()); got != "" {
		t.Fatalf("empty context user id = %q", got)
	}
	// Blank ids are not stored.
	if got := UserIDFromContext(ContextWithUserID(context.Background(), "  ")); got != "" {
		t.Fatalf("blank user id stored: %q", got)
	}
}

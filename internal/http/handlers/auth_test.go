package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"server/internal/middleware"
)

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestAuthRegister(t *testing.T) {
	dbStub := newStubDB()
	app := newTestApp(dbStub, &stubRefiner{}, &stubRenderer{})

	body := []byte(`{"name":"Maya","email":"Maya@Example.com","password":"hunter22"}`)
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	app.AuthRegister(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	cookie := sessionCookie(t, rr)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("register must set a session cookie")
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be http only")
	}
	if !strings.Contains(rr.Body.String(), "maya@example.com") {
		t.Fatalf("email should be lowercased in response, body=%s", rr.Body.String())
	}

	// Same email again, regardless of case.
	rr2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	app.AuthRegister(rr2, req2)
	if rr2.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d, want 400", rr2.Code)
	}
	if !strings.Contains(rr2.Body.String(), "user already exists") {
		t.Fatalf("duplicate register body = %s", rr2.Body.String())
	}
}

func TestAuthRegisterMissingFields(t *testing.T) {
	dbStub := newStubDB()
	app := newTestApp(dbStub, &stubRefiner{}, &stubRenderer{})

	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(`{"email":"a@b.c"}`))
	rr := httptest.NewRecorder()
	app.AuthRegister(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestAuthLogin(t *testing.T) {
	dbStub := newStubDB()
	app := newTestApp(dbStub, &stubRefiner{}, &stubRenderer{})

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	dbStub.addUser("Maya", "maya@example.com", string(hash))

	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantCookie bool
	}{
		{"success", `{"email":"maya@example.com","password":"hunter22"}`, http.StatusOK, true},
		{"wrong password", `{"email":"maya@example.com","password":"nope"}`, http.StatusBadRequest, false},
		{"unknown email", `{"email":"ghost@example.com","password":"hunter22"}`, http.StatusBadRequest, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			app.AuthLogin(rr, req)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", rr.Code, tc.wantStatus, rr.Body.String())
			}
			cookie := sessionCookie(t, rr)
			if tc.wantCookie && (cookie == nil || cookie.Value == "") {
				t.Fatalf("expected a session cookie")
			}
			if !tc.wantCookie && cookie != nil {
				t.Fatalf("unexpected session cookie %q", cookie.Value)
			}
			if tc.wantStatus == http.StatusBadRequest && !strings.Contains(rr.Body.String(), "invalid email or password") {
				t.Fatalf("failure body should not say which field is wrong, body=%s", rr.Body.String())
			}
		})
	}
}

func TestAuthLogout(t *testing.T) {
	dbStub := newStubDB()
	app := newTestApp(dbStub, &stubRefiner{}, &stubRenderer{})
	user := dbStub.addUser("Maya", "maya@example.com", "x")
	token := dbStub.addSession(user.ID)

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rr := httptest.NewRecorder()

	app.AuthLogout(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	cookie := sessionCookie(t, rr)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("logout must expire the session cookie")
	}
	if _, err := app.Sessions.Lookup(req.Context(), token); err == nil {
		t.Fatalf("session should be revoked after logout")
	}
}

func TestAuthVerify(t *testing.T) {
	dbStub := newStubDB()
	app := newTestApp(dbStub, &stubRefiner{}, &stubRenderer{})
	user := dbStub.addUser("Maya", "maya@example.com", "x")

	req := httptest.NewRequest("GET", "/api/auth/verify", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), user.ID))
	rr := httptest.NewRecorder()
	app.AuthVerify(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), user.ID) {
		t.Fatalf("verify body missing user id: %s", rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("verify must not leak the password hash")
	}

	// No user in context.
	rr2 := httptest.NewRecorder()
	app.AuthVerify(rr2, httptest.NewRequest("GET", "/api/auth/verify", nil))
	if rr2.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated verify status = %d, want 401", rr2.Code)
	}
}

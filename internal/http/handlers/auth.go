package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/middleware"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string         `json:"message"`
	User    domain.Summary `json:"user"`
}

func (a *App) AuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name, email and password are required")
		return
	}

	if _, err := a.Users.ByEmail(r.Context(), req.Email); err == nil {
		a.error(w, http.StatusBadRequest, "duplicate_email", "user already exists")
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		a.Logger.Error().Err(err).Msg("register: lookup user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("register: hash password failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register")
		return
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Country:      middleware.CountryFromContext(r.Context()),
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			a.error(w, http.StatusBadRequest, "duplicate_email", "user already exists")
			return
		}
		a.Logger.Error().Err(err).Msg("register: create user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register")
		return
	}

	if err := a.openSession(w, r, user.ID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to open session")
		return
	}
	a.json(w, http.StatusOK, authResponse{Message: "account created successfully", User: user.Summary()})
}

func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := a.Users.ByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusBadRequest, "invalid_credentials", "invalid email or password")
			return
		}
		a.Logger.Error().Err(err).Msg("login: lookup user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to log in")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.error(w, http.StatusBadRequest, "invalid_credentials", "invalid email or password")
		return
	}

	if err := a.openSession(w, r, user.ID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to open session")
		return
	}
	a.json(w, http.StatusOK, authResponse{Message: "logged in successfully", User: user.Summary()})
}

func (a *App) AuthLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := a.Sessions.Delete(r.Context(), cookie.Value); err != nil {
			a.Logger.Error().Err(err).Msg("logout: delete session failed")
		}
	}
	a.clearSessionCookie(w)
	a.json(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (a *App) AuthVerify(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.ByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "invalid user")
			return
		}
		a.Logger.Error().Err(err).Msg("verify: lookup user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to verify")
		return
	}
	a.json(w, http.StatusOK, map[string]domain.Summary{"user": user.Summary()})
}

func (a *App) openSession(w http.ResponseWriter, r *http.Request, userID string) error {
	session, err := a.Sessions.Create(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("create session failed")
		return err
	}
	a.setSessionCookie(w, session.Token, session.ExpiresAt)
	return nil
}

func (a *App) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   a.Config.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.Config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

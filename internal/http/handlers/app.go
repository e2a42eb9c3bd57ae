package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/adapter/repo"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/providers/imagekit"
	"server/internal/providers/prompt"
)

// App is the handler container. Every collaborator is injected at startup so
// tests can substitute stubs.
type App struct {
	SQL        infra.SQLExecutor
	Logger     infra.Logger
	Config     *infra.Config
	Users      *repo.UserRepo
	Sessions   *repo.SessionRepo
	Thumbnails *repo.ThumbnailRepo
	Refiner    prompt.Refiner
	Renderer   imagekit.Renderer
}

// NewApp wires the default repositories over the provided SQL executor.
func NewApp(sql infra.SQLExecutor, logger infra.Logger, cfg *infra.Config, refiner prompt.Refiner, renderer imagekit.Renderer) *App {
	return &App{
		SQL:        sql,
		Logger:     logger,
		Config:     cfg,
		Users:      repo.NewUserRepo(sql),
		Sessions:   repo.NewSessionRepo(sql, cfg.SessionTTL),
		Thumbnails: repo.NewThumbnailRepo(sql),
		Refiner:    refiner,
		Renderer:   renderer,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

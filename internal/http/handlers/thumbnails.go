package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/domain/thumb"
	"server/internal/providers/prompt"
)

type thumbnailGenerateRequest struct {
	Title       string `json:"title"`
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
	ColorScheme string `json:"color_scheme"`
	TextOverlay bool   `json:"text_overlay"`
}

type thumbnailDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	UserPrompt    string    `json:"prompt,omitempty"`
	RefinedPrompt string    `json:"refined_prompt,omitempty"`
	Style         string    `json:"style"`
	AspectRatio   string    `json:"aspect_ratio"`
	ColorScheme   string    `json:"color_scheme"`
	TextOverlay   bool      `json:"text_overlay"`
	ImageURL      string    `json:"image_url,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toDTO(rec *thumb.Record) thumbnailDTO {
	return thumbnailDTO{
		ID:            rec.ID,
		Title:         rec.Title,
		UserPrompt:    rec.UserPrompt,
		RefinedPrompt: rec.RefinedPrompt,
		Style:         string(rec.Style),
		AspectRatio:   string(rec.AspectRatio),
		ColorScheme:   string(rec.ColorScheme),
		TextOverlay:   rec.TextOverlay,
		ImageURL:      rec.ImageURL,
		Status:        string(rec.Status),
		Error:         rec.ErrorMessage,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

// ThumbnailGenerate runs the whole pipeline synchronously: create the pending
// record, refine the prompt, render and host the image, then finalize the
// record. Upstream failures land the record in the failed state; the record
// itself survives either way.
func (a *App) ThumbnailGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req thumbnailGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	params := thumb.GenerateParams{
		Title:       req.Title,
		UserPrompt:  req.Prompt,
		Style:       thumb.Style(req.Style),
		AspectRatio: thumb.AspectRatio(req.AspectRatio),
		ColorScheme: thumb.ColorScheme(req.ColorScheme),
		TextOverlay: req.TextOverlay,
	}
	params.Normalize()
	if err := params.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	rec, err := a.Thumbnails.Create(r.Context(), userID, params)
	if err != nil {
		a.Logger.Error().Err(err).Msg("generate: create record failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create thumbnail")
		return
	}

	refined, err := a.refine(r.Context(), params)
	if err != nil {
		a.failGeneration(w, r, rec, "", err)
		return
	}
	rec.RefinedPrompt = refined

	imageURL, err := a.render(r.Context(), refined, params.AspectRatio)
	if err != nil {
		a.failGeneration(w, r, rec, refined, err)
		return
	}

	finCtx, cancel := a.finalizeContext(r)
	defer cancel()
	if err := a.Thumbnails.MarkComplete(finCtx, rec.ID, userID, refined, imageURL); err != nil {
		a.Logger.Error().Err(err).Str("thumbnail_id", rec.ID).Msg("generate: finalize record failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to finalize thumbnail")
		return
	}
	rec.ImageURL = imageURL
	rec.Status = thumb.StatusComplete

	a.json(w, http.StatusCreated, map[string]any{
		"message":   "thumbnail generated successfully",
		"thumbnail": toDTO(rec),
	})
}

func (a *App) refine(ctx context.Context, params thumb.GenerateParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.UpstreamTimeout)
	defer cancel()
	return a.Refiner.Refine(ctx, prompt.Request{
		Title:       params.Title,
		Style:       params.Style,
		AspectRatio: params.AspectRatio,
		ColorScheme: params.ColorScheme,
		TextOverlay: params.TextOverlay,
		UserPrompt:  params.UserPrompt,
	})
}

func (a *App) render(ctx context.Context, refined string, ratio thumb.AspectRatio) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.UpstreamTimeout)
	defer cancel()
	return a.Renderer.Render(ctx, refined, ratio)
}

// finalizeContext detaches from the request so a client disconnect mid-pipeline
// cannot leave a record stuck in pending.
func (a *App) finalizeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), a.Config.UpstreamTimeout)
}

// failGeneration moves the record to the failed terminal state and reports
// the upstream failure to the caller. The record stays visible with whatever
// partial fields were produced.
func (a *App) failGeneration(w http.ResponseWriter, r *http.Request, rec *thumb.Record, refined string, cause error) {
	a.Logger.Error().Err(cause).Str("thumbnail_id", rec.ID).Msg("generate: upstream call failed")
	message := "image generation failed"
	finCtx, cancel := a.finalizeContext(r)
	defer cancel()
	if err := a.Thumbnails.MarkFailed(finCtx, rec.ID, rec.UserID, refined, message); err != nil {
		a.Logger.Error().Err(err).Str("thumbnail_id", rec.ID).Msg("generate: mark failed errored")
	}
	rec.RefinedPrompt = refined
	rec.Status = thumb.StatusFailed
	rec.ErrorMessage = message
	a.json(w, http.StatusBadGateway, map[string]any{
		"error":     errorBody{Code: "upstream_failure", Message: message},
		"thumbnail": toDTO(rec),
	})
}

func (a *App) ThumbnailDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	if err := a.Thumbnails.DeleteForUser(r.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "thumbnail not found")
			return
		}
		a.Logger.Error().Err(err).Str("thumbnail_id", id).Msg("delete thumbnail failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete thumbnail")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "thumbnail deleted successfully"})
}

func (a *App) ThumbnailList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	records, err := a.Thumbnails.ListByUser(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list thumbnails failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list thumbnails")
		return
	}
	items := make([]thumbnailDTO, 0, len(records))
	for i := range records {
		items = append(items, toDTO(&records[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"thumbnails": items})
}

func (a *App) ThumbnailGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	rec, err := a.Thumbnails.GetForUser(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "thumbnail not found")
			return
		}
		a.Logger.Error().Err(err).Str("thumbnail_id", id).Msg("get thumbnail failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load thumbnail")
		return
	}
	a.json(w, http.StatusOK, map[string]thumbnailDTO{"thumbnail": toDTO(rec)})
}

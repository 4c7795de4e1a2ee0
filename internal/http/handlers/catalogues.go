package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cataloger/internal/domain"
	"cataloger/internal/lifecycle"
	"cataloger/internal/middleware"
)

type formData struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
	Currency string `json:"currency"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type generateRequest struct {
	FormData   formData `json:"formData"`
	Prompt     string   `json:"prompt"`
	UserID     string   `json:"userId"`
	WithImages bool     `json:"shouldGenerateImages"`
}

type importRequest struct {
	FormData   formData `json:"formData"`
	InputText  string   `json:"input_text"`
	UserID     string   `json:"userId"`
	WithImages bool     `json:"shouldGenerateImages"`
}

func (f formData) meta(r *http.Request) domain.Meta {
	language := f.Language
	if language == "" {
		language = middleware.LocaleFromContext(r.Context())
	}
	return domain.Meta{
		Name:     f.Name,
		Language: language,
		Theme:    f.Theme,
		Currency: f.Currency,
		Title:    f.Title,
		Subtitle: f.Subtitle,
	}
}

// Generate runs the free-text pipeline: one structured completion turned
// into a full catalogue.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "prompt required")
		return
	}
	if req.FormData.Name == "" {
		a.error(w, http.StatusBadRequest, "formData.name required")
		return
	}
	a.run(w, r, lifecycle.Request{
		UserID:     a.userID(r, req.UserID),
		Source:     domain.SourcePrompt,
		InputText:  req.Prompt,
		Meta:       req.FormData.meta(r),
		WithImages: req.WithImages,
	})
}

// Import runs the OCR pipeline: segment the scanned text into category
// chunks, then generate each category.
func (a *App) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.InputText == "" {
		a.error(w, http.StatusBadRequest, "input_text required")
		return
	}
	if req.FormData.Name == "" {
		a.error(w, http.StatusBadRequest, "formData.name required")
		return
	}
	a.run(w, r, lifecycle.Request{
		UserID:     a.userID(r, req.UserID),
		Source:     domain.SourceOCR,
		InputText:  req.InputText,
		Meta:       req.FormData.meta(r),
		WithImages: req.WithImages,
	})
}

func (a *App) run(w http.ResponseWriter, r *http.Request, req lifecycle.Request) {
	slug, err := a.Runner.Run(r.Context(), req)
	if err != nil {
		a.Logger.Error().Err(err).Str("source", string(req.Source)).Msg("handlers: generation run failed")
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			a.error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrConflict):
			a.error(w, http.StatusConflict, "catalogue is being modified concurrently")
		default:
			a.error(w, http.StatusInternalServerError, "catalogue generation failed")
		}
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "slug": slug})
}

// GetBySlug returns the catalogue record, including its current status, so
// clients can poll while generation is in flight.
func (a *App) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		a.error(w, http.StatusBadRequest, "slug required")
		return
	}
	catalogue, err := a.Catalogues.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "catalogue not found")
			return
		}
		a.Logger.Error().Err(err).Str("slug", slug).Msg("handlers: catalogue lookup failed")
		a.error(w, http.StatusInternalServerError, "catalogue lookup failed")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "catalogue": catalogue})
}

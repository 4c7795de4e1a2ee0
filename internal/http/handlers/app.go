package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"cataloger/internal/domain"
	"cataloger/internal/lifecycle"
)

// GenerationRunner starts one catalogue generation run.
type GenerationRunner interface {
	Run(ctx context.Context, req lifecycle.Request) (string, error)
}

type App struct {
	Runner     GenerationRunner
	Catalogues domain.CatalogueRepository
	Logger     zerolog.Logger
}

func NewApp(runner GenerationRunner, catalogues domain.CatalogueRepository, logger zerolog.Logger) *App {
	return &App{Runner: runner, Catalogues: catalogues, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"success": false, "error": message})
}

// userID resolves the caller identity: the request body's userId wins, then
// the X-User-ID header forwarded by the fronting proxy. Auth lives upstream;
// an empty value means an anonymous run.
func (a *App) userID(r *http.Request, bodyUserID string) string {
	if id := strings.TrimSpace(bodyUserID); id != "" {
		return id
	}
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

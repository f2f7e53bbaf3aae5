package handlers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"timemirror/internal/infra"
	"timemirror/internal/storage"
	"timemirror/internal/stream"
	"timemirror/internal/timeline"
)

// App bundles the dependencies shared by every handler.
type App struct {
	Logger infra.Logger
	Config *infra.Config
	Orch   *timeline.Orchestrator
	Hub    *stream.Hub
	Store  *storage.MemStore
}

func NewApp(cfg *infra.Config, logger infra.Logger, orch *timeline.Orchestrator, hub *stream.Hub, store *storage.MemStore) *App {
	return &App{Logger: logger, Config: cfg, Orch: orch, Hub: hub, Store: store}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

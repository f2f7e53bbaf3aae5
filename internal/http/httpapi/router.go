package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"timemirror/internal/http/handlers"
	"timemirror/internal/middleware"
)

// NewRouter wires the page, the JSON API and the event stream.
func NewRouter(app *handlers.App, page stdhttp.Handler) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	if len(app.Config.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(app.Config.CORSAllowedOrigins))
	}

	r.Get("/", page.ServeHTTP)
	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/upload", func(r chi.Router) {
		r.Post("/", app.Upload)
		r.Get("/preview/{id}", app.UploadPreview)
	})

	r.Post("/v1/generate", app.Generate)
	r.Get("/v1/state", app.State)
	r.Get("/v1/events", app.Events)

	r.Route("/v1/timeline", func(r chi.Router) {
		r.Get("/{year}/image", app.YearImage)
		r.Get("/archive", app.Archive)
	})

	return r
}

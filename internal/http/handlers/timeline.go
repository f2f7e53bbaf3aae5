package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"timemirror/internal/stream"
	"timemirror/internal/timeline"
	"timemirror/pkg/zip"
)

// Events streams state changes over SSE: one snapshot event on connect, then
// settlement events in the order they are applied.
func (a *App) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "stream_unsupported", "streaming is not supported by this server")
		return
	}

	// Subscribe before snapshotting so no settlement can fall between the
	// snapshot and the live stream.
	events, unsubscribe := a.Hub.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshot := stream.Event{Type: stream.TypeSnapshot, Data: a.Orch.Snapshot()}
	if err := writeSSE(w, snapshot); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev stream.Event) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return err
	}
	payload := bytes.TrimRight(buf.Bytes(), "\n")

	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err := w.Write([]byte("\n\n"))
	return err
}

// YearImage serves one year's render as a named download.
func (a *App) YearImage(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "year must be an integer")
		return
	}
	data, mime, filename, err := a.Orch.Render(year)
	switch {
	case errors.Is(err, timeline.ErrUnknownYear):
		a.error(w, http.StatusBadRequest, "unknown_year", "year is not part of the timeline")
		return
	case errors.Is(err, timeline.ErrRenderNotReady):
		a.error(w, http.StatusNotFound, "not_ready", "no successful render for this year")
		return
	case err != nil:
		a.error(w, http.StatusInternalServerError, "internal", "failed to load render")
		return
	}
	if mime == "" {
		mime = "image/png"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Archive bundles every successful render of the current run into one zip.
func (a *App) Archive(w http.ResponseWriter, r *http.Request) {
	renders := a.Orch.Renders()
	if len(renders) == 0 {
		a.error(w, http.StatusNotFound, "no_renders", "no successful renders yet")
		return
	}
	entries := make([]zip.Entry, 0, len(renders))
	for _, render := range renders {
		entries = append(entries, zip.Entry{Name: render.Filename, Data: render.Data})
	}
	archive, err := zip.Archive(entries)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=timemirror.zip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

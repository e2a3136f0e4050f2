package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	store Service
}

// Service is the part of *Store the HTTP layer uses.
// It allows unit-testing handlers without a real backend.
type Service interface {
	Notes() []Note
	Get(id string) (Note, bool)
	Categories() []string
	AddNote(ctx context.Context, d Draft) (string, error)
	UpdateNote(ctx context.Context, id string, d Draft) error
	DeleteNote(ctx context.Context, id string) error
	Loading() bool
	LastError() error
	Subscribe(fn func(Event)) (unsubscribe func())
}

func NewHandlers(store Service) *Handlers {
	return &Handlers{store: store}
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/state", h.state)

	r.Route("/notes", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/categories", h.categories)
		r.Get("/export", h.export)
		r.Get("/events", h.events)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Delete("/", h.delete)
		})
	})

	return r
}

type stateResponse struct {
	Loading   bool   `json:"loading"`
	LastError string `json:"lastError,omitempty"`
}

func (h *Handlers) state(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{Loading: h.store.Loading()}
	if err := h.store.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type listResponse struct {
	Projection
	Loading bool `json:"loading"`
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	proj := Project(h.store.Notes(), Filter{
		Query:      q.Get("q"),
		Category:   q.Get("category"),
		SelectedID: q.Get("selected"),
	})

	body, err := json.Marshal(listResponse{Projection: proj, Loading: h.store.Loading()})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

func (h *Handlers) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, append([]string{AllCategories}, h.store.Categories()...))
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req Draft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	id, err := h.store.AddNote(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	n, ok := h.store.Get(id)
	if !ok {
		n = Note{ID: id}
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	n, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req Draft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := h.store.UpdateNote(r.Context(), id, req); err != nil {
		writeError(w, err)
		return
	}
	n, ok := h.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	var buf bytes.Buffer
	if err := Export(&buf, h.store.Notes(), format); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	contentType := "application/json"
	if format == FormatYAML || format == "yml" {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// events streams store changes as server-sent events until the client leaves.
func (h *Handlers) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	ch := make(chan Event, 16)
	unsubscribe := h.store.Subscribe(func(e Event) {
		select {
		case ch <- e:
		default: // slow client, drop
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			payload := map[string]string{"id": e.ID}
			if e.Err != nil {
				payload["error"] = e.Err.Error()
			}
			data, _ := json.Marshal(payload)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrDataCorrupt):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type Handlers struct{ D *app.Dashboard }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/listings", h.listListings)
		r.Get("/listings/{id}/public", h.publicReviews)

		r.Get("/reviews", h.listReviews)
		r.Get("/reviews/export.csv", h.exportCSV)
		r.Post("/reviews/{id}/approval", h.toggleApproval)
		r.Put("/reviews/{id}/status", h.setStatus)
		r.Put("/reviews/{id}/note", h.setNote)

		r.Get("/views", h.listViews)
		r.Post("/views", h.saveView)
		r.Get("/views/{index}", h.applyView)
		r.Delete("/views/{index}", h.deleteView)

		r.Post("/snapshot/refresh", h.refresh)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain sentinels to problem responses. fallback is used for
// anything unrecognized: 502 on reads (the snapshot comes from upstream) and
// 500 on writes.
func writeError(w http.ResponseWriter, err error, fallback int) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrViewNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrEmptyViewName):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrSourceStatus):
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
	default:
		log.Error().Err(err).Int("status", fallback).Msg("request failed")
		writeProblem(w, fallback, http.StatusText(fallback), err.Error())
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v as JSON with an ETag, answering 304 when the client
// already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func writeValue(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}
	writeJSON(w, status, body)
}

// filtersFromQuery reads filter fields from query parameters. Absent or
// malformed values mean no constraint.
func filtersFromQuery(q url.Values) domain.FilterConfig {
	f := domain.FilterConfig{
		ListingID: q.Get("listingId"),
		Channel:   q.Get("channel"),
		Type:      q.Get("type"),
		MinRating: domain.ParseMinRating(q.Get("minRating")),
		Source:    q.Get("source"),
		Sentiment: q.Get("sentiment"),
		Topic:     q.Get("topic"),
		TimeRange: domain.TimeRange(q.Get("timeRange")),
	}
	f.OnlyApproved, _ = strconv.ParseBool(q.Get("onlyApproved"))
	return f.Normalized()
}

func intParam(q url.Values, key string, def int) int {
	if n, err := strconv.Atoi(q.Get(key)); err == nil {
		return n
	}
	return def
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

// ---- listings ----

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	out, err := h.D.Listings(r.Context())
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeCached(w, r, out)
}

type publicPage struct {
	ListingID   string              `json:"listingId"`
	ListingName string              `json:"listingName"`
	Reviews     []domain.ReviewView `json:"reviews"`
}

func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name, reviews, err := h.D.PublicReviews(r.Context(), id)
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	if name == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
		return
	}
	if reviews == nil {
		reviews = []domain.ReviewView{}
	}
	writeCached(w, r, publicPage{ListingID: id, ListingName: name, Reviews: reviews})
}

// ---- reviews ----

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q, "page", 1)
	size := intParam(q, "pageSize", 0)
	if size < 0 || size > 200 {
		writeProblem(w, http.StatusBadRequest, "Invalid pageSize", "pageSize must be an integer between 1 and 200")
		return
	}
	out, err := h.D.Reviews(r.Context(), filtersFromQuery(q), page, size)
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	body, rows, err := h.D.Export(r.Context(), filtersFromQuery(r.URL.Query()))
	if errors.Is(err, domain.ErrNothingToExport) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="flex_reviews_export.csv"`)
	w.Header().Set("X-Row-Count", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		log.Error().Err(err).Msg("failed to write export body")
	}
}

func (h *Handlers) toggleApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	approved, err := h.D.Overlay.ToggleApproval(r.Context(), id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeValue(w, http.StatusOK, map[string]any{"id": id, "approvedForWeb": approved})
}

func (h *Handlers) setStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"status\": \"...\"}")
		return
	}
	if err := h.D.SetStatus(r.Context(), id, in.Status); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeValue(w, http.StatusOK, overlayResponse(id, h.D.Entry(r.Context(), id)))
}

func (h *Handlers) setNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		Note string `json:"note"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"note\": \"...\"}")
		return
	}
	if err := h.D.Overlay.SetNote(r.Context(), id, in.Note); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeValue(w, http.StatusOK, overlayResponse(id, h.D.Entry(r.Context(), id)))
}

func overlayResponse(id string, e domain.Overlay) map[string]any {
	return map[string]any{"id": id, "approvedForWeb": e.Approved, "status": e.Status, "note": e.Note}
}

// ---- saved views ----

func (h *Handlers) listViews(w http.ResponseWriter, r *http.Request) {
	views := h.D.Views.List(r.Context())
	if views == nil {
		views = []domain.SavedView{}
	}
	writeCached(w, r, views)
}

func (h *Handlers) saveView(w http.ResponseWriter, r *http.Request) {
	var in domain.SavedView
	if err := decodeBody(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"name\": \"...\", \"filters\": {...}}")
		return
	}
	idx, view, err := h.D.Views.Save(r.Context(), in.Name, in.Filters.Normalized())
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeValue(w, http.StatusCreated, map[string]any{"index": idx, "view": view})
}

func (h *Handlers) viewIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "index")))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid index", "index must be a number")
		return 0, false
	}
	return idx, true
}

func (h *Handlers) applyView(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.viewIndex(w, r)
	if !ok {
		return
	}
	f, err := h.D.Views.Apply(r.Context(), idx)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeCached(w, r, f)
}

func (h *Handlers) deleteView(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.viewIndex(w, r)
	if !ok {
		return
	}
	if err := h.D.Views.Delete(r.Context(), idx); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- snapshot ----

func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.D.Q.Refresh(r.Context())
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeValue(w, http.StatusOK, map[string]any{
		"reviews":  len(snap.Reviews),
		"listings": len(snap.Listings),
		"loadedAt": snap.LoadedAt,
	})
}

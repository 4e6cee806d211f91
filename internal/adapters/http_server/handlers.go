package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tango/internal/app"
	"tango/internal/domain"
	"tango/internal/ranking"
)

const maxBodyBytes = 64 << 10

type Handlers struct {
	Catalog   *app.CatalogService
	Assistant *app.AssistantService
	// Now defaults to time.Now.
	Now func() time.Time
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/places", h.listPlaces)
	s.mux.Get("/v1/places/{id}/status", h.placeStatus)
	s.mux.Post("/v1/assistant/context", h.assistantContext)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors to problem responses.
func writeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
		return
	}
	log.Error().Err(err).Str("resource", what).Msg("upstream failure")
	writeProblem(w, http.StatusBadGateway, "Bad Gateway", what+" temporarily unavailable")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// instant reads ?at= as RFC3339, defaulting to the current time.
func (h *Handlers) instant(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("at")
	if s == "" {
		return h.now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("at must be RFC3339, e.g. 2025-01-01T22:47:00-03:00")
	}
	return t, nil
}

type placesResponse struct {
	At    time.Time        `json:"at"`
	Count int              `json:"count"`
	Items []ranking.Result `json:"items"`
}

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	at, err := h.instant(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid at", err.Error())
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	items, err := h.Catalog.Search(r.Context(), q, at)
	if err != nil {
		writeError(w, err, "catalog")
		return
	}
	writeJSON(w, r, placesResponse{At: at, Count: len(items), Items: items})
}

func parseQuery(r *http.Request) (ranking.Query, error) {
	v := r.URL.Query()
	q := ranking.Query{
		Type:      strings.TrimSpace(v.Get("type")),
		Attribute: strings.TrimSpace(v.Get("attribute")),
		City:      strings.TrimSpace(v.Get("city")),
	}
	if s := v.Get("open_now"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.New("open_now must be a boolean")
		}
		q.OpenNow = b
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 200 {
			return q, errors.New("limit must be an integer between 1 and 200")
		}
		q.Limit = n
	}
	lat, lng := v.Get("lat"), v.Get("lng")
	if (lat == "") != (lng == "") {
		return q, errors.New("lat and lng must be given together")
	}
	if lat != "" {
		la, err1 := strconv.ParseFloat(lat, 64)
		ln, err2 := strconv.ParseFloat(lng, 64)
		if err1 != nil || err2 != nil || !validCoords(la, ln) {
			return q, errors.New("lat/lng must be valid coordinates")
		}
		q.Near = &domain.Location{Lat: la, Lng: ln}
	}
	if s := v.Get("radius_km"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 {
			return q, errors.New("radius_km must be a positive number")
		}
		if q.Near == nil {
			return q, errors.New("radius_km requires lat and lng")
		}
		q.RadiusKm = f
	}
	return q, nil
}

func validCoords(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func (h *Handlers) placeStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id is required")
		return
	}
	at, err := h.instant(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid at", err.Error())
		return
	}
	out, err := h.Catalog.Status(r.Context(), id, at)
	if err != nil {
		writeError(w, err, "place")
		return
	}
	writeJSON(w, r, out)
}

type contextRequest struct {
	User *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Location *domain.Location `json:"location"`
}

func (h *Handlers) assistantContext(w http.ResponseWriter, r *http.Request) {
	var body contextRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON object")
		return
	}
	if body.Location != nil && !validCoords(body.Location.Lat, body.Location.Lng) {
		writeProblem(w, http.StatusBadRequest, "Invalid location", "lat/lng must be valid coordinates")
		return
	}

	req := app.ContextRequest{Location: body.Location}
	if body.User != nil {
		req.User = &domain.UserContext{ID: strings.TrimSpace(body.User.ID), Name: strings.TrimSpace(body.User.Name)}
	}
	out, err := h.Assistant.BuildContext(r.Context(), req)
	if err != nil {
		writeError(w, err, "assistant context")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out)); err != nil {
		log.Error().Err(err).Msg("failed to write assistant context")
	}
}

package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestLogger_LevelsAndSkipsHealth(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Logger(zerolog.New(&buf)))
	m.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	m.Get("/v1/places/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
	})

	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if buf.Len() != 0 {
		t.Fatalf("health probes must not be logged: %s", buf.String())
	}

	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/places/x/status", nil))
	line := buf.String()
	for _, want := range []string{`"level":"warn"`, `"route":"/v1/places/{id}/status"`, `"status":404`} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %s in %s", want, line)
		}
	}
}

func TestTimeout(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "Service Unavailable") {
		t.Fatalf("unexpected timeout response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRemoteIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	if got := remoteIP(r); got != "10.0.0.1" {
		t.Fatalf("got %s", got)
	}
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:5555"
	if got := remoteIP(r); got != "192.0.2.7" {
		t.Fatalf("got %s", got)
	}
}

package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/fabricare-service/internal/handler"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func newHealthEngine(p handler.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// zero services: only health and docs routes are exercised here
	handler.Register(r, p, handler.Services{}, zerolog.Nop())
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestReadiness(t *testing.T) {
	cases := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"api ok", "/api/health/ready", nil, http.StatusOK},
		{"api down", "/api/health/ready", errors.New("db down"), http.StatusServiceUnavailable},
		{"api root ok", "/api/health", nil, http.StatusOK},
		{"api root down", "/api/health", errors.New("db down"), http.StatusServiceUnavailable},
		{"root ok", "/ready", nil, http.StatusOK},
		{"root down", "/ready", errors.New("db down"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newHealthEngine(stubPinger{err: tc.err}), http.MethodGet, tc.path)
			if w.Code != tc.want {
				t.Fatalf("expected status %d, got %d, body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestReadiness_NilPinger(t *testing.T) {
	w := serve(newHealthEngine(nil), http.MethodGet, "/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestLiveness_IgnoresDatabase(t *testing.T) {
	r := newHealthEngine(stubPinger{err: errors.New("db down")})
	for _, path := range []string{"/live", "/api/health/live"} {
		if w := serve(r, http.MethodGet, path); w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestHealth_NotFound(t *testing.T) {
	w := serve(newHealthEngine(stubPinger{}), http.MethodGet, "/no-such")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestReadiness_MethodNotAllowed(t *testing.T) {
	w := serve(newHealthEngine(stubPinger{}), http.MethodPost, "/api/health/ready")
	// Gin by default returns 404 for unknown method if route only registered for GET.
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 404 or 405, got %d", w.Code)
	}
}

func TestDocs(t *testing.T) {
	r := newHealthEngine(stubPinger{})
	doc := serve(r, http.MethodGet, "/openapi.yaml")
	if doc.Code != http.StatusOK || doc.Body.Len() == 0 {
		t.Fatalf("expected openapi document, got %d", doc.Code)
	}
	ui := serve(r, http.MethodGet, "/docs")
	if ui.Code != http.StatusOK || ui.Header().Get("Content-Type") != "text/html; charset=utf-8" {
		t.Fatalf("expected swagger ui, got %d %s", ui.Code, ui.Header().Get("Content-Type"))
	}
}

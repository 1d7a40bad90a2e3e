package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPMiddlewareLogsBoardRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(HTTPMiddleware(zap.New(core)))
	r.Get("/api/arrivals", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadRequest) })
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {})

	for _, target := range []string{"/api/arrivals?date=2025-13-01", "/health", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	entries := logs.FilterMessage("board request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one board request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "/api/arrivals" || fields["date"] != "2025-13-01" || fields["status"] != int64(400) {
		t.Errorf("unexpected fields %v", fields)
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Error("request id should be logged")
	}
}

func TestRoutePatternOutsideRouter(t *testing.T) {
	if got := routePattern(httptest.NewRequest(http.MethodGet, "/api/arrivals/123", nil)); got != "unmatched" {
		t.Errorf("got %q", got)
	}
}

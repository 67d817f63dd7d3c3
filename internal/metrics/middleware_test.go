package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func sandboxRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/api/search/pif_search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":{}}`))
	})
	r.Post("/api/data_sets/{dataset_id}/upload", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Put("/uploads/{request_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := sandboxRouter()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("POST", "/api/search/pif_search", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/search/pif_search", "200"))
	if val < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", val)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := sandboxRouter()

	tests := []struct {
		method, path, pattern, status string
	}{
		{"POST", "/api/data_sets/7/upload", "/api/data_sets/{dataset_id}/upload", "404"},
		{"POST", "/api/data_sets/8/upload", "/api/data_sets/{dataset_id}/upload", "404"},
		{"PUT", "/uploads/0d8f", "/uploads/{request_id}", "200"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, http.NoBody))

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.pattern, tc.status))
			if val < 1 {
				t.Errorf("expected requests_total for %s %s >= 1, got %f", tc.pattern, tc.status, val)
			}
		})
	}
}

func TestMiddleware_ResponseBytes(t *testing.T) {
	r := sandboxRouter()
	before := testutil.CollectAndCount(httpResponseBytes)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/search/pif_search", http.NoBody))

	if testutil.CollectAndCount(httpResponseBytes) < max(before, 1) {
		t.Error("expected http_response_bytes to have a series for the route")
	}
	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Errorf("in-flight gauge = %f after request, want 0", got)
	}
}

func TestRouteLabel(t *testing.T) {
	req := httptest.NewRequest("GET", "/nowhere", http.NoBody)
	if got := routeLabel(req); got != "unmatched" {
		t.Errorf("routeLabel without chi context = %q", got)
	}

	rctx := chi.NewRouteContext()
	rctx.RoutePatterns = []string{"/api/data_sets/{dataset_id}/upload"}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	if got := routeLabel(req); got != "/api/data_sets/{dataset_id}/upload" {
		t.Errorf("routeLabel = %q", got)
	}
}

func TestStatusWriter_CountsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("abc"))
	_, _ = w.Write([]byte("de"))

	if w.status != http.StatusCreated || w.bytes != 5 {
		t.Errorf("status=%d bytes=%d; want 201, 5", w.status, w.bytes)
	}
}

func TestRegisterHTTPMetrics_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := RegisterHTTPMetrics(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := RegisterHTTPMetrics(reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}

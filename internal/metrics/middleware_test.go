package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/updatePilotKnowledge", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{}}`))
	})
	r.Post("/getPilotProfile", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return r
}

func TestMiddleware_RecordsByRouteAndStatus(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method, path, status string
	}{
		{"POST", "/updatePilotKnowledge", "200"},
		{"POST", "/getPilotProfile", "404"},
		{"GET", "/health", "503"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))

			req := httptest.NewRequest(tc.method, tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))
			if after != before+1 {
				t.Errorf("requests_total: got %f, want %f", after, before+1)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/no/such/path/42", http.NoBody))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404"))

	if after != before+1 {
		t.Errorf("unmatched route: got %f, want %f", after, before+1)
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := newRouter()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/updatePilotKnowledge", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsInFlight); v != 0 {
		t.Errorf("in flight: got %f, want 0", v)
	}
}

func TestRegisterPreferenceMetrics_Idempotent(t *testing.T) {
	RegisterPreferenceMetrics()
	RegisterPreferenceMetrics()

	ProfileWritesTotal.WithLabelValues("skipped").Inc()
	if v := testutil.ToFloat64(ProfileWritesTotal.WithLabelValues("skipped")); v < 1 {
		t.Errorf("expected skipped >= 1, got %f", v)
	}
}

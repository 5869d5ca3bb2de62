package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/*", "401"))

	for _, target := range []string{"/secret", "/listDrugs?secret=1"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	}

	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/*", "401"))
	if after-before != 2 {
		t.Errorf("expected 2 requests counted under /*, got %v", after-before)
	}
	if v := testutil.ToFloat64(HTTPRequestInFlight); v != 0 {
		t.Errorf("expected no in-flight requests after completion, got %v", v)
	}
}

func TestObserveUpstream(t *testing.T) {
	tests := []struct {
		status int
		label  string
	}{
		{http.StatusOK, "200"},
		{http.StatusNotFound, "404"},
		{0, "error"},
	}

	for _, tt := range tests {
		before := testutil.ToFloat64(UpstreamRequestTotals.WithLabelValues("searchDrugs", tt.label))
		ObserveUpstream("searchDrugs", tt.status, 10*time.Millisecond)
		after := testutil.ToFloat64(UpstreamRequestTotals.WithLabelValues("searchDrugs", tt.label))
		if after-before != 1 {
			t.Errorf("status %d: expected counter %q to increase by 1, got %v", tt.status, tt.label, after-before)
		}
	}
}

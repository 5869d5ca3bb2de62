package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	status string
	code   int
}

func (s stubChecker) HealthCheck() (string, map[string]any, int) {
	return s.status, map[string]any{"consecutive_failures": 3}, s.code
}

func TestHealthCheckHandler(t *testing.T) {
	tests := []struct {
		status string
		code   int
	}{
		{"healthy", http.StatusOK},
		{"degraded", http.StatusOK},
		{"unhealthy", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			rr := httptest.NewRecorder()
			HealthCheck(stubChecker{tt.status, tt.code})(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.code {
				t.Errorf("status code = %d, want %d", rr.Code, tt.code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Status != tt.status {
				t.Errorf("status = %q, want %q", body.Status, tt.status)
			}
			if body.Data["consecutive_failures"] != float64(3) {
				t.Errorf("data = %v", body.Data)
			}
		})
	}
}

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/openfda-gateway/config"
	"github.com/giygas/openfda-gateway/handlers"
	"github.com/giygas/openfda-gateway/render"
	"github.com/go-chi/chi/v5/middleware"
)

type stubHealth struct{}

func (stubHealth) HealthCheck() (string, map[string]any, int) {
	return "healthy", map[string]any{"probe_enabled": false}, http.StatusOK
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Address:           "127.0.0.1",
		Env:               config.EnvTest,
		LogLevel:          "error",
		MaxRequestBody:    1024,
		MaxHeaderSize:     4096,
		RateLimitRate:     1,
		RateLimitCapacity: 1000,
	}
}

// echoGateway writes the target it was handed
func echoGateway() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("target=" + r.URL.RequestURI()))
	})
}

func TestNewServer(t *testing.T) {
	s := NewServer(testConfig(), echoGateway(), stubHealth{})

	if s.server.Addr != "127.0.0.1:0" {
		t.Errorf("Addr = %q", s.server.Addr)
	}
	if s.server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v", s.server.ReadTimeout)
	}
	if s.rateLimiter == nil {
		t.Error("rate limiter should be set")
	}
}

func TestSetupRoutes(t *testing.T) {
	s := NewServer(testConfig(), echoGateway(), stubHealth{})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"root goes to gateway", "/", http.StatusOK, "target=/"},
		{"operation with query", "/listDrugs?limit=2", http.StatusOK, "target=/listDrugs?limit=2"},
		{"trailing slash kept", "/listWarnings/", http.StatusOK, "target=/listWarnings/"},
		{"nested path", "/a/b/secret", http.StatusOK, "target=/a/b/secret"},
		{"health", "/health", http.StatusOK, `"status":"healthy"`},
		{"metrics", "/metrics", http.StatusOK, "openfda_upstream_up"},
		{"secret on health", "/health?secret", http.StatusOK, "target=/health?secret"},
		{"redirect on metrics", "/metrics?redirect", http.StatusOK, "target=/metrics?redirect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body should contain %q, got %q", tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestSetupMiddleware(t *testing.T) {
	s := NewServer(testConfig(), echoGateway(), stubHealth{})

	t.Run("rate limit headers", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Header().Get("X-RateLimit-Limit") != "1000" {
			t.Errorf("X-RateLimit-Limit = %q", rr.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("non-GET rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/listDrugs", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rr.Code)
		}
	})

	t.Run("gzip when accepted", func(t *testing.T) {
		big := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<ul>" + strings.Repeat("<li>ibuprofen</li>", 500) + "</ul>"))
		})
		gz := NewServer(testConfig(), big, stubHealth{})

		req := httptest.NewRequest(http.MethodGet, "/listDrugs", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rr := httptest.NewRecorder()
		gz.Handler().ServeHTTP(rr, req)

		if rr.Header().Get("Content-Encoding") != "gzip" {
			t.Errorf("expected gzip encoding, headers: %v", rr.Header())
		}
	})

	t.Run("request id propagated", func(t *testing.T) {
		var got string
		withID := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = middleware.GetReqID(r.Context())
		})
		srv := NewServer(testConfig(), withID, stubHealth{})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		srv.Handler().ServeHTTP(httptest.NewRecorder(), req)
		if got != "abc-123" {
			t.Errorf("request id = %q, want abc-123", got)
		}
	})
}

func TestOperationalRoutesHonorOverrides(t *testing.T) {
	gateway := handlers.NewRouter(nil, stubPages{}, render.Renderer{}, nil, "http://127.0.0.1:8000/")
	s := NewServer(testConfig(), gateway, stubHealth{})

	tests := []struct {
		target       string
		wantStatus   int
		wantAuth     bool
		wantLocation string
	}{
		{"/health?secret", http.StatusUnauthorized, true, ""},
		{"/metrics?secret=1", http.StatusUnauthorized, true, ""},
		{"/health?redirect", http.StatusFound, false, "http://127.0.0.1:8000/"},
		{"/metrics?redirect", http.StatusFound, false, "http://127.0.0.1:8000/"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "text/html" {
				t.Errorf("Content-Type = %q, want text/html", ct)
			}
			if got := rr.Header().Get("WWW-Authenticate"); (got != "") != tt.wantAuth {
				t.Errorf("WWW-Authenticate = %q, wantAuth %v", got, tt.wantAuth)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

type stubPages struct{}

func (stubPages) HomePage() (string, error)     { return "home", nil }
func (stubPages) NotFoundPage() (string, error) { return "not found", nil }

func TestServerLifecycle(t *testing.T) {
	s := NewServer(testConfig(), echoGateway(), stubHealth{})

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			t.Errorf("Start() returned %v, want http.ErrServerClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	// Shutdown twice is safe
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error: %v", err)
	}
}

// Package interfaces defines the core abstractions of the gateway so the
// router, probe and health check can be tested without the network.
package interfaces

import (
	"context"
	"time"

	"github.com/giygas/openfda-gateway/openfda"
)

// DrugSource is the upstream drug-label API as seen by the router
type DrugSource interface {
	SearchDrugs(ctx context.Context, ingredient, limit string) ([]openfda.DrugRecord, error)
	SearchCompanies(ctx context.Context, company, limit string) ([]openfda.DrugRecord, error)
	ListDrugs(ctx context.Context, limit string) ([]openfda.DrugRecord, error)
}

// PageSource provides the static pages. Implementations may read from disk
// on every call.
type PageSource interface {
	HomePage() (string, error)
	NotFoundPage() (string, error)
}

// ProbeResult is the outcome of one upstream availability probe
type ProbeResult struct {
	CheckedAt time.Time
	Latency   time.Duration
	Records   int
	Err       error
}

// StatusStore keeps the latest upstream probe outcome. It is the only state
// shared between requests and must be safe for concurrent use.
type StatusStore interface {
	RecordProbe(result ProbeResult)
	LastProbe() (ProbeResult, bool)
	ConsecutiveFailures() int
	GetServerStartTime() time.Time
}

// Scheduler runs background jobs
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker reports gateway health for the /health endpoint
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// InputValidator inspects user supplied query values. Findings are
// reported, the caller decides what to do with them.
type InputValidator interface {
	ValidateInput(input string) error
	ValidateLimit(limit string) error
}

// Package health reports gateway health from the latest upstream probe.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/openfda-gateway/interfaces"
)

// Compile-time check
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store         interfaces.StatusStore
	probeInterval time.Duration
	now           func() time.Time
}

// NewHealthChecker creates a health checker. probeInterval 0 means the probe
// is disabled and the gateway reports healthy without upstream data.
func NewHealthChecker(store interfaces.StatusStore, probeInterval time.Duration) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		store:         store,
		probeInterval: probeInterval,
		now:           time.Now,
	}
}

// HealthCheck classifies the gateway:
//
//   - healthy: last probe succeeded and is recent
//   - degraded: one failed probe, or the last probe is stale (more than two
//     intervals old); requests may still work
//   - unhealthy: three or more consecutive failed probes
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.now()
	uptime := now.Sub(h.store.GetServerStartTime())
	failures := h.store.ConsecutiveFailures()
	last, probed := h.store.LastProbe()

	data = map[string]any{
		"uptime_seconds":       math.Round(uptime.Seconds()),
		"probe_enabled":        h.probeInterval > 0,
		"consecutive_failures": failures,
	}

	if probed {
		data["last_probe"] = last.CheckedAt.Format(time.RFC3339)
		data["last_probe_latency_ms"] = last.Latency.Milliseconds()
		data["last_probe_ok"] = last.Err == nil
		if last.Err != nil {
			data["last_probe_error"] = last.Err.Error()
		}
	}

	switch {
	case h.probeInterval == 0 || !probed:
		status, httpStatus = "healthy", http.StatusOK

	case failures >= 3:
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable

	case failures > 0, now.Sub(last.CheckedAt) > 2*h.probeInterval:
		status, httpStatus = "degraded", http.StatusOK

	default:
		status, httpStatus = "healthy", http.StatusOK
	}

	return status, data, httpStatus
}

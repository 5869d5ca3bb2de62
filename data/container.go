// Package data holds the upstream status shared across requests, with
// atomic operations so readers never block the probe.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/openfda-gateway/interfaces"
)

// Compile-time check to ensure StatusContainer implements StatusStore
var _ interfaces.StatusStore = (*StatusContainer)(nil)

// StatusContainer stores the last probe result of the openFDA API
type StatusContainer struct {
	lastProbe       atomic.Pointer[interfaces.ProbeResult]
	failures        atomic.Int64
	serverStartTime atomic.Value // time.Time
}

// NewStatusContainer creates an empty container started now
func NewStatusContainer() *StatusContainer {
	sc := &StatusContainer{}
	sc.serverStartTime.Store(time.Now())
	return sc
}

// RecordProbe stores result and updates the consecutive failure count
func (sc *StatusContainer) RecordProbe(result interfaces.ProbeResult) {
	if result.Err != nil {
		sc.failures.Add(1)
	} else {
		sc.failures.Store(0)
	}
	sc.lastProbe.Store(&result)
}

// LastProbe returns the latest probe, false if none ran yet
func (sc *StatusContainer) LastProbe() (interfaces.ProbeResult, bool) {
	if p := sc.lastProbe.Load(); p != nil {
		return *p, true
	}
	return interfaces.ProbeResult{}, false
}

// ConsecutiveFailures is the number of failed probes since the last success
func (sc *StatusContainer) ConsecutiveFailures() int {
	return int(sc.failures.Load())
}

// GetServerStartTime returns when the container was created
func (sc *StatusContainer) GetServerStartTime() time.Time {
	if v, ok := sc.serverStartTime.Load().(time.Time); ok {
		return v
	}
	return time.Time{}
}

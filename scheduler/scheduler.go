// Package scheduler runs the periodic upstream probe: a one-record listing
// against openFDA whose outcome feeds /health and the openfda_upstream_up
// gauge.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/openfda-gateway/interfaces"
	"github.com/giygas/openfda-gateway/logging"
	"github.com/giygas/openfda-gateway/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const probeTimeout = 20 * time.Second

// Scheduler probes the upstream on a fixed interval
type Scheduler struct {
	source    interfaces.DrugSource
	store     interfaces.StatusStore
	interval  time.Duration
	scheduler *gocron.Scheduler
}

// NewScheduler creates a probe scheduler. Start is a no-op when interval is 0.
func NewScheduler(source interfaces.DrugSource, store interfaces.StatusStore, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()
	return &Scheduler{
		source:    source,
		store:     store,
		interval:  interval,
		scheduler: s,
	}
}

// Start schedules the probe. The first run happens immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		logging.Info("Upstream probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.Probe)
	if err != nil {
		logging.Error("Failed to schedule upstream probe", "error", err)
		return fmt.Errorf("failed to schedule upstream probe: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Upstream probe scheduled", "interval", s.interval.String())
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Probe lists a single record from the upstream and stores the outcome
func (s *Scheduler) Probe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	start := time.Now()
	records, err := s.source.ListDrugs(ctx, "1")
	result := interfaces.ProbeResult{
		CheckedAt: start,
		Latency:   time.Since(start),
		Records:   len(records),
		Err:       err,
	}
	s.store.RecordProbe(result)

	if err != nil {
		metrics.UpstreamUp.Set(0)
		logging.Warn("Upstream probe failed",
			"error", err,
			"consecutive_failures", s.store.ConsecutiveFailures(),
		)
		return
	}

	metrics.UpstreamUp.Set(1)
	logging.Debug("Upstream probe succeeded", "latency_ms", result.Latency.Milliseconds(), "records", result.Records)
}

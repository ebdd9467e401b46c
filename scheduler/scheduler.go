// Package scheduler probes the label database on a fixed cadence and keeps
// the outcome for the health endpoint.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/tjswar/medilookapp/interfaces"
	"github.com/tjswar/medilookapp/logging"
)

// StaleAfterIntervals is how many probe intervals may pass without a
// successful probe before the upstream is considered down.
const StaleAfterIntervals = 3

// Compile-time check to ensure Scheduler implements ProbeStatus
var _ interfaces.ProbeStatus = (*Scheduler)(nil)

// Scheduler runs the upstream probe job.
type Scheduler struct {
	prober    interfaces.UpstreamProber
	interval  time.Duration
	timeout   time.Duration
	scheduler *gocron.Scheduler

	startedAt   atomic.Value // time.Time
	lastProbe   atomic.Value // time.Time
	lastSuccess atomic.Value // time.Time
	lastErr     atomic.Value // probeResult
	probing     atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
}

// probeResult wraps the last error so atomic.Value always sees one type.
type probeResult struct {
	err error
}

// NewScheduler creates a scheduler probing every intervalMinutes. Each probe
// is bounded by timeout.
func NewScheduler(prober interfaces.UpstreamProber, intervalMinutes int, timeout time.Duration) *Scheduler {
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}

	s := &Scheduler{
		prober:    prober,
		interval:  time.Duration(intervalMinutes) * time.Minute,
		timeout:   timeout,
		scheduler: gocron.NewScheduler(time.Local),
		stop:      make(chan struct{}),
	}
	s.startedAt.Store(time.Time{})
	s.lastProbe.Store(time.Time{})
	s.lastSuccess.Store(time.Time{})
	s.lastErr.Store(probeResult{})
	return s
}

// Start schedules the probe, which also runs once immediately, and starts
// monitoring for a stale upstream.
func (s *Scheduler) Start() error {
	s.startedAt.Store(time.Now())

	minutes := int(s.interval / time.Minute)
	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		if err := s.RunProbe(context.Background()); err != nil {
			logging.Warn("Upstream probe failed", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule upstream probe", "error", err)
		return fmt.Errorf("failed to schedule upstream probe: %w", err)
	}

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	logging.Info("Upstream probe scheduled", "interval", s.interval.String())
	return nil
}

// Stop stops the probe job and the monitor.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.stopOnce.Do(func() { close(s.stop) })
}

// RunProbe performs one probe and records the outcome. Overlapping calls are
// skipped.
func (s *Scheduler) RunProbe(ctx context.Context) error {
	if !s.probing.CompareAndSwap(false, true) {
		logging.Info("Probe already in progress, skipping...")
		return nil
	}
	defer s.probing.Store(false)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.prober.Probe(ctx)

	s.lastProbe.Store(start)
	s.lastErr.Store(probeResult{err: err})
	if err != nil {
		return fmt.Errorf("upstream probe: %w", err)
	}

	s.lastSuccess.Store(start)
	logging.Debug("Upstream probe succeeded", "duration", time.Since(start).String())
	return nil
}

// StartedAt returns when Start was called, or the zero time.
func (s *Scheduler) StartedAt() time.Time {
	return loadTime(&s.startedAt)
}

// LastProbe returns when the last probe ran.
func (s *Scheduler) LastProbe() time.Time {
	return loadTime(&s.lastProbe)
}

// LastSuccess returns when a probe last succeeded.
func (s *Scheduler) LastSuccess() time.Time {
	return loadTime(&s.lastSuccess)
}

// LastError returns the error of the last probe, nil if it succeeded.
func (s *Scheduler) LastError() error {
	if v, ok := s.lastErr.Load().(probeResult); ok {
		return v.err
	}
	return nil
}

// Interval returns the probe cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// startHealthMonitoring warns when no probe has succeeded for too long.
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if IsStale(s, time.Now()) {
					logging.Warn(fmt.Sprintf("Label database unreachable for over %d probe intervals", StaleAfterIntervals),
						"last_success", s.LastSuccess().Format(time.RFC3339))
				}
			}
		}
	}()
}

// IsStale reports whether status has gone StaleAfterIntervals intervals
// without a successful probe. Before the first success the start time is
// the reference.
func IsStale(status interfaces.ProbeStatus, now time.Time) bool {
	ref := status.LastSuccess()
	if ref.IsZero() {
		ref = status.StartedAt()
	}
	if ref.IsZero() {
		return false
	}
	return now.Sub(ref) > StaleAfterIntervals*status.Interval()
}

func loadTime(v *atomic.Value) time.Time {
	if t, ok := v.Load().(time.Time); ok {
		return t
	}
	return time.Time{}
}

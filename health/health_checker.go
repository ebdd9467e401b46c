// Package health reports service health from the upstream probe outcome and
// the search history.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/tjswar/medilookapp/interfaces"
	"github.com/tjswar/medilookapp/scheduler"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	probes  interfaces.ProbeStatus
	history interfaces.HistoryCache
	now     func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// history may be nil.
func NewHealthChecker(probes interfaces.ProbeStatus, history interfaces.HistoryCache) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		probes:  probes,
		history: history,
		now:     time.Now,
	}
}

// HealthCheck is degraded when the last probe failed and unhealthy when no
// probe has succeeded for several intervals. Lookups still answer with
// fallback records while degraded, so only unhealthy returns 503.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.now()
	lastProbe := h.probes.LastProbe()
	lastSuccess := h.probes.LastSuccess()
	probeErr := h.probes.LastError()

	upstream := "reachable"
	switch {
	case scheduler.IsStale(h.probes, now):
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
		upstream = "unreachable"

	case probeErr != nil:
		status = "degraded"
		httpStatus = http.StatusOK
		upstream = "failing"

	default:
		status = "healthy"
		httpStatus = http.StatusOK
		if lastProbe.IsZero() {
			upstream = "pending"
		}
	}

	data = map[string]any{
		"upstream":               upstream,
		"last_probe":             formatTime(lastProbe),
		"last_success":           formatTime(lastSuccess),
		"probe_interval_minutes": h.probes.Interval().Minutes(),
	}
	if !lastSuccess.IsZero() {
		data["upstream_age_minutes"] = math.Round(now.Sub(lastSuccess).Minutes()*10) / 10
	}
	if probeErr != nil {
		data["last_error"] = probeErr.Error()
	}
	if h.history != nil {
		data["history_entries"] = h.history.Len()
	}

	return status, data, httpStatus
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

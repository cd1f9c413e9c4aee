// Package health reports provider health and serves Prometheus metrics.
package health

import (
	"sort"

	"github.com/Soptq/shapeshift-lib/internal/infra/rpc/provider"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// degradedErrorRate is the error rate above which an available provider is
// reported as degraded.
const degradedErrorRate = 0.1

// ProviderHealth contains health metrics for one upstream endpoint.
type ProviderHealth struct {
	Name      string       `json:"name"`
	Status    SystemStatus `json:"status"`
	ErrorRate float64      `json:"error_rate"`
	LatencyMs int64        `json:"latency_ms"`
}

// Report contains the full health report.
type Report struct {
	SystemStatus  SystemStatus     `json:"system_status"`
	Providers     []ProviderHealth `json:"providers"`
	Subscriptions int              `json:"subscriptions"`
}

// Monitor aggregates the health of a set of providers.
type Monitor struct {
	providers     []provider.Provider
	subscriptions func() int
}

// NewMonitor creates a monitor over providers.
func NewMonitor(providers ...provider.Provider) *Monitor {
	return &Monitor{providers: providers}
}

// CountSubscriptions reports f's value as the number of open subscriptions.
func (m *Monitor) CountSubscriptions(f func() int) {
	m.subscriptions = f
}

// Check builds a report. The worst provider status wins.
func (m *Monitor) Check() Report {
	report := Report{SystemStatus: StatusHealthy}

	for _, p := range m.providers {
		h := p.GetHealth()
		ph := ProviderHealth{
			Name:      p.GetName(),
			Status:    statusOf(h),
			ErrorRate: h.ErrorRate,
			LatencyMs: h.Latency.Milliseconds(),
		}
		report.Providers = append(report.Providers, ph)

		switch {
		case ph.Status == StatusCritical:
			report.SystemStatus = StatusCritical
		case ph.Status == StatusDegraded && report.SystemStatus == StatusHealthy:
			report.SystemStatus = StatusDegraded
		}
	}
	sort.Slice(report.Providers, func(i, j int) bool {
		return report.Providers[i].Name < report.Providers[j].Name
	})

	if m.subscriptions != nil {
		report.Subscriptions = m.subscriptions()
	}
	return report
}

func statusOf(h provider.HealthStatus) SystemStatus {
	switch {
	case !h.Available:
		return StatusCritical
	case h.ErrorRate > degradedErrorRate:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

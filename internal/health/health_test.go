package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Soptq/shapeshift-lib/internal/infra/rpc/provider"
)

type stubProvider struct {
	provider.Provider
	name   string
	health provider.HealthStatus
}

func (s stubProvider) GetName() string                  { return s.name }
func (s stubProvider) GetHealth() provider.HealthStatus { return s.health }

func TestMonitor_Check(t *testing.T) {
	tests := []struct {
		name   string
		health []provider.HealthStatus
		want   SystemStatus
	}{
		{"all healthy", []provider.HealthStatus{{Available: true}, {Available: true, ErrorRate: 0.05}}, StatusHealthy},
		{"one degraded", []provider.HealthStatus{{Available: true}, {Available: true, ErrorRate: 0.3}}, StatusDegraded},
		{"critical wins", []provider.HealthStatus{{Available: true, ErrorRate: 0.3}, {Available: false}}, StatusCritical},
		{"no providers", nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var providers []provider.Provider
			for i, h := range tt.health {
				providers = append(providers, stubProvider{name: string(rune('a' + i)), health: h})
			}
			report := NewMonitor(providers...).Check()
			if report.SystemStatus != tt.want {
				t.Errorf("expected %s, got %s", tt.want, report.SystemStatus)
			}
			if len(report.Providers) != len(tt.health) {
				t.Errorf("expected %d providers, got %d", len(tt.health), len(report.Providers))
			}
		})
	}
}

func TestServer_Health(t *testing.T) {
	m := NewMonitor(stubProvider{
		name:   "unchained-ethereum",
		health: provider.HealthStatus{Available: true, Latency: 120 * time.Millisecond},
	})
	m.CountSubscriptions(func() int { return 2 })

	rec := httptest.NewRecorder()
	NewServer(m, 0).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Subscriptions != 2 || report.Providers[0].LatencyMs != 120 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestServer_Critical(t *testing.T) {
	m := NewMonitor(stubProvider{name: "down", health: provider.HealthStatus{Available: false}})

	rec := httptest.NewRecorder()
	NewServer(m, 0).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(NewMonitor(), 0).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

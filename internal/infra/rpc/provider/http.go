package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Soptq/shapeshift-lib/internal/metrics"
)

// HTTPProvider implements Provider for JSON REST APIs over HTTP.
//
// It never retries: callers decide whether an operation is idempotent.
type HTTPProvider struct {
	name       string
	endpoint   string
	httpClient *http.Client

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int
}

// NewHTTPProvider creates a new HTTP provider. A zero timeout leaves request
// lifetime entirely to the caller's context.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name:     name,
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
	}
}

// Execute performs op and returns the decoded JSON value.
func (p *HTTPProvider) Execute(ctx context.Context, op Operation) (any, error) {
	var result any
	if err := p.Fetch(ctx, op, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Fetch performs op and decodes the JSON response into out.
func (p *HTTPProvider) Fetch(ctx context.Context, op Operation, out any) error {
	path := op.Path
	if path == "" {
		path = op.Name
	}
	target := p.endpoint + "/" + strings.TrimLeft(path, "/")
	if len(op.Query) > 0 {
		target += "?" + op.Query.Encode()
	}

	method := op.RESTMethod
	if method == "" {
		method = http.MethodGet
		if op.Params != nil {
			method = http.MethodPost
		}
	}

	body, err := p.do(ctx, op.Name, method, target, op.Params)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (p *HTTPProvider) do(ctx context.Context, name, method, target string, payload any) ([]byte, error) {
	start := time.Now()

	var reader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.recordFailure(name, "transport")
		return nil, fmt.Errorf("%s %s: %w", method, name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.recordFailure(name, "read")
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.recordFailure(name, fmt.Sprintf("http_%d", resp.StatusCode))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	p.recordSuccess(name, time.Since(start))
	return body, nil
}

// GetName returns the provider's name.
func (p *HTTPProvider) GetName() string {
	return p.name
}

// GetHealth returns the provider's health status.
func (p *HTTPProvider) GetHealth() HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) recordSuccess(op string, latency time.Duration) {
	metrics.ProviderCallsTotal.WithLabelValues(p.name, op).Inc()
	metrics.ProviderLatency.WithLabelValues(p.name, op).Observe(latency.Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}
	if p.successCount > 0 {
		p.health.Latency = p.totalLatency / time.Duration(p.successCount)
	}
}

func (p *HTTPProvider) recordFailure(op, reason string) {
	metrics.ProviderCallsTotal.WithLabelValues(p.name, op).Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(p.name, reason).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.LastFailureAt = time.Now()

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}

	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}
}

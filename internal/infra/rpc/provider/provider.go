// Package provider implements the HTTP transport used by indexer and gas
// oracle clients.
//
// This package contains:
//   - Operation: a transport agnostic description of one request
//   - Provider interface: core abstraction for an endpoint
//   - HTTPProvider: JSON REST over HTTP
//   - HTTPError: non-2xx responses with their status code
package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Operation represents a request to execute.
type Operation struct {
	// Name identifies the operation (e.g. "getAccount") in metrics.
	Name string

	// Path is the REST path relative to the endpoint. Defaults to Name.
	Path string

	// Query is appended to REST paths.
	Query url.Values

	// Params is the JSON request body.
	Params any

	// RESTMethod specifies the HTTP method. Defaults to GET without Params
	// and POST with Params.
	RESTMethod string
}

// Provider defines the core interface for an endpoint.
type Provider interface {
	// GetName returns provider identifier (e.g., "unchained-ethereum")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// Execute performs the operation and returns the decoded JSON body
	Execute(ctx context.Context, op Operation) (any, error)

	// Fetch performs the operation and decodes the JSON body into out
	Fetch(ctx context.Context, op Operation, out any) error

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool
	Latency       time.Duration
	ErrorRate     float64
	LastSuccessAt time.Time
	LastFailureAt time.Time
}

// HTTPError is returned for responses outside the 2xx range.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

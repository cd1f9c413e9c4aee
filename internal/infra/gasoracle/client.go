// Package gasoracle fetches tiered gas price quotes from an HTTP oracle.
package gasoracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Soptq/shapeshift-lib/internal/infra/rpc/provider"
)

// Quote is one source's gas prices in base units per gas. A tier the source
// did not report is nil.
type Quote struct {
	Source    string           `json:"source"`
	Timestamp int64            `json:"timestamp"`
	Instant   *decimal.Decimal `json:"instant"`
	Fast      *decimal.Decimal `json:"fast"`
	Standard  *decimal.Decimal `json:"standard"`
	Low       *decimal.Decimal `json:"low"`
}

type envelope struct {
	Result []Quote `json:"result"`
}

// Client reads quotes from the oracle endpoint.
type Client struct {
	provider provider.Provider
}

// NewClient creates a client over an HTTP provider pointed at the oracle.
func NewClient(p provider.Provider) *Client {
	return &Client{provider: p}
}

// Quotes returns every source the oracle reported. Nothing is cached.
func (c *Client) Quotes(ctx context.Context) ([]Quote, error) {
	var raw json.RawMessage
	if err := c.provider.Fetch(ctx, provider.Operation{Name: "gasQuotes", Path: "/"}, &raw); err != nil {
		return nil, fmt.Errorf("fetch gas quotes: %w", err)
	}
	return decodeQuotes(raw)
}

// decodeQuotes accepts both {"result": [...]} and a bare array.
func decodeQuotes(raw json.RawMessage) ([]Quote, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty gas oracle response")
	}

	if trimmed[0] == '[' {
		var quotes []Quote
		if err := json.Unmarshal(trimmed, &quotes); err != nil {
			return nil, fmt.Errorf("decode gas quotes: %w", err)
		}
		return quotes, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode gas quotes: %w", err)
	}
	return env.Result, nil
}

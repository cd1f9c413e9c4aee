// Package unchained implements clients for the indexer HTTP API and its
// websocket push API.
package unchained

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Soptq/shapeshift-lib/internal/infra/rpc/provider"
)

// ErrAccountNotFound is returned when the indexer does not know an account.
var ErrAccountNotFound = errors.New("account not found")

// Client talks to the indexer REST API.
type Client struct {
	provider provider.Provider
}

// NewClient creates a client on top of an HTTP provider.
func NewClient(p provider.Provider) *Client {
	return &Client{provider: p}
}

// GetInfo returns the network the indexer serves.
func (c *Client) GetInfo(ctx context.Context) (*Info, error) {
	var info Info
	op := provider.Operation{Name: "getInfo", Path: "api/v1/info"}
	if err := c.provider.Fetch(ctx, op, &info); err != nil {
		return nil, fmt.Errorf("get info: %w", err)
	}
	return &info, nil
}

// GetAccount returns the account for pubkey, or ErrAccountNotFound.
func (c *Client) GetAccount(ctx context.Context, pubkey string) (*Account, error) {
	var account Account
	op := provider.Operation{
		Name: "getAccount",
		Path: "api/v1/account/" + url.PathEscape(pubkey),
	}
	if err := c.provider.Fetch(ctx, op, &account); err != nil {
		var httpErr *provider.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &account, nil
}

// GetTxHistory returns one page of history for req.Pubkey.
func (c *Client) GetTxHistory(ctx context.Context, req TxHistoryRequest) (*TxHistory, error) {
	query := url.Values{}
	if req.Page > 0 {
		query.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(req.PageSize))
	}

	var history TxHistory
	op := provider.Operation{
		Name:  "getTxHistory",
		Path:  "api/v1/account/" + url.PathEscape(req.Pubkey) + "/txs",
		Query: query,
	}
	if err := c.provider.Fetch(ctx, op, &history); err != nil {
		var httpErr *provider.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, req.Pubkey)
		}
		return nil, fmt.Errorf("get tx history: %w", err)
	}
	return &history, nil
}

// SendTx broadcasts a signed transaction and returns its id.
func (c *Client) SendTx(ctx context.Context, hex string) (string, error) {
	var txid string
	op := provider.Operation{
		Name:   "sendTx",
		Path:   "api/v1/send",
		Params: map[string]string{"hex": hex},
	}
	if err := c.provider.Fetch(ctx, op, &txid); err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}
	return txid, nil
}

// EstimateGas simulates req and returns the gas limit as a decimal string.
func (c *Client) EstimateGas(ctx context.Context, req EstimateGasRequest) (string, error) {
	query := url.Values{}
	query.Set("from", req.From)
	query.Set("to", req.To)
	query.Set("value", req.Value)
	query.Set("data", req.Data)

	var gasLimit string
	op := provider.Operation{Name: "estimateGas", Path: "api/v1/gas/estimate", Query: query}
	if err := c.provider.Fetch(ctx, op, &gasLimit); err != nil {
		return "", fmt.Errorf("estimate gas: %w", err)
	}
	return gasLimit, nil
}

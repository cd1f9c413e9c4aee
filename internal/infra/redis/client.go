// Package redis publishes normalized transaction events over Redis pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/metrics"
)

// DefaultDedupTTL bounds how long a delivered event is remembered.
const DefaultDedupTTL = 24 * time.Hour

// Client publishes TxEvents.
type Client struct {
	rdb      *redis.Client
	dedupTTL time.Duration
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

// NewClient connects and pings Redis.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.DedupTTL
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &Client{rdb: rdb, dedupTTL: ttl}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Channel is where events for address on chain are published.
func Channel(chain, address string) string {
	return fmt.Sprintf("txs:%s:%s", chain, address)
}

func seenKey(event domain.TxEvent) string {
	return fmt.Sprintf("seen:%s:%s:%s:%s",
		event.ChainID, event.Address, event.TxID, strconv.FormatInt(event.Confirmations, 10))
}

// Publish sends event to its channel once. A repeat of the same
// (chain, address, txid, confirmations) within the dedup TTL is skipped and
// reported as false.
func (c *Client) Publish(ctx context.Context, event domain.TxEvent) (bool, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return false, fmt.Errorf("encode event: %w", err)
	}

	fresh, err := c.rdb.SetNX(ctx, seenKey(event), "1", c.dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	if !fresh {
		return false, nil
	}

	chain := event.ChainID.String()
	if err := c.rdb.Publish(ctx, Channel(chain, event.Address), payload).Err(); err != nil {
		return false, fmt.Errorf("publish failed: %w", err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(chain).Inc()
	return true, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/config"
	"github.com/Soptq/shapeshift-lib/internal/fees"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain/cosmos"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain/ethereum"
	"github.com/Soptq/shapeshift-lib/internal/infra/gasoracle"
	"github.com/Soptq/shapeshift-lib/internal/infra/rpc/provider"
	"github.com/Soptq/shapeshift-lib/internal/infra/unchained"
	"github.com/Soptq/shapeshift-lib/internal/subscription"
)

type closer interface {
	Close() error
}

// app holds every adapter built from the config.
type app struct {
	cfg       *config.AppConfig
	registry  *chain.Registry
	providers []provider.Provider
	sockets   []*unchained.WSClient

	// closed in reverse order
	closers []closer
}

// newApp builds and registers an adapter per configured chain. Chains whose
// indexer cannot be reached are skipped with a warning.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if len(cfg.Chains) == 0 {
		return nil, errors.New("no chains configured")
	}

	a := &app{cfg: cfg, registry: chain.NewRegistry()}
	for _, c := range cfg.Chains {
		adapter, err := a.build(c)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("chain %s: %w", c.Name, err)
		}

		id, err := a.registry.Register(ctx, adapter)
		if err != nil {
			slog.Warn("Skipping chain", "name", c.Name, "error", err)
			continue
		}
		slog.Debug("Chain registered", "name", c.Name, "caip2", id.String())
	}

	if len(a.registry.Chains()) == 0 {
		a.Close()
		return nil, errors.New("no chain could be reached")
	}
	return a, nil
}

func (a *app) build(c config.ChainConfig) (chain.Adapter, error) {
	httpProvider := provider.NewHTTPProvider("unchained-"+c.Name, c.HTTPURL, c.Timeout)
	a.providers = append(a.providers, httpProvider)
	a.closers = append(a.closers, httpProvider)
	api := unchained.NewClient(httpProvider)

	// A nil *WSClient must not reach the adapter as a non-nil Source.
	var ws subscription.Source
	if c.WSURL != "" {
		socket := unchained.NewWSClient(c.WSURL)
		a.sockets = append(a.sockets, socket)
		a.closers = append(a.closers, socket)
		ws = socket
	}

	var pipeline *fees.Pipeline
	if oracle := c.Oracle(a.cfg.GasOracle); oracle.URL != "" {
		oracleProvider := provider.NewHTTPProvider("gasoracle-"+c.Name, oracle.URL, oracle.Timeout)
		a.providers = append(a.providers, oracleProvider)
		a.closers = append(a.closers, oracleProvider)
		pipeline = fees.NewPipeline(gasoracle.NewClient(oracleProvider), oracle.Source)
	}

	switch c.Family {
	case caip.ChainFamilyEthereum:
		adapter, err := ethereum.NewAdapter(ethereum.Config{
			Name:  c.Name,
			HTTP:  api,
			WS:    ws,
			Fees:  pipeline,
			BIP44: c.BIP44,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, adapter)
		return adapter, nil
	case caip.ChainFamilyCosmos:
		adapter, err := cosmos.NewAdapter(cosmos.Config{
			Name:     c.Name,
			HTTP:     api,
			WS:       ws,
			Fees:     pipeline,
			GasLimit: c.GasLimit,
			BIP44:    c.BIP44,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, adapter)
		return adapter, nil
	default:
		return nil, fmt.Errorf("unsupported family %q", c.Family)
	}
}

// adapter returns the adapter selected by --chain, or the only one
// registered.
func (a *app) adapter() (chain.Adapter, error) {
	if chainFlag != "" {
		return a.registry.Get(chainFlag)
	}
	chains := a.registry.Chains()
	if len(chains) > 1 {
		ids := make([]string, len(chains))
		for i, id := range chains {
			ids[i] = id.String()
		}
		return nil, fmt.Errorf("--chain is required, one of: %s", strings.Join(ids, ", "))
	}
	return a.registry.Get(chains[0].String())
}

// activeSubscriptions counts subscriptions across every socket.
func (a *app) activeSubscriptions() int {
	n := 0
	for _, s := range a.sockets {
		n += s.Active()
	}
	return n
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Warn("Close failed", "error", err)
		}
	}
}

package chain

import (
	"context"
	"sort"
	"sync"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
)

// Registry looks adapters up by CAIP2 string.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register resolves a's chain id and files it under that id. A later
// adapter for the same chain replaces the earlier one.
func (r *Registry) Register(ctx context.Context, a Adapter) (caip.ChainID, error) {
	id, err := a.GetChainID(ctx)
	if err != nil {
		return caip.ChainID{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[id.String()] = a
	return id, nil
}

// Get returns the adapter for a CAIP2 string.
func (r *Registry) Get(chainID string) (Adapter, error) {
	id, err := caip.DecodeChainID(chainID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id.String()]
	if !ok {
		return nil, errs.New(errs.KindUnsupportedNetwork, "no adapter registered for %s", chainID)
	}
	return a, nil
}

// Chains lists registered chain ids in string order.
func (r *Registry) Chains() []caip.ChainID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]caip.ChainID, 0, len(r.adapters))
	for s := range r.adapters {
		ids = append(ids, caip.MustChainID(s))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

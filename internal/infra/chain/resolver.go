package chain

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
)

// ResolveFunc asks a provider which network it serves.
type ResolveFunc func(ctx context.Context) (caip.ChainID, error)

// Resolver caches the first successful chain id resolution. Concurrent first
// callers share one in-flight call. Failures are not cached.
type Resolver struct {
	resolve ResolveFunc
	group   singleflight.Group

	mu       sync.RWMutex
	chainID  caip.ChainID
	resolved bool
}

// NewResolver creates a resolver around fn.
func NewResolver(fn ResolveFunc) *Resolver {
	return &Resolver{resolve: fn}
}

// ChainID returns the cached id, resolving it on first use. The shared
// resolution does not inherit any caller's cancellation; a cancelled caller
// stops waiting and the others still get the result.
func (r *Resolver) ChainID(ctx context.Context) (caip.ChainID, error) {
	if id, ok := r.cached(); ok {
		return id, nil
	}

	flight := context.WithoutCancel(ctx)
	ch := r.group.DoChan("chainID", func() (any, error) {
		if id, ok := r.cached(); ok {
			return id, nil
		}
		id, err := r.resolve(flight)
		if err != nil {
			return caip.ChainID{}, err
		}

		r.mu.Lock()
		r.chainID = id
		r.resolved = true
		r.mu.Unlock()
		return id, nil
	})

	select {
	case <-ctx.Done():
		return caip.ChainID{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return caip.ChainID{}, res.Err
		}
		return res.Val.(caip.ChainID), nil
	}
}

func (r *Resolver) cached() (caip.ChainID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chainID, r.resolved
}

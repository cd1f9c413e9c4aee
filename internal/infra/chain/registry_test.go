package chain_test

import (
	"context"
	"testing"

	"github.com/Soptq/shapeshift-lib/internal/core/errs"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain/chaintest"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain/cosmos"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain/ethereum"
)

func TestRegistry(t *testing.T) {
	eth, err := ethereum.NewAdapter(ethereum.Config{HTTP: chaintest.Network("mainnet")})
	if err != nil {
		t.Fatalf("ethereum: %v", err)
	}
	atom, err := cosmos.NewAdapter(cosmos.Config{HTTP: chaintest.Network("mainnet")})
	if err != nil {
		t.Fatalf("cosmos: %v", err)
	}

	r := chain.NewRegistry()
	for _, a := range []chain.Adapter{eth, atom} {
		if _, err := r.Register(context.Background(), a); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	got, err := r.Get("cosmos:cosmoshub-4")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != chain.Adapter(atom) {
		t.Errorf("expected the cosmos adapter")
	}

	chains := r.Chains()
	if len(chains) != 2 || chains[0].String() != "cosmos:cosmoshub-4" || chains[1].String() != "eip155:1" {
		t.Errorf("unexpected chains: %v", chains)
	}
}

func TestRegistry_Get_Errors(t *testing.T) {
	r := chain.NewRegistry()

	tests := []struct {
		id   string
		want errs.Kind
	}{
		{"eip155:1", errs.KindUnsupportedNetwork},
		{"eip155:42", errs.KindUnsupportedNetwork},
		{"EIP155:1", errs.KindMalformedIdentifier},
	}
	for _, tt := range tests {
		if _, err := r.Get(tt.id); errs.KindOf(err) != tt.want {
			t.Errorf("%s: expected %s, got %v", tt.id, tt.want, err)
		}
	}
}

package subscription

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
	"github.com/Soptq/shapeshift-lib/internal/infra/unchained"
)

// fakeSource keeps the callbacks it was handed so tests can push messages.
type fakeSource struct {
	mu            sync.Mutex
	onMessage     map[string]func(unchained.TxMessage)
	onError       map[string]func(error)
	unsubscribed  []string
	SubscribeErr  error
	UnsubscribeFn func(id string) error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		onMessage: make(map[string]func(unchained.TxMessage)),
		onError:   make(map[string]func(error)),
	}
}

func (f *fakeSource) SubscribeTxs(
	_ context.Context,
	id string,
	_ unchained.TxsTopicData,
	onMessage func(unchained.TxMessage),
	onError func(error),
) error {
	if f.SubscribeErr != nil {
		return f.SubscribeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onMessage[id] = onMessage
	f.onError[id] = onError
	return nil
}

func (f *fakeSource) UnsubscribeTxs(id string, _ unchained.TxsTopicData) error {
	f.mu.Lock()
	f.unsubscribed = append(f.unsubscribed, id)
	f.mu.Unlock()
	if f.UnsubscribeFn != nil {
		return f.UnsubscribeFn(id)
	}
	return nil
}

// push delivers msg even after unsubscribe, like a frame already in flight.
func (f *fakeSource) push(id string, msg unchained.TxMessage) {
	f.mu.Lock()
	fn := f.onMessage[id]
	f.mu.Unlock()
	fn(msg)
}

func (f *fakeSource) fail(id string, err error) {
	f.mu.Lock()
	fn := f.onError[id]
	f.mu.Unlock()
	fn(err)
}

var ethMainnet = caip.ChainID{Family: caip.ChainFamilyEthereum, Network: caip.NetworkEthereumMainnet}

func TestManager_StopHaltsMessages(t *testing.T) {
	source := newFakeSource()
	m := NewManager(ethMainnet, source)

	var received []domain.TxEvent
	sub, err := m.Subscribe(context.Background(), Key{Address: "0xabc"},
		func(e domain.TxEvent) { received = append(received, e) },
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	source.push(sub.ID(), unchained.TxMessage{TxID: "0x01"})
	if err := sub.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	source.push(sub.ID(), unchained.TxMessage{TxID: "0x02"})

	if len(received) != 1 || received[0].TxID != "0x01" {
		t.Errorf("expected only the message before Stop, got %+v", received)
	}
	select {
	case <-sub.Done():
	default:
		t.Error("expected Done to be closed after Stop")
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	source := newFakeSource()
	m := NewManager(ethMainnet, source)

	sub, err := m.Subscribe(context.Background(), Key{Address: "0xabc"}, func(domain.TxEvent) {}, func(error) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = sub.Stop()
	_ = sub.Stop()

	if len(source.unsubscribed) != 1 {
		t.Errorf("expected one unsubscribe, got %d", len(source.unsubscribed))
	}
	if m.Active() != 0 {
		t.Errorf("expected no active subscriptions, got %d", m.Active())
	}
}

func TestManager_ResubscribeReplaces(t *testing.T) {
	source := newFakeSource()
	m := NewManager(ethMainnet, source)
	key := Key{Address: "0xabc", Topic: TopicTxs}

	first, err := m.Subscribe(context.Background(), key, func(domain.TxEvent) {}, func(error) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, err := m.Subscribe(context.Background(), key, func(domain.TxEvent) {}, func(error) {})
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}

	if first.ID() == second.ID() {
		t.Fatal("expected a fresh subscription id")
	}
	if len(source.unsubscribed) != 1 || source.unsubscribed[0] != first.ID() {
		t.Errorf("expected first subscription to be unsubscribed, got %v", source.unsubscribed)
	}
	if m.Active() != 1 {
		t.Errorf("expected one active subscription, got %d", m.Active())
	}

	// Stopping the replaced handle must not drop the new one.
	_ = first.Stop()
	if m.Active() != 1 {
		t.Errorf("expected replacement to survive, got %d active", m.Active())
	}
}

func TestManager_DistinctAddressesAreIndependent(t *testing.T) {
	source := newFakeSource()
	m := NewManager(ethMainnet, source)

	a, _ := m.Subscribe(context.Background(), Key{Address: "0xa"}, func(domain.TxEvent) {}, func(error) {})
	_, _ = m.Subscribe(context.Background(), Key{Address: "0xb"}, func(domain.TxEvent) {}, func(error) {})
	if m.Active() != 2 {
		t.Fatalf("expected 2 active subscriptions, got %d", m.Active())
	}

	_ = a.Stop()
	if m.Active() != 1 {
		t.Errorf("expected 1 active subscription, got %d", m.Active())
	}
}

func TestManager_TransportErrorIsNormalized(t *testing.T) {
	source := newFakeSource()
	m := NewManager(ethMainnet, source)

	var got error
	sub, err := m.Subscribe(context.Background(), Key{Address: "0xabc"},
		func(domain.TxEvent) { t.Error("unexpected message") },
		func(err error) { got = err },
	)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	source.fail(sub.ID(), fmt.Errorf("%w: read tcp: connection reset by peer", unchained.ErrConnectionClosed))

	if errs.KindOf(got) != errs.KindProviderUnavailable {
		t.Errorf("expected ProviderUnavailable, got %v", got)
	}
	select {
	case <-sub.Done():
	default:
		t.Error("expected subscription to end after connection loss")
	}
	if len(source.unsubscribed) != 0 {
		t.Errorf("dead connection must not be unsubscribed, got %v", source.unsubscribed)
	}
}

func TestManager_DecodeFailureGoesToOnError(t *testing.T) {
	source := newFakeSource()
	m := NewManager(ethMainnet, source)

	var got error
	sub, _ := m.Subscribe(context.Background(), Key{Address: "0xabc"},
		func(domain.TxEvent) { t.Error("unexpected message") },
		func(err error) { got = err },
	)

	source.push(sub.ID(), unchained.TxMessage{
		TxID:      "0x03",
		Transfers: []unchained.TransferMessage{{AssetID: "eip155:1/erc20:not-an-address"}},
	})

	if errs.KindOf(got) != errs.KindInvalidReference {
		t.Errorf("expected InvalidReference, got %v", got)
	}
}

func TestManager_SubscribeFailure(t *testing.T) {
	source := newFakeSource()
	source.SubscribeErr = errors.New("dial tcp: connection refused")
	m := NewManager(ethMainnet, source)

	if _, err := m.Subscribe(context.Background(), Key{Address: "0xabc"}, func(domain.TxEvent) {}, func(error) {}); err == nil {
		t.Fatal("expected error")
	}
	if m.Active() != 0 {
		t.Errorf("failed subscribe must not stay registered")
	}
}

func TestManager_Close(t *testing.T) {
	source := newFakeSource()
	source.UnsubscribeFn = func(id string) error { return errors.New("websocket: close sent") }
	m := NewManager(ethMainnet, source)

	_, _ = m.Subscribe(context.Background(), Key{Address: "0xa"}, func(domain.TxEvent) {}, func(error) {})
	_, _ = m.Subscribe(context.Background(), Key{Address: "0xb"}, func(domain.TxEvent) {}, func(error) {})

	if err := m.Close(); err == nil {
		t.Error("expected unsubscribe errors to be reported")
	}
	if m.Active() != 0 {
		t.Errorf("expected all subscriptions closed, got %d", m.Active())
	}
}

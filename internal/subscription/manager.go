package subscription

import (
	"context"
	"errors"
	"fmt"
	logger "log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
	"github.com/Soptq/shapeshift-lib/internal/infra/unchained"
	"github.com/Soptq/shapeshift-lib/internal/metrics"
)

// TopicTxs is the only topic indexers push today.
const TopicTxs = "txs"

// Source is the push transport subscriptions are opened on.
type Source interface {
	SubscribeTxs(
		ctx context.Context,
		subscriptionID string,
		data unchained.TxsTopicData,
		onMessage func(unchained.TxMessage),
		onError func(error),
	) error
	UnsubscribeTxs(subscriptionID string, data unchained.TxsTopicData) error
}

// Key identifies a subscription. A Manager holds at most one per Key.
type Key struct {
	Address string
	Topic   string
}

// Manager opens subscriptions for one chain on one Source.
type Manager struct {
	source     Source
	normalizer Normalizer
	label      string
	log        logger.Logger

	mu     sync.Mutex
	active map[Key]*Subscription
}

// NewManager creates a manager for chain.
func NewManager(chain caip.ChainID, source Source) *Manager {
	return &Manager{
		source:     source,
		normalizer: Normalizer{Chain: chain},
		label:      chain.String(),
		log:        *logger.Default().With("chain", chain.String()),
		active:     make(map[Key]*Subscription),
	}
}

// Subscribe opens a subscription for key. An existing subscription for the
// same key is stopped first. Errors passed to onError are *errs.Error.
func (m *Manager) Subscribe(
	ctx context.Context,
	key Key,
	onMessage func(domain.TxEvent),
	onError func(error),
) (*Subscription, error) {
	if key.Topic == "" {
		key.Topic = TopicTxs
	}

	m.mu.Lock()
	previous := m.active[key]
	m.mu.Unlock()
	if previous != nil {
		m.log.Debug("Replacing subscription", "address", key.Address, "topic", key.Topic, "id", previous.id)
		if err := previous.Stop(); err != nil {
			m.log.Warn("Failed to stop replaced subscription", "id", previous.id, "error", err)
		}
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		key:     key,
		data:    unchained.TxsTopicData{Topic: key.Topic, Addresses: []string{key.Address}},
		manager: m,
		done:    make(chan struct{}),
	}

	handleMessage := func(raw unchained.TxMessage) {
		if sub.stopped.Load() {
			return
		}
		event, err := m.normalizer.Normalize(raw)
		if err != nil {
			metrics.SubscriptionErrorsTotal.WithLabelValues(m.label).Inc()
			onError(errs.Normalize("subscribeTxs", errs.KindMalformedIdentifier, err))
			return
		}
		metrics.SubscriptionMessagesTotal.WithLabelValues(m.label).Inc()
		onMessage(event)
	}

	handleError := func(err error) {
		if sub.stopped.Load() {
			return
		}
		metrics.SubscriptionErrorsTotal.WithLabelValues(m.label).Inc()
		onError(errs.Normalize("subscribeTxs", errs.KindProviderUnavailable, err))
		if errors.Is(err, unchained.ErrConnectionClosed) {
			sub.terminate(false)
		}
	}

	m.mu.Lock()
	m.active[key] = sub
	m.mu.Unlock()

	if err := m.source.SubscribeTxs(ctx, sub.id, sub.data, handleMessage, handleError); err != nil {
		m.remove(sub)
		return nil, fmt.Errorf("subscribe %s: %w", key.Address, err)
	}

	metrics.ActiveSubscriptions.WithLabelValues(m.label).Inc()
	m.log.Debug("Subscribed", "address", key.Address, "topic", key.Topic, "id", sub.id)
	return sub, nil
}

// Active returns the number of live subscriptions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Close stops every live subscription.
func (m *Manager) Close() error {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.active))
	for _, s := range m.active {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	var errList []error
	for _, s := range subs {
		if err := s.Stop(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func (m *Manager) remove(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[sub.key] == sub {
		delete(m.active, sub.key)
	}
}

// Subscription is a handle to one live subscription.
type Subscription struct {
	id      string
	key     Key
	data    unchained.TxsTopicData
	manager *Manager

	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// ID returns the identifier the subscription was registered under.
func (s *Subscription) ID() string { return s.id }

// Key returns the (address, topic) pair.
func (s *Subscription) Key() Key { return s.key }

// Done is closed once the subscription has ended, by Stop or by transport
// failure.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Stop unsubscribes. No callback starts after Stop returns. Calling Stop
// more than once is a no-op.
func (s *Subscription) Stop() error {
	return s.terminate(true)
}

func (s *Subscription) terminate(unsubscribe bool) error {
	var err error
	s.once.Do(func() {
		s.stopped.Store(true)
		s.manager.remove(s)
		metrics.ActiveSubscriptions.WithLabelValues(s.manager.label).Dec()
		if unsubscribe {
			if uerr := s.manager.source.UnsubscribeTxs(s.id, s.data); uerr != nil {
				err = errs.Normalize("unsubscribeTxs", errs.KindProviderUnavailable, uerr)
			}
		}
		close(s.done)
	})
	return err
}

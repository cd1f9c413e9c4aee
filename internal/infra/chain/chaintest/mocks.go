// Package chaintest provides hand-written provider and wallet mocks for
// adapter tests.
package chaintest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/Soptq/shapeshift-lib/internal/infra/gasoracle"
	"github.com/Soptq/shapeshift-lib/internal/infra/unchained"
	"github.com/Soptq/shapeshift-lib/internal/wallet"
)

// MockHTTP implements the indexer request/response surface.
type MockHTTP struct {
	GetInfoFunc      func(ctx context.Context) (*unchained.Info, error)
	GetAccountFunc   func(ctx context.Context, pubkey string) (*unchained.Account, error)
	GetTxHistoryFunc func(ctx context.Context, req unchained.TxHistoryRequest) (*unchained.TxHistory, error)
	SendTxFunc       func(ctx context.Context, hex string) (string, error)
	EstimateGasFunc  func(ctx context.Context, req unchained.EstimateGasRequest) (string, error)

	InfoCalls atomic.Int32
	SendCalls atomic.Int32
}

// Network returns a MockHTTP whose GetInfo reports network.
func Network(network string) *MockHTTP {
	return &MockHTTP{GetInfoFunc: func(ctx context.Context) (*unchained.Info, error) {
		return &unchained.Info{Network: network}, nil
	}}
}

func (m *MockHTTP) GetInfo(ctx context.Context) (*unchained.Info, error) {
	m.InfoCalls.Add(1)
	if m.GetInfoFunc != nil {
		return m.GetInfoFunc(ctx)
	}
	return &unchained.Info{Network: "mainnet"}, nil
}

func (m *MockHTTP) GetAccount(ctx context.Context, pubkey string) (*unchained.Account, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, pubkey)
	}
	return &unchained.Account{Pubkey: pubkey, Balance: "0"}, nil
}

func (m *MockHTTP) GetTxHistory(ctx context.Context, req unchained.TxHistoryRequest) (*unchained.TxHistory, error) {
	if m.GetTxHistoryFunc != nil {
		return m.GetTxHistoryFunc(ctx, req)
	}
	return &unchained.TxHistory{}, nil
}

func (m *MockHTTP) SendTx(ctx context.Context, hex string) (string, error) {
	m.SendCalls.Add(1)
	if m.SendTxFunc != nil {
		return m.SendTxFunc(ctx, hex)
	}
	return "", nil
}

func (m *MockHTTP) EstimateGas(ctx context.Context, req unchained.EstimateGasRequest) (string, error) {
	if m.EstimateGasFunc != nil {
		return m.EstimateGasFunc(ctx, req)
	}
	return "21000", nil
}

// MockWS records subscriptions and lets tests push raw messages.
type MockWS struct {
	mu           sync.Mutex
	Filters      map[string]unchained.TxsTopicData
	handlers     map[string]func(unchained.TxMessage)
	Unsubscribed []string
}

func NewMockWS() *MockWS {
	return &MockWS{
		Filters:  make(map[string]unchained.TxsTopicData),
		handlers: make(map[string]func(unchained.TxMessage)),
	}
}

func (m *MockWS) SubscribeTxs(
	_ context.Context,
	id string,
	data unchained.TxsTopicData,
	onMessage func(unchained.TxMessage),
	_ func(error),
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Filters[id] = data
	m.handlers[id] = onMessage
	return nil
}

func (m *MockWS) UnsubscribeTxs(id string, _ unchained.TxsTopicData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unsubscribed = append(m.Unsubscribed, id)
	return nil
}

// Push delivers msg to subscription id, even after it was unsubscribed.
func (m *MockWS) Push(id string, msg unchained.TxMessage) {
	m.mu.Lock()
	fn := m.handlers[id]
	m.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// MockETHWallet implements wallet.ETHWallet.
type MockETHWallet struct {
	ETHGetAddressFunc func(ctx context.Context, msg wallet.ETHGetAddress) (string, error)
	ETHSignTxFunc     func(ctx context.Context, tx wallet.ETHSignTx) (*wallet.ETHSignedTx, error)
}

func (m *MockETHWallet) Label() string { return "mock-eth" }

func (m *MockETHWallet) ETHGetAddress(ctx context.Context, msg wallet.ETHGetAddress) (string, error) {
	if m.ETHGetAddressFunc != nil {
		return m.ETHGetAddressFunc(ctx, msg)
	}
	return "", nil
}

func (m *MockETHWallet) ETHSignTx(ctx context.Context, tx wallet.ETHSignTx) (*wallet.ETHSignedTx, error) {
	if m.ETHSignTxFunc != nil {
		return m.ETHSignTxFunc(ctx, tx)
	}
	return nil, nil
}

// MockETHSender is a MockETHWallet that can also broadcast.
type MockETHSender struct {
	MockETHWallet
	ETHSendTxFunc func(ctx context.Context, tx wallet.ETHSignTx) (*wallet.TxHash, error)
}

func (m *MockETHSender) ETHSendTx(ctx context.Context, tx wallet.ETHSignTx) (*wallet.TxHash, error) {
	if m.ETHSendTxFunc != nil {
		return m.ETHSendTxFunc(ctx, tx)
	}
	return nil, nil
}

// MockCosmosWallet implements wallet.CosmosWallet.
type MockCosmosWallet struct {
	CosmosGetAddressFunc func(ctx context.Context, msg wallet.CosmosGetAddress) (string, error)
	CosmosSignTxFunc     func(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.CosmosSignedTx, error)
}

func (m *MockCosmosWallet) Label() string { return "mock-cosmos" }

func (m *MockCosmosWallet) CosmosGetAddress(ctx context.Context, msg wallet.CosmosGetAddress) (string, error) {
	if m.CosmosGetAddressFunc != nil {
		return m.CosmosGetAddressFunc(ctx, msg)
	}
	return "", nil
}

func (m *MockCosmosWallet) CosmosSignTx(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.CosmosSignedTx, error) {
	if m.CosmosSignTxFunc != nil {
		return m.CosmosSignTxFunc(ctx, tx)
	}
	return nil, nil
}

// MockCosmosSender is a MockCosmosWallet that can also broadcast.
type MockCosmosSender struct {
	MockCosmosWallet
	CosmosSendTxFunc func(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.TxHash, error)
}

func (m *MockCosmosSender) CosmosSendTx(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.TxHash, error) {
	if m.CosmosSendTxFunc != nil {
		return m.CosmosSendTxFunc(ctx, tx)
	}
	return nil, nil
}

// PlainWallet has no signing capability at all.
type PlainWallet struct{}

func (PlainWallet) Label() string { return "plain" }

// MockOracle implements fees.Oracle.
type MockOracle struct {
	QuotesFunc func(ctx context.Context) ([]gasoracle.Quote, error)
}

// Median returns an oracle reporting one MEDIAN quote.
func Median(instant, fast, low int64) *MockOracle {
	return &MockOracle{QuotesFunc: func(ctx context.Context) ([]gasoracle.Quote, error) {
		i, f, l := decimal.NewFromInt(instant), decimal.NewFromInt(fast), decimal.NewFromInt(low)
		return []gasoracle.Quote{{Source: "MEDIAN", Instant: &i, Fast: &f, Low: &l}}, nil
	}}
}

func (m *MockOracle) Quotes(ctx context.Context) ([]gasoracle.Quote, error) {
	if m.QuotesFunc != nil {
		return m.QuotesFunc(ctx)
	}
	return nil, nil
}

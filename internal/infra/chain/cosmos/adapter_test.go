package cosmos

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
	"github.com/Soptq/shapeshift-lib/internal/fees"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain/chaintest"
	"github.com/Soptq/shapeshift-lib/internal/infra/unchained"
	"github.com/Soptq/shapeshift-lib/internal/wallet"
)

const address = "cosmos1qjzmwj7pqr9e2c4k3pshjm4w9vq0g8tvq0gkvh"

func newAdapter(t *testing.T, cfg Config) *Adapter {
	t.Helper()
	if cfg.HTTP == nil {
		cfg.HTTP = chaintest.Network("mainnet")
	}
	if cfg.WS == nil {
		cfg.WS = chaintest.NewMockWS()
	}
	a, err := NewAdapter(cfg)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	return a
}

func TestAdapter_GetChainID(t *testing.T) {
	tests := []struct {
		zone    string
		network string
		want    string
	}{
		{"cosmos", "mainnet", "cosmos:cosmoshub-4"},
		{"cosmos", "testnet", "cosmos:vega-testnet"},
		{"osmosis", "mainnet", "cosmos:osmosis-1"},
		{"osmosis", "testnet", "cosmos:osmo-testnet-1"},
	}

	for _, tt := range tests {
		t.Run(tt.zone+"/"+tt.network, func(t *testing.T) {
			a := newAdapter(t, Config{Name: tt.zone, HTTP: chaintest.Network(tt.network)})
			id, err := a.GetChainID(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, id)
			}
		})
	}
}

func TestAdapter_GetChainID_ConcurrentFirstCalls(t *testing.T) {
	release := make(chan struct{})
	mock := &chaintest.MockHTTP{
		GetInfoFunc: func(ctx context.Context) (*unchained.Info, error) {
			<-release
			return &unchained.Info{Network: "mainnet"}, nil
		},
	}
	a := newAdapter(t, Config{HTTP: mock})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]caip.ChainID, callers)
	started := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			id, err := a.GetChainID(context.Background())
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			results[i] = id
		}(i)
	}
	for i := 0; i < callers; i++ {
		<-started
	}
	close(release)
	wg.Wait()

	// Callers that arrive after the flight finished read the cache, so the
	// provider is asked exactly once either way.
	if mock.InfoCalls.Load() != 1 {
		t.Errorf("expected one provider call, got %d", mock.InfoCalls.Load())
	}
	for i, id := range results {
		if id.String() != "cosmos:cosmoshub-4" {
			t.Errorf("caller %d got %s", i, id)
		}
	}
}

func TestAdapter_GetChainID_UnknownZone(t *testing.T) {
	_, err := NewAdapter(Config{Name: "juno", HTTP: chaintest.Network("mainnet")})
	if errs.KindOf(err) != errs.KindUnsupportedNetwork {
		t.Errorf("expected UnsupportedNetwork, got %v", err)
	}
}

func TestAdapter_GetAccount(t *testing.T) {
	mock := chaintest.Network("mainnet")
	mock.GetAccountFunc = func(ctx context.Context, pubkey string) (*unchained.Account, error) {
		return &unchained.Account{
			Balance:       "1500000",
			Pubkey:        pubkey,
			AccountNumber: "4123",
			Sequence:      "17",
		}, nil
	}
	a := newAdapter(t, Config{HTTP: mock})

	account, err := a.GetAccount(context.Background(), address)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ChainSpecific.Sequence != "17" || account.ChainSpecific.AccountNumber != "4123" {
		t.Errorf("unexpected chain specific: %+v", account.ChainSpecific)
	}
	if account.AssetID.String() != "cosmos:cosmoshub-4/slip44:118" {
		t.Errorf("unexpected asset id %s", account.AssetID)
	}
}

func TestAdapter_GetAccount_NotFound(t *testing.T) {
	mock := chaintest.Network("mainnet")
	mock.GetAccountFunc = func(ctx context.Context, pubkey string) (*unchained.Account, error) {
		return nil, unchained.ErrAccountNotFound
	}
	a := newAdapter(t, Config{HTTP: mock})

	_, err := a.GetAccount(context.Background(), address)
	if errs.KindOf(err) != errs.KindAccountNotFound {
		t.Errorf("expected AccountNotFound, got %v", err)
	}
}

func TestAdapter_GetTxHistory(t *testing.T) {
	mock := chaintest.Network("mainnet")
	mock.GetTxHistoryFunc = func(ctx context.Context, req unchained.TxHistoryRequest) (*unchained.TxHistory, error) {
		return &unchained.TxHistory{Page: 1, TotalPages: 1, Transactions: []unchained.Tx{{TxID: "B"}, {TxID: "A"}}}, nil
	}
	a := newAdapter(t, Config{HTTP: mock})

	history, err := a.GetTxHistory(context.Background(), chain.TxHistoryInput{Pubkey: address})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history.Transactions[0].TxID != "B" || history.Transactions[1].TxID != "A" {
		t.Errorf("expected provider order, got %+v", history.Transactions)
	}
	if history.Transactions[0].Symbol != "ATOM" {
		t.Errorf("expected ATOM, got %s", history.Transactions[0].Symbol)
	}
}

func TestAdapter_GetFeeData(t *testing.T) {
	a := newAdapter(t, Config{Fees: fees.NewPipeline(chaintest.Median(3, 2, 1), ""), GasLimit: "100000"})

	estimate, err := a.GetFeeData(context.Background(), chain.FeeDataInput{From: address, To: address, Value: "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if estimate.Slow.TxFee != "100000" || estimate.Average.TxFee != "200000" || estimate.Fast.TxFee != "300000" {
		t.Errorf("unexpected fees: %+v", estimate)
	}
}

func TestAdapter_GetFeeData_SendMax(t *testing.T) {
	mock := chaintest.Network("mainnet")
	mock.GetAccountFunc = func(ctx context.Context, pubkey string) (*unchained.Account, error) {
		return &unchained.Account{Balance: "1000000", Pubkey: pubkey}, nil
	}
	a := newAdapter(t, Config{HTTP: mock, Fees: fees.NewPipeline(chaintest.Median(3, 2, 1), ""), GasLimit: "100000"})

	estimate, err := a.GetFeeData(context.Background(), chain.FeeDataInput{From: address, To: address, SendMax: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if estimate.Average.ChainSpecific.SendMaxValue != "800000" {
		t.Errorf("expected 800000, got %s", estimate.Average.ChainSpecific.SendMaxValue)
	}
}

func TestAdapter_GetFeeData_SendMaxUnknownAccount(t *testing.T) {
	mock := chaintest.Network("mainnet")
	mock.GetAccountFunc = func(ctx context.Context, pubkey string) (*unchained.Account, error) {
		return nil, unchained.ErrAccountNotFound
	}
	a := newAdapter(t, Config{HTTP: mock, Fees: fees.NewPipeline(chaintest.Median(3, 2, 1), "")})

	_, err := a.GetFeeData(context.Background(), chain.FeeDataInput{From: address, To: address, SendMax: true})

	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errs.Error, got %v", err)
	}
	if e.Kind != errs.KindAccountNotFound || e.Op != "getFeeData" {
		t.Errorf("expected AccountNotFound from getFeeData, got %s from %s", e.Kind, e.Op)
	}
}

func TestAdapter_GetFeeData_TokenRejected(t *testing.T) {
	a := newAdapter(t, Config{Fees: fees.NewPipeline(chaintest.Median(3, 2, 1), "")})

	_, err := a.GetFeeData(context.Background(), chain.FeeDataInput{
		From: address, To: address, ContractAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	})
	if errs.KindOf(err) != errs.KindInvalidReference {
		t.Errorf("expected InvalidReference, got %v", err)
	}
}

func TestAdapter_GetAddress(t *testing.T) {
	w := &chaintest.MockCosmosWallet{
		CosmosGetAddressFunc: func(ctx context.Context, msg wallet.CosmosGetAddress) (string, error) {
			if msg.Path.String() != "m/44'/118'/0'/0/0" {
				t.Errorf("unexpected path %s", msg.Path)
			}
			if !msg.ShowDisplay {
				t.Error("expected ShowDisplay to be forwarded")
			}
			return address, nil
		},
	}
	a := newAdapter(t, Config{})

	got, err := a.GetAddress(context.Background(), chain.GetAddressInput{Wallet: w, ShowOnDevice: true})
	if err != nil || got != address {
		t.Errorf("expected %s, got %q, %v", address, got, err)
	}

	_, err = a.GetAddress(context.Background(), chain.GetAddressInput{Wallet: chaintest.PlainWallet{}})
	if errs.KindOf(err) != errs.KindWalletUnavailable {
		t.Errorf("expected WalletUnavailable, got %v", err)
	}
}

func TestAdapter_SignTransaction(t *testing.T) {
	w := &chaintest.MockCosmosWallet{
		CosmosSignTxFunc: func(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.CosmosSignedTx, error) {
			if tx.Sequence != "17" {
				t.Errorf("unexpected tx: %+v", tx)
			}
			return &wallet.CosmosSignedTx{
				Msg:        json.RawMessage(`[]`),
				Fee:        json.RawMessage(`{}`),
				Signatures: []wallet.CosmosSignature{{PubKey: "pk", Signature: "sig"}},
			}, nil
		},
	}
	a := newAdapter(t, Config{})

	signed, err := a.SignTransaction(context.Background(), chain.SignTxInput{Wallet: w, Tx: wallet.CosmosSignTx{Sequence: "17"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded wallet.CosmosSignedTx
	if err := json.Unmarshal([]byte(signed), &decoded); err != nil {
		t.Fatalf("signed tx is not JSON: %v", err)
	}
	if len(decoded.Signatures) != 1 || decoded.Signatures[0].Signature != "sig" {
		t.Errorf("unexpected signed tx: %s", signed)
	}
}

func TestAdapter_SignTransaction_Errors(t *testing.T) {
	a := newAdapter(t, Config{})

	empty := &chaintest.MockCosmosWallet{
		CosmosSignTxFunc: func(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.CosmosSignedTx, error) {
			return &wallet.CosmosSignedTx{}, nil
		},
	}
	if _, err := a.SignTransaction(context.Background(), chain.SignTxInput{Wallet: empty, Tx: wallet.CosmosSignTx{}}); errs.KindOf(err) != errs.KindSigningFailed {
		t.Errorf("expected SigningFailed, got %v", err)
	}

	rejecting := &chaintest.MockCosmosWallet{
		CosmosSignTxFunc: func(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.CosmosSignedTx, error) {
			return nil, errors.New("Action cancelled")
		},
	}
	if _, err := a.SignTransaction(context.Background(), chain.SignTxInput{Wallet: rejecting, Tx: &wallet.CosmosSignTx{}}); errs.KindOf(err) != errs.KindUserRejected {
		t.Errorf("expected UserRejected, got %v", err)
	}
}

func TestAdapter_SignAndBroadcastTransaction(t *testing.T) {
	a := newAdapter(t, Config{})
	sender := &chaintest.MockCosmosSender{
		CosmosSendTxFunc: func(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.TxHash, error) {
			return &wallet.TxHash{Hash: "ABCDEF"}, nil
		},
	}

	hash, err := a.SignAndBroadcastTransaction(context.Background(), chain.SignTxInput{Wallet: sender, Tx: wallet.CosmosSignTx{}})
	if err != nil || hash != "ABCDEF" {
		t.Errorf("expected ABCDEF, got %q, %v", hash, err)
	}

	sender.CosmosSendTxFunc = func(ctx context.Context, tx wallet.CosmosSignTx) (*wallet.TxHash, error) {
		return nil, nil
	}
	if _, err := a.SignAndBroadcastTransaction(context.Background(), chain.SignTxInput{Wallet: sender, Tx: wallet.CosmosSignTx{}}); errs.KindOf(err) != errs.KindBroadcastFailed {
		t.Errorf("expected BroadcastFailed, got %v", err)
	}
}

func TestAdapter_BroadcastTransaction(t *testing.T) {
	mock := chaintest.Network("mainnet")
	mock.SendTxFunc = func(ctx context.Context, hex string) (string, error) {
		return "TXID", nil
	}
	a := newAdapter(t, Config{HTTP: mock})

	txid, err := a.BroadcastTransaction(context.Background(), "0a0b")
	if err != nil || txid != "TXID" {
		t.Errorf("expected TXID, got %q, %v", txid, err)
	}

	mock.SendTxFunc = func(ctx context.Context, hex string) (string, error) { return "", nil }
	if _, err := a.BroadcastTransaction(context.Background(), "0a0b"); errs.KindOf(err) != errs.KindBroadcastFailed {
		t.Errorf("expected BroadcastFailed, got %v", err)
	}
}

func TestAdapter_SubscribeTxs(t *testing.T) {
	ws := chaintest.NewMockWS()
	a := newAdapter(t, Config{WS: ws})

	var events []domain.TxEvent
	sub, err := a.SubscribeTxs(context.Background(), chain.SubscribeTxsInput{Address: address},
		func(e domain.TxEvent) { events = append(events, e) },
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ws.Push(sub.ID(), unchained.TxMessage{
		TxID:      "T1",
		ChainID:   "cosmos:cosmoshub-4",
		Status:    "pending",
		Transfers: []unchained.TransferMessage{{AssetID: "cosmos:cosmoshub-4/slip44:118", Type: "receive", Value: "10"}},
	})
	ws.Push(sub.ID(), unchained.TxMessage{TxID: "T1", ChainID: "cosmos:cosmoshub-4", Status: "confirmed", Confirmations: 1})

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Status != domain.TxStatusPending || events[1].Status != domain.TxStatusConfirmed {
		t.Errorf("unexpected statuses: %s, %s", events[0].Status, events[1].Status)
	}
	if events[0].Transfers[0].Type != domain.TransferTypeReceive {
		t.Errorf("unexpected transfer type %s", events[0].Transfers[0].Type)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	ws.Push(sub.ID(), unchained.TxMessage{TxID: "T2"})
	if len(events) != 2 {
		t.Errorf("expected no events after Close, got %d", len(events))
	}
}

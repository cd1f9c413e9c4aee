// Package cosmos implements chain.Adapter for Cosmos-SDK networks.
package cosmos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
	"github.com/Soptq/shapeshift-lib/internal/fees"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain"
	"github.com/Soptq/shapeshift-lib/internal/subscription"
	"github.com/Soptq/shapeshift-lib/internal/wallet"
)

// DefaultGasLimit covers a single bank send.
const DefaultGasLimit = "250000"

// Networks maps indexer network names to Cosmos-SDK chain ids, per zone.
var Networks = map[string]map[string]caip.Network{
	"cosmos": {
		"mainnet": caip.NetworkCosmosHub4,
		"testnet": caip.NetworkCosmosVega,
	},
	"osmosis": {
		"mainnet": caip.NetworkOsmosisMainnet,
		"testnet": caip.NetworkOsmosisTestnet,
	},
}

// Config wires an Adapter to its providers.
type Config struct {
	// Name selects the zone in Networks, "cosmos" when empty.
	Name     string
	HTTP     chain.HTTPProvider
	WS       subscription.Source
	Fees     *fees.Pipeline
	GasLimit string
	BIP44    *chain.BIP44Params
}

// Adapter serves one Cosmos-SDK zone.
type Adapter struct {
	base     *chain.Base
	fees     *fees.Pipeline
	gasLimit string
}

var _ chain.Adapter = (*Adapter)(nil)

// NewAdapter creates a Cosmos-SDK adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	name := cfg.Name
	if name == "" {
		name = "cosmos"
	}
	networks, ok := Networks[name]
	if !ok {
		return nil, errs.New(errs.KindUnsupportedNetwork, "unknown cosmos zone %q", name)
	}

	base, err := chain.NewBase(chain.BaseConfig{
		Family:   caip.ChainFamilyCosmos,
		Name:     name,
		Networks: networks,
		BIP44:    cfg.BIP44,
		HTTP:     cfg.HTTP,
		WS:       cfg.WS,
	})
	if err != nil {
		return nil, err
	}

	gasLimit := cfg.GasLimit
	if gasLimit == "" {
		gasLimit = DefaultGasLimit
	}

	return &Adapter{base: base, fees: cfg.Fees, gasLimit: gasLimit}, nil
}

func (a *Adapter) Family() caip.ChainFamily {
	return caip.ChainFamilyCosmos
}

func (a *Adapter) GetChainID(ctx context.Context) (_ caip.ChainID, err error) {
	defer a.base.Finish(chain.OpGetChainID, time.Now(), &err)
	return a.base.ChainID(ctx)
}

func (a *Adapter) GetAccount(ctx context.Context, pubkey string) (_ *domain.Account, err error) {
	defer a.base.Finish(chain.OpGetAccount, time.Now(), &err)
	return a.getAccount(ctx, pubkey)
}

// getAccount is GetAccount without the error funnel, for use inside other
// operations.
func (a *Adapter) getAccount(ctx context.Context, pubkey string) (*domain.Account, error) {
	account, raw, err := a.base.FetchAccount(ctx, pubkey)
	if err != nil {
		return nil, err
	}
	account.ChainSpecific.AccountNumber = raw.AccountNumber
	account.ChainSpecific.Sequence = raw.Sequence
	return account, nil
}

func (a *Adapter) GetTxHistory(ctx context.Context, input chain.TxHistoryInput) (_ *domain.TxHistory, err error) {
	defer a.base.Finish(chain.OpGetTxHistory, time.Now(), &err)
	return a.base.FetchTxHistory(ctx, input)
}

// GetFeeData prices a bank send at the configured gas limit. Fees are paid
// in the zone's native denom, so send-max subtracts each tier's fee from
// the balance.
func (a *Adapter) GetFeeData(ctx context.Context, input chain.FeeDataInput) (_ *domain.FeeEstimate, err error) {
	defer a.base.Finish(chain.OpGetFeeData, time.Now(), &err)

	if input.ContractAddress != "" {
		chainID, err := a.base.ChainID(ctx)
		if err != nil {
			return nil, err
		}
		// Cosmos zones define no token namespace; the codec rejects it.
		if _, err := caip.TokenAssetID(chainID, input.ContractAddress); err != nil {
			return nil, err
		}
	}
	if a.fees == nil {
		return nil, errs.New(errs.KindFeeDataUnavailable, "no gas oracle configured")
	}

	tiers, err := a.fees.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var nativeMax *decimal.Decimal
	if input.SendMax {
		account, err := a.getAccount(ctx, input.From)
		if err != nil {
			return nil, err
		}
		balance, err := fees.ParseAmount(account.Balance)
		if err != nil {
			return nil, errs.New(errs.KindFeeDataUnavailable, "account balance: %v", err)
		}
		nativeMax = &balance
	}

	return tiers.Estimate(a.gasLimit, nativeMax)
}

func (a *Adapter) GetAddress(ctx context.Context, input chain.GetAddressInput) (_ string, err error) {
	defer a.base.Finish(chain.OpGetAddress, time.Now(), &err)
	return a.getAddress(ctx, input)
}

func (a *Adapter) getAddress(ctx context.Context, input chain.GetAddressInput) (string, error) {
	w, ok := input.Wallet.(wallet.CosmosWallet)
	if !ok {
		return "", chain.WalletUnavailable(input.Wallet, "cosmos addresses")
	}

	path, err := a.base.DerivePath(input.BIP44Params)
	if err != nil {
		return "", err
	}

	address, err := w.CosmosGetAddress(ctx, wallet.CosmosGetAddress{Path: path, ShowDisplay: input.ShowOnDevice})
	if err != nil {
		return "", err
	}
	if address == "" {
		return "", errs.New(errs.KindWalletUnavailable, "wallet returned no address")
	}
	return address, nil
}

// SignTransaction returns the signed StdTx as JSON.
func (a *Adapter) SignTransaction(ctx context.Context, input chain.SignTxInput) (_ string, err error) {
	defer a.base.Finish(chain.OpSignTransaction, time.Now(), &err)

	w, ok := input.Wallet.(wallet.CosmosWallet)
	if !ok {
		return "", chain.WalletUnavailable(input.Wallet, "cosmos signing")
	}
	tx, err := signTx(input.Tx)
	if err != nil {
		return "", err
	}

	signed, err := w.CosmosSignTx(ctx, tx)
	if err != nil {
		return "", err
	}
	if signed == nil || len(signed.Signatures) == 0 {
		return chain.SignedTx("")
	}

	serialized, err := json.Marshal(signed)
	if err != nil {
		return "", fmt.Errorf("encode signed tx: %w", err)
	}
	return chain.SignedTx(string(serialized))
}

func (a *Adapter) SignAndBroadcastTransaction(ctx context.Context, input chain.SignTxInput) (_ string, err error) {
	defer a.base.Finish(chain.OpSignAndBroadcastTransaction, time.Now(), &err)

	sender, ok := input.Wallet.(wallet.CosmosSender)
	if !ok {
		return "", chain.WalletUnavailable(input.Wallet, "cosmos sign and send")
	}
	tx, err := signTx(input.Tx)
	if err != nil {
		return "", err
	}

	hash, err := sender.CosmosSendTx(ctx, tx)
	if err != nil {
		return "", err
	}
	if hash == nil {
		return chain.TxHash("")
	}
	return chain.TxHash(hash.Hash)
}

func (a *Adapter) BroadcastTransaction(ctx context.Context, rawHex string) (_ string, err error) {
	defer a.base.Finish(chain.OpBroadcastTransaction, time.Now(), &err)
	return a.base.Broadcast(ctx, rawHex)
}

func (a *Adapter) SubscribeTxs(
	ctx context.Context,
	input chain.SubscribeTxsInput,
	onMessage func(domain.TxEvent),
	onError func(error),
) (_ *subscription.Subscription, err error) {
	defer a.base.Finish(chain.OpSubscribeTxs, time.Now(), &err)

	address := input.Address
	if address == "" {
		address, err = a.getAddress(ctx, chain.GetAddressInput{Wallet: input.Wallet, BIP44Params: input.BIP44Params})
		if err != nil {
			return nil, err
		}
	}
	return a.base.Subscribe(ctx, address, input.Topic, onMessage, onError)
}

// Close stops every subscription opened through the adapter.
func (a *Adapter) Close() error {
	return a.base.Close()
}

func signTx(tx any) (wallet.CosmosSignTx, error) {
	switch t := tx.(type) {
	case wallet.CosmosSignTx:
		return t, nil
	case *wallet.CosmosSignTx:
		if t != nil {
			return *t, nil
		}
	}
	return wallet.CosmosSignTx{}, chain.UnexpectedTx(tx, "wallet.CosmosSignTx")
}

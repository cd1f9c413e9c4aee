// Package ethereum implements chain.Adapter for EVM networks.
package ethereum

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
	"github.com/Soptq/shapeshift-lib/internal/fees"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain"
	"github.com/Soptq/shapeshift-lib/internal/infra/unchained"
	"github.com/Soptq/shapeshift-lib/internal/subscription"
	"github.com/Soptq/shapeshift-lib/internal/wallet"
)

// Networks maps indexer network names to EVM chain ids.
var Networks = map[string]caip.Network{
	"mainnet": caip.NetworkEthereumMainnet,
	"ropsten": caip.NetworkEthereumRopsten,
	"rinkeby": caip.NetworkEthereumRinkeby,
}

// Config wires an Adapter to its providers.
type Config struct {
	Name  string
	HTTP  chain.HTTPProvider
	WS    subscription.Source
	Fees  *fees.Pipeline
	BIP44 *chain.BIP44Params
}

// Adapter serves one EVM network.
type Adapter struct {
	base *chain.Base
	fees *fees.Pipeline
}

var _ chain.Adapter = (*Adapter)(nil)

// NewAdapter creates an EVM adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	name := cfg.Name
	if name == "" {
		name = "ethereum"
	}

	base, err := chain.NewBase(chain.BaseConfig{
		Family:   caip.ChainFamilyEthereum,
		Name:     name,
		Networks: Networks,
		BIP44:    cfg.BIP44,
		HTTP:     cfg.HTTP,
		WS:       cfg.WS,
	})
	if err != nil {
		return nil, err
	}

	return &Adapter{base: base, fees: cfg.Fees}, nil
}

func (a *Adapter) Family() caip.ChainFamily {
	return caip.ChainFamilyEthereum
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

	account.ChainSpecific.Nonce = raw.Nonce
	for _, t := range raw.Tokens {
		asset, err := caip.TokenAssetID(account.ChainID, t.Contract)
		if err != nil {
			a.base.Logger().Warn("Skipping token with invalid contract", "contract", t.Contract, "error", err)
			continue
		}
		account.ChainSpecific.Tokens = append(account.ChainSpecific.Tokens, domain.TokenBalance{
			AssetID:  asset,
			Balance:  t.Balance,
			Name:     t.Name,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
		})
	}
	return account, nil
}

func (a *Adapter) GetTxHistory(ctx context.Context, input chain.TxHistoryInput) (_ *domain.TxHistory, err error) {
	defer a.base.Finish(chain.OpGetTxHistory, time.Now(), &err)
	return a.base.FetchTxHistory(ctx, input)
}

// GetFeeData prices a transfer at the oracle's instant, fast and low gas
// prices.
//
// Send-max of a token transfers the whole token balance; the fee is paid in
// ETH and not subtracted. Send-max of ETH estimates gas for the full balance
// and reports, per tier, the balance left after that tier's fee.
func (a *Adapter) GetFeeData(ctx context.Context, input chain.FeeDataInput) (_ *domain.FeeEstimate, err error) {
	defer a.base.Finish(chain.OpGetFeeData, time.Now(), &err)

	if err := a.base.Require(chain.CapabilityEstimateFee); err != nil {
		return nil, err
	}
	if a.fees == nil {
		return nil, errs.New(errs.KindFeeDataUnavailable, "no gas oracle configured")
	}

	tiers, err := a.fees.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	isToken := input.ContractAddress != ""
	value := input.Value
	var nativeMax *decimal.Decimal

	if input.SendMax {
		account, err := a.getAccount(ctx, input.From)
		if err != nil {
			return nil, err
		}

		if isToken {
			asset, err := caip.TokenAssetID(account.ChainID, input.ContractAddress)
			if err != nil {
				return nil, err
			}
			balance, ok := account.TokenBalance(asset)
			if !ok || balance == "" {
				return nil, errs.New(errs.KindFeeDataUnavailable, "no balance for token %s", asset)
			}
			value = balance
		} else {
			balance, err := fees.ParseAmount(account.Balance)
			if err != nil {
				return nil, errs.New(errs.KindFeeDataUnavailable, "account balance: %v", err)
			}
			value = balance.String()
			nativeMax = &balance
		}
	}

	data := input.ContractData
	if data == "" && isToken {
		if data, err = TransferData(input.To, value); err != nil {
			return nil, err
		}
	}

	req := unchained.EstimateGasRequest{From: input.From, To: input.To, Value: value, Data: data}
	if isToken {
		req.To = input.ContractAddress
		req.Value = "0"
	}

	gasLimit, err := a.base.HTTP().EstimateGas(ctx, req)
	if err != nil {
		return nil, errs.New(errs.KindGasEstimationFailed, "%v", err)
	}

	return tiers.Estimate(gasLimit, nativeMax)
}

func (a *Adapter) GetAddress(ctx context.Context, input chain.GetAddressInput) (_ string, err error) {
	defer a.base.Finish(chain.OpGetAddress, time.Now(), &err)
	return a.getAddress(ctx, input)
}

func (a *Adapter) getAddress(ctx context.Context, input chain.GetAddressInput) (string, error) {
	w, ok := input.Wallet.(wallet.ETHWallet)
	if !ok {
		return "", chain.WalletUnavailable(input.Wallet, "ethereum addresses")
	}

	path, err := a.base.DerivePath(input.BIP44Params)
	if err != nil {
		return "", err
	}

	address, err := w.ETHGetAddress(ctx, wallet.ETHGetAddress{Path: path, ShowDisplay: input.ShowOnDevice})
	if err != nil {
		return "", err
	}
	if address == "" {
		return "", errs.New(errs.KindWalletUnavailable, "wallet returned no address")
	}
	return address, nil
}

func (a *Adapter) SignTransaction(ctx context.Context, input chain.SignTxInput) (_ string, err error) {
	defer a.base.Finish(chain.OpSignTransaction, time.Now(), &err)

	w, ok := input.Wallet.(wallet.ETHWallet)
	if !ok {
		return "", chain.WalletUnavailable(input.Wallet, "ethereum signing")
	}
	tx, err := signTx(input.Tx)
	if err != nil {
		return "", err
	}

	signed, err := w.ETHSignTx(ctx, tx)
	if err != nil {
		return "", err
	}
	if signed == nil {
		return chain.SignedTx("")
	}
	return chain.SignedTx(signed.Serialized)
}

func (a *Adapter) SignAndBroadcastTransaction(ctx context.Context, input chain.SignTxInput) (_ string, err error) {
	defer a.base.Finish(chain.OpSignAndBroadcastTransaction, time.Now(), &err)

	sender, ok := input.Wallet.(wallet.ETHSender)
	if !ok {
		return "", chain.WalletUnavailable(input.Wallet, "ethereum sign and send")
	}
	tx, err := signTx(input.Tx)
	if err != nil {
		return "", err
	}

	hash, err := sender.ETHSendTx(ctx, tx)
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

func signTx(tx any) (wallet.ETHSignTx, error) {
	switch t := tx.(type) {
	case wallet.ETHSignTx:
		return t, nil
	case *wallet.ETHSignTx:
		if t != nil {
			return *t, nil
		}
	}
	return wallet.ETHSignTx{}, chain.UnexpectedTx(tx, "wallet.ETHSignTx")
}

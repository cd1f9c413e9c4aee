package chain

import (
	"context"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/subscription"
	"github.com/Soptq/shapeshift-lib/internal/wallet"
)

// Adapter is the contract every chain family implements. Callers never
// branch on family: account, fee and transaction shapes are uniform and
// family specific data travels in typed ChainSpecific fields.
//
// Every error returned is an *errs.Error.
type Adapter interface {
	// Family returns the CAIP2 namespace the adapter serves
	Family() caip.ChainFamily

	// GetChainID resolves the provider's network once and caches it
	GetChainID(ctx context.Context) (caip.ChainID, error)

	// GetAccount returns a fresh balance snapshot, or AccountNotFound
	GetAccount(ctx context.Context, pubkey string) (*domain.Account, error)

	// GetTxHistory returns one page of history in provider order
	GetTxHistory(ctx context.Context, input TxHistoryInput) (*domain.TxHistory, error)

	// GetFeeData returns slow, average and fast fee tiers
	GetFeeData(ctx context.Context, input FeeDataInput) (*domain.FeeEstimate, error)

	// GetAddress asks the wallet for the address at a BIP44 path
	GetAddress(ctx context.Context, input GetAddressInput) (string, error)

	// SignTransaction returns the serialized signed transaction
	SignTransaction(ctx context.Context, input SignTxInput) (string, error)

	// SignAndBroadcastTransaction lets the wallet sign and send, returning the txid
	SignAndBroadcastTransaction(ctx context.Context, input SignTxInput) (string, error)

	// BroadcastTransaction submits a signed transaction. Never retried.
	BroadcastTransaction(ctx context.Context, rawHex string) (string, error)

	// SubscribeTxs streams normalized transaction events for an address
	SubscribeTxs(
		ctx context.Context,
		input SubscribeTxsInput,
		onMessage func(domain.TxEvent),
		onError func(error),
	) (*subscription.Subscription, error)
}

// TxHistoryInput selects one page of history.
type TxHistoryInput struct {
	Pubkey   string
	Page     int
	PageSize int
}

// FeeDataInput describes the transfer to price.
type FeeDataInput struct {
	From  string
	To    string
	Value string

	// ContractAddress marks a token transfer of that contract.
	ContractAddress string
	// ContractData overrides the generated call data.
	ContractData string

	// SendMax transfers the whole balance of the asset being sent.
	SendMax bool
}

// GetAddressInput selects the derivation path to ask the wallet about.
// A nil BIP44Params uses the adapter's default.
type GetAddressInput struct {
	Wallet       wallet.Wallet
	BIP44Params  *BIP44Params
	ShowOnDevice bool
}

// SignTxInput carries an unsigned transaction of the adapter's family,
// wallet.ETHSignTx or wallet.CosmosSignTx.
type SignTxInput struct {
	Wallet wallet.Wallet
	Tx     any
}

// SubscribeTxsInput selects the address to watch. When Address is empty it
// is derived from Wallet at BIP44Params.
type SubscribeTxsInput struct {
	Address     string
	Wallet      wallet.Wallet
	BIP44Params *BIP44Params
	Topic       string
}

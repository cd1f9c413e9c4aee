// Package wallet declares the signing capabilities adapters consume.
//
// A concrete wallet implements Wallet plus whichever capability interfaces it
// supports. Adapters type-assert for the capability they need and report
// WalletUnavailable when it is missing.
package wallet

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/accounts"
)

// Wallet is the minimal surface every wallet exposes.
type Wallet interface {
	Label() string
}

// TxHash is returned by wallets that broadcast on their own.
type TxHash struct {
	Hash string `json:"hash"`
}

// ETHGetAddress asks for the address at Path.
type ETHGetAddress struct {
	Path        accounts.DerivationPath
	ShowDisplay bool
}

// ETHSignTx is an unsigned EVM transaction. Amounts are decimal strings in wei.
type ETHSignTx struct {
	Path     accounts.DerivationPath `json:"addressNList"`
	ChainID  int64                   `json:"chainId"`
	Nonce    string                  `json:"nonce"`
	GasLimit string                  `json:"gasLimit"`
	GasPrice string                  `json:"gasPrice"`
	To       string                  `json:"to"`
	Value    string                  `json:"value"`
	Data     string                  `json:"data"`
}

// ETHSignedTx carries the serialized signed transaction.
type ETHSignedTx struct {
	V          int64  `json:"v"`
	R          string `json:"r"`
	S          string `json:"s"`
	Serialized string `json:"serialized"`
}

// ETHWallet derives EVM addresses and signs EVM transactions.
type ETHWallet interface {
	Wallet
	ETHGetAddress(ctx context.Context, msg ETHGetAddress) (string, error)
	ETHSignTx(ctx context.Context, tx ETHSignTx) (*ETHSignedTx, error)
}

// ETHSender signs and broadcasts in one step.
type ETHSender interface {
	ETHSendTx(ctx context.Context, tx ETHSignTx) (*TxHash, error)
}

// CosmosGetAddress asks for the address at Path.
type CosmosGetAddress struct {
	Path        accounts.DerivationPath
	ShowDisplay bool
}

// CosmosSignTx is an unsigned Cosmos-SDK StdTx with its signing context.
type CosmosSignTx struct {
	Path          accounts.DerivationPath `json:"addressNList"`
	ChainID       string                  `json:"chainId"`
	AccountNumber string                  `json:"accountNumber"`
	Sequence      string                  `json:"sequence"`
	Tx            json.RawMessage         `json:"tx"`
}

// CosmosSignature is one signature over a StdTx.
type CosmosSignature struct {
	PubKey    string `json:"pub_key"`
	Signature string `json:"signature"`
}

// CosmosSignedTx is a StdTx with signatures attached.
type CosmosSignedTx struct {
	Msg        json.RawMessage   `json:"msg"`
	Fee        json.RawMessage   `json:"fee"`
	Memo       string            `json:"memo"`
	Signatures []CosmosSignature `json:"signatures"`
}

// CosmosWallet derives Cosmos-SDK addresses and signs StdTxs.
type CosmosWallet interface {
	Wallet
	CosmosGetAddress(ctx context.Context, msg CosmosGetAddress) (string, error)
	CosmosSignTx(ctx context.Context, tx CosmosSignTx) (*CosmosSignedTx, error)
}

// CosmosSender signs and broadcasts in one step.
type CosmosSender interface {
	CosmosSendTx(ctx context.Context, tx CosmosSignTx) (*TxHash, error)
}

package domain

import "github.com/Soptq/shapeshift-lib/internal/core/caip"

// Account is a point-in-time balance snapshot. It is never cached.
type Account struct {
	Balance       string          `json:"balance"`
	ChainID       caip.ChainID    `json:"chainId"`
	AssetID       caip.AssetID    `json:"assetId"`
	Pubkey        string          `json:"pubkey"`
	ChainSpecific AccountSpecific `json:"chainSpecific"`
}

// AccountSpecific carries the fields only some chain families report.
type AccountSpecific struct {
	// EVM
	Nonce  int64          `json:"nonce,omitempty"`
	Tokens []TokenBalance `json:"tokens,omitempty"`

	// Cosmos-SDK
	AccountNumber string `json:"accountNumber,omitempty"`
	Sequence      string `json:"sequence,omitempty"`
}

// TokenBalance is a non-native asset held by an account.
type TokenBalance struct {
	AssetID  caip.AssetID `json:"assetId"`
	Balance  string       `json:"balance"`
	Name     string       `json:"name"`
	Symbol   string       `json:"symbol"`
	Decimals int          `json:"decimals"`
}

// TokenBalance returns the balance held for asset, if any.
func (a *Account) TokenBalance(asset caip.AssetID) (string, bool) {
	for _, t := range a.ChainSpecific.Tokens {
		if t.AssetID == asset {
			return t.Balance, true
		}
	}
	return "", false
}

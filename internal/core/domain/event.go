package domain

import "github.com/Soptq/shapeshift-lib/internal/core/caip"

// TxEvent is a normalized transaction push message. A new value is produced
// for every raw message, including confirmation count updates.
type TxEvent struct {
	Address       string        `json:"address"`
	BlockHash     string        `json:"blockHash"`
	BlockHeight   int64         `json:"blockHeight"`
	BlockTime     int64         `json:"blockTime"`
	ChainID       caip.ChainID  `json:"chainId"`
	Confirmations int64         `json:"confirmations"`
	Fee           string        `json:"fee"`
	Status        TxStatus      `json:"status"`
	TradeDetails  *TradeDetails `json:"tradeDetails,omitempty"`
	Transfers     []Transfer    `json:"transfers"`
	TxID          string        `json:"txid"`
}

// TradeDetails marks a transaction as a DEX trade or refund.
type TradeDetails struct {
	DexName string    `json:"dexName"`
	Type    TradeType `json:"type"`
	Memo    string    `json:"memo,omitempty"`
}

type TradeType string

const (
	TradeTypeTrade  TradeType = "trade"
	TradeTypeRefund TradeType = "refund"
)

// Transfer is one value movement inside a transaction.
type Transfer struct {
	AssetID caip.AssetID `json:"assetId"`
	From    string       `json:"from"`
	To      string       `json:"to"`
	Type    TransferType `json:"type"`
	Value   string       `json:"value"`
}

type TransferType string

const (
	TransferTypeSend     TransferType = "send"
	TransferTypeReceive  TransferType = "receive"
	TransferTypeContract TransferType = "contract"
)

// ParseTransferType maps provider transfer types onto TransferType.
// Anything that is neither a send nor a receive is a contract interaction.
func ParseTransferType(s string) TransferType {
	switch s {
	case "send", "Send":
		return TransferTypeSend
	case "receive", "Receive":
		return TransferTypeReceive
	default:
		return TransferTypeContract
	}
}

package domain

import "github.com/Soptq/shapeshift-lib/internal/core/caip"

// Transaction is one entry of an account's transaction history.
type Transaction struct {
	TxID          string       `json:"txid"`
	ChainID       caip.ChainID `json:"chainId"`
	AssetID       caip.AssetID `json:"assetId"`
	Symbol        string       `json:"symbol"`
	BlockHash     string       `json:"blockHash"`
	BlockHeight   int64        `json:"blockHeight"`
	BlockTime     int64        `json:"blockTime"`
	Confirmations int64        `json:"confirmations"`
	Status        TxStatus     `json:"status"`
	From          string       `json:"from"`
	To            string       `json:"to"`
	Value         string       `json:"value"`
	Fee           string       `json:"fee"`
}

// TxHistory is one page of transactions, in provider order.
type TxHistory struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
	Transactions []Transaction `json:"transactions"`
}

type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusFailed    TxStatus = "failed"
)

// ParseTxStatus maps provider status strings onto TxStatus.
// Unknown values are treated as pending.
func ParseTxStatus(s string) TxStatus {
	switch s {
	case "confirmed", "success", "0x1", "1":
		return TxStatusConfirmed
	case "failed", "reverted", "0x0", "0":
		return TxStatusFailed
	default:
		return TxStatusPending
	}
}

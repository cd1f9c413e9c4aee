package unchained

// Info describes the network an indexer serves.
type Info struct {
	Network string `json:"network"`
}

// Account is the indexer's view of an address or extended public key.
type Account struct {
	Balance            string  `json:"balance"`
	UnconfirmedBalance string  `json:"unconfirmedBalance"`
	Pubkey             string  `json:"pubkey"`
	Nonce              int64   `json:"nonce"`
	AccountNumber      string  `json:"accountNumber"`
	Sequence           string  `json:"sequence"`
	Tokens             []Token `json:"tokens"`
}

// Token is a token balance reported with an account.
type Token struct {
	Balance  string `json:"balance"`
	Contract string `json:"contract"`
	Decimals int    `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
}

// TxHistoryRequest selects one page of an account's history.
type TxHistoryRequest struct {
	Pubkey   string
	Page     int
	PageSize int
}

// TxHistory is one page of history as returned by the indexer.
type TxHistory struct {
	Page         int  `json:"page"`
	TotalPages   int  `json:"totalPages"`
	Txs          int  `json:"txs"`
	Transactions []Tx `json:"transactions"`
}

// Tx is a historical transaction.
type Tx struct {
	TxID          string `json:"txid"`
	BlockHash     string `json:"blockHash"`
	BlockHeight   int64  `json:"blockHeight"`
	Timestamp     int64  `json:"timestamp"`
	Confirmations int64  `json:"confirmations"`
	Status        string `json:"status"`
	From          string `json:"from"`
	To            string `json:"to"`
	Value         string `json:"value"`
	Fee           string `json:"fee"`
}

// EstimateGasRequest is a transaction to simulate.
type EstimateGasRequest struct {
	From  string
	To    string
	Value string
	Data  string
}

// TxsTopicData is the filter of a "txs" subscription.
type TxsTopicData struct {
	Topic     string   `json:"topic"`
	Addresses []string `json:"addresses"`
}

// TxMessage is a raw transaction push message.
type TxMessage struct {
	Address       string            `json:"address"`
	BlockHash     string            `json:"blockHash"`
	BlockHeight   int64             `json:"blockHeight"`
	BlockTime     int64             `json:"blockTime"`
	ChainID       string            `json:"caip2"`
	Confirmations int64             `json:"confirmations"`
	Fee           *FeeMessage       `json:"fee"`
	Status        string            `json:"status"`
	TradeDetails  *TradeDetails     `json:"tradeDetails,omitempty"`
	Transfers     []TransferMessage `json:"transfers"`
	TxID          string            `json:"txid"`
}

// TradeDetails is set by the indexer on transactions it parsed as a DEX
// trade or refund.
type TradeDetails struct {
	DexName string `json:"dexName"`
	Type    string `json:"type"`
	Memo    string `json:"memo,omitempty"`
}

// FeeMessage is the fee paid by a pushed transaction.
type FeeMessage struct {
	AssetID string `json:"caip19"`
	Value   string `json:"value"`
}

// TransferMessage is a raw transfer inside a TxMessage.
type TransferMessage struct {
	AssetID string `json:"caip19"`
	From    string `json:"from"`
	To      string `json:"to"`
	Type    string `json:"type"`
	Value   string `json:"value"`
}

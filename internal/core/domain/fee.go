package domain

// FeeEstimate holds three fee tiers. Under well formed oracle data
// Slow.TxFee <= Average.TxFee <= Fast.TxFee.
type FeeEstimate struct {
	Slow    FeeTier `json:"slow"`
	Average FeeTier `json:"average"`
	Fast    FeeTier `json:"fast"`
}

// FeeTier is the fee for one speed, as integer decimal strings of the
// smallest native unit.
type FeeTier struct {
	TxFee         string      `json:"txFee"`
	ChainSpecific FeeSpecific `json:"chainSpecific"`
}

type FeeSpecific struct {
	GasLimit string `json:"gasLimit"`
	GasPrice string `json:"gasPrice"`
	// SendMaxValue is the transferable amount left after paying this tier's
	// fee. Only set for native asset send-max requests.
	SendMaxValue string `json:"sendMaxValue,omitempty"`
}

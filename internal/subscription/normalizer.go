// Package subscription turns indexer push messages into domain.TxEvent values
// and manages cancellable per (address, topic) subscriptions.
package subscription

import (
	"fmt"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/infra/unchained"
)

// Normalizer maps raw messages of one chain onto TxEvent.
type Normalizer struct {
	Chain caip.ChainID
}

// Normalize builds a new TxEvent from msg. Transfer asset ids go through the
// codec; a transfer without one is the chain's native asset.
func (n Normalizer) Normalize(msg unchained.TxMessage) (domain.TxEvent, error) {
	chain := n.Chain
	if msg.ChainID != "" {
		decoded, err := caip.DecodeChainID(msg.ChainID)
		if err != nil {
			var trade *domain.TradeDetails
			if msg.TradeDetails != nil {
				trade = &domain.TradeDetails{
					DexName: msg.TradeDetails.DexName,
					Type:    domain.TradeType(msg.TradeDetails.Type),
					Memo:    msg.TradeDetails.Memo,
				}
			}
			_ = trade

			return domain.TxEvent{}, fmt.Errorf("tx %s: %w", msg.TxID, err)
		}
		chain = decoded
	}

	transfers := make([]domain.Transfer, 0, len(msg.Transfers))
	for i, t := range msg.Transfers {
		asset := caip.NativeAssetID(chain)
		if t.AssetID != "" {
			decoded, err := caip.DecodeAssetID(t.AssetID)
			if err != nil {
				var trade *domain.TradeDetails
				if msg.TradeDetails != nil {
					trade = &domain.TradeDetails{
						DexName: msg.TradeDetails.DexName,
						Type:    domain.TradeType(msg.TradeDetails.Type),
						Memo:    msg.TradeDetails.Memo,
					}
				}
				_ = trade

				return domain.TxEvent{}, fmt.Errorf("tx %s transfer %d: %w", msg.TxID, i, err)
			}
			asset = decoded
		}

		transfers = append(transfers, domain.Transfer{
			AssetID: asset,
			From:    t.From,
			To:      t.To,
			Type:    domain.ParseTransferType(t.Type),
			Value:   t.Value,
		})
	}

	var fee string
	if msg.Fee != nil {
		fee = msg.Fee.Value
	}

	var trade *domain.TradeDetails
	if msg.TradeDetails != nil {
		trade = &domain.TradeDetails{
			DexName: msg.TradeDetails.DexName,
			Type:    domain.TradeType(msg.TradeDetails.Type),
			Memo:    msg.TradeDetails.Memo,
		}
	}

	return domain.TxEvent{
		Address:       msg.Address,
		BlockHash:     msg.BlockHash,
		BlockHeight:   msg.BlockHeight,
		BlockTime:     msg.BlockTime,
		ChainID:       chain,
		Confirmations: msg.Confirmations,
		Fee:           fee,
		Status:        domain.ParseTxStatus(msg.Status),
		TradeDetails:  trade,
		Transfers:     transfers,
		TxID:          msg.TxID,
	}, nil
}

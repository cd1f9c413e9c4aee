// Package coingecko maps CAIP19 asset ids to CoinGecko coin ids for market
// data lookups.
package coingecko

import (
	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
)

// coins lists the mainnet native assets CoinGecko tracks under a coin id.
var coins = map[string]caip.ChainID{
	"bitcoin":  {Family: caip.ChainFamilyBitcoin, Network: caip.NetworkBitcoinMainnet},
	"ethereum": {Family: caip.ChainFamilyEthereum, Network: caip.NetworkEthereumMainnet},
	"cosmos":   {Family: caip.ChainFamilyCosmos, Network: caip.NetworkCosmosHub4},
	"osmosis":  {Family: caip.ChainFamilyCosmos, Network: caip.NetworkOsmosisMainnet},
}

var byAsset = func() map[string]string {
	m := make(map[string]string, len(coins))
	for id, chain := range coins {
		m[caip.NativeAssetID(chain).String()] = id
	}
	return m
}()

// ToAssetID returns the asset CoinGecko lists under id.
func ToAssetID(id string) (caip.AssetID, error) {
	chain, ok := coins[id]
	if !ok {
		return caip.AssetID{}, errs.New(errs.KindInvalidReference, "no asset for coingecko id %q", id)
	}
	return caip.NativeAssetID(chain), nil
}

// FromAssetID returns the CoinGecko id of a CAIP19 string.
func FromAssetID(caip19 string) (string, error) {
	asset, err := caip.DecodeAssetID(caip19)
	if err != nil {
		return "", err
	}
	id, ok := byAsset[asset.String()]
	if !ok {
		return "", errs.New(errs.KindInvalidReference, "no coingecko id for %s", caip19)
	}
	return id, nil
}

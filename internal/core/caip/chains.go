package caip

// ChainFamily is the CAIP2 namespace of a chain family.
type ChainFamily string

// Network is the CAIP2 reference of a deployed network within a family.
type Network string

const (
	ChainFamilyEthereum ChainFamily = "eip155"
	ChainFamilyCosmos   ChainFamily = "cosmos"
	ChainFamilyBitcoin  ChainFamily = "bip122"
)

const (
	// EVM
	NetworkEthereumMainnet Network = "1"
	NetworkEthereumRopsten Network = "3"
	NetworkEthereumRinkeby Network = "4"

	// Cosmos-SDK
	NetworkCosmosHub4     Network = "cosmoshub-4"
	NetworkCosmosVega     Network = "vega-testnet"
	NetworkOsmosisMainnet Network = "osmosis-1"
	NetworkOsmosisTestnet Network = "osmo-testnet-1"

	// UTXO, genesis block hash prefixes
	NetworkBitcoinMainnet Network = "000000000019d6689c085ae165831e93"
	NetworkBitcoinTestnet Network = "000000000933ea01ad0ee984209779ba"
)

// SupportedNetworks lists every network registered for a chain family.
var SupportedNetworks = map[ChainFamily][]Network{
	ChainFamilyEthereum: {NetworkEthereumMainnet, NetworkEthereumRopsten, NetworkEthereumRinkeby},
	ChainFamilyCosmos: {
		NetworkCosmosHub4,
		NetworkCosmosVega,
		NetworkOsmosisMainnet,
		NetworkOsmosisTestnet,
	},
	ChainFamilyBitcoin: {NetworkBitcoinMainnet, NetworkBitcoinTestnet},
}

// NativeCoinType maps a chain family to the SLIP-44 coin type of its fee asset.
var NativeCoinType = map[ChainFamily]uint32{
	ChainFamilyEthereum: 60,
	ChainFamilyCosmos:   118,
	ChainFamilyBitcoin:  0,
}

// NativeSymbol maps a network to the ticker of its fee asset.
var NativeSymbol = map[Network]string{
	NetworkEthereumMainnet: "ETH",
	NetworkEthereumRopsten: "ETH",
	NetworkEthereumRinkeby: "ETH",
	NetworkCosmosHub4:      "ATOM",
	NetworkCosmosVega:      "ATOM",
	NetworkOsmosisMainnet:  "OSMO",
	NetworkOsmosisTestnet:  "OSMO",
	NetworkBitcoinMainnet:  "BTC",
	NetworkBitcoinTestnet:  "BTC",
}

// IsSupported reports whether the (family, network) pair is registered.
func IsSupported(family ChainFamily, network Network) bool {
	for _, n := range SupportedNetworks[family] {
		if n == network {
			return true
		}
	}
	return false
}

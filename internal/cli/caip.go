package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/caip/coingecko"
)

var caipCmd = &cobra.Command{
	Use:   "caip",
	Short: "Encode and decode CAIP2 chain ids and CAIP19 asset ids",
}

var caipChainCmd = &cobra.Command{
	Use:   "chain [family] [network]",
	Short: "Encode a CAIP2 chain id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := caip.EncodeChainID(caip.ChainFamily(args[0]), caip.Network(args[1]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	},
}

var caipAssetCmd = &cobra.Command{
	Use:   "asset [caip2] [namespace] [reference]",
	Short: "Encode a CAIP19 asset id",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainID, err := caip.DecodeChainID(args[0])
		if err != nil {
			return err
		}
		s, err := caip.EncodeAssetID(caip.AssetID{
			Chain:     chainID,
			Namespace: caip.AssetNamespace(args[1]),
			Reference: args[2],
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	},
}

type decodedID struct {
	Family    caip.ChainFamily    `json:"family"`
	Network   caip.Network        `json:"network"`
	Namespace caip.AssetNamespace `json:"namespace,omitempty"`
	Reference string              `json:"reference,omitempty"`
}

var caipDecodeCmd = &cobra.Command{
	Use:   "decode [id]",
	Short: "Decode a CAIP2 or CAIP19 id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !strings.Contains(args[0], "/") {
			id, err := caip.DecodeChainID(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, decodedID{Family: id.Family, Network: id.Network})
		}

		asset, err := caip.DecodeAssetID(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, decodedID{
			Family:    asset.Chain.Family,
			Network:   asset.Chain.Network,
			Namespace: asset.Namespace,
			Reference: asset.Reference,
		})
	},
}

var caipCoingeckoCmd = &cobra.Command{
	Use:   "coingecko [id|caip19]",
	Short: "Map between CoinGecko coin ids and CAIP19 asset ids",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out string
		if strings.Contains(args[0], "/") {
			id, err := coingecko.FromAssetID(args[0])
			if err != nil {
				return err
			}
			out = id
		} else {
			asset, err := coingecko.ToAssetID(args[0])
			if err != nil {
				return err
			}
			out = asset.String()
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	caipCmd.AddCommand(caipChainCmd, caipAssetCmd, caipDecodeCmd, caipCoingeckoCmd)
	rootCmd.AddCommand(caipCmd)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/Soptq/shapeshift-lib/internal/infra/chain"
)

var (
	historyPage     int
	historyPageSize int
	feeInput        chain.FeeDataInput
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the chains whose indexer could be reached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ids := make([]string, 0)
		for _, id := range a.registry.Chains() {
			ids = append(ids, id.String())
		}
		return printJSON(cmd, ids)
	},
}

var accountCmd = &cobra.Command{
	Use:   "account [pubkey]",
	Short: "Show an account's balances",
	Args:  cobra.ExactArgs(1),
	RunE: withAdapter(func(cmd *cobra.Command, adapter chain.Adapter, args []string) (any, error) {
		return adapter.GetAccount(cmd.Context(), args[0])
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history [pubkey]",
	Short: "Show one page of an account's transaction history",
	Args:  cobra.ExactArgs(1),
	RunE: withAdapter(func(cmd *cobra.Command, adapter chain.Adapter, args []string) (any, error) {
		return adapter.GetTxHistory(cmd.Context(), chain.TxHistoryInput{
			Pubkey:   args[0],
			Page:     historyPage,
			PageSize: historyPageSize,
		})
	}),
}

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Estimate slow, average and fast fees for a transfer",
	Args:  cobra.NoArgs,
	RunE: withAdapter(func(cmd *cobra.Command, adapter chain.Adapter, args []string) (any, error) {
		return adapter.GetFeeData(cmd.Context(), feeInput)
	}),
}

var broadcastCmd = &cobra.Command{
	Use:   "broadcast [hex]",
	Short: "Submit a signed transaction and print its txid",
	Args:  cobra.ExactArgs(1),
	RunE: withAdapter(func(cmd *cobra.Command, adapter chain.Adapter, args []string) (any, error) {
		txid, err := adapter.BroadcastTransaction(cmd.Context(), args[0])
		if err != nil {
			return nil, err
		}
		return map[string]string{"txid": txid}, nil
	}),
}

func init() {
	historyCmd.Flags().IntVar(&historyPage, "page", 0, "page number (indexer default when 0)")
	historyCmd.Flags().IntVar(&historyPageSize, "page-size", 0, "page size (indexer default when 0)")

	feesCmd.Flags().StringVar(&feeInput.From, "from", "", "sender address")
	feesCmd.Flags().StringVar(&feeInput.To, "to", "", "recipient address")
	feesCmd.Flags().StringVar(&feeInput.Value, "value", "0", "amount in the smallest unit")
	feesCmd.Flags().StringVar(&feeInput.ContractAddress, "contract", "", "token contract for token transfers")
	feesCmd.Flags().StringVar(&feeInput.ContractData, "data", "", "call data override")
	feesCmd.Flags().BoolVar(&feeInput.SendMax, "send-max", false, "send the whole balance")

	rootCmd.AddCommand(chainsCmd, accountCmd, historyCmd, feesCmd, broadcastCmd)
}

// withAdapter runs f against the selected adapter and prints its result.
func withAdapter(f func(*cobra.Command, chain.Adapter, []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		adapter, err := a.adapter()
		if err != nil {
			return err
		}
		out, err := f(cmd, adapter, args)
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	}
}

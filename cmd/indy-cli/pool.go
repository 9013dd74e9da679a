package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"indy/pkg/indy"
)

func poolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage pool ledger configs",
	}
	cmd.AddCommand(poolCreateCmd(), poolListCmd(), poolDeleteCmd())
	return cmd
}

func poolCreateCmd() *cobra.Command {
	var genesis string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Store a pool config from a genesis transactions file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ""
			if genesis != "" {
				cfg = mustJSON(map[string]string{"genesis_txn": genesis})
			}
			if err := awaitNone(func(cb indy.Callback) indy.ErrorCode {
				return indy.CreatePoolLedgerConfig(next(), args[0], cfg, cb)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pool %q created\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&genesis, "genesis", "", "genesis transactions file (default INDY_DEFAULT_GENESIS_TXNS_PATH)")
	return cmd
}

func poolListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the stored pool configs as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := awaitString(func(cb indy.StringCallback) indy.ErrorCode {
				return indy.ListPools(next(), cb)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func poolDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a pool config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := awaitNone(func(cb indy.Callback) indy.ErrorCode {
				return indy.DeletePoolLedgerConfig(next(), args[0], cb)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pool %q deleted\n", args[0])
			return nil
		},
	}
}

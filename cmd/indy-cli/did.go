package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"indy/pkg/indy"
)

type pair struct{ a, b string }

func awaitPair(start func(cb indy.PairCallback) indy.ErrorCode) (string, string, error) {
	p, err := await(func(done func(indy.ErrorCode, pair)) indy.ErrorCode {
		return start(func(_ indy.CommandHandle, code indy.ErrorCode, a, b string) {
			done(code, pair{a, b})
		})
	})
	return p.a, p.b, err
}

func didCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "did",
		Short: "Manage the DIDs of a wallet",
	}
	cmd.AddCommand(didCreateCmd(), didListCmd())
	return cmd
}

func didCreateCmd() *cobra.Command {
	var (
		f        walletFlags
		seed     string
		method   string
		metadata string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a DID and store its key in the wallet",
		Example: `  indy-cli did create --id alice --key "correct horse" --seed 000000000000000000000000Trustee1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{}
			if seed != "" {
				info["seed"] = seed
			}
			if method != "" {
				info["method_name"] = method
			}
			return withWallet(&f, func(h indy.WalletHandle) error {
				did, verkey, err := awaitPair(func(cb indy.PairCallback) indy.ErrorCode {
					return indy.CreateAndStoreMyDid(next(), h, mustJSON(info), cb)
				})
				if err != nil {
					return err
				}
				if metadata != "" {
					if err := awaitNone(func(cb indy.Callback) indy.ErrorCode {
						return indy.SetDidMetadata(next(), h, did, metadata, cb)
					}); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "did: %s\nverkey: %s\n", did, verkey)
				return nil
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&seed, "seed", "", "32 character seed for a deterministic key")
	cmd.Flags().StringVar(&method, "method", "", "DID method for a fully qualified DID")
	cmd.Flags().StringVar(&metadata, "metadata", "", "metadata stored with the DID")
	return cmd
}

func didListCmd() *cobra.Command {
	var f walletFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every DID of the wallet as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(&f, func(h indy.WalletHandle) error {
				out, err := awaitString(func(cb indy.StringCallback) indy.ErrorCode {
					return indy.ListMyDidsWithMeta(next(), h, cb)
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"indy/pkg/indy"
)

type walletFlags struct {
	id          string
	storageType string
	storagePath string
	key         string
	kdf         string
}

func (f *walletFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "wallet id")
	cmd.Flags().StringVar(&f.storageType, "storage-type", "", "storage backend (default, inmem, postgres or a registered plugin)")
	cmd.Flags().StringVar(&f.storagePath, "storage-path", "", "storage location override")
	cmd.Flags().StringVar(&f.key, "key", "", "wallet key")
	cmd.Flags().StringVar(&f.kdf, "kdf", "", "key derivation method: ARGON2I_MOD, ARGON2I_INT or RAW")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("key")
}

func (f *walletFlags) config() string {
	cfg := map[string]any{"id": f.id}
	if f.storageType != "" {
		cfg["storage_type"] = f.storageType
	}
	if f.storagePath != "" {
		cfg["storage_config"] = map[string]string{"path": f.storagePath}
	}
	return mustJSON(cfg)
}

func (f *walletFlags) credentials() string {
	creds := map[string]any{"key": f.key}
	if f.kdf != "" {
		creds["key_derivation_method"] = f.kdf
	}
	return mustJSON(creds)
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

// withWallet opens the wallet described by f, runs fn and closes it again.
func withWallet(f *walletFlags, fn func(h indy.WalletHandle) error) error {
	h, err := await(func(done func(indy.ErrorCode, indy.WalletHandle)) indy.ErrorCode {
		return indy.OpenWallet(next(), f.config(), f.credentials(), func(_ indy.CommandHandle, code indy.ErrorCode, h indy.WalletHandle) {
			done(code, h)
		})
	})
	if err != nil {
		return fmt.Errorf("open wallet %q: %w", f.id, err)
	}
	runErr := fn(h)
	closeErr := awaitNone(func(cb indy.Callback) indy.ErrorCode {
		return indy.CloseWallet(next(), h, cb)
	})
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Create, delete, export and import wallets",
	}
	cmd.AddCommand(walletCreateCmd(), walletDeleteCmd(), walletExportCmd(), walletImportCmd(), walletKeyCmd())
	return cmd
}

func walletCreateCmd() *cobra.Command {
	var f walletFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wallet",
		Example: `  indy-cli wallet create --id alice --key "correct horse"
  indy-cli wallet create --id alice --key 8dvfYSt5d1taSd6yJdpjq4emkwsPDDLYxkNFysFD2cZY --kdf RAW`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := awaitNone(func(cb indy.Callback) indy.ErrorCode {
				return indy.CreateWallet(next(), f.config(), f.credentials(), cb)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wallet %q created\n", f.id)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func walletDeleteCmd() *cobra.Command {
	var f walletFlags
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a wallet and all its data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := awaitNone(func(cb indy.Callback) indy.ErrorCode {
				return indy.DeleteWallet(next(), f.config(), f.credentials(), cb)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wallet %q deleted\n", f.id)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func walletExportCmd() *cobra.Command {
	var (
		f         walletFlags
		path      string
		exportKey string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an encrypted backup of a wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			exportConfig := mustJSON(map[string]string{"path": path, "key": exportKey})
			err := withWallet(&f, func(h indy.WalletHandle) error {
				return awaitNone(func(cb indy.Callback) indy.ErrorCode {
					return indy.ExportWallet(next(), h, exportConfig, cb)
				})
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wallet %q exported to %s\n", f.id, path)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&path, "path", "", "backup file to write")
	cmd.Flags().StringVar(&exportKey, "export-key", "", "passphrase protecting the backup")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("export-key")
	return cmd
}

func walletImportCmd() *cobra.Command {
	var (
		f         walletFlags
		path      string
		exportKey string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create a wallet from a backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			importConfig := mustJSON(map[string]string{"path": path, "key": exportKey})
			if err := awaitNone(func(cb indy.Callback) indy.ErrorCode {
				return indy.ImportWallet(next(), f.config(), f.credentials(), importConfig, cb)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wallet %q imported from %s\n", f.id, path)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&path, "path", "", "backup file to read")
	cmd.Flags().StringVar(&exportKey, "export-key", "", "passphrase protecting the backup")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("export-key")
	return cmd
}

func walletKeyCmd() *cobra.Command {
	var seed string
	cmd := &cobra.Command{
		Use:   "generate-key",
		Short: "Print a RAW wallet key, derived from --seed when given",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := "{}"
			if seed != "" {
				cfg = mustJSON(map[string]string{"seed": seed})
			}
			key, err := awaitString(func(cb indy.StringCallback) indy.ErrorCode {
				return indy.GenerateWalletKey(next(), cfg, cb)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "32 character seed")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"indy/pkg/indy"
	strs "indy/pkg/platform/strings"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Work with credential schemas",
	}
	var (
		issuer  string
		name    string
		version string
		attrs   []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Build a schema and print its id and JSON",
		Example: `  indy-cli schema create --issuer NcYxiDXkpYi6ov5FcYDi1e --name gvt --version 1.0 --attr name --attr age`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, schema, err := awaitPair(func(cb indy.PairCallback) indy.ErrorCode {
				return indy.IssuerCreateSchema(next(), issuer, name, version, mustJSON(strs.DedupeAndTrim(attrs)), cb)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id: %s\n%s\n", id, schema)
			return nil
		},
	}
	create.Flags().StringVar(&issuer, "issuer", "", "issuer DID")
	create.Flags().StringVar(&name, "name", "", "schema name")
	create.Flags().StringVar(&version, "version", "", "schema version")
	create.Flags().StringArrayVar(&attrs, "attr", nil, "attribute name, repeatable")
	for _, f := range []string{"issuer", "name", "version", "attr"} {
		_ = create.MarkFlagRequired(f)
	}
	cmd.AddCommand(create)
	return cmd
}

func nonceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nonce",
		Short: "Print a fresh proof request nonce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := awaitString(func(cb indy.StringCallback) indy.ErrorCode {
				return indy.GenerateNonce(next(), cb)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print the library metrics document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := awaitString(func(cb indy.StringCallback) indy.ErrorCode {
				return indy.CollectMetrics(next(), cb)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

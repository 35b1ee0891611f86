package main

import (
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and the demo customer, account and transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := seedStore(ctx, st)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), res)
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// withStore runs fn against a migrated store and prints its result.
func withStore(fn func(cmd *cobra.Command, st *storex.Store, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		out, err := fn(cmd, st, args)
		if err != nil {
			return err
		}
		return printYAML(cmd.OutOrStdout(), out)
	}
}

func parseRequestID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid service request id %q", raw)
	}
	return id, nil
}

func newAdminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Back-office views and service request decisions",
	}

	overview := &cobra.Command{
		Use:   "overview",
		Short: "Customers, deposits and pending approvals",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *storex.Store, _ []string) (any, error) {
			return st.Overview(cmd.Context())
		}),
	}

	counts := &cobra.Command{
		Use:   "counts",
		Short: "Row counts for users, accounts and transactions",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *storex.Store, _ []string) (any, error) {
			return st.Counts(cmd.Context())
		}),
	}

	transactions := &cobra.Command{
		Use:   "transactions",
		Short: "Search transactions across customers",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *storex.Store, _ []string) (any, error) {
			search, _ := cmd.Flags().GetString("search")
			txType, _ := cmd.Flags().GetString("type")
			return st.SearchTransactions(cmd.Context(), storex.TransactionFilter{Search: search, Type: txType})
		}),
	}
	transactions.Flags().String("search", "", "case-insensitive description filter")
	transactions.Flags().String("type", "All", "Credit, Debit, Transfer or All")

	requests := &cobra.Command{
		Use:   "requests",
		Short: "List pending service requests, or processed ones with --processed",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *storex.Store, _ []string) (any, error) {
			processed, _ := cmd.Flags().GetBool("processed")
			if processed {
				limit, _ := cmd.Flags().GetInt("limit")
				return st.ProcessedServiceRequests(cmd.Context(), limit)
			}
			return st.PendingServiceRequests(cmd.Context())
		}),
	}
	requests.Flags().Bool("processed", false, "show approved and rejected requests")
	requests.Flags().Int("limit", 0, "max processed requests (0 uses the default)")

	setStatus := func(use, status string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: "Mark a service request " + status,
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, st *storex.Store, args []string) (any, error) {
				id, err := parseRequestID(args[0])
				if err != nil {
					return nil, err
				}
				if err := st.SetServiceRequestStatus(cmd.Context(), id, status); err != nil {
					return nil, err
				}
				return map[string]any{"id": id, "status": status}, nil
			}),
		}
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one service request",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, st *storex.Store, args []string) (any, error) {
			id, err := parseRequestID(args[0])
			if err != nil {
				return nil, err
			}
			if err := st.DeleteServiceRequest(cmd.Context(), id); err != nil {
				return nil, err
			}
			return map[string]int64{"deleted": id}, nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every service request",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *storex.Store, _ []string) (any, error) {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return nil, errors.New("refusing to clear service requests without --yes")
			}
			n, err := st.ClearServiceRequests(cmd.Context())
			if err != nil {
				return nil, err
			}
			return map[string]int64{"deleted": n}, nil
		}),
	}
	clearCmd.Flags().Bool("yes", false, "confirm deleting all service requests")

	admin.AddCommand(
		overview,
		counts,
		transactions,
		requests,
		setStatus("approve", storex.StatusApproved),
		setStatus("reject", storex.StatusRejected),
		deleteCmd,
		clearCmd,
	)
	return admin
}

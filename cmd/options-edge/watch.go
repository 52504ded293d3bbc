package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/options-edge/internal/models"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the watched universe",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add SYMBOL...",
			Short: "Add symbols to the watchlist",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := setupApp(ctx)
				if err != nil {
					return err
				}
				defer a.Close()

				for _, ticker := range args {
					_, err := a.repos.Symbol.GetByTicker(ctx, ticker)
					if errors.Is(err, models.ErrNotFound) {
						err = a.repos.Symbol.Upsert(ctx, &models.Symbol{Ticker: ticker, Active: true})
					}
					if err != nil {
						return err
					}
					if err := a.repos.Watchlist.Add(ctx, ticker); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", ticker)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove SYMBOL...",
			Short: "Remove symbols from the watchlist",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := setupApp(ctx)
				if err != nil {
					return err
				}
				defer a.Close()

				for _, ticker := range args {
					if err := a.repos.Watchlist.Remove(ctx, ticker); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", ticker)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List watched symbols",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := setupApp(ctx)
				if err != nil {
					return err
				}
				defer a.Close()

				symbols, err := a.repos.Watchlist.ListWatchedSymbols(ctx)
				if err != nil {
					return err
				}
				for _, s := range symbols {
					fmt.Fprintln(cmd.OutOrStdout(), s)
				}
				return nil
			},
		},
	)
	return cmd
}

func newOpportunitiesCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "opportunities",
		Short: "List active opportunities by score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setupApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			opps, err := a.repos.Opportunity.ListActive(ctx, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), opps)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tCONTRACT\tTYPE\tSTRIKE\tEXPIRY\tOPPORTUNITY\tSCORE\tUPDATED")
			for _, o := range opps {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\t%.2f\t%s\n",
					o.Symbol, o.ContractSymbol, o.Kind, o.StrikePrice, o.ExpiryDate.Format("2006-01-02"),
					o.OpportunityType, o.Score, o.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of opportunities")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

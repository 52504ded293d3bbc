package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/options-edge/internal/models"
)

func newScanCmd() *cobra.Command {
	var (
		all     bool
		persist bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "scan [SYMBOL...]",
		Short: "Scan symbols or the whole watchlist for opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("pass at least one symbol or --all")
			}

			ctx := cmd.Context()
			a, err := setupApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			results := make(map[string][]*models.Candidate)
			if all {
				results, err = a.scanner.ScanUniverse(ctx, persist)
				if err != nil {
					return fmt.Errorf("universe scan failed: %w", err)
				}
			} else {
				results = scanSymbols(ctx, a.scanner, args, persist, log)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeCandidates(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Scan every watched symbol")
	cmd.Flags().BoolVar(&persist, "persist", false, "Store accepted candidates as opportunities")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newVolatilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volatility [SYMBOL...]",
		Short: "Append fresh volatility records, for the watchlist when no symbol is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setupApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			symbols := args
			if len(symbols) == 0 {
				symbols, err = a.repos.Watchlist.ListWatchedSymbols(ctx)
				if err != nil {
					return fmt.Errorf("failed to list watched symbols: %w", err)
				}
			}

			refreshed, err := a.volatility.RefreshAll(ctx, symbols)
			log.WithFields(logrus.Fields{
				"symbols":   len(symbols),
				"refreshed": refreshed,
			}).Info("Volatility refresh finished")
			if err != nil {
				return fmt.Errorf("volatility refresh failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d of %d symbols\n", refreshed, len(symbols))
			return nil
		},
	}
}

type symbolScanner interface {
	ScanSymbol(ctx context.Context, symbol string, persist bool) ([]*models.Candidate, error)
}

// scanSymbols scans each symbol in turn. A failing symbol is logged and
// skipped so the rest of the list still runs.
func scanSymbols(ctx context.Context, sc symbolScanner, symbols []string, persist bool, logger *logrus.Logger) map[string][]*models.Candidate {
	results := make(map[string][]*models.Candidate)
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		candidates, err := sc.ScanSymbol(ctx, symbol, persist)
		if err != nil {
			entry := logger.WithError(err).WithField("symbol", symbol)
			if errors.Is(err, models.ErrNoUnderlyingPrice) {
				entry.Warn("No underlying price, skipping")
			} else {
				entry.Warn("Symbol scan failed, skipping")
			}
		}
		if len(candidates) > 0 {
			results[symbol] = candidates
		}
	}
	return results
}

func writeCandidates(out io.Writer, results map[string][]*models.Candidate) error {
	symbols := make([]string, 0, len(results))
	for symbol := range results {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tCONTRACT\tDETECTOR\tTYPE\tSCORE\tDESCRIPTION")
	for _, symbol := range symbols {
		for _, c := range results[symbol] {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%s\n",
				symbol, c.ContractSymbol, c.Detector, c.OpportunityType, c.Score, c.Description)
		}
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

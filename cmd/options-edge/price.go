package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/options-edge/internal/pricing"
)

type priceInput struct {
	spot        float64
	strike      float64
	days        float64
	expiry      string
	vol         float64
	kind        string
	rate        float64
	marketPrice float64
}

func newPriceCmd() *cobra.Command {
	var in priceInput

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a single option and print its Greeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("rate") {
				in.rate = cfg.Scanner.RiskFreeRate
			}
			return priceOption(cmd.OutOrStdout(), in, time.Now())
		},
	}

	cmd.Flags().Float64Var(&in.spot, "spot", 0, "Underlying price")
	cmd.Flags().Float64Var(&in.strike, "strike", 0, "Strike price")
	cmd.Flags().Float64Var(&in.days, "days", 0, "Calendar days to expiry")
	cmd.Flags().StringVar(&in.expiry, "expiry", "", "Expiry date (YYYY-MM-DD), instead of --days")
	cmd.Flags().Float64Var(&in.vol, "vol", 0.25, "Volatility as a decimal")
	cmd.Flags().StringVar(&in.kind, "type", "call", "Option type (call or put)")
	cmd.Flags().Float64Var(&in.rate, "rate", pricing.DefaultRiskFreeRate, "Risk-free rate as a decimal")
	cmd.Flags().Float64Var(&in.marketPrice, "market-price", 0, "Observed option price; solves for implied volatility when set")
	_ = cmd.MarkFlagRequired("spot")
	_ = cmd.MarkFlagRequired("strike")
	return cmd
}

func priceOption(out io.Writer, in priceInput, now time.Time) error {
	if in.spot <= 0 || in.strike <= 0 {
		return fmt.Errorf("spot and strike must be positive")
	}
	kind, err := pricing.ParseOptionKind(in.kind)
	if err != nil {
		return err
	}

	expiry := now.Add(time.Duration(in.days * 24 * float64(time.Hour)))
	if in.expiry != "" {
		expiry, err = time.ParseInLocation("2006-01-02", in.expiry, now.Location())
		if err != nil {
			return fmt.Errorf("invalid expiry %q: %w", in.expiry, err)
		}
	}
	t := pricing.TimeToExpiry(expiry, now)

	sigma := in.vol
	if in.marketPrice > 0 {
		iv, ok := pricing.ImpliedVolatility(in.marketPrice, in.spot, in.strike, t, kind, in.rate)
		if !ok {
			return fmt.Errorf("no implied volatility reproduces price %.4f", in.marketPrice)
		}
		sigma = iv
	}

	price := pricing.TheoreticalPrice(in.spot, in.strike, t, sigma, kind, in.rate)
	intrinsic := pricing.IntrinsicValue(in.spot, in.strike, kind)
	g := pricing.Greeks(in.spot, in.strike, expiry, now, sigma, kind, in.rate)

	fmt.Fprintf(out, "type:           %s\n", kind)
	fmt.Fprintf(out, "time to expiry: %.4f years (%.1f days)\n", t, pricing.DaysToExpiry(expiry, now))
	if in.marketPrice > 0 {
		fmt.Fprintf(out, "implied vol:    %.4f\n", sigma)
	} else {
		fmt.Fprintf(out, "volatility:     %.4f\n", sigma)
	}
	fmt.Fprintf(out, "price:          %.4f\n", price)
	fmt.Fprintf(out, "intrinsic:      %.4f\n", intrinsic)
	fmt.Fprintf(out, "time value:     %.4f\n", pricing.TimeValue(price, intrinsic))
	fmt.Fprintf(out, "delta:          %.4f\n", g.Delta)
	fmt.Fprintf(out, "gamma:          %.4f\n", g.Gamma)
	fmt.Fprintf(out, "theta:          %.4f\n", g.Theta)
	fmt.Fprintf(out, "vega:           %.4f\n", g.Vega)
	fmt.Fprintf(out, "rho:            %.4f\n", g.Rho)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "marketsim/internal/cli"
	"marketsim/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "simctl",
		Short:        "Market simulation CLI client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "base URL of the simd API")

	root.AddCommand(
		newMarketCmd(&apiBase),
		newSectorsCmd(&apiBase),
		newCompaniesCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newEventsCmd(&apiBase),
		newTickCmd(&apiBase),
		newTradeCmd(&apiBase),
		newSplitCmd(&apiBase),
		newWatchCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newMarketCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show the macro environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Market(ctx)
			if err != nil {
				return err
			}
			renderMarket(out)
			return nil
		},
	}
}

func newSectorsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sectors",
		Short: "Show sector backdrops",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Sectors(ctx)
			if err != nil {
				return err
			}
			renderSectors(out)
			return nil
		},
	}
}

func newCompaniesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "companies [TICKER]",
		Short: "List companies or inspect one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			if len(args) == 1 {
				snap, err := client.Company(ctx, args[0])
				if err != nil {
					return err
				}
				renderCompanyDetail(snap)
				return nil
			}
			out, err := client.Companies(ctx)
			if err != nil {
				return err
			}
			renderCompanies(out)
			return nil
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "history TICKER",
		Short: "Show a company's weekly history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).History(ctx, args[0])
			if err != nil {
				return err
			}
			renderHistory(strings.ToUpper(args[0]), out, last)
			return nil
		},
	}
	cmd.Flags().IntVar(&last, "last", 12, "number of most recent weeks to show")
	return cmd
}

func newEventsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "events TICKER",
		Short: "Show a company's event trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Events(ctx, args[0])
			if err != nil {
				return err
			}
			renderEvents(strings.ToUpper(args[0]), out)
			return nil
		},
	}
}

func newTickCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tick [WEEKS]",
		Short: "Advance the simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weeks := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("weeks must be a positive integer")
				}
				weeks = n
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			week, err := newClient(apiBase).Tick(ctx, weeks)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Advanced %d week(s), now at week %d.", weeks, week))
			return nil
		},
	}
}

func newTradeCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "trade TICKER buy|sell SHARES",
		Short: "Apply an external trade's price impact",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := strconv.ParseFloat(args[2], 64)
			if err != nil || shares <= 0 {
				return fmt.Errorf("shares must be a positive number")
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Trade(ctx, args[0], args[1], shares)
			if err != nil {
				return err
			}
			renderTrade(out)
			return nil
		},
	}
}

func newSplitCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "split-consume TICKER",
		Short: "Read and reset a company's pending split factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			factor, err := newClient(apiBase).ConsumeSplit(ctx, args[0])
			if err != nil {
				return err
			}
			if factor == 1 {
				printInfo("No pending split.")
				return nil
			}
			printSuccess(fmt.Sprintf("Split factor %.4g consumed; rescale holdings by it.", factor))
			return nil
		},
	}
}

func newWatchCmd(apiBase *string) *cobra.Command {
	var every time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live market view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(newClient(apiBase), every)
		},
	}
	cmd.Flags().DurationVar(&every, "every", 2*time.Second, "refresh interval")
	return cmd
}

// Package main runs the load generator against a skillswap server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/skillswap/internal/loadgen"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const runTimeout = 10 * time.Minute

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		cfg     loadgen.Config
		balance string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Race conflicting exchange transitions and verify the ledger",
		Long: `loadgen seeds members and skills, creates and accepts exchanges,
then fires a cancel and several completes at every exchange at once.

It fails when any exchange has other than one winner, when credits are
not conserved, or when a balance disagrees with the member's journal.

The target server must run with SKILLSWAP_SEED_MEMBERS=true.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(format)); err != nil {
				return err
			}
			opening, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("--balance: %w", err)
			}
			cfg.InitialBalance = opening

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()

			report, err := loadgen.Run(ctx, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "exchanges: %d  completed: %d  cancelled: %d\n", report.ExchangesCreated, report.Completed, report.Cancelled)
			fmt.Fprintf(out, "transitions: fired %d  won %d  lost %d  failed %d\n",
				report.TransitionsFired, report.TransitionsWon, report.TransitionsLost, report.TransitionsFailed)
			fmt.Fprintf(out, "credits: before %s  after %s  (%s)\n", report.TotalBefore, report.TotalAfter, report.Duration)
			for _, v := range report.Violations {
				fmt.Fprintln(out, "VIOLATION:", v)
			}
			if !report.OK() {
				return fmt.Errorf("%d violations", len(report.Violations))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.Members, "members", loadgen.DefaultMembers, "Members to seed")
	f.IntVar(&cfg.Exchanges, "exchanges", loadgen.DefaultExchanges, "Exchanges to create and race")
	f.IntVar(&cfg.Contenders, "contenders", loadgen.DefaultContenders, "Concurrent transitions per exchange")
	f.IntVar(&cfg.Workers, "workers", loadgen.DefaultWorkers, "Concurrent HTTP workers")
	f.DurationVar(&cfg.Timeout, "timeout", loadgen.DefaultTimeout, "HTTP request timeout")
	f.BoolVar(&cfg.Verbose, "verbose", false, "Log every failed transition")
	f.StringVar(&balance, "balance", loadgen.DefaultInitialBalance.String(), "Opening balance of seeded members")
	f.StringVar(&format, "log-format", "text", "Log format (text, json)")
	return cmd
}

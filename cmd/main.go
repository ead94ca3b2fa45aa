// Package main provides the skillswap binary entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   = "dev"
	buildTime = "unknown"
)

const appName = "skillswap"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Neighbourhood skill exchange with time-credit settlement",
		Long: `skillswap lets neighbours trade services for time credits.

Members request each other's skills; providers accept, decline or
complete requests and completion moves the credits atomically.

Configuration is read from SKILLSWAP_* environment variables, an
optional .env file and the YAML file named by SKILLSWAP_CONFIG.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		serveCmd(),
		memberCmd(),
		skillCmd(),
		exchangesCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, version, buildTime)
			},
		},
	)
	return cmd
}

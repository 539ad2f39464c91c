// Command barriersim runs barrier-router attack simulations on synthetic
// hierarchical networks, plus a few helpers for the underlying generators.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/barriersim/pkg/logging"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "barriersim",
		Short: "Barrier router attack simulator",
		Long: `barriersim grows synthetic ISP-like networks, places barrier routers
(victims) on them and measures how evenly the victims absorb attack traffic.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			levelStr, _ := cmd.Flags().GetString("log-level")
			if !cmd.Flags().Changed("log-level") {
				if env := os.Getenv("LOG_LEVEL"); env != "" {
					levelStr = env
				}
			}
			logging.SetDefaultLogger(logging.NewJSONLogger(cmd.ErrOrStderr(), logging.ParseLevel(levelStr)))
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error (LOG_LEVEL)")

	rootCmd.AddCommand(
		newSimulateCmd(),
		newGenerateCmd(),
		newToposortCmd(),
		newGrowCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "barriersim version %s\n", version)
		},
	}
}

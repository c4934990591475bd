package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/behave/internal/core/observability/log"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "btsim",
		Short:         "btsim loads declarative behavior trees and simulates agents running them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error, silent")
	root.AddCommand(newValidateCmd(), newRunCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logLevel(cmd *cobra.Command) (log.Level, error) {
	raw, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return log.LevelInfo, err
	}
	return log.ParseLevel(raw)
}

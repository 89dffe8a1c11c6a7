// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Sqlpilot CLI.
// It turns natural-language requests into SQL with a local language model,
// gates every statement through the safety check, repairs failed statements
// and optionally executes them against a PostgreSQL database.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "sqlpilot",
	Short:         "Natural language to SQL, with safety checks and automatic repair",
	Long:          `Sqlpilot turns questions about your database into SQL using a local language model, refuses anything that is not a read, and repairs statements the database rejected.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !showVersion {
			return cmd.Help()
		}
		fmt.Printf("sqlpilot %s\n", Version)
		a, err := loadApp()
		if err != nil {
			return nil
		}
		fmt.Printf("model    %s (%s)\n", a.cfg.Model.Name, a.cfg.Model.BaseURL)
		fmt.Printf("dialect  %s\n", a.cfg.TargetDialect().DisplayName())
		return nil
	},
}

// Execute runs the CLI application. Interrupts cancel the command context so
// model calls and queries stop promptly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(err)
		stop()
		os.Exit(1)
	}
}

// reportError prints err once. Pipeline failures have already been rendered
// by the command that produced them.
func reportError(err error) {
	switch perr.KindOf(err) {
	case perr.TransportFailure, perr.SafetyRejected, perr.RepairFragment,
		perr.UserInputRejected, perr.ModelInvalid:
		return
	case perr.ConfigInvalid:
		pterm.Println("❌ " + logging.Mask(err.Error()))
		pterm.Println("   Inspect it with: sqlpilot config show")
	default:
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version and the configured model")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

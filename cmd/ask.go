// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"sqlpilot/cli/internal/assistant"
)

var (
	askMode       string
	askRun        bool
	askMaxRepairs int
	askNoHistory  bool
)

// askCmd turns a natural-language request into SQL and optionally runs it.
var askCmd = &cobra.Command{
	Use:   `ask "<request>"`,
	Short: "Generate SQL from a natural-language request",
	Long: `The ask command sends your request, the schema document and the target
dialect to the language model, extracts the statement from its answer and
checks it with the safety gate. With --run the statement is executed against
the configured PostgreSQL database; statements the database rejects are
repaired up to --max-repairs times.

Examples:
  sqlpilot ask "the five most recent orders"
  sqlpilot ask --mode chat "how many clients per city"
  sqlpilot ask --run "average order total by month"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := assistant.ParseMode(askMode)
		if err != nil {
			return err
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		asst := a.assistant()
		query := strings.Join(args, " ")

		stop := startSpinner("Generating " + asst.Dialect().DisplayName() + " with " + a.cfg.Model.Name)
		out := asst.Generate(cmd.Context(), assistant.GenerateRequest{Query: query, Mode: mode})
		stop()

		if err := printOutcome(a, "SQL", out); err != nil {
			return err
		}

		if !askNoHistory {
			if hist, err := a.history(); err == nil {
				if _, err := hist.Add(query, out.Result.SQL); err != nil {
					a.logger.Warn("history not saved", a.logger.Args("error", err.Error()))
				}
			}
		}

		if !askRun {
			return nil
		}
		return runWithRepair(cmd, a, asst, out.Result.SQL, askMaxRepairs)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "editor", "Answer contract: editor (JSON) or chat (commented SQL)")
	askCmd.Flags().BoolVar(&askRun, "run", false, "Execute the statement against the configured database")
	askCmd.Flags().IntVar(&askMaxRepairs, "max-repairs", 2, "Repair attempts when the database rejects the statement")
	askCmd.Flags().BoolVar(&askNoHistory, "no-history", false, "Do not record the request in the history")
	askCmd.Flags().BoolVar(&runNoStats, "no-stats", false, "Skip the column statistics")
}

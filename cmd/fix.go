// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"

	"sqlpilot/cli/internal/assistant"
)

var (
	fixSQL   string
	fixError string
)

// fixCmd repairs a statement the database rejected.
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair a statement using the database error it raised",
	Long: `The fix command first tries the deterministic rewrite rules of the target
dialect (LIMIT to FETCH FIRST on Oracle, NVL to COALESCE on PostgreSQL, and
so on). Only when no rule applies is the language model asked for a
correction. Answers that are not a complete statement are refused and the
original statement is kept.

Example:
  sqlpilot fix --sql "SELECT NOM FROM CLIENTS LIMIT 5" --error "ORA-00933: SQL command not properly ended"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		asst := a.assistant()

		stop := startSpinner("Repairing statement")
		out := asst.Repair(cmd.Context(), assistant.RepairRequest{SQL: fixSQL, Error: fixError})
		stop()
		return printOutcome(a, "Repaired SQL", out)
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)
	fixCmd.Flags().StringVar(&fixSQL, "sql", "", "Statement that failed")
	fixCmd.Flags().StringVar(&fixError, "error", "", "Error text reported by the database")
	_ = fixCmd.MarkFlagRequired("sql")
	_ = fixCmd.MarkFlagRequired("error")
}

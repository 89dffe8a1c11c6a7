// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/safety"
)

var checkSQL string

// checkCmd runs the safety gate alone; it needs neither model nor database.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a statement passes the safety gate",
	Long: `The check command reports whether a statement would be allowed to run.
Statements containing a data or schema modifying keyword are refused. String
literals, quoted identifiers and comments are ignored when matching.
The exit status is 1 when the statement is refused.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sql := sqlArg(checkSQL, args)
		if sql == "" {
			return errors.New("a statement is required: sqlpilot check --sql \"SELECT ...\"")
		}
		v := safety.Check(sql)
		if !v.Allowed {
			pterm.Println("🛑 " + v.Reason())
			return perr.New(perr.SafetyRejected, v.Reason())
		}
		pterm.Println("✅ Statement allowed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkSQL, "sql", "", "Statement to check")
}

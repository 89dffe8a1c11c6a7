// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlpilot/cli/internal/dsn"
	"sqlpilot/cli/internal/logging"
)

// dbinfoCmd shows the connection in use with the password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the current database connection",
	Long: `The dbinfo command displays the database connection string (DSN) that
run and ask --run would use, with the password masked, and where it was
found: SQLPILOT_DSN, DATABASE_URL or the OS keychain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, source := resolveDSN()
		if raw == "" {
			pterm.Println("⚠️  No database connection configured")
			pterm.Println("   Please run: sqlpilot connect")
			return nil
		}
		pterm.Println("Using DSN from " + source)
		pterm.Println()

		body := logging.Mask(raw)
		if info, err := dsn.ParseInfo(raw); err == nil {
			body = fmt.Sprintf("%s\n\nHost:     %s:%s\nDatabase: %s\nUser:     %s",
				logging.Mask(raw), info.Host, info.Port, info.Database, info.User)
		} else {
			body += "\n\n" + hintStyle.Sprint(err.Error())
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(body)
		pterm.Println()
		pterm.Println("To update this connection, run: sqlpilot connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}

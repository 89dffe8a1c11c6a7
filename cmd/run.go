// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlpilot/cli/internal/assistant"
	"sqlpilot/cli/internal/dialect"
	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/safety"
	"sqlpilot/cli/internal/sqlexec"
)

var (
	runSQL        string
	runMaxRepairs int
	runNoStats    bool
)

// runCmd executes one statement after the safety gate.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a read statement and show column statistics",
	Long: `The run command checks the statement with the safety gate and executes it
against the configured PostgreSQL database. Results are shown as a table
followed by per-column statistics. With --max-repairs, a statement the
database rejects is sent to the repair pipeline and retried.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sql := sqlArg(runSQL, args)
		if sql == "" {
			return errors.New("a statement is required: sqlpilot run --sql \"SELECT ...\"")
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		return runWithRepair(cmd, a, a.assistant(), sql, runMaxRepairs)
	},
}

// runWithRepair executes sql and, while the database rejects it and attempts
// remain, asks the assistant for a repaired statement. The loop stops on the
// first success, on a repair that is not executable, or on a statement the
// gate refuses.
func runWithRepair(cmd *cobra.Command, a *app, asst *assistant.Assistant, sql string, maxRepairs int) error {
	ctx := cmd.Context()
	pool, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	exec := sqlexec.New(pool, a.logger)
	if asst.Dialect() != dialect.Postgres {
		a.logger.Warn("statements target another dialect than the connected database",
			a.logger.Args("dialect", asst.Dialect().DisplayName(), "hint", "sqlpilot config set dialect postgres"))
	}

	for attempt := 0; ; attempt++ {
		stop := startSpinner("Running query")
		res, err := exec.Execute(ctx, sql)
		stop()
		if err != nil {
			if perr.Is(err, perr.SafetyRejected) {
				pterm.Println("🛑 " + safety.Check(sqlexec.Clean(sql)).Reason())
			}
			return err
		}

		if !res.Failed() {
			printResult(res)
			if !runNoStats {
				printStats(sqlexec.Stats(res.Columns, res.Rows))
			}
			return nil
		}

		pterm.Println("❌ " + res.Error)
		if attempt >= maxRepairs {
			return perr.New(perr.ExecutionFailed, res.Error)
		}

		pterm.Println(hintStyle.Sprint(fmt.Sprintf("   Repair attempt %d of %d", attempt+1, maxRepairs)))
		pterm.Println()
		stop = startSpinner("Repairing statement")
		out := asst.Repair(ctx, assistant.RepairRequest{SQL: sql, Error: res.Error})
		stop()
		if err := printOutcome(a, "Repaired SQL", out); err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(out.Result.SQL), strings.TrimSpace(sql)) {
			return perr.New(perr.ExecutionFailed, "repair returned the same statement")
		}
		sql = out.Result.SQL
	}
}

// sqlArg prefers the --sql flag and falls back to positional arguments.
func sqlArg(flag string, args []string) string {
	if s := strings.TrimSpace(flag); s != "" {
		return s
	}
	return strings.TrimSpace(strings.Join(args, " "))
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runSQL, "sql", "", "Statement to execute")
	runCmd.Flags().IntVar(&runMaxRepairs, "max-repairs", 0, "Repair attempts when the database rejects the statement")
	runCmd.Flags().BoolVar(&runNoStats, "no-stats", false, "Skip the column statistics")
}

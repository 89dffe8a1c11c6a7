// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"sqlpilot/cli/internal/assistant"
	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/httperrors"
	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/sqlexec"
)

// maxDisplayRows caps the rows rendered in the terminal table.
const maxDisplayRows = 50

var (
	labelStyle = pterm.NewStyle(pterm.FgLightCyan)
	sqlStyle   = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	hintStyle  = pterm.NewStyle(pterm.FgGray)
)

// printOutcome renders a generation or repair outcome and returns the error
// the command should exit with, nil when the SQL is usable.
func printOutcome(a *app, title string, out assistant.Outcome) error {
	switch out.Status {
	case assistant.StatusOK, assistant.StatusDegraded:
		pterm.DefaultBox.
			WithTitle(sqlStyle.Sprint(title)).
			WithPadding(1).
			Println(out.Result.SQL)
		pterm.Println(labelStyle.Sprint("→ ") + out.Result.Explanation)
		if out.Rule != "" {
			pterm.Println(hintStyle.Sprint("  rewritten by dialect rule: " + out.Rule))
		}
		if out.Status == assistant.StatusDegraded {
			pterm.Println("⚠️  The model answer had no recognizable format; review the statement before running it.")
		}
	case assistant.StatusInvalidQuery:
		pterm.Println("🤔 That request does not look like a question about the database.")
		pterm.Println("   Try naming the tables or values you are interested in.")
	case assistant.StatusInputRejected:
		pterm.Println("⚠️  " + message(out.Err))
	case assistant.StatusSafetyRejected:
		pterm.Println("🛑 " + out.Verdict.Reason())
		pterm.Println("   Only read statements can be generated or executed.")
	case assistant.StatusRepairFragment:
		pterm.Println("❌ " + out.Result.Explanation)
		pterm.Println(hintStyle.Sprint("   Original statement kept: " + out.Result.SQL))
	case assistant.StatusTransportFailure:
		pterm.Println(logging.FormatModelError(out.Err))
		pterm.Println()
		httperrors.Show(out.Err, a.cfg.Model.BaseURL)
	}
	pterm.Println()

	if out.Executable() {
		return nil
	}
	return out.Err
}

// message returns the human part of a categorized error.
func message(err error) string {
	var e *perr.E
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// printResult renders rows as a table followed by a one-line summary.
func printResult(res *sqlexec.Result) {
	if len(res.Columns) == 0 {
		pterm.Println("✅ Statement executed " + hintStyle.Sprint(formatDuration(res.ExecutionTimeMS)))
		return
	}

	data := pterm.TableData{res.Columns}
	for i, row := range res.Rows {
		if i == maxDisplayRows {
			break
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cell(v)
		}
		data = append(data, cells)
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()

	summary := fmt.Sprintf("%d row(s) in %s", len(res.Rows), formatDuration(res.ExecutionTimeMS))
	if len(res.Rows) > maxDisplayRows {
		summary += fmt.Sprintf(", first %d shown", maxDisplayRows)
	}
	pterm.Println(hintStyle.Sprint(summary))
	pterm.Println()
}

// printStats renders the per-column profile of a result.
func printStats(stats []sqlexec.ColumnStats) {
	if len(stats) == 0 {
		return
	}
	data := pterm.TableData{{"Column", "Type", "Nulls", "Unique", "Top values", "Min", "Max", "Mean"}}
	for _, st := range stats {
		var top []string
		for _, vc := range st.TopValues {
			top = append(top, fmt.Sprintf("%s (%d)", vc.Value, vc.Count))
		}
		mean := ""
		if st.Mean != nil {
			mean = decimal.NewFromFloat(*st.Mean).Round(2).String()
		}
		data = append(data, []string{
			st.Column,
			st.Type,
			fmt.Sprintf("%d (%s%%)", st.NullCount, strconv.FormatFloat(st.NullPercentage, 'f', 1, 64)),
			strconv.Itoa(st.UniqueCount),
			strings.Join(top, ", "),
			deref(st.Min),
			deref(st.Max),
			mean,
		})
	}
	pterm.DefaultSection.WithLevel(2).Println("Column statistics")
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Println()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return hintStyle.Sprint("NULL")
	case time.Time:
		return x.Format(time.RFC3339)
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDuration(ms float64) string {
	return strconv.FormatFloat(ms, 'f', 2, 64) + " ms"
}

// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assistant

import (
	"context"
	"regexp"
	"strings"

	"sqlpilot/cli/internal/dialect"
	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/extract"
	"sqlpilot/cli/internal/llm"
)

const (
	repairTemperature = 0.1

	correctionLabel     = "Correction:"
	fragmentExplanation = "The model could not identify the correction."
	suggestedFixFormat  = "Suggested fix for error: "
)

var repairStops = []string{";", "```"}

var (
	reControlTokens = regexp.MustCompile(`</?s>|<\|[^|>]*\|>`)
	reFenceMarker   = regexp.MustCompile("```[A-Za-z0-9_+-]*")

	// reStatementKW finds a statement keyword opening a line; only
	// punctuation may precede it. WITH must introduce a named query so that
	// prose starting with "with" is not taken for SQL.
	reStatementKW = regexp.MustCompile(`(?im)^[^A-Za-z0-9_\n]*\b((?:SELECT|INSERT|UPDATE|DELETE|MERGE)\b|WITH\s+(?:RECURSIVE\s+)?[A-Za-z_"][^\s(]*\s*(?:\([^)]*\)\s*)?AS\b)`)
)

// Repair corrects a failed statement. Deterministic dialect rules are tried
// first; only when none applies is the model asked for a rewrite. A model
// answer that is not a complete statement is discarded and the original
// statement is returned with StatusRepairFragment.
func (a *Assistant) Repair(ctx context.Context, req RepairRequest) Outcome {
	sql := strings.TrimSpace(req.SQL)
	errText := strings.TrimSpace(req.Error)
	if sql == "" || errText == "" {
		return Outcome{
			Status: StatusInputRejected,
			Result: extract.Result{SQL: sql},
			Err:    perr.New(perr.UserInputRejected, "both the statement and its error are required"),
		}
	}

	// Forbidden statements are refused before any rewrite or model call.
	if out := gate(Outcome{Status: StatusOK, Result: extract.Result{SQL: sql}}); out.Status == StatusSafetyRejected {
		return out
	}

	if rw, ok := dialect.TryRewrite(a.dialect, sql, errText); ok {
		a.logger.Debug("rule matched", a.logger.Args("rule", rw.Rule, "dialect", string(a.dialect)))
		return gate(Outcome{
			Status: StatusOK,
			Result: extract.Result{SQL: rw.SQL, Explanation: rw.Explanation},
			Rule:   rw.Rule,
		})
	}

	prompt, err := render(repairTmpl, repairData{
		Dialect: a.dialect.DisplayName(),
		Error:   closeComment(errText),
		SQL:     sql,
	})
	if err != nil {
		return transportFailure(perr.Wrap(perr.TransportFailure, "build repair prompt", err))
	}

	raw, err := a.model.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: repairTemperature,
		Stop:        repairStops,
	})
	if err != nil {
		a.logger.Warn("repair model call failed", a.logger.Args("model", a.model.Name(), "error", err.Error()))
		return transportFailure(err)
	}

	cleaned := cleanRepair(raw)
	stmt, ok := statement(cleaned, a.dialect.MinStatementLen())
	if !ok {
		a.logger.Debug("repair fragment discarded", a.logger.Args("response", raw))
		return Outcome{
			Status: StatusRepairFragment,
			Result: extract.Result{SQL: sql, Explanation: fragmentExplanation},
			Err:    perr.New(perr.RepairFragment, "model returned an incomplete clause"),
		}
	}

	return gate(Outcome{
		Status: StatusOK,
		Result: extract.Result{
			SQL:         dialect.Paging(a.dialect, stmt),
			Explanation: extract.Explanation(cleaned, suggestedFixFormat+errText, correctionLabel),
		},
	})
}

// cleanRepair strips model control tokens and fence markers.
func cleanRepair(raw string) string {
	s := reControlTokens.ReplaceAllString(raw, "")
	s = reFenceMarker.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// statement returns the text from the first statement keyword that opens a
// line, with comment lines removed and normalization applied. It reports
// false for fragments: no such keyword, or shorter than minLen.
func statement(text string, minLen int) (string, bool) {
	var body []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		body = append(body, line)
	}
	joined := strings.Join(body, "\n")

	loc := reStatementKW.FindStringSubmatchIndex(joined)
	if loc == nil {
		return "", false
	}
	stmt := extract.Normalize(joined[loc[2]:])
	if len(stmt) < minLen {
		return "", false
	}
	return stmt, true
}

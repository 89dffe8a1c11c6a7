// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assistant

import (
	"context"
	"errors"

	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/extract"
	"sqlpilot/cli/internal/httperrors"
	"sqlpilot/cli/internal/llm"
	"sqlpilot/cli/internal/safety"
)

const (
	rejectedExplanation = "The request is too short or not meaningful enough to build a query."
	invalidExplanation  = "The request does not look like a question about the database."
)

// Generate turns a natural-language request into a gated SQL statement.
func (a *Assistant) Generate(ctx context.Context, req GenerateRequest) Outcome {
	if reason := screenInput(req.Query); reason != "" {
		a.logger.Debug("input rejected", a.logger.Args("reason", reason))
		return Outcome{
			Status: StatusInputRejected,
			Result: extract.Result{Explanation: rejectedExplanation},
			Err:    perr.New(perr.UserInputRejected, reason),
		}
	}

	prompt, err := render(generateTmpl, generateData{
		Dialect: a.dialect.DisplayName(),
		Schema:  a.schema,
		Hints:   a.dialect.PromptHints(),
		Query:   req.Query,
		Editor:  req.Mode != ModeChat,
	})
	if err != nil {
		return transportFailure(perr.Wrap(perr.TransportFailure, "build generation prompt", err))
	}

	raw, err := a.model.Generate(ctx, llm.Request{Prompt: prompt, Temperature: 0})
	if err != nil {
		a.logger.Warn("model call failed", a.logger.Args("model", a.model.Name(), "error", err.Error()))
		return transportFailure(err)
	}
	a.logger.Debug("model answered", a.logger.Args("chars", len(raw)))

	ex := extract.Generation.Extract(raw)
	if ex.Invalid {
		return Outcome{
			Status:   StatusInvalidQuery,
			Result:   extract.Result{Explanation: invalidExplanation},
			Strategy: ex.Strategy,
			Err:      perr.New(perr.ModelInvalid, "model flagged the request as unrelated to the database"),
		}
	}

	out := Outcome{Status: StatusOK, Result: ex.Result, Strategy: ex.Strategy}
	if ex.Degraded() {
		out.Status = StatusDegraded
		out.Err = perr.New(perr.ExtractionDegraded, "no structured answer found, using the raw model text")
	}
	return gate(out)
}

// gate runs the safety check on the outcome's statement.
func gate(out Outcome) Outcome {
	v := safety.Check(out.Result.SQL)
	out.Verdict = &v
	if !v.Allowed {
		out.Status = StatusSafetyRejected
		out.Err = perr.New(perr.SafetyRejected, v.Reason())
	}
	return out
}

// transportFailure builds the diagnostic outcome of a failed model call.
func transportFailure(err error) Outcome {
	if !perr.Is(err, perr.TransportFailure) {
		err = perr.Wrap(perr.TransportFailure, httperrors.Describe(err), err)
	}
	return Outcome{
		Status: StatusTransportFailure,
		Result: extract.Result{SQL: DiagnosticPrefix + diagnosticMessage(err)},
		Err:    err,
	}
}

func diagnosticMessage(err error) string {
	var e *perr.E
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

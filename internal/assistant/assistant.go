// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package assistant drives the natural-language to SQL pipeline: prompt
// construction, the model call, response extraction, safety gating and the
// two-tier repair of failed statements.
//
// An Assistant is immutable after New and safe for concurrent use. The only
// blocking step is the model call, which honors the caller's context.
package assistant

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"sqlpilot/cli/internal/dialect"
	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/llm"
)

// SchemaPlaceholder replaces the schema document when none is available.
const SchemaPlaceholder = "Schema documentation not available."

// Mode selects the output contract requested from the model.
type Mode string

const (
	// ModeChat asks for a commented SQL answer.
	ModeChat Mode = "chat"
	// ModeEditor asks for a strict JSON object.
	ModeEditor Mode = "editor"
)

// ParseMode converts a flag or request value into a Mode. Empty means editor.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "editor", "strict":
		return ModeEditor, nil
	case "chat", "conversational":
		return ModeChat, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected chat or editor)", s)
	}
}

// GenerateRequest is one natural-language submission.
type GenerateRequest struct {
	Query string
	Mode  Mode
}

// RepairRequest is one failed statement with the database error it raised.
type RepairRequest struct {
	SQL   string
	Error string
}

// Assistant runs generation and repair against one model and dialect.
type Assistant struct {
	model   llm.Model
	dialect dialect.Dialect
	schema  string
	logger  *pterm.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithDialect sets the target dialect (default Oracle).
func WithDialect(d dialect.Dialect) Option {
	return func(a *Assistant) { a.dialect = d }
}

// WithSchema sets the schema description spliced into generation prompts.
func WithSchema(schema string) Option {
	return func(a *Assistant) { a.schema = schema }
}

// WithLogger sets the logger for pipeline diagnostics.
func WithLogger(l *pterm.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

// New creates an Assistant backed by model.
func New(model llm.Model, opts ...Option) *Assistant {
	a := &Assistant{
		model:   model,
		dialect: dialect.Default,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if strings.TrimSpace(a.schema) == "" {
		a.schema = SchemaPlaceholder
	}
	return a
}

// Dialect returns the target dialect.
func (a *Assistant) Dialect() dialect.Dialect { return a.dialect }

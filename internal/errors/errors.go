// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure the generation and repair pipeline can recover from has a Kind,
// so callers can branch on the category (for example to answer 403 on a safety
// rejection) without parsing messages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// UserInputRejected marks a request too short or trivial to send to the model.
	UserInputRejected Kind = "user_input_rejected"
	// ModelInvalid marks a request the model flagged as unrelated to the database.
	ModelInvalid Kind = "model_invalid"
	// TransportFailure marks an unreachable, slow or misbehaving model service.
	TransportFailure Kind = "transport_failure"
	// ExtractionDegraded marks model text that only the verbatim fallback could use.
	ExtractionDegraded Kind = "extraction_degraded"
	// SafetyRejected marks a statement refused by the safety gate.
	SafetyRejected Kind = "safety_rejected"
	// RepairFragment marks a model repair that returned an incomplete clause.
	RepairFragment Kind = "repair_fragment"
	// ConfigInvalid marks unusable configuration values.
	ConfigInvalid Kind = "config_invalid"
	// ExecutionFailed marks a database-side failure while running a statement.
	ExecutionFailed Kind = "execution_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

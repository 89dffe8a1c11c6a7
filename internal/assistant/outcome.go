// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assistant

import (
	"strings"

	"sqlpilot/cli/internal/extract"
	"sqlpilot/cli/internal/safety"
)

// Status classifies how a generation or repair ended.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInvalidQuery     Status = "invalid_query"
	StatusInputRejected    Status = "input_rejected"
	StatusTransportFailure Status = "transport_failure"
	StatusDegraded         Status = "degraded"
	StatusSafetyRejected   Status = "safety_rejected"
	StatusRepairFragment   Status = "repair_fragment"
)

// DiagnosticPrefix starts the SQL field of a transport failure result so it
// can never be mistaken for a statement.
const DiagnosticPrefix = "Error: "

// Outcome is the value every pipeline call returns. No branch of the pipeline
// panics or returns a bare error; the Status says what happened and Err
// carries the categorized cause when there is one.
type Outcome struct {
	Status Status
	Result extract.Result
	// Strategy names the extraction strategy used by a generation.
	Strategy string
	// Rule names the dialect rule that produced a repair, if any.
	Rule string
	// Verdict is set whenever a statement went through the safety gate.
	Verdict *safety.Verdict
	Err     error
}

// Executable reports whether Result.SQL may be sent to a database.
func (o Outcome) Executable() bool {
	return o.Status == StatusOK || o.Status == StatusDegraded
}

// IsDiagnostic reports whether sql is a transport failure marker.
func IsDiagnostic(sql string) bool {
	return strings.HasPrefix(sql, DiagnosticPrefix)
}

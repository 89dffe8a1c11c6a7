// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package llm provides the client for the external language model service.
// It defines the contract the assistant depends on and an HTTP implementation
// for Ollama-compatible /api/generate endpoints.
package llm

import "context"

// Request is one non-streaming completion request.
type Request struct {
	Prompt      string
	Temperature float64
	// Stop lists sequences that end generation early.
	Stop []string
}

// Model generates text for a prompt.
// Implementations may call a real HTTP endpoint or provide fakes for tests.
// Any transport problem (unreachable service, timeout, non-success status,
// malformed body) is reported as an error of kind transport_failure.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
	// Name returns the model name for display.
	Name() string
}

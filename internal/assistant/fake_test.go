// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assistant

import (
	"context"
	"sync"

	"sqlpilot/cli/internal/llm"
)

// fakeModel replays scripted answers and records every request.
type fakeModel struct {
	mu       sync.Mutex
	answers  []string
	err      error
	requests []llm.Request
}

func (f *fakeModel) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) == 0 {
		return "", nil
	}
	out := f.answers[0]
	f.answers = f.answers[1:]
	return out, nil
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

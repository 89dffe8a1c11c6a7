// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	perr "sqlpilot/cli/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want pterm.LogLevel
	}{
		{"debug", pterm.LogLevelDebug},
		{" WARN ", pterm.LogLevelWarn},
		{"error", pterm.LogLevelError},
		{"off", pterm.LogLevelDisabled},
		{"", pterm.LogLevelInfo},
		{"verbose", pterm.LogLevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf)

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info record written at warn level: %q", buf.String())
	}

	logger.Warn("shown", logger.Args("rule", "paging"))
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "paging") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestFormatModelError_MasksDetails(t *testing.T) {
	err := perr.Wrap(perr.TransportFailure, "cannot reach model service",
		errors.New("dial postgres://bob:hunter2@db:5432/app: connection refused"))

	out := FormatModelError(err)
	if strings.Contains(out, "hunter2") {
		t.Fatalf("password leaked: %q", out)
	}
	if !strings.Contains(out, "could not be reached") {
		t.Fatalf("expected refused description, got %q", out)
	}
}

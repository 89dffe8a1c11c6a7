// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassGeneric},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ClassTimeout},
		{"client timeout text", errors.New("Client.Timeout exceeded while awaiting headers"), ClassTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "ollama.local"}, ClassDNS},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ClassRefused},
		{"tls", errors.New("x509: certificate signed by unknown authority"), ClassTLS},
		{"server", errors.New("model service returned 503 Service Unavailable"), ClassServer},
		{"other", errors.New("unexpected EOF"), ClassGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(context.DeadlineExceeded); got != "model service timed out" {
		t.Errorf("Describe(deadline) = %q", got)
	}
	if got := Describe(errors.New("boom")); got != "cannot reach model service" {
		t.Errorf("Describe(generic) = %q", got)
	}
}

func TestExtractHostFromURL(t *testing.T) {
	tests := map[string]string{
		"http://127.0.0.1:11434":      "127.0.0.1:11434",
		"https://llm.example.com/api": "llm.example.com",
		"not a url":                   "server",
		"":                            "server",
	}
	for in, want := range tests {
		if got := ExtractHostFromURL(in); got != want {
			t.Errorf("ExtractHostFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

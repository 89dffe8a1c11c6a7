// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors classifies HTTP/network failures when talking to the model
// service and renders user-friendly troubleshooting hints.
package httperrors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Class is the category of a network failure.
type Class int

const (
	ClassGeneric Class = iota
	ClassTimeout
	ClassDNS
	ClassRefused
	ClassTLS
	ClassServer
)

// Classify detects common error types (timeout, DNS, connection refused,
// SSL, server errors).
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassGeneric
	case isTimeoutError(err):
		return ClassTimeout
	case isDNSError(err):
		return ClassDNS
	case isConnectionRefusedError(err):
		return ClassRefused
	case isSSLError(err):
		return ClassTLS
	case isServerError(err.Error()):
		return ClassServer
	default:
		return ClassGeneric
	}
}

// Describe returns a short message for err suitable for diagnostics.
func Describe(err error) string {
	switch Classify(err) {
	case ClassTimeout:
		return "model service timed out"
	case ClassDNS:
		return "cannot resolve model service address"
	case ClassRefused:
		return "model service refused the connection"
	case ClassTLS:
		return "secure connection to model service failed"
	case ClassServer:
		return "model service returned a server error"
	default:
		return "cannot reach model service"
	}
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate")
}

// isServerError checks if the error indicates a server-side problem (5xx errors).
func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, code := range []string{" 500", " 502", " 503", " 504"} {
		if strings.Contains(lower, code) {
			return true
		}
	}
	return strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "bad gateway") ||
		strings.Contains(lower, "service unavailable") ||
		strings.Contains(lower, "gateway timeout")
}

// Show prints troubleshooting hints for a failed model call to baseURL.
func Show(err error, baseURL string) {
	host := ExtractHostFromURL(baseURL)
	switch Classify(err) {
	case ClassTimeout:
		pterm.Printf("⏱️  The model at %s took too long to respond\n", host)
		pterm.Println("  • Large models can be slow on first load; try again")
		pterm.Println("  • Raise the timeout: sqlpilot config set model.timeout_seconds 90")
	case ClassRefused, ClassDNS:
		pterm.Printf("🚫 Cannot reach the model service at %s\n", host)
		pterm.Println("  • Is Ollama running? Start it with: ollama serve")
		pterm.Println("  • Check the URL: sqlpilot config set model.base_url http://127.0.0.1:11434")
	case ClassTLS:
		pterm.Printf("🔒 Secure connection to %s failed\n", host)
		pterm.Println("  • Check the certificate or use plain http for a local service")
	case ClassServer:
		pterm.Printf("⚠️  The model service at %s reported an internal error\n", host)
		pterm.Println("  • Check that the model is pulled: ollama pull <model>")
	default:
		pterm.Printf("❌ The model call to %s failed\n", host)
	}
	pterm.Println()
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/httperrors"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatModelError renders a failed model call for the terminal: a title,
// what probably happened, and the masked technical details.
func FormatModelError(err error) string {
	var b strings.Builder

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Model unavailable"))
	b.WriteString("\n\n")

	switch httperrors.Classify(err) {
	case httperrors.ClassTimeout:
		b.WriteString("The language model did not answer in time.\n")
		b.WriteString("The first request after a model load is often the slowest.\n")
	case httperrors.ClassRefused, httperrors.ClassDNS:
		b.WriteString("The language model service could not be reached.\n")
	case httperrors.ClassServer:
		b.WriteString("The language model service reported an internal error.\n")
	default:
		if perr.Is(err, perr.TransportFailure) {
			b.WriteString("The language model service returned an unusable answer.\n")
		} else {
			b.WriteString("The request to the language model failed.\n")
		}
	}

	if err != nil {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}
	return b.String()
}

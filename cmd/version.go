// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

var (
	// Version holds the CLI version, set at build time with -ldflags.
	Version = "0.0.0-dev"
)

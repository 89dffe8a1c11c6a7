// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn detects, parses and normalizes database connection strings.
//
// Only PostgreSQL DSNs can be executed. Oracle and MySQL strings are
// recognized so the user gets a precise message instead of a driver error.
package dsn

import "fmt"

// DBType is the database family a DSN points at.
type DBType string

const (
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeMySQL      DBType = "mysql"
	DBTypeOracle     DBType = "oracle"
	DBTypeUnknown    DBType = "unknown"
)

// Info holds the parts of a parsed DSN.
type Info struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// ParseError describes why a DSN was refused and how to fix it.
type ParseError struct {
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN: %s", e.Reason)
}

func parseError(reason, hint string) *ParseError {
	return &ParseError{Reason: reason, Hint: hint}
}

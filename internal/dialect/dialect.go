// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dialect translates foreign-dialect SQL constructs into the target
// dialect with a small table of deterministic text-rewrite rules.
//
// Rules are data: each one pairs a trigger predicate over the failing statement
// and its database error with a transform and a fixed explanation. Tables are
// built once at package init and only read afterwards, so they are safe for
// concurrent use without locking. The engine is textual only; it does not parse SQL.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect identifies the SQL syntax variant of the target database.
type Dialect string

const (
	Oracle   Dialect = "oracle"
	Postgres Dialect = "postgres"
)

// Default is the dialect used when none is configured.
const Default = Oracle

// Parse converts a configuration value into a Dialect.
func Parse(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "oracle":
		return Oracle, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (expected oracle or postgres)", s)
	}
}

// DisplayName returns the human name used in prompts.
func (d Dialect) DisplayName() string {
	switch d {
	case Postgres:
		return "PostgreSQL"
	default:
		return "Oracle SQL"
	}
}

// MinStatementLen is the length of the shortest complete query in d:
// "SELECT 1" in PostgreSQL, Oracle needs a FROM clause.
func (d Dialect) MinStatementLen() int {
	switch d {
	case Postgres:
		return len("SELECT 1")
	default:
		return 10
	}
}

// PromptHints returns dialect-specific syntax reminders for generation prompts.
func (d Dialect) PromptHints() []string {
	switch d {
	case Postgres:
		return []string{
			"Use PostgreSQL syntax (LIMIT n for paging, CURRENT_DATE / NOW() for dates, COALESCE instead of NVL).",
		}
	default:
		return []string{
			"Use Oracle SQL syntax (TO_DATE for dates, SYSDATE for the current date).",
			"Limit rows with FETCH FIRST n ROWS ONLY, never LIMIT.",
		}
	}
}

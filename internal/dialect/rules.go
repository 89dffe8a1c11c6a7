// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"regexp"
	"strings"
)

// Rule is a single deterministic rewrite.
type Rule struct {
	// Name identifies the rule in logs and outcomes.
	Name string
	// Trigger reports whether the rule applies to a failing statement and its error text.
	Trigger func(sql, errText string) bool
	// Transform rewrites the statement.
	Transform func(sql string) string
	// Explanation is reported to the user when the rule fires.
	Explanation string
}

var (
	reLimitClause = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	reLimitFix    = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)(\s*;)?`)
	reNowCall     = regexp.MustCompile(`(?i)\bNOW\s*\(\s*\)`)
	reSysdate     = regexp.MustCompile(`(?i)\bSYSDATE\b`)
	reNVLCall     = regexp.MustCompile(`(?i)\bNVL\s*\(`)
)

// oracleSyntaxCodes are the errors Oracle raises for a LIMIT clause.
var oracleSyntaxCodes = []string{"ORA-00933", "ORA-00900", "ORA-03049"}

var pagingRule = Rule{
	Name: "paging",
	Trigger: func(sql, errText string) bool {
		return reLimitClause.MatchString(sql) && containsAny(errText, oracleSyntaxCodes)
	},
	Transform:   fetchFirst,
	Explanation: "Syntax fix: LIMIT replaced by FETCH FIRST n ROWS ONLY (Oracle).",
}

// tables maps each dialect to its ordered rules. The first rule whose trigger
// holds wins; rules are never composed in one pass.
var tables = map[Dialect][]Rule{
	Oracle: {
		pagingRule,
		{
			Name: "current-date",
			Trigger: func(sql, _ string) bool {
				return reNowCall.MatchString(sql)
			},
			Transform: func(sql string) string {
				return reNowCall.ReplaceAllString(sql, "SYSDATE")
			},
			Explanation: "Syntax fix: NOW() replaced by SYSDATE (Oracle).",
		},
		{
			Name: "concat",
			Trigger: func(sql, errText string) bool {
				return strings.Contains(errText, "ORA-00909") && hasWideConcat(sql)
			},
			Transform:   rewriteConcat,
			Explanation: "Syntax fix: CONCAT with more than two arguments replaced by the || operator (Oracle).",
		},
	},
	Postgres: {
		{
			Name: "current-date",
			Trigger: func(sql, _ string) bool {
				return reSysdate.MatchString(sql)
			},
			Transform: func(sql string) string {
				return reSysdate.ReplaceAllString(sql, "CURRENT_TIMESTAMP")
			},
			Explanation: "Syntax fix: SYSDATE replaced by CURRENT_TIMESTAMP (PostgreSQL).",
		},
		{
			Name: "null-function",
			Trigger: func(sql, errText string) bool {
				lower := strings.ToLower(errText)
				return reNVLCall.MatchString(sql) &&
					(strings.Contains(lower, "42883") || strings.Contains(lower, "function nvl"))
			},
			Transform: func(sql string) string {
				return reNVLCall.ReplaceAllString(sql, "COALESCE(")
			},
			Explanation: "Syntax fix: NVL replaced by COALESCE (PostgreSQL).",
		},
	},
}

// Rules returns a copy of the ordered rule table for d.
func Rules(d Dialect) []Rule {
	src := tables[d]
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}

// fetchFirst replaces every LIMIT n (and a trailing terminator) with FETCH FIRST n ROWS ONLY.
func fetchFirst(sql string) string {
	return reLimitFix.ReplaceAllString(sql, "FETCH FIRST $1 ROWS ONLY")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

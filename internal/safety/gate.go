// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package safety rejects statements of forbidden kinds before they reach a database.
//
// The gate is an advisory layer, not a grammar check: it matches a fixed list of
// statement keywords as whole words. String literals, quoted identifiers and
// comments are masked before matching, so a value such as 'INSERT here' does not
// trigger a rejection. When a quote or comment boundary is ambiguous the rest of
// the statement is matched unmasked. Obfuscated injection is not detected.
package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Forbidden lists the rejected statement keywords in priority order.
var Forbidden = []string{"DROP", "DELETE", "TRUNCATE", "UPDATE", "ALTER", "CREATE", "GRANT", "REVOKE", "INSERT"}

var forbiddenPatterns = compile(Forbidden)

func compile(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		out[i] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return out
}

// Verdict is the gate's decision for one candidate statement.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Keyword string `json:"violated_keyword,omitempty"`
}

// Reason returns a user-facing message for a rejected verdict.
func (v Verdict) Reason() string {
	if v.Allowed {
		return ""
	}
	return fmt.Sprintf("Security: the '%s' statement is not allowed in this editor.", v.Keyword)
}

// Check tests sql against the forbidden keywords. The statement itself is not
// modified; matching happens on a masked, uppercased copy.
func Check(sql string) Verdict {
	upper := strings.ToUpper(mask(sql))
	for i, re := range forbiddenPatterns {
		if re.MatchString(upper) {
			return Verdict{Allowed: false, Keyword: Forbidden[i]}
		}
	}
	return Verdict{Allowed: true}
}

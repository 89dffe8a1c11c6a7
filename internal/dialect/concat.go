// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"regexp"
	"strings"
)

var reConcatCall = regexp.MustCompile(`(?i)\bCONCAT\s*\(`)

// maxConcatRewrites bounds the rewrite loop for pathological input.
const maxConcatRewrites = 32

// hasWideConcat reports whether sql has a CONCAT call with more than two arguments.
func hasWideConcat(sql string) bool {
	_, _, _, ok := findWideConcat(sql)
	return ok
}

// rewriteConcat turns every CONCAT(a, b, c, ...) into (a || b || c || ...).
// Two-argument calls are valid Oracle and stay untouched.
func rewriteConcat(sql string) string {
	for i := 0; i < maxConcatRewrites; i++ {
		start, end, args, ok := findWideConcat(sql)
		if !ok {
			break
		}
		sql = sql[:start] + "(" + strings.Join(args, " || ") + ")" + sql[end:]
	}
	return sql
}

// findWideConcat locates the first CONCAT call with more than two top-level
// arguments. start/end delimit the whole call including the closing paren.
func findWideConcat(sql string) (start, end int, args []string, ok bool) {
	for _, loc := range reConcatCall.FindAllStringIndex(sql, -1) {
		a, closeIdx, found := splitArgs(sql, loc[1])
		if !found || len(a) <= 2 {
			continue
		}
		return loc[0], closeIdx + 1, a, true
	}
	return 0, 0, nil, false
}

// splitArgs splits the argument list starting at from (just past the opening
// paren) on top-level commas. Parentheses nest, quoted text is opaque.
// It returns the trimmed arguments and the index of the closing paren.
func splitArgs(sql string, from int) ([]string, int, bool) {
	depth := 1
	argStart := from
	var args []string
	var quote byte

	for i := from; i < len(sql); i++ {
		c := sql[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				args = append(args, strings.TrimSpace(sql[argStart:i]))
				return args, i, true
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(sql[argStart:i]))
				argStart = i + 1
			}
		}
	}
	return nil, 0, false
}

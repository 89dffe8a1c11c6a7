// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package safety

import "bytes"

// region is a literal or comment found by scan: content [from, to) is
// blanked and scanning resumes at next.
type region struct {
	from, to, next int
}

// mask blanks out quoted text and comments so keywords inside them cannot
// match. The output has the same length as the input.
//
// Masking stops at the first region whose end is unknown or depends on the
// dialect or server settings: unterminated literals and comments, literals
// holding a backslash (E'' strings, standard_conforming_strings) and Oracle
// q'' quoting. Everything from there on stays visible to the matcher.
func mask(sql string) string {
	b := []byte(sql)
	for i := 0; i < len(b); {
		r, found, ok := scan(b, i)
		if !found {
			i++
			continue
		}
		if !ok {
			break
		}
		for k := r.from; k < r.to; k++ {
			b[k] = ' '
		}
		i = r.next
	}
	return string(b)
}

// scan reports the region starting at i. found is false when no literal or
// comment starts there; ok is false when its boundary is ambiguous.
func scan(b []byte, i int) (r region, found, ok bool) {
	switch c := b[i]; {
	case c == '-' && at(b, i+1) == '-':
		j := i
		for j < len(b) && b[j] != '\n' {
			j++
		}
		return region{i, j, j}, true, true
	case c == '/' && at(b, i+1) == '*':
		// PostgreSQL nests block comments; stopping at the first "*/" never
		// hides more than the server does.
		end := bytes.Index(b[i+2:], []byte("*/"))
		if end < 0 {
			return region{}, true, false
		}
		to := i + 2 + end
		return region{i + 2, to, to + 2}, true, true
	case c == '"':
		return quoted(b, i, '"')
	case c == '\'':
		if p := at(b, i-1); (p == 'q' || p == 'Q') && !isIdent(at(b, i-2)) {
			return region{}, true, false
		}
		return quoted(b, i, '\'')
	case c == '$':
		return dollar(b, i)
	}
	return region{}, false, false
}

// quoted handles '...' and "..." with doubled-quote escapes.
func quoted(b []byte, i int, q byte) (region, bool, bool) {
	for j := i + 1; j < len(b); j++ {
		switch b[j] {
		case '\\':
			if q == '\'' {
				return region{}, true, false
			}
		case q:
			if at(b, j+1) == q {
				j++
				continue
			}
			return region{i + 1, j, j + 1}, true, true
		}
	}
	return region{}, true, false
}

// dollar handles PostgreSQL $tag$...$tag$ strings. Positional parameters
// ($1) and identifiers containing '$' are not quotes.
func dollar(b []byte, i int) (region, bool, bool) {
	if isIdent(at(b, i-1)) || isDigit(at(b, i+1)) {
		return region{}, false, false
	}
	j := i + 1
	for j < len(b) && isIdent(b[j]) && b[j] != '$' {
		j++
	}
	if at(b, j) != '$' {
		return region{}, false, false
	}
	delim := b[i : j+1]
	end := bytes.Index(b[j+1:], delim)
	if end < 0 {
		return region{}, true, false
	}
	to := j + 1 + end
	return region{j + 1, to, to + len(delim)}, true, true
}

// at returns b[i], or 0 when i is out of range.
func at(b []byte, i int) byte {
	if i < 0 || i >= len(b) {
		return 0
	}
	return b[i]
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' || isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'z') || c >= 0x80
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

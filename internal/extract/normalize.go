// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package extract

import (
	"regexp"
	"strings"
)

const fence = "```"

var (
	// reLeadingNoise matches stray markup before the statement. Letters, digits,
	// whitespace, comment markers, '/' and '(' may start a statement and stay.
	reLeadingNoise = regexp.MustCompile(`^[^\p{L}\p{N}\s\-/(]+`)
	reFenceOpen    = regexp.MustCompile("^```[A-Za-z0-9_+-]*")
)

// unescape turns literal \n and \" sequences into a newline and a quote.
func unescape(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\"`, `"`).Replace(s)
}

// Normalize cleans a candidate statement: escapes are resolved, fence markers,
// JSON braces and leading noise are removed, and the trailing terminator is dropped.
func Normalize(sql string) string {
	s := strings.TrimSpace(unescape(sql))

	for {
		before := s
		s = reFenceOpen.ReplaceAllString(s, "")
		s = reLeadingNoise.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, fence)
		s = strings.TrimRight(s, " \t\r\n;}")
		if s == before {
			return s
		}
	}
}

// StripLeadingComments drops blank lines and "--" comment lines that precede
// the first statement line.
func StripLeadingComments(sql string) string {
	lines := strings.Split(sql, "\n")
	i := 0
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if t != "" && !strings.HasPrefix(t, "--") {
			break
		}
		i++
	}
	return strings.Join(lines[i:], "\n")
}

// CommentLines returns up to limit "--" comment lines of text, marker removed.
func CommentLines(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "--") {
			continue
		}
		out = append(out, strings.TrimSpace(strings.TrimLeft(t, "-")))
		if len(out) == limit {
			break
		}
	}
	return out
}

// Explanation joins the first two comment lines of text and keeps what follows
// the first label found. Without a label, or without comments, it returns fallback.
func Explanation(text, fallback string, labels ...string) string {
	joined := strings.Join(CommentLines(unescape(text), 2), " ")
	if joined == "" {
		return fallback
	}
	lower := strings.ToLower(joined)
	if len(lower) != len(joined) {
		lower = joined
	}
	for _, label := range labels {
		idx := strings.Index(lower, strings.ToLower(label))
		if idx == -1 {
			continue
		}
		if out := strings.TrimSpace(joined[idx+len(label):]); out != "" {
			return out
		}
	}
	return fallback
}

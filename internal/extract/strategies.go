// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// reFence matches the first fenced block; an optional language tag must be
	// followed by a line break to be treated as a tag.
	reFence = regexp.MustCompile("(?s)```(?:[A-Za-z0-9_+-]*[ \t]*\r?\n)?(.*?)```")
	// reKeyValue matches a quoted "sql": value, honoring escaped quotes.
	reKeyValue = regexp.MustCompile(`"sql"\s*:\s*"((?:[^"\\]|\\.)*)"`)

	reKeyValueExplanation = regexp.MustCompile(`"explanation"\s*:\s*"((?:[^"\\]|\\.)*)"`)

	// reInlineTag matches a language tag written on the same line as the fence.
	reInlineTag = regexp.MustCompile(`(?i)^sql[ \t]+`)
)

func containsSentinel(raw string) bool {
	return strings.Contains(raw, Sentinel)
}

type payload struct {
	SQL         *string `json:"sql"`
	Explanation string  `json:"explanation"`
}

// structured parses the span between the first '{' and the last '}' as a JSON
// object carrying a sql field.
func (x *Extractor) structured(raw string) (Result, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return Result{}, false
	}

	var p payload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil || p.SQL == nil {
		return Result{}, false
	}
	sql := Normalize(*p.SQL)
	if sql == "" {
		return Result{}, false
	}

	explanation := strings.TrimSpace(p.Explanation)
	if explanation == "" {
		explanation = x.fallback
	}
	return Result{SQL: sql, Explanation: explanation}, true
}

// fenced takes the content of the first fenced code block. A block holding
// an object is read as a payload, never as a statement.
func (x *Extractor) fenced(raw string) (Result, bool) {
	m := reFence.FindStringSubmatch(raw)
	if m == nil {
		return Result{}, false
	}
	body := reInlineTag.ReplaceAllString(strings.TrimSpace(m[1]), "")
	if strings.HasPrefix(body, "{") {
		if res, ok := x.structured(body); ok {
			return res, true
		}
		return x.keyValue(body)
	}
	return x.fromBody(raw, body)
}

// keyValue takes the quoted string following a "sql": token, and the
// "explanation": value next to it when that one is complete.
func (x *Extractor) keyValue(raw string) (Result, bool) {
	m := reKeyValue.FindStringSubmatch(raw)
	if m == nil {
		return Result{}, false
	}
	res, ok := x.fromBody(raw, m[1])
	if e := reKeyValueExplanation.FindStringSubmatch(raw); ok && e != nil {
		if text := strings.TrimSpace(unescape(e[1])); text != "" {
			res.Explanation = text
		}
	}
	return res, ok
}

// verbatim treats the whole text as the statement.
func (x *Extractor) verbatim(raw string) Result {
	res, _ := x.fromBody(raw, raw)
	if res.Explanation == "" {
		res.Explanation = x.fallback
	}
	return res
}

// fromBody builds a result from a candidate statement body, taking the
// explanation from the comment lines of the full raw text.
func (x *Extractor) fromBody(raw, body string) (Result, bool) {
	sql := Normalize(StripLeadingComments(unescape(body)))
	if sql == "" {
		return Result{Explanation: x.Explanation(raw)}, false
	}
	return Result{SQL: sql, Explanation: x.Explanation(raw)}, true
}

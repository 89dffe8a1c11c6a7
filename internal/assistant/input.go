// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assistant

import (
	"strings"
	"unicode"
)

const minQueryLen = 3

// trivialInputs are requests that are never worth a model call.
var trivialInputs = map[string]struct{}{
	"abc":    {},
	"test":   {},
	"test1":  {},
	"dqdqd":  {},
	"asdf":   {},
	"qwerty": {},
	"azerty": {},
}

// screenInput reports why q should be rejected before reaching the model.
// An empty reason means the request may proceed.
func screenInput(q string) string {
	t := strings.TrimSpace(q)
	if len([]rune(t)) < minQueryLen {
		return "request is too short"
	}
	if _, ok := trivialInputs[strings.ToLower(t)]; ok {
		return "request is a placeholder, not a question"
	}
	if keyboardMash(t) {
		return "request looks like random characters"
	}
	return ""
}

// keyboardMash matches a single alphabetic word built from at most two
// distinct letters, such as "dqdqd" or "aaaa".
func keyboardMash(s string) bool {
	letters := map[rune]struct{}{}
	n := 0
	for _, r := range strings.ToLower(s) {
		if !unicode.IsLetter(r) {
			return false
		}
		letters[r] = struct{}{}
		n++
	}
	return n >= minQueryLen && len(letters) <= 2
}

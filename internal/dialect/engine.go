// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

// Rewrite is the result of a rule that fired.
type Rewrite struct {
	SQL         string
	Explanation string
	Rule        string
}

// TryRewrite applies the first rule of d whose trigger holds for (sql, errText).
// It reports false when no rule matches, which tells the caller to escalate
// to model-assisted repair. A second remaining issue needs another cycle.
func TryRewrite(d Dialect, sql, errText string) (Rewrite, bool) {
	for _, r := range tables[d] {
		if !r.Trigger(sql, errText) {
			continue
		}
		return Rewrite{
			SQL:         r.Transform(sql),
			Explanation: r.Explanation,
			Rule:        r.Name,
		}, true
	}
	return Rewrite{}, false
}

// Paging applies d's paging substitution unconditionally. Dialects whose
// paging syntax needs no translation return sql unchanged.
func Paging(d Dialect, sql string) string {
	if d != Oracle {
		return sql
	}
	return fetchFirst(sql)
}

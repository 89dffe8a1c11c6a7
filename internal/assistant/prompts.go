// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assistant

import (
	"strings"
	"text/template"
)

var generateTmpl = template.Must(template.New("generate").Parse(`You are an {{.Dialect}} expert. Translate the natural-language request into one valid {{.Dialect}} query.
Use only the following schema to build your queries:
{{.Schema}}

Important rules:
- If the request is incoherent, made of random characters (for example "dqdqd"), or unrelated to a database, answer EXACTLY: INVALID_QUERY
{{- range .Hints}}
- {{.}}
{{- end}}
- Do not put quotes around table or column names.
- NEVER end the query with a semicolon (;).
{{if .Editor}}
Answer ONLY with a JSON object of the form {"sql": "<query>", "explanation": "<one sentence>"} and nothing else.

User request: {{.Query}}
JSON:{{else}}
Start your answer with one comment line "-- Explication: <one sentence>" followed by the SQL query. No other text.

User request: {{.Query}}
SQL:{{end}}`))

var repairTmpl = template.Must(template.New("repair").Parse(`/*
 * Database: {{.Dialect}}
 * Task: Fix the query below based on the error message.
 * Error Message: {{.Error}}
 * Return ONE complete statement, never a bare clause, preceded by a single
 * comment line starting with "-- Correction:" that explains the fix.
 */

-- Original Query:
{{.SQL}}

-- Corrected Query ({{.Dialect}} syntax):
`))

type generateData struct {
	Dialect string
	Schema  string
	Hints   []string
	Query   string
	Editor  bool
}

type repairData struct {
	Dialect string
	Error   string
	SQL     string
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// closeComment keeps user text from terminating the prompt's block comment.
func closeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "* /")
}

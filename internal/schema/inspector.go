// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package schema

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"sqlpilot/cli/internal/sqlexec"
)

// Column describes one table column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	// Allowed lists values permitted by a CHECK constraint, if any.
	Allowed []string
}

// Table describes one table of the inspected schema.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
}

// Inspector reads table metadata from information_schema.
type Inspector struct {
	db sqlexec.Querier
}

// NewInspector creates an Inspector over db.
func NewInspector(db sqlexec.Querier) *Inspector {
	return &Inspector{db: db}
}

const columnsQuery = `
	SELECT c.table_name, c.column_name, c.data_type, c.is_nullable = 'YES'
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
	WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
	ORDER BY c.table_name, c.ordinal_position`

const primaryKeyQuery = `
	SELECT kc.table_name, kc.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kc
	  ON tc.constraint_name = kc.constraint_name AND tc.table_schema = kc.table_schema
	WHERE tc.table_schema = $1 AND tc.constraint_type = 'PRIMARY KEY'
	ORDER BY kc.table_name, kc.ordinal_position`

const checkQuery = `
	SELECT ccu.table_name, ccu.column_name, cc.check_clause
	FROM information_schema.check_constraints cc
	JOIN information_schema.constraint_column_usage ccu
	  ON cc.constraint_name = ccu.constraint_name AND cc.constraint_schema = ccu.constraint_schema
	WHERE cc.constraint_schema = $1`

// Tables returns the base tables of schemaName ("public" when empty).
func (in *Inspector) Tables(ctx context.Context, schemaName string) ([]Table, error) {
	if schemaName == "" {
		schemaName = "public"
	}

	var tables []Table
	index := map[string]int{}

	rows, err := in.db.Query(ctx, columnsQuery, schemaName)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var table string
		var col Column
		if err := rows.Scan(&table, &col.Name, &col.Type, &col.Nullable); err != nil {
			rows.Close()
			return nil, err
		}
		i, ok := index[table]
		if !ok {
			i = len(tables)
			index[table] = i
			tables = append(tables, Table{Name: table})
		}
		tables[i].Columns = append(tables[i].Columns, col)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := in.eachPair(ctx, primaryKeyQuery, schemaName, false, func(table, column, _ string) {
		if i, ok := index[table]; ok {
			tables[i].PrimaryKey = append(tables[i].PrimaryKey, column)
		}
	}); err != nil {
		return nil, err
	}

	// CHECK constraints only enrich the description; failures are ignored.
	_ = in.eachPair(ctx, checkQuery, schemaName, true, func(table, column, clause string) {
		i, ok := index[table]
		if !ok {
			return
		}
		for ci := range tables[i].Columns {
			if tables[i].Columns[ci].Name == column {
				tables[i].Columns[ci].Allowed = extractEnumValues(clause)
			}
		}
	})

	return tables, nil
}

// eachPair scans (table, column[, extra]) rows of query.
func (in *Inspector) eachPair(ctx context.Context, query, schemaName string, withExtra bool, fn func(table, column, extra string)) error {
	rows, err := in.db.Query(ctx, query, schemaName)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var table, column, extra string
		dest := []any{&table, &column}
		if withExtra {
			dest = append(dest, &extra)
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		fn(table, column, extra)
	}
	return rows.Err()
}

// Describe renders the tables of schemaName as a Markdown document suitable
// for a generation prompt.
func (in *Inspector) Describe(ctx context.Context, schemaName string) (string, error) {
	tables, err := in.Tables(ctx, schemaName)
	if err != nil {
		return "", err
	}
	return Render(tables), nil
}

// Render formats tables as Markdown.
func Render(tables []Table) string {
	if len(tables) == 0 {
		return Placeholder
	}
	var b strings.Builder
	b.WriteString("# Database schema\n")
	for _, t := range tables {
		fmt.Fprintf(&b, "\n## %s\n\n", strings.ToUpper(t.Name))
		if len(t.PrimaryKey) > 0 {
			fmt.Fprintf(&b, "Primary key: %s\n\n", strings.ToUpper(strings.Join(t.PrimaryKey, ", ")))
		}
		b.WriteString("| Column | Type | Nullable | Notes |\n|---|---|---|---|\n")
		for _, c := range t.Columns {
			null := "NO"
			if c.Nullable {
				null = "YES"
			}
			notes := ""
			if len(c.Allowed) > 0 {
				notes = "one of " + strings.Join(c.Allowed, ", ")
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", strings.ToUpper(c.Name), c.Type, null, notes)
		}
	}
	return b.String()
}

var (
	reInList  = regexp.MustCompile(`(?i)IN\s*\(\s*([^)]+)\)`)
	reAnyList = regexp.MustCompile(`(?i)=\s*ANY\s*\(\s*\(?\s*ARRAY\s*\[([^\]]+)\]`)
)

// extractEnumValues pulls the allowed values from a CHECK clause such as
// "status IN ('new','paid')" or "status = ANY (ARRAY['new'::text, 'paid'::text])".
func extractEnumValues(clause string) []string {
	for _, re := range []*regexp.Regexp{reInList, reAnyList} {
		if m := re.FindStringSubmatch(clause); len(m) > 1 {
			return parseValueList(m[1])
		}
	}
	return nil
}

func parseValueList(list string) []string {
	var out []string
	for _, v := range strings.Split(list, ",") {
		v = strings.TrimSpace(v)
		if i := strings.Index(v, "::"); i >= 0 {
			v = v[:i]
		}
		v = strings.Trim(v, `'"() `)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

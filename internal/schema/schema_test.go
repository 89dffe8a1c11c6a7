// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	got, err := Load(filepath.Join(dir, "missing.md"))
	require.NoError(t, err)
	assert.Equal(t, Placeholder, got)

	empty := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
	got, err = Load(empty)
	require.NoError(t, err)
	assert.Equal(t, Placeholder, got)

	doc := filepath.Join(dir, "nested", "database_schema.md")
	require.NoError(t, Save(doc, "## CLIENTS\n- CLIENT_ID\n"))
	got, err = Load(doc)
	require.NoError(t, err)
	assert.Equal(t, "## CLIENTS\n- CLIENT_ID", got)
}

func TestExtractEnumValues(t *testing.T) {
	tests := []struct {
		clause string
		want   []string
	}{
		{"(statut IN ('EN_COURS', 'LIVREE', 'ANNULEE'))", []string{"EN_COURS", "LIVREE", "ANNULEE"}},
		{"((status)::text = ANY ((ARRAY['new'::character varying, 'paid'::character varying])::text[]))", []string{"new", "paid"}},
		{"(prix_unitaire > (0)::numeric)", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractEnumValues(tt.clause), tt.clause)
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, Placeholder, Render(nil))

	out := Render([]Table{{
		Name:       "commandes",
		PrimaryKey: []string{"commande_id"},
		Columns: []Column{
			{Name: "commande_id", Type: "integer"},
			{Name: "statut", Type: "text", Nullable: true, Allowed: []string{"EN_COURS", "LIVREE"}},
		},
	}})
	assert.Contains(t, out, "## COMMANDES")
	assert.Contains(t, out, "Primary key: COMMANDE_ID")
	assert.Contains(t, out, "| COMMANDE_ID | integer | NO |  |")
	assert.Contains(t, out, "| STATUT | text | YES | one of EN_COURS, LIVREE |")
}

// scanRows is a pgx.Rows over string and bool cells.
type scanRows struct {
	data [][]any
	i    int
}

func (r *scanRows) Close()                                       {}
func (r *scanRows) Err() error                                   { return nil }
func (r *scanRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *scanRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *scanRows) Next() bool                                   { r.i++; return r.i <= len(r.data) }
func (r *scanRows) Values() ([]any, error)                       { return r.data[r.i-1], nil }
func (r *scanRows) RawValues() [][]byte                          { return nil }
func (r *scanRows) Conn() *pgx.Conn                              { return nil }
func (r *scanRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *bool:
			*p = row[i].(bool)
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

type catalogDB struct {
	failChecks bool
}

func (c catalogDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	switch {
	case strings.Contains(sql, "information_schema.columns c"):
		return &scanRows{data: [][]any{
			{"clients", "client_id", "integer", false},
			{"clients", "nom", "text", false},
			{"commandes", "commande_id", "integer", false},
			{"commandes", "statut", "text", true},
		}}, nil
	case strings.Contains(sql, "PRIMARY KEY"):
		return &scanRows{data: [][]any{
			{"clients", "client_id"},
			{"commandes", "commande_id"},
		}}, nil
	default:
		if c.failChecks {
			return nil, errors.New("permission denied")
		}
		return &scanRows{data: [][]any{
			{"commandes", "statut", "(statut IN ('EN_COURS', 'LIVREE'))"},
		}}, nil
	}
}

func TestInspector_Tables(t *testing.T) {
	tables, err := NewInspector(catalogDB{}).Tables(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "clients", tables[0].Name)
	assert.Equal(t, []string{"client_id"}, tables[0].PrimaryKey)
	assert.Len(t, tables[0].Columns, 2)
	assert.Equal(t, []string{"EN_COURS", "LIVREE"}, tables[1].Columns[1].Allowed)
}

func TestInspector_DescribeIgnoresCheckFailures(t *testing.T) {
	doc, err := NewInspector(catalogDB{failChecks: true}).Describe(context.Background(), "public")
	require.NoError(t, err)
	assert.Contains(t, doc, "## CLIENTS")
	assert.Contains(t, doc, "| STATUT | text | YES |  |")
}

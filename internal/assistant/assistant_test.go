// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlpilot/cli/internal/dialect"
	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/extract"
	"sqlpilot/cli/internal/llm"
)

func TestGenerate_RejectsTrivialInput(t *testing.T) {
	inputs := []string{"dqdqd", "", "  ab ", "TEST", "azerty", "aaaa", "xyxyxy"}
	for _, q := range inputs {
		t.Run(q, func(t *testing.T) {
			model := &fakeModel{answers: []string{"SELECT 1 FROM DUAL"}}
			out := New(model).Generate(context.Background(), GenerateRequest{Query: q, Mode: ModeChat})

			assert.Equal(t, StatusInputRejected, out.Status)
			assert.True(t, perr.Is(out.Err, perr.UserInputRejected))
			assert.False(t, out.Executable())
			assert.Zero(t, model.calls(), "model must not be called")
		})
	}
}

func TestGenerate_AcceptsShortRealWords(t *testing.T) {
	model := &fakeModel{answers: []string{`{"sql": "SELECT SUM(MONTANT_TOTAL) FROM COMMANDES", "explanation": "total"}`}}
	out := New(model).Generate(context.Background(), GenerateRequest{Query: "sum", Mode: ModeEditor})

	assert.Equal(t, StatusOK, out.Status)
	assert.Equal(t, 1, model.calls())
}

func TestGenerate_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		wantStatus Status
		wantSQL    string
		wantKind   perr.Kind
	}{
		{
			name:       "structured",
			answer:     `{"sql": "SELECT NOM FROM CLIENTS", "explanation": "Client names"}`,
			wantStatus: StatusOK,
			wantSQL:    "SELECT NOM FROM CLIENTS",
		},
		{
			name:       "sentinel",
			answer:     "INVALID_QUERY",
			wantStatus: StatusInvalidQuery,
			wantKind:   perr.ModelInvalid,
		},
		{
			name:       "verbatim fallback is degraded but executable",
			answer:     "-- Explication: total par client\nSELECT NOM FROM CLIENTS LIMIT 5",
			wantStatus: StatusDegraded,
			wantSQL:    "SELECT NOM FROM CLIENTS LIMIT 5",
			wantKind:   perr.ExtractionDegraded,
		},
		{
			name:       "forbidden statement",
			answer:     "```sql\nDELETE FROM CLIENTS\n```",
			wantStatus: StatusSafetyRejected,
			wantSQL:    "DELETE FROM CLIENTS",
			wantKind:   perr.SafetyRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{answers: []string{tt.answer}}
			out := New(model).Generate(context.Background(), GenerateRequest{Query: "liste des clients", Mode: ModeChat})

			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantSQL, out.Result.SQL)
			if tt.wantKind != "" {
				assert.True(t, perr.Is(out.Err, tt.wantKind), "got %v", out.Err)
			} else {
				assert.NoError(t, out.Err)
			}
		})
	}
}

func TestGenerate_SafetyVerdictAttached(t *testing.T) {
	model := &fakeModel{answers: []string{`{"sql": "DROP TABLE CLIENTS"}`}}
	out := New(model).Generate(context.Background(), GenerateRequest{Query: "supprime la table", Mode: ModeEditor})

	require.NotNil(t, out.Verdict)
	assert.False(t, out.Verdict.Allowed)
	assert.Equal(t, "DROP", out.Verdict.Keyword)
	assert.False(t, out.Executable())
}

func TestGenerate_PromptCarriesContract(t *testing.T) {
	model := &fakeModel{answers: []string{"INVALID_QUERY", "INVALID_QUERY"}}
	a := New(model, WithSchema("TABLE CLIENTS (CLIENT_ID, NOM, VILLE)"), WithDialect(dialect.Oracle))

	a.Generate(context.Background(), GenerateRequest{Query: "clients de Paris", Mode: ModeChat})
	a.Generate(context.Background(), GenerateRequest{Query: "clients de Paris", Mode: ModeEditor})
	require.Len(t, model.requests, 2)

	chat, editor := model.requests[0], model.requests[1]
	assert.Zero(t, chat.Temperature)
	assert.Contains(t, chat.Prompt, "TABLE CLIENTS (CLIENT_ID, NOM, VILLE)")
	assert.Contains(t, chat.Prompt, "Oracle SQL")
	assert.Contains(t, chat.Prompt, "FETCH FIRST n ROWS ONLY")
	assert.Contains(t, chat.Prompt, "-- Explication:")
	assert.Contains(t, chat.Prompt, "User request: clients de Paris")
	assert.Contains(t, editor.Prompt, `{"sql": "<query>"`)
	assert.NotContains(t, editor.Prompt, "-- Explication:")
}

func TestGenerate_SchemaPlaceholder(t *testing.T) {
	model := &fakeModel{answers: []string{"INVALID_QUERY"}}
	New(model, WithSchema("  ")).Generate(context.Background(), GenerateRequest{Query: "tous les produits"})

	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Prompt, SchemaPlaceholder)
}

// Scenario B: a LIMIT clause rejected by Oracle is fixed by the paging rule.
func TestRepair_PagingRuleWithoutModelCall(t *testing.T) {
	model := &fakeModel{answers: []string{"-- Explication: total par client\nSELECT NOM FROM CLIENTS LIMIT 5"}}
	a := New(model)

	gen := a.Generate(context.Background(), GenerateRequest{Query: "cinq clients", Mode: ModeChat})
	require.True(t, gen.Executable())
	assert.Equal(t, "total par client", gen.Result.Explanation)

	out := a.Repair(context.Background(), RepairRequest{
		SQL:   gen.Result.SQL,
		Error: "ORA-00933: SQL command not properly ended",
	})

	assert.Equal(t, StatusOK, out.Status)
	assert.Equal(t, "SELECT NOM FROM CLIENTS FETCH FIRST 5 ROWS ONLY", out.Result.SQL)
	assert.Equal(t, "paging", out.Rule)
	assert.Contains(t, out.Result.Explanation, "FETCH FIRST")
	assert.Equal(t, 1, model.calls(), "repair must not call the model")
}

// Scenario C: a bare clause from the model is discarded.
func TestRepair_FragmentFallsBackToOriginal(t *testing.T) {
	model := &fakeModel{answers: []string{"ORDER BY total DESC FETCH FIRST 10 ROWS ONLY"}}
	original := "SELECT CLIENT_ID, SUM(MONTANT_TOTAL) total FROM COMMANDES GROUP BY CLIENT_ID ORDER BY totl DESC"

	out := New(model).Repair(context.Background(), RepairRequest{
		SQL:   original,
		Error: `ORA-00904: "TOTL": invalid identifier`,
	})

	assert.Equal(t, StatusRepairFragment, out.Status)
	assert.Equal(t, original, out.Result.SQL)
	assert.Equal(t, fragmentExplanation, out.Result.Explanation)
	assert.True(t, perr.Is(out.Err, perr.RepairFragment))
	assert.False(t, out.Executable())
	assert.Equal(t, 1, model.calls())
}

func TestRepair_ShortAnswerIsFragment(t *testing.T) {
	model := &fakeModel{answers: []string{"SELECT 1"}}
	out := New(model).Repair(context.Background(), RepairRequest{SQL: "SELEC 1 FROM DUAL", Error: "ORA-00900: invalid SQL statement"})

	assert.Equal(t, StatusRepairFragment, out.Status)
	assert.Equal(t, "SELEC 1 FROM DUAL", out.Result.SQL)
}

func TestRepair_KeywordMustOpenALine(t *testing.T) {
	original := "SELECT CLIENT_ID FROM COMMANDES GROUP BY CLIENT_ID HAVING SUM(MONTANT) > AVG(MONTANT)"
	tests := []struct {
		name   string
		answer string
	}{
		{name: "keyword inside prose", answer: "Replace the column with TOTAL in the SELECT list of the outer query"},
		{name: "clause with subquery", answer: "HAVING SUM(MONTANT) > (SELECT AVG(MONTANT) FROM COMMANDES)"},
		{name: "prose starting with with", answer: "With this change, use GROUP BY CLIENT_ID only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{answers: []string{tt.answer}}
			out := New(model).Repair(context.Background(), RepairRequest{SQL: original, Error: "ORA-00934: group function is not allowed here"})

			assert.Equal(t, StatusRepairFragment, out.Status)
			assert.Equal(t, original, out.Result.SQL)
		})
	}
}

func TestRepair_LineOpeningStatements(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		wantSQL string
	}{
		{
			name:    "list item",
			answer:  "- SELECT NOM FROM CLIENTS ORDER BY NOM",
			wantSQL: "SELECT NOM FROM CLIENTS ORDER BY NOM",
		},
		{
			name:    "common table expression",
			answer:  "Use this:\nWITH t AS (SELECT NOM FROM CLIENTS) SELECT NOM FROM t",
			wantSQL: "WITH t AS (SELECT NOM FROM CLIENTS) SELECT NOM FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{answers: []string{tt.answer}}
			out := New(model).Repair(context.Background(), RepairRequest{SQL: "SELECT NOM FROM CLIENT", Error: "ORA-00942"})

			assert.Equal(t, StatusOK, out.Status)
			assert.Equal(t, tt.wantSQL, out.Result.SQL)
		})
	}
}

func TestRepair_ShortAnswerUnderPostgres(t *testing.T) {
	model := &fakeModel{answers: []string{"SELECT 1"}}
	out := New(model, WithDialect(dialect.Postgres)).Repair(context.Background(), RepairRequest{
		SQL:   "SELEC 1",
		Error: `ERROR: syntax error at or near "SELEC" (SQLSTATE 42601)`,
	})

	assert.Equal(t, StatusOK, out.Status)
	assert.Equal(t, "SELECT 1", out.Result.SQL)
	assert.Equal(t, 1, model.calls())
}

func TestRepair_ModelRewrite(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		wantSQL  string
		wantExpl string
	}{
		{
			name:     "comment and statement",
			answer:   "<s> -- Correction: column is named TOTAL\nSELECT CLIENT_ID, SUM(MONTANT_TOTAL) TOTAL FROM COMMANDES GROUP BY CLIENT_ID ORDER BY TOTAL DESC</s>",
			wantSQL:  "SELECT CLIENT_ID, SUM(MONTANT_TOTAL) TOTAL FROM COMMANDES GROUP BY CLIENT_ID ORDER BY TOTAL DESC",
			wantExpl: "column is named TOTAL",
		},
		{
			name:     "prose before statement and fence",
			answer:   "Here is the fix:\n```sql\nSELECT NOM FROM CLIENTS ORDER BY NOM",
			wantSQL:  "SELECT NOM FROM CLIENTS ORDER BY NOM",
			wantExpl: "Suggested fix for error: ORA-00904: invalid identifier",
		},
		{
			name:     "paging safety net",
			answer:   "<|assistant|>SELECT NOM FROM CLIENTS ORDER BY NOM LIMIT 3",
			wantSQL:  "SELECT NOM FROM CLIENTS ORDER BY NOM FETCH FIRST 3 ROWS ONLY",
			wantExpl: "Suggested fix for error: ORA-00904: invalid identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{answers: []string{tt.answer}}
			out := New(model).Repair(context.Background(), RepairRequest{
				SQL:   "SELECT NOM FROM CLIENT ORDER BY NOMS",
				Error: "ORA-00904: invalid identifier",
			})

			assert.Equal(t, StatusOK, out.Status)
			assert.Equal(t, tt.wantSQL, out.Result.SQL)
			assert.Equal(t, tt.wantExpl, out.Result.Explanation)
			assert.Empty(t, out.Rule)
		})
	}
}

func TestRepair_RequestShape(t *testing.T) {
	model := &fakeModel{answers: []string{"SELECT NOM FROM CLIENTS"}}
	New(model).Repair(context.Background(), RepairRequest{
		SQL:   "SELECT NOM FROM CLIENT",
		Error: "ORA-00942: table or view does not exist */",
	})

	require.Len(t, model.requests, 1)
	req := model.requests[0]
	assert.Equal(t, 0.1, req.Temperature)
	assert.Equal(t, []string{";", "```"}, req.Stop)
	assert.Contains(t, req.Prompt, "Database: Oracle SQL")
	assert.Contains(t, req.Prompt, "ORA-00942: table or view does not exist * /")
	assert.Contains(t, req.Prompt, "SELECT NOM FROM CLIENT\n")
	assert.Contains(t, req.Prompt, "-- Correction:")
}

func TestRepair_SafetyGates(t *testing.T) {
	t.Run("original statement", func(t *testing.T) {
		model := &fakeModel{}
		out := New(model).Repair(context.Background(), RepairRequest{SQL: "DROP TABLE CLIENTS", Error: "ORA-00942"})

		assert.Equal(t, StatusSafetyRejected, out.Status)
		assert.Zero(t, model.calls())
	})

	t.Run("corrected statement", func(t *testing.T) {
		model := &fakeModel{answers: []string{"-- Correction: reset\nUPDATE CLIENTS SET VILLE = NULL"}}
		out := New(model).Repair(context.Background(), RepairRequest{SQL: "SELECT VILE FROM CLIENTS", Error: "ORA-00904"})

		assert.Equal(t, StatusSafetyRejected, out.Status)
		require.NotNil(t, out.Verdict)
		assert.Equal(t, "UPDATE", out.Verdict.Keyword)
		assert.True(t, perr.Is(out.Err, perr.SafetyRejected))
	})
}

func TestRepair_RequiresBothFields(t *testing.T) {
	model := &fakeModel{}
	a := New(model)

	for _, req := range []RepairRequest{{SQL: "SELECT 1 FROM DUAL"}, {Error: "ORA-00900"}, {SQL: " ", Error: " "}} {
		out := a.Repair(context.Background(), req)
		assert.Equal(t, StatusInputRejected, out.Status)
	}
	assert.Zero(t, model.calls())
}

func TestRepair_PostgresDialect(t *testing.T) {
	model := &fakeModel{}
	out := New(model, WithDialect(dialect.Postgres)).Repair(context.Background(), RepairRequest{
		SQL:   "SELECT NVL(VILLE, '?') FROM CLIENTS",
		Error: "ERROR: function nvl(text, unknown) does not exist (SQLSTATE 42883)",
	})

	assert.Equal(t, StatusOK, out.Status)
	assert.Equal(t, "null-function", out.Rule)
	assert.Equal(t, "SELECT COALESCE(VILLE, '?') FROM CLIENTS", out.Result.SQL)
	assert.Zero(t, model.calls())
}

// Scenario D: a model that never answers yields a diagnostic, not SQL.
func TestGenerate_TimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	model := llm.NewOllama(srv.URL, "llama3", 50*time.Millisecond).WithHTTPClient(srv.Client())
	a := New(model)

	gen := a.Generate(context.Background(), GenerateRequest{Query: "nombre de commandes", Mode: ModeChat})
	assert.Equal(t, StatusTransportFailure, gen.Status)
	assert.True(t, IsDiagnostic(gen.Result.SQL), gen.Result.SQL)
	assert.Empty(t, gen.Result.Explanation)
	assert.False(t, gen.Executable())
	assert.True(t, perr.Is(gen.Err, perr.TransportFailure))

	rep := a.Repair(context.Background(), RepairRequest{SQL: "SELECT NOM FROM CLIENT", Error: "ORA-00942"})
	assert.Equal(t, StatusTransportFailure, rep.Status)
	assert.True(t, IsDiagnostic(rep.Result.SQL))
	assert.False(t, rep.Executable())
}

func TestConcurrentUse(t *testing.T) {
	a := New(&fakeModel{err: context.DeadlineExceeded})
	done := make(chan Outcome, 16)
	for i := 0; i < cap(done); i++ {
		go func() {
			done <- a.Repair(context.Background(), RepairRequest{SQL: "SELECT * FROM T LIMIT 2", Error: "ORA-00933"})
		}()
	}
	for i := 0; i < cap(done); i++ {
		out := <-done
		assert.Equal(t, "SELECT * FROM T FETCH FIRST 2 ROWS ONLY", out.Result.SQL)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeEditor, m)

	m, err = ParseMode("Chat")
	require.NoError(t, err)
	assert.Equal(t, ModeChat, m)

	_, err = ParseMode("voice")
	assert.Error(t, err)
}

func TestExtractResultIsPlain(t *testing.T) {
	model := &fakeModel{answers: []string{"```sql\n-- Explication: liste\nSELECT NOM FROM CLIENTS;\n```"}}
	out := New(model).Generate(context.Background(), GenerateRequest{Query: "liste des clients", Mode: ModeChat})

	assert.Equal(t, extract.Result{SQL: "SELECT NOM FROM CLIENTS", Explanation: "liste"}, out.Result)
}

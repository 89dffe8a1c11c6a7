// Package sqlexec runs gated, read-oriented SQL statements over a pgx
// connection pool and summarizes their results.
//
// Every statement passes the safety gate before it can reach the pool. A
// statement the database rejects is not a Go error: the driver message is
// returned in Result.Error so the caller can feed it to the repair loop.
package sqlexec

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pterm/pterm"

	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/safety"
)

// Querier is the subset of *pgxpool.Pool the executor needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Result is the outcome of one statement.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"data"`
	// ExecutionTimeMS is the wall time of the query, rounded to 0.01 ms.
	ExecutionTimeMS float64 `json:"execution_time"`
	// Error is the database error text, empty on success.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the database rejected the statement.
func (r *Result) Failed() bool { return r.Error != "" }

// Executor executes SQL statements through a Querier.
type Executor struct {
	db     Querier
	logger *pterm.Logger
	// MaxRows caps the rows kept in a Result; zero keeps everything.
	MaxRows int
}

// New creates an Executor. A nil logger discards diagnostics.
func New(db Querier, logger *pterm.Logger) *Executor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Executor{db: db, logger: logger}
}

// Clean trims whitespace and a single trailing statement terminator.
func Clean(sql string) string {
	s := strings.TrimSpace(sql)
	s = strings.TrimSuffix(s, ";")
	return strings.TrimSpace(s)
}

// Execute runs sql after the safety gate. A rejected statement returns an
// error of kind safety_rejected and never reaches the database. Database
// errors are reported in Result.Error.
func (e *Executor) Execute(ctx context.Context, sql string) (*Result, error) {
	sql = Clean(sql)
	if sql == "" {
		return nil, perr.New(perr.UserInputRejected, "empty statement")
	}
	if v := safety.Check(sql); !v.Allowed {
		e.logger.Warn("statement refused", e.logger.Args("keyword", v.Keyword))
		return nil, perr.New(perr.SafetyRejected, v.Reason())
	}

	res := &Result{Columns: []string{}, Rows: [][]any{}}
	start := time.Now()
	defer func() {
		res.ExecutionTimeMS = float64(time.Since(start).Microseconds()/10) / 100
	}()

	rows, err := e.db.Query(ctx, sql)
	if err != nil {
		res.Error = err.Error()
		e.logger.Debug("query failed", e.logger.Args("error", logging.Mask(res.Error)))
		return res, nil
	}
	defer rows.Close()

	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			res.Error = err.Error()
			break
		}
		if e.MaxRows > 0 && len(res.Rows) >= e.MaxRows {
			continue
		}
		for i, v := range vals {
			vals[i] = Normalize(v)
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil && res.Error == "" {
		res.Error = err.Error()
	}
	e.logger.Debug("query finished", e.logger.Args("rows", len(res.Rows), "columns", len(res.Columns)))
	return res, nil
}

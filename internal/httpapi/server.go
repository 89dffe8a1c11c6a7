// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httpapi exposes generation, repair, execution and history over a
// small JSON HTTP API for browser front ends.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pterm/pterm"

	"sqlpilot/cli/internal/assistant"
	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/history"
	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/safety"
	"sqlpilot/cli/internal/sqlexec"
)

// Executor runs gated statements. *sqlexec.Executor implements it.
type Executor interface {
	Execute(ctx context.Context, sql string) (*sqlexec.Result, error)
}

// Server holds the collaborators behind the API.
type Server struct {
	asst   *assistant.Assistant
	exec   Executor
	hist   *history.Store
	logger *pterm.Logger
}

// New creates a Server. exec may be nil when no database is configured.
func New(asst *assistant.Assistant, exec Executor, hist *history.Store, logger *pterm.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{asst: asst, exec: exec, hist: hist, logger: logger}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/fix_sql", s.handleFix)
	mux.HandleFunc("POST /api/execute", s.handleExecute)
	mux.HandleFunc("GET /api/history", s.handleHistoryList)
	mux.HandleFunc("POST /api/history", s.handleHistoryAdd)
	mux.HandleFunc("POST /api/history/delete", s.handleHistoryDelete)
	return mux
}

type generatePayload struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

type generateResponse struct {
	SQL         string `json:"sql"`
	Explanation string `json:"explanation"`
	Status      string `json:"status"`
	Strategy    string `json:"strategy,omitempty"`
	Keyword     string `json:"violated_keyword,omitempty"`
}

type fixPayload struct {
	SQL   string `json:"sql"`
	Error string `json:"error"`
}

type fixResponse struct {
	FixedSQL    string `json:"fixed_sql"`
	Explanation string `json:"explanation"`
	Status      string `json:"status"`
	Rule        string `json:"rule,omitempty"`
	Keyword     string `json:"violated_keyword,omitempty"`
}

type executePayload struct {
	SQL string `json:"sql"`
}

type executeResponse struct {
	*sqlexec.Result
	Stats []sqlexec.ColumnStats `json:"stats"`
}

type historyAddPayload struct {
	Query string `json:"query"`
	SQL   string `json:"sql"`
}

type historyDeletePayload struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type rejectedResponse struct {
	Error   string `json:"error"`
	Keyword string `json:"violated_keyword"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var p generatePayload
	if !decode(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}
	mode, err := assistant.ParseMode(p.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	out := s.asst.Generate(r.Context(), assistant.GenerateRequest{Query: p.Query, Mode: mode})
	s.logOutcome("generate", out)
	writeJSON(w, http.StatusOK, generateResponse{
		SQL:         out.Result.SQL,
		Explanation: out.Result.Explanation,
		Status:      string(out.Status),
		Strategy:    out.Strategy,
		Keyword:     keyword(out),
	})
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	var p fixPayload
	if !decode(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.SQL) == "" || strings.TrimSpace(p.Error) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sql and error are required"})
		return
	}

	out := s.asst.Repair(r.Context(), assistant.RepairRequest{SQL: p.SQL, Error: p.Error})
	s.logOutcome("fix", out)

	status := http.StatusOK
	switch out.Status {
	case assistant.StatusSafetyRejected:
		status = http.StatusForbidden
	case assistant.StatusTransportFailure:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, fixResponse{
		FixedSQL:    out.Result.SQL,
		Explanation: out.Result.Explanation,
		Status:      string(out.Status),
		Rule:        out.Rule,
		Keyword:     keyword(out),
	})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var p executePayload
	if !decode(w, r, &p) {
		return
	}
	// Policy rejection does not depend on a database being configured.
	if v := safety.Check(sqlexec.Clean(p.SQL)); !v.Allowed {
		writeJSON(w, http.StatusForbidden, rejectedResponse{Error: v.Reason(), Keyword: v.Keyword})
		return
	}
	if s.exec == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no database configured; run 'sqlpilot connect'"})
		return
	}

	res, err := s.exec.Execute(r.Context(), p.SQL)
	switch {
	case perr.Is(err, perr.SafetyRejected):
		v := safety.Check(sqlexec.Clean(p.SQL))
		writeJSON(w, http.StatusForbidden, rejectedResponse{Error: v.Reason(), Keyword: v.Keyword})
		return
	case perr.Is(err, perr.UserInputRejected):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sql is required"})
		return
	case err != nil:
		s.logger.Error("execute failed", s.logger.Args("error", logging.Mask(err.Error())))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: logging.Mask(err.Error())})
		return
	}

	if res.Failed() {
		writeJSON(w, http.StatusOK, errorResponse{Error: res.Error})
		return
	}
	writeJSON(w, http.StatusOK, executeResponse{Result: res, Stats: sqlexec.Stats(res.Columns, res.Rows)})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.hist.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryAdd(w http.ResponseWriter, r *http.Request) {
	var p historyAddPayload
	if !decode(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}
	e, err := s.hist.Add(p.Query, p.SQL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	var p historyDeletePayload
	if !decode(w, r, &p) {
		return
	}
	removed, err := s.hist.Delete(p.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) logOutcome(op string, out assistant.Outcome) {
	args := s.logger.Args("op", op, "status", string(out.Status))
	if out.Err != nil {
		args = s.logger.Args("op", op, "status", string(out.Status), "error", logging.Mask(out.Err.Error()))
	}
	s.logger.Info("request handled", args)
}

func keyword(out assistant.Outcome) string {
	if out.Verdict == nil {
		return ""
	}
	return out.Verdict.Keyword
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

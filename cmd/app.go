// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pterm/pterm"

	"sqlpilot/cli/internal/assistant"
	"sqlpilot/cli/internal/config"
	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/history"
	"sqlpilot/cli/internal/keychain"
	"sqlpilot/cli/internal/llm"
	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/schema"
	"sqlpilot/cli/internal/sqlexec"
)

// Environment variables holding a DSN, checked before the keychain.
const (
	envDSN         = "SQLPILOT_DSN"
	envDatabaseURL = "DATABASE_URL"
)

var errNoDSN = perr.New(perr.ConfigInvalid, "no database connection configured; run 'sqlpilot connect'")

// app is the per-invocation wiring shared by commands.
type app struct {
	cfg    config.Config
	logger *pterm.Logger
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return &app{cfg: cfg, logger: logging.New(level, os.Stderr)}, nil
}

func (a *app) model() *llm.Ollama {
	return llm.NewOllama(a.cfg.Model.BaseURL, a.cfg.Model.Name, a.cfg.Model.Timeout())
}

// assistant builds the pipeline. An unreadable schema document is logged and
// replaced by the placeholder.
func (a *app) assistant() *assistant.Assistant {
	doc, err := schema.Load(a.cfg.Schema.Path)
	if err != nil {
		a.logger.Warn("schema document unreadable", a.logger.Args("path", a.cfg.Schema.Path, "error", err.Error()))
		doc = schema.Placeholder
	}
	return assistant.New(a.model(),
		assistant.WithDialect(a.cfg.TargetDialect()),
		assistant.WithSchema(doc),
		assistant.WithLogger(a.logger),
	)
}

func (a *app) history() (*history.Store, error) {
	return history.OpenDefault(a.cfg.History.Limit)
}

// resolveDSN returns the configured DSN and where it came from: the
// environment first, then the OS keychain.
func resolveDSN() (raw, source string) {
	if env := strings.TrimSpace(os.Getenv(envDSN)); env != "" {
		return env, envDSN + " environment variable"
	}
	if env := strings.TrimSpace(os.Getenv(envDatabaseURL)); env != "" {
		return env, envDatabaseURL + " environment variable"
	}
	km, err := keychain.GetManager()
	if err != nil {
		return "", ""
	}
	v, err := km.LoadDSN()
	if err != nil || strings.TrimSpace(v) == "" {
		return "", ""
	}
	return strings.TrimSpace(v), "OS keychain"
}

// connect opens a pool for the configured DSN.
func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	raw, source := resolveDSN()
	if raw == "" {
		return nil, errNoDSN
	}
	a.logger.Debug("connecting", a.logger.Args("source", source, "dsn", logging.Mask(raw)))
	return sqlexec.Connect(ctx, raw)
}

// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sqlpilot/cli/internal/httpapi"
	"sqlpilot/cli/internal/sqlexec"
)

var serveAddr string

// serveCmd exposes the pipeline over HTTP for browser front ends.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API used by the web editor",
	Long: `The serve command exposes generation, repair, execution and history over
HTTP:

  POST /api/generate        {query, mode}
  POST /api/fix_sql         {sql, error}
  POST /api/execute         {sql}
  GET  /api/history
  POST /api/history         {query, sql}
  POST /api/history/delete  {id}

Execution is available only when a database connection is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		hist, err := a.history()
		if err != nil {
			return err
		}

		var exec httpapi.Executor
		pool, err := a.connect(cmd.Context())
		switch {
		case errors.Is(err, errNoDSN):
			a.logger.Warn("no database configured; /api/execute is disabled")
		case err != nil:
			a.logger.Warn("database unavailable; /api/execute is disabled", a.logger.Args("error", message(err)))
		default:
			defer pool.Close()
			exec = sqlexec.New(pool, a.logger)
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpapi.New(a.assistant(), exec, hist, a.logger).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			pterm.Println("🚀 Listening on http://" + addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config server.addr)")
}

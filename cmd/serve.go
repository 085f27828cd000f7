package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/meloday/internal/server"
	"github.com/desertthunder/meloday/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP status server exposing health, run history and curation endpoints.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(&server.HealthHandler{})
	router.Handler(server.NewRunsHandler(r.runs, r.logger))
	if r.catalog != nil {
		router.Handler(server.NewCurateHandler(r.engine, r.logger))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if cmd.Bool("open") {
		url := fmt.Sprintf("http://%s/health", addr)
		go func() {
			time.Sleep(250 * time.Millisecond)
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("failed to open browser", "url", url, "error", err)
			}
		}()
	}

	r.logger.Info("status server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

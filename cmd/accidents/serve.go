package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/accident-data-etl/internal/adapter/http"
)

func newServeCmd(a *app) *cobra.Command {
	var load bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health, metrics and rendered artifacts, optionally running a load",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, closeSinks, err := a.loadPipeline(ctx)
			if err != nil {
				return err
			}
			defer closeSinks()

			srv := httpadapter.NewServer(a.cfg.HTTPAddr, p, a.cfg.OutputDir, a.logger)

			// Start HTTP server.
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("http server error", "error", err)
					stop()
				}
			}()

			// Readiness stays false until a load completes.
			if load {
				go func() {
					if _, err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.logger.Error("load error", "error", err)
					}
				}()
			}

			<-ctx.Done()
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}
			a.logger.Info("shutdown complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&load, "load", true, "run the load job once the server is up")
	return cmd
}

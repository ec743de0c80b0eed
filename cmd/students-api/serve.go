package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := container.Migrate(ctx); err != nil {
				return err
			}

			cfg := container.Config()
			server := &http.Server{
				Addr:         cfg.HTTPServer.Address,
				Handler:      container.Handler(),
				ReadTimeout:  cfg.HTTPServer.ReadTimeout,
				WriteTimeout: cfg.HTTPServer.WriteTimeout,
				IdleTimeout:  cfg.HTTPServer.IdleTimeout,
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("server started",
					slog.String("address", cfg.HTTPServer.Address),
					slog.String("env", cfg.Env),
					slog.String("cache_backend", cfg.Cache.Backend))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err, ok := <-serveErr:
				if ok {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutdown signal received, stopping server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			logger.Info("server stopped gracefully")
			return nil
		},
	}
}

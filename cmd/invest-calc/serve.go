package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/investment-calculator/internal/calculator"
	"github.com/iwvelando/investment-calculator/internal/observability"
	"github.com/iwvelando/investment-calculator/internal/server"
	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	serverConfig  string
	address       string
	maxUploadSize string
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(cmd, root.envFile); err != nil {
				return err
			}
			cfg, err := server.LoadConfig(opts.serverConfig)
			if err != nil {
				return err
			}
			if opts.address != "" {
				cfg.Address = opts.address
			}
			if opts.maxUploadSize != "" {
				size, err := server.ParseSize(opts.maxUploadSize)
				if err != nil {
					return err
				}
				cfg.SetUploadSizeBytes(size)
			}

			logger, err := initializeLogger(cfg.Logging, root.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger, cfg)
		},
	}

	cmd.Flags().StringVar(&opts.serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&opts.address, "address", "", "listen address override")
	cmd.Flags().StringVar(&opts.maxUploadSize, "max-upload-size", "", "request body limit override, e.g. 256K")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, logger *zap.Logger, cfg *server.Config) error {
	metrics := observability.NewMetrics()
	calc, err := calculator.FromConfig(logger, cfg.Report, cfg.MaxYears, metrics)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, calc, metrics, cfg.UploadSizeBytes(), version),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"formpulse/internal/app"
	"formpulse/internal/config"
	"formpulse/pkg/logger"
	"formpulse/pkg/monitoring"
	"formpulse/pkg/tracing"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "formpulse-server",
	Short: "Form builder and response analytics API",
	Long: `formpulse-server serves form management, public submissions, per-question
analytics with response filtering, exports (CSV, JSON, PDF) and a live
submission feed over WebSocket.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, v, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	if v.ConfigFileUsed() != "" {
		config.Watch(v, func(c *config.Config) {
			logger.SetLevel(c.Log.Level)
			logger.Log.Info("config reloaded", zap.String("logLevel", logger.Level().String()))
		}, func(err error) {
			logger.Log.Warn("config reload rejected", zap.Error(err))
		})
	}

	monitoring.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
		logger.Log.Info("tracing enabled", zap.String("collector", cfg.Tracing.CollectorEndpoint))
	}

	a, err := app.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.Build(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("storage", cfg.Storage.Type),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info("server exited")
	return nil
}

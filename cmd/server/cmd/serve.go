package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gallerytab/server/internal/api"
	"github.com/gallerytab/server/internal/config"
	"github.com/gallerytab/server/internal/metrics"
	"github.com/gallerytab/server/internal/telemetry"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GalleryTab HTTP server",
	Long: `Start the HTTP server and begin serving artwork requests.

Examples:
  # Start with default configuration (from env vars)
  gallerytab serve

  # Start on a specific host and port
  gallerytab serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  gallerytab serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting gallerytab server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}

	appCtx, appCancel := context.WithTimeout(context.Background(), 15*time.Second)
	application, err := newApp(appCtx, cfg, logger)
	appCancel()
	if err != nil {
		return err
	}
	defer application.close()

	router := api.NewRouter(api.Deps{
		Fetcher:  application.fetcher,
		History:  application.history,
		Settings: application.settings,
		Catalog:  application.registry,
		Store:    application.store,
	}, cfg.Environment, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	waitForShutdown(server, shutdownTracing, logger)
	return nil
}

func waitForShutdown(server *http.Server, shutdownTracing func(context.Context) error, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error().Err(err).Msg("tracing shutdown error")
	}
}

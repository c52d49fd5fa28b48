package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praxisops/praxis"
	"github.com/praxisops/praxis/infrastructure/api"
	"github.com/praxisops/praxis/internal/config"
	"github.com/praxisops/praxis/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
		service string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start one of the HTTP API servers",
		Long: `Start the HTTP API server for one service.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                      Server host to bind to (default: 0.0.0.0)
  PORT                      Server port to listen on (default: 8080)
  DOCUMENT_STORE_URI        Document store DSN (postgres:// or sqlite path)
  DOCUMENT_STORE_DB         Document store database name
  BLOB_BUCKET               Directory for raw-content blobs (optional)
  API_KEY                   Shared secret required on all /api/v1 routes (optional)
  PERSISTENCE               memory or durable (default: durable)
  BUS_REDIS_URL             Redis URL for the integration bus (optional)
  LOG_LEVEL                 DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                text or json (default: text)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port, service)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")
	cmd.Flags().StringVar(&service, "service", "knowledge", "Service to serve: knowledge, ops, or catalog")

	return cmd
}

func runServe(envFile, host string, port int, service string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	kind, err := serviceKind(service)
	if err != nil {
		return err
	}

	logger := log.New(log.ParseFormat(cfg.LogFormat()), cfg.LogLevel())
	slogger := logger.Slog()

	client, err := praxis.New(
		praxis.WithConfig(cfg),
		praxis.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create praxis client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close praxis client", slog.Any("error", err))
		}
	}()

	var apiKeys []string
	if cfg.APIKey() != "" {
		apiKeys = []string{cfg.APIKey()}
	}
	apiServer := api.NewAPIServer(client, kind, apiKeys)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")
		cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	slogger.Info("starting praxis",
		slog.String("version", version),
		slog.String("service", string(kind)),
		slog.String("addr", cfg.Addr()),
	)
	if err := apiServer.ListenAndServe(cfg.Addr()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func serviceKind(service string) (api.ServiceKind, error) {
	switch service {
	case "knowledge", "knowledge-store":
		return api.KnowledgeStore, nil
	case "ops", "ops-controller":
		return api.OpsController, nil
	case "catalog", "catalog-query":
		return api.CatalogQuery, nil
	}
	return "", fmt.Errorf("unknown service %q: want knowledge, ops, or catalog", service)
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/raglet/raglet"
	"github.com/raglet/raglet/infrastructure/api"
	"github.com/raglet/raglet/internal/config"
	"github.com/raglet/raglet/internal/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server and ingestion worker",
		Long: `Start the HTTP API server and the background ingestion worker.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  RAGLET_HOST                  Server host to bind to (default: 0.0.0.0)
  RAGLET_PORT                  Server port to listen on (default: 8080)
  RAGLET_DATA_DIR              Data directory (default: .raglet)
  RAGLET_DB_URL                Database URL (default: sqlite:///{data_dir}/raglet.db)
  RAGLET_LOG_LEVEL             Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  RAGLET_LOG_FORMAT            Log format: pretty, json (default: pretty)

  RAGLET_EMBEDDING_*           Embedding AI service configuration
    BASE_URL                   Base URL (e.g., https://api.openai.com/v1)
    MODEL                      Model identifier (e.g., text-embedding-3-small)
    API_KEY                    API key for authentication
    TIMEOUT_SECONDS            Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 5)

  RAGLET_GENERATION_*          Text generation AI service configuration
    (same fields as EMBEDDING, plus MAX_TOKENS and TEMPERATURE)

  RAGLET_EMBEDDING_DIM         Embedding vector dimension (default: 1536)
  RAGLET_CHUNK_SIZE            Chunk size in runes (default: 500)
  RAGLET_CHUNK_OVERLAP         Chunk overlap in runes (default: 50)
  RAGLET_MAX_CHUNKS_PER_DOC    Chunk count cap per document (default: 100)
  RAGLET_DEFAULT_TOP_K         Default number of retrieved chunks (default: 5)
  RAGLET_QUEUE_POLL_SECONDS    Job queue poll interval (default: 5)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.Configure(cfg)
	logger.Info("starting raglet",
		slog.String("version", version),
		slog.String("addr", cfg.Addr()),
		slog.String("data_dir", cfg.DataDir()))

	client, err := raglet.New(
		raglet.WithConfig(cfg),
		raglet.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create raglet client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close raglet client", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer := api.NewAPIServer(client)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := apiServer.ListenAndServe(cfg.Addr()); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	h := cfg.Host()
	p := cfg.Port()
	if host != "" {
		h = host
	}
	if port != 0 {
		p = port
	}
	return cfg.WithAddr(h, p)
}

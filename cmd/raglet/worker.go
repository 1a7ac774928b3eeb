package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/raglet/raglet"
	"github.com/raglet/raglet/internal/log"
	"github.com/spf13/cobra"
)

func workerCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the ingestion worker without the HTTP server",
		Long: `Run only the background ingestion worker.

The worker polls the job queue and processes URL ingestion jobs:
fetching pages, chunking text, embedding chunks and updating the
vector index. Use this to scale ingestion separately from the API,
pointing both at the same database and data directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runWorker(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.Configure(cfg)
	logger.Info("starting raglet worker",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()))

	client, err := raglet.New(
		raglet.WithConfig(cfg),
		raglet.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create raglet client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("shutting down worker")
	return client.Close()
}

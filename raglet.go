// Package raglet provides a retrieval-augmented question answering service
// over web pages.
//
// URLs are accepted through an ingestion pipeline that fetches the page,
// reduces it to plain text, splits it into overlapping chunks, embeds the
// chunks, and stores everything in a metadata database plus a flat vector
// index. Questions are answered by retrieving the closest chunks and asking
// a language model for an answer grounded on them.
//
// Basic usage:
//
//	client, err := raglet.New(
//	    raglet.WithSQLite(".raglet/raglet.db"),
//	    raglet.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small", "gpt-4o-mini"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Queue a URL for ingestion
//	result, err := client.Documents.Accept(ctx, "https://example.com/article")
//
//	// Ask a question over the ingested content
//	answer, err := client.Query.Ask(ctx, "What is the article about?", 5)
package raglet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/infrastructure/fetch"
	"github.com/raglet/raglet/infrastructure/persistence"
	"github.com/raglet/raglet/infrastructure/provider"
	"github.com/raglet/raglet/infrastructure/vectorindex"
	"github.com/raglet/raglet/internal/config"
	"github.com/raglet/raglet/internal/database"
	"github.com/raglet/raglet/internal/log"
)

// ErrNoEmbedder indicates that neither an embedding endpoint nor a custom
// embedder was configured.
var ErrNoEmbedder = errors.New("no embedding provider configured")

// Client is the main entry point for the raglet library. The background
// ingestion worker starts automatically on creation unless disabled.
type Client struct {
	// Documents accepts URLs and reads back document records.
	Documents *service.Ingestor
	// Query answers questions over the indexed content.
	Query *service.Query
	// Stats reports system counters.
	Stats *service.StatsService

	db     database.Database
	queue  persistence.JobQueue
	index  *vectorindex.Index
	worker *service.Worker
	logger *slog.Logger
	cfg    config.AppConfig
	closed atomic.Bool
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cc := newClientConfig()
	for _, opt := range opts {
		opt(cc)
	}
	cfg := cc.app

	logger := cc.logger
	if logger == nil {
		logger = log.NewLogger(cfg)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.DBURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	embedder := cc.embedder
	generator := cc.generator
	if embedder == nil || generator == nil {
		openAI := provider.NewOpenAIProvider(cfg.Embedding(), cfg.Generation())
		if embedder == nil {
			if !cfg.Embedding().IsConfigured() {
				errClose := db.Close()
				return nil, errors.Join(ErrNoEmbedder, errClose)
			}
			embedder = openAI
		}
		if generator == nil {
			generator = openAI
		}
	}

	index := vectorindex.Open(embedder, cfg.EmbeddingDim(), cfg.IndexPath(), cfg.IDMapPath(), logger)

	documents := persistence.NewDocumentStore(db)
	chunks := persistence.NewChunkStore(db)
	queue := persistence.NewJobQueue(db)

	fetcher := cc.fetcher
	if fetcher == nil {
		fetcher = fetch.NewFetcher(cfg.FetchTimeout())
	}

	worker := service.NewWorker(queue, documents, chunks, index, fetcher, logger).
		WithPollPeriod(cfg.Worker().PollPeriod()).
		WithErrorPause(cfg.Worker().ErrorPause()).
		WithChunkParams(cc.chunkParams(cfg))

	c := &Client{
		Documents: service.NewIngestor(documents, queue, logger),
		Query: service.NewQuery(chunks, index, generator, cfg.Generation(), cfg.DefaultTopK(), logger).
			WithStyle(cc.style),
		Stats:  service.NewStatsService(documents, queue, index, cfg.EmbeddingDim()),
		db:     db,
		queue:  queue,
		index:  index,
		worker: worker,
		logger: logger,
		cfg:    cfg,
	}

	if cc.startWorker {
		worker.Start(ctx)
	}
	return c, nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Config returns the effective configuration.
func (c *Client) Config() config.AppConfig {
	return c.cfg
}

// Worker returns the ingestion worker for manual Start/Stop control.
func (c *Client) Worker() *service.Worker {
	return c.worker
}

// Index returns the vector index.
func (c *Client) Index() *vectorindex.Index {
	return c.index
}

// Close stops the worker, flushes the vector index, and closes the database.
// Safe to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.worker.Stop()

	var errs []error
	if err := c.index.Save(); err != nil {
		errs = append(errs, fmt.Errorf("save index: %w", err))
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

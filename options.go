package raglet

import (
	"log/slog"
	"time"

	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/infrastructure/chunking"
	"github.com/raglet/raglet/infrastructure/provider"
	"github.com/raglet/raglet/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	app         config.AppConfig
	logger      *slog.Logger
	embedder    provider.Embedder
	generator   provider.TextGenerator
	fetcher     service.PageFetcher
	chunking    *chunking.ChunkParams
	style       service.PromptStyle
	startWorker bool
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		app:         config.Default(),
		style:       service.StyleDefault,
		startWorker: true,
	}
}

// chunkParams resolves the effective chunking parameters: an explicit
// override wins, otherwise the app configuration applies.
func (cc *clientConfig) chunkParams(cfg config.AppConfig) chunking.ChunkParams {
	if cc.chunking != nil {
		return *cc.chunking
	}
	return chunking.ChunkParams{
		Size:     cfg.Chunking().Size(),
		Overlap:  cfg.Chunking().Overlap(),
		MaxCount: cfg.Chunking().MaxCount(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig replaces the whole application configuration, typically one
// loaded from the environment via config.LoadConfig.
func WithConfig(cfg config.AppConfig) Option {
	return func(cc *clientConfig) { cc.app = cfg }
}

// WithSQLite configures SQLite as the database at the given file path.
func WithSQLite(path string) Option {
	return func(cc *clientConfig) { cc.app = cc.app.WithDBURL("sqlite:///" + path) }
}

// WithDatabaseURL configures the database from a connection URL
// (sqlite:///path or postgres://...).
func WithDatabaseURL(url string) Option {
	return func(cc *clientConfig) { cc.app = cc.app.WithDBURL(url) }
}

// WithDataDir sets the directory holding the database and the vector index.
func WithDataDir(dir string) Option {
	return func(cc *clientConfig) { cc.app = cc.app.WithDataDir(dir) }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(cc *clientConfig) { cc.logger = l }
}

// WithOpenAI configures OpenAI for both embeddings and answer generation.
func WithOpenAI(apiKey, embeddingModel, chatModel string) Option {
	return func(cc *clientConfig) {
		cc.app = cc.app.WithEndpoints(
			config.NewEndpoint(config.WithAPIKey(apiKey), config.WithModel(embeddingModel)),
			config.NewEndpoint(config.WithAPIKey(apiKey), config.WithModel(chatModel)),
		)
	}
}

// WithEmbedder sets a custom embedding provider.
func WithEmbedder(e provider.Embedder) Option {
	return func(cc *clientConfig) { cc.embedder = e }
}

// WithEmbeddingDim sets the vector index dimension. It must match what the
// embedding provider produces.
func WithEmbeddingDim(n int) Option {
	return func(cc *clientConfig) { cc.app = cc.app.WithEmbeddingDim(n) }
}

// WithGenerator sets a custom text generation provider.
func WithGenerator(g provider.TextGenerator) Option {
	return func(cc *clientConfig) { cc.generator = g }
}

// WithFetcher sets a custom page fetcher.
func WithFetcher(f service.PageFetcher) Option {
	return func(cc *clientConfig) { cc.fetcher = f }
}

// WithChunkParams overrides the chunking parameters.
func WithChunkParams(p chunking.ChunkParams) Option {
	return func(cc *clientConfig) { cc.chunking = &p }
}

// WithWorkerPollPeriod sets how often the worker polls the queue.
func WithWorkerPollPeriod(d time.Duration) Option {
	return func(cc *clientConfig) { cc.app = cc.app.WithPollPeriod(d) }
}

// WithPromptStyle sets the answer generation style.
func WithPromptStyle(style service.PromptStyle) Option {
	return func(cc *clientConfig) { cc.style = style }
}

// WithoutWorker disables the automatic background worker. Useful for
// API-only deployments where a separate worker process consumes the queue.
func WithoutWorker() Option {
	return func(cc *clientConfig) { cc.startWorker = false }
}

// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "INFO"
	DefaultChunkSize       = 500
	DefaultChunkOverlap    = 50
	DefaultMaxChunks       = 100
	DefaultTopK            = 5
	MaxTopK                = 20
	DefaultEmbeddingDim    = 1536
	DefaultFetchTimeout    = 30 * time.Second
	DefaultQueuePollPeriod = 5 * time.Second
	DefaultErrorPause      = time.Second
	DefaultLLMTimeout      = 60 * time.Second
	DefaultLLMMaxTokens    = 500
	DefaultLLMTemperature  = 0.7
	DefaultLLMMaxRetries   = 5
	DefaultLLMInitialDelay = 2 * time.Second
	DefaultLLMBackoff      = 2.0
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures an AI service endpoint (embedding or generation).
type Endpoint struct {
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	maxTokens     int
	temperature   float64
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// MaxTokens returns the completion token limit.
func (e Endpoint) MaxTokens() int { return e.maxTokens }

// Temperature returns the sampling temperature.
func (e Endpoint) Temperature() float64 { return e.temperature }

// IsConfigured reports whether the endpoint has the required fields set.
func (e Endpoint) IsConfigured() bool { return e.model != "" }

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model identifier.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the retry attempt limit.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// NewEndpoint creates an Endpoint with defaults, then applies options.
func NewEndpoint(opts ...EndpointOption) Endpoint {
	e := Endpoint{
		timeout:       DefaultLLMTimeout,
		maxRetries:    DefaultLLMMaxRetries,
		initialDelay:  DefaultLLMInitialDelay,
		backoffFactor: DefaultLLMBackoff,
		maxTokens:     DefaultLLMMaxTokens,
		temperature:   DefaultLLMTemperature,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// ChunkingConfig configures the text chunker.
type ChunkingConfig struct {
	size     int
	overlap  int
	maxCount int
}

// Size returns the target chunk length in runes.
func (c ChunkingConfig) Size() int { return c.size }

// Overlap returns the overlap length in runes.
func (c ChunkingConfig) Overlap() int { return c.overlap }

// MaxCount returns the maximum number of chunks per document.
func (c ChunkingConfig) MaxCount() int { return c.maxCount }

// WorkerConfig configures the ingestion worker loop.
type WorkerConfig struct {
	pollPeriod time.Duration
	errorPause time.Duration
}

// PollPeriod returns the bounded wait between queue polls.
func (w WorkerConfig) PollPeriod() time.Duration { return w.pollPeriod }

// ErrorPause returns the pause after a loop-level error.
func (w WorkerConfig) ErrorPause() time.Duration { return w.errorPause }

// AppConfig holds the resolved application configuration.
type AppConfig struct {
	host         string
	port         int
	dataDir      string
	dbURL        string
	logLevel     string
	logFormat    LogFormat
	fetchTimeout time.Duration
	embedding    Endpoint
	embeddingDim int
	generation   Endpoint
	chunking     ChunkingConfig
	worker       WorkerConfig
	defaultTopK  int
}

// Default returns an AppConfig with every setting at its built-in default,
// independent of the environment.
func Default() AppConfig {
	return AppConfig{
		host:         "0.0.0.0",
		port:         8080,
		dataDir:      ".raglet",
		logLevel:     "INFO",
		logFormat:    LogFormatPretty,
		fetchTimeout: DefaultFetchTimeout,
		embedding:    NewEndpoint(),
		embeddingDim: DefaultEmbeddingDim,
		generation:   NewEndpoint(),
		chunking: ChunkingConfig{
			size:     DefaultChunkSize,
			overlap:  DefaultChunkOverlap,
			maxCount: DefaultMaxChunks,
		},
		worker: WorkerConfig{
			pollPeriod: DefaultQueuePollPeriod,
			errorPause: DefaultErrorPause,
		},
		defaultTopK: DefaultTopK,
	}
}

// Host returns the server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port listen address.
func (c AppConfig) Addr() string { return fmt.Sprintf("%s:%d", c.host, c.port) }

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string {
	if c.dbURL != "" {
		return c.dbURL
	}
	return "sqlite:///" + filepath.Join(c.dataDir, "raglet.db")
}

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// FetchTimeout returns the content fetch timeout.
func (c AppConfig) FetchTimeout() time.Duration { return c.fetchTimeout }

// Embedding returns the embedding endpoint configuration.
func (c AppConfig) Embedding() Endpoint { return c.embedding }

// EmbeddingDim returns the embedding vector dimension.
func (c AppConfig) EmbeddingDim() int { return c.embeddingDim }

// Generation returns the answer generation endpoint configuration.
func (c AppConfig) Generation() Endpoint { return c.generation }

// Chunking returns the chunker configuration.
func (c AppConfig) Chunking() ChunkingConfig { return c.chunking }

// Worker returns the worker loop configuration.
func (c AppConfig) Worker() WorkerConfig { return c.worker }

// DefaultTopK returns the default number of search results per query.
func (c AppConfig) DefaultTopK() int { return c.defaultTopK }

// IndexPath returns the path of the serialized vector index file.
func (c AppConfig) IndexPath() string {
	return filepath.Join(c.dataDir, "index", "vectors.bin")
}

// IDMapPath returns the path of the serialized identifier map file.
// The index and the map are always read and written as a pair.
func (c AppConfig) IDMapPath() string {
	return filepath.Join(c.dataDir, "index", "idmap.bin")
}

// EnsureDataDir creates the data directory and the index subdirectory.
func (c AppConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(c.dataDir, "index"), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	return nil
}

// WithAddr returns a copy with the given host and port overrides.
// Empty host or zero port keep the existing values.
func (c AppConfig) WithAddr(host string, port int) AppConfig {
	if host != "" {
		c.host = host
	}
	if port != 0 {
		c.port = port
	}
	return c
}

// WithDataDir returns a copy with the data directory replaced.
func (c AppConfig) WithDataDir(dir string) AppConfig {
	c.dataDir = dir
	return c
}

// WithDBURL returns a copy with the database URL replaced.
func (c AppConfig) WithDBURL(url string) AppConfig {
	c.dbURL = url
	return c
}

// WithEndpoints returns a copy with the embedding and generation endpoints
// replaced.
func (c AppConfig) WithEndpoints(embedding, generation Endpoint) AppConfig {
	c.embedding = embedding
	c.generation = generation
	return c
}

// WithEmbeddingDim returns a copy with the embedding dimension replaced.
func (c AppConfig) WithEmbeddingDim(n int) AppConfig {
	if n > 0 {
		c.embeddingDim = n
	}
	return c
}

// WithPollPeriod returns a copy with the worker poll period replaced.
func (c AppConfig) WithPollPeriod(d time.Duration) AppConfig {
	if d > 0 {
		c.worker.pollPeriod = d
	}
	return c
}

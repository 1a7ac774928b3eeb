package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix for all environment variables.
const envPrefix = "RAGLET"

// EndpointEnv holds environment configuration for an AI service endpoint.
type EndpointEnv struct {
	// BaseURL is the API base URL (e.g. https://api.openai.com/v1).
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier.
	Model string `envconfig:"MODEL"`

	// APIKey authenticates against the endpoint.
	APIKey string `envconfig:"API_KEY"`

	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `envconfig:"TIMEOUT_SECONDS"`

	// MaxRetries is the retry attempt limit.
	MaxRetries int `envconfig:"MAX_RETRIES"`

	// MaxTokens caps completion length (generation endpoint only).
	MaxTokens int `envconfig:"MAX_TOKENS"`

	// Temperature is the sampling temperature (generation endpoint only).
	Temperature float64 `envconfig:"TEMPERATURE"`
}

// EnvConfig holds all environment-based configuration.
// Variables carry the RAGLET_ prefix; nested structs use underscore
// delimiters (e.g. RAGLET_EMBEDDING_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: RAGLET_HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: RAGLET_PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: RAGLET_DATA_DIR (default: .raglet)
	DataDir string `envconfig:"DATA_DIR" default:".raglet"`

	// DBURL is the database connection URL.
	// Env: RAGLET_DB_URL
	// Default: sqlite:///{data_dir}/raglet.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: RAGLET_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: RAGLET_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// FetchTimeoutSeconds bounds the content fetch network call.
	// Env: RAGLET_FETCH_TIMEOUT_SECONDS (default: 30)
	FetchTimeoutSeconds int `envconfig:"FETCH_TIMEOUT_SECONDS" default:"30"`

	// Embedding configures the embedding AI service.
	Embedding EndpointEnv `envconfig:"EMBEDDING"`

	// EmbeddingDim is the embedding vector dimension.
	// Env: RAGLET_EMBEDDING_DIM (default: 1536)
	EmbeddingDim int `envconfig:"EMBEDDING_DIM" default:"1536"`

	// Generation configures the answer generation AI service.
	Generation EndpointEnv `envconfig:"GENERATION"`

	// ChunkSize is the target chunk length in runes.
	// Env: RAGLET_CHUNK_SIZE (default: 500)
	ChunkSize int `envconfig:"CHUNK_SIZE" default:"500"`

	// ChunkOverlap is the chunk overlap length in runes.
	// Env: RAGLET_CHUNK_OVERLAP (default: 50)
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"50"`

	// MaxChunksPerDoc caps the chunk count per document.
	// Env: RAGLET_MAX_CHUNKS_PER_DOC (default: 100)
	MaxChunksPerDoc int `envconfig:"MAX_CHUNKS_PER_DOC" default:"100"`

	// QueuePollSeconds is the bounded wait between queue polls.
	// Env: RAGLET_QUEUE_POLL_SECONDS (default: 5)
	QueuePollSeconds int `envconfig:"QUEUE_POLL_SECONDS" default:"5"`

	// DefaultTopK is the default number of search results per query.
	// Env: RAGLET_DEFAULT_TOP_K (default: 5)
	DefaultTopK int `envconfig:"DEFAULT_TOP_K" default:"5"`
}

// LoadFromEnv reads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// Normalize fills derived defaults and clamps out-of-range values.
func (e EnvConfig) Normalize() EnvConfig {
	if e.ChunkOverlap >= e.ChunkSize {
		e.ChunkOverlap = e.ChunkSize / 10
	}
	if e.MaxChunksPerDoc <= 0 {
		e.MaxChunksPerDoc = DefaultMaxChunks
	}
	if e.DefaultTopK < 1 || e.DefaultTopK > MaxTopK {
		e.DefaultTopK = DefaultTopK
	}
	if e.QueuePollSeconds <= 0 {
		e.QueuePollSeconds = int(DefaultQueuePollPeriod / time.Second)
	}
	return e
}

// ToAppConfig converts environment configuration to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	format := LogFormatPretty
	if strings.EqualFold(e.LogFormat, string(LogFormatJSON)) {
		format = LogFormatJSON
	}

	return AppConfig{
		host:         e.Host,
		port:         e.Port,
		dataDir:      e.DataDir,
		dbURL:        e.DBURL,
		logLevel:     strings.ToUpper(e.LogLevel),
		logFormat:    format,
		fetchTimeout: secondsOr(e.FetchTimeoutSeconds, DefaultFetchTimeout),
		embedding:    e.Embedding.toEndpoint(0, 0),
		embeddingDim: e.EmbeddingDim,
		generation:   e.Generation.toEndpoint(DefaultLLMMaxTokens, DefaultLLMTemperature),
		chunking: ChunkingConfig{
			size:     e.ChunkSize,
			overlap:  e.ChunkOverlap,
			maxCount: e.MaxChunksPerDoc,
		},
		worker: WorkerConfig{
			pollPeriod: secondsOr(e.QueuePollSeconds, DefaultQueuePollPeriod),
			errorPause: DefaultErrorPause,
		},
		defaultTopK: e.DefaultTopK,
	}
}

func (ee EndpointEnv) toEndpoint(defaultMaxTokens int, defaultTemperature float64) Endpoint {
	ep := Endpoint{
		baseURL:       ee.BaseURL,
		model:         ee.Model,
		apiKey:        ee.APIKey,
		timeout:       secondsOr(ee.TimeoutSeconds, DefaultLLMTimeout),
		maxRetries:    ee.MaxRetries,
		initialDelay:  DefaultLLMInitialDelay,
		backoffFactor: DefaultLLMBackoff,
		maxTokens:     ee.MaxTokens,
		temperature:   ee.Temperature,
	}
	if ep.maxRetries <= 0 {
		ep.maxRetries = DefaultLLMMaxRetries
	}
	if ep.maxTokens <= 0 {
		ep.maxTokens = defaultMaxTokens
	}
	if ep.temperature <= 0 {
		ep.temperature = defaultTemperature
	}
	return ep
}

func secondsOr(s int, fallback time.Duration) time.Duration {
	if s <= 0 {
		return fallback
	}
	return time.Duration(s) * time.Second
}

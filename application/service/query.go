package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/infrastructure/provider"
	"github.com/raglet/raglet/internal/config"
)

var (
	// ErrEmptyQuery indicates a blank question.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrInvalidTopK indicates a result count outside the allowed range.
	ErrInvalidTopK = fmt.Errorf("top_k must be between 1 and %d", config.MaxTopK)
)

// NoRelevantContent is the canned answer when retrieval finds nothing.
const NoRelevantContent = "No relevant content found in the ingested documents."

// maxSourceContentLen bounds the chunk text echoed back per source. The
// answer context is assembled from these bounded excerpts, not the full
// chunks, so the prompt size is predictable.
const maxSourceContentLen = 500

// Source is one retrieved chunk attributed in an answer. Distance is
// squared L2, so smaller means more similar.
type Source struct {
	Content    string
	Distance   float64
	ChunkIndex int
}

// QueryResult is a generated answer with its supporting sources.
type QueryResult struct {
	Query   string
	Answer  string
	Sources []Source
	Model   string
}

// Query answers questions over the indexed content.
type Query struct {
	chunks    document.ChunkStore
	index     VectorIndex
	generator provider.TextGenerator
	logger    *slog.Logger

	model       string
	style       PromptStyle
	defaultTopK int
	maxTokens   int
	temperature float64
}

// NewQuery creates a query service. The generation endpoint supplies the
// model name and sampling parameters reported with each answer.
func NewQuery(
	chunks document.ChunkStore,
	index VectorIndex,
	generator provider.TextGenerator,
	generation config.Endpoint,
	defaultTopK int,
	logger *slog.Logger,
) *Query {
	if defaultTopK < 1 || defaultTopK > config.MaxTopK {
		defaultTopK = config.DefaultTopK
	}
	return &Query{
		chunks:      chunks,
		index:       index,
		generator:   generator,
		logger:      logger,
		model:       generation.Model(),
		style:       StyleDefault,
		defaultTopK: defaultTopK,
		maxTokens:   generation.MaxTokens(),
		temperature: generation.Temperature(),
	}
}

// WithStyle sets the prompt style used for generation.
func (s *Query) WithStyle(style PromptStyle) *Query {
	s.style = style
	return s
}

// Ask retrieves the chunks closest to the question and generates an answer
// grounded on them. topK of zero means the configured default. Generation
// failures degrade to an error message in the answer body; retrieval
// failures are returned as errors.
func (s *Query) Ask(ctx context.Context, query string, topK int) (QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return QueryResult{}, ErrEmptyQuery
	}
	if topK == 0 {
		topK = s.defaultTopK
	}
	if topK < 1 || topK > config.MaxTopK {
		return QueryResult{}, ErrInvalidTopK
	}

	hits, err := s.index.Search(ctx, query, topK)
	if err != nil {
		return QueryResult{}, fmt.Errorf("search index: %w", err)
	}
	if len(hits) == 0 {
		return QueryResult{
			Query:   query,
			Answer:  NoRelevantContent,
			Sources: []Source{},
		}, nil
	}

	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ChunkID
	}
	chunks, err := s.chunks.GetByIDs(ctx, ids)
	if err != nil {
		return QueryResult{}, fmt.Errorf("load chunks: %w", err)
	}
	byID := make(map[int64]document.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID()] = c
	}

	// Preserve the search order and skip hits whose chunk rows are gone.
	sources := make([]Source, 0, len(hits))
	for _, hit := range hits {
		c, ok := byID[hit.ChunkID]
		if !ok {
			s.logger.Warn("indexed chunk missing from store", slog.Int64("chunk_id", hit.ChunkID))
			continue
		}
		sources = append(sources, Source{
			Content:    truncateRunes(c.Content(), maxSourceContentLen),
			Distance:   hit.Distance,
			ChunkIndex: c.Index(),
		})
	}
	if len(sources) == 0 {
		return QueryResult{
			Query:   query,
			Answer:  NoRelevantContent,
			Sources: []Source{},
		}, nil
	}

	parts := make([]string, len(sources))
	for i, src := range sources {
		parts[i] = src.Content
	}
	answer := s.generate(ctx, query, strings.Join(parts, "\n\n"))

	s.logger.Info("query answered",
		slog.Int("sources", len(sources)),
		slog.Int("top_k", topK),
	)
	return QueryResult{
		Query:   query,
		Answer:  answer,
		Sources: sources,
		Model:   s.model,
	}, nil
}

// generate asks the model for an answer. The caller gets sources either way;
// a generation failure is reported inside the answer text.
func (s *Query) generate(ctx context.Context, query, context string) string {
	answer, err := s.generator.Complete(ctx, provider.CompletionRequest{
		System:      SystemPrompt(s.style),
		Prompt:      FormatQueryPrompt(s.style, query, context),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		s.logger.Error("answer generation failed", slog.String("error", err.Error()))
		return fmt.Sprintf("Error generating answer: %s", err)
	}
	return answer
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/infrastructure/persistence"
	"github.com/raglet/raglet/infrastructure/provider"
	"github.com/raglet/raglet/infrastructure/vectorindex"
	"github.com/raglet/raglet/internal/config"
	"github.com/raglet/raglet/internal/testdb"
)

type queryFixture struct {
	documents persistence.DocumentStore
	chunks    persistence.ChunkStore
	index     *vectorindex.Index
	generator *provider.FakeGenerator
	query     *service.Query
}

func newQueryFixture(t *testing.T) queryFixture {
	t.Helper()
	db := testdb.New(t)
	dir := t.TempDir()

	f := queryFixture{
		documents: persistence.NewDocumentStore(db),
		chunks:    persistence.NewChunkStore(db),
		index: vectorindex.Open(
			provider.NewFakeEmbedder(8), 8,
			dir+"/vectors.bin", dir+"/idmap.bin",
			discardLogger(),
		),
		generator: &provider.FakeGenerator{Answer: "A grounded answer."},
	}
	f.query = service.NewQuery(
		f.chunks, f.index, f.generator,
		config.NewEndpoint(config.WithModel("test-model")),
		config.DefaultTopK,
		discardLogger(),
	)
	return f
}

// seedChunks stores chunk rows and indexes their contents.
func (f queryFixture) seedChunks(t *testing.T, contents ...string) []document.Chunk {
	t.Helper()
	ctx := context.Background()

	doc, err := f.documents.Save(ctx, document.New("https://example.com/seed"))
	require.NoError(t, err)

	toSave := make([]document.Chunk, len(contents))
	for i, content := range contents {
		toSave[i] = document.NewChunk(doc.ID(), i, content)
	}
	saved, err := f.chunks.SaveAll(ctx, toSave)
	require.NoError(t, err)

	texts := make([]string, len(saved))
	ids := make([]int64, len(saved))
	for i, c := range saved {
		texts[i] = c.Content()
		ids[i] = c.ID()
	}
	positions, err := f.index.Add(ctx, texts, ids)
	require.NoError(t, err)
	for i, id := range ids {
		require.NoError(t, f.chunks.UpdateIndexPos(ctx, id, positions[i]))
	}
	return saved
}

func TestQueryAskValidation(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	_, err := f.query.Ask(ctx, "", 5)
	assert.ErrorIs(t, err, service.ErrEmptyQuery)

	_, err = f.query.Ask(ctx, "   ", 5)
	assert.ErrorIs(t, err, service.ErrEmptyQuery)

	_, err = f.query.Ask(ctx, "valid question", -1)
	assert.ErrorIs(t, err, service.ErrInvalidTopK)

	_, err = f.query.Ask(ctx, "valid question", config.MaxTopK+1)
	assert.ErrorIs(t, err, service.ErrInvalidTopK)
}

func TestQueryAskEmptyIndex(t *testing.T) {
	f := newQueryFixture(t)

	result, err := f.query.Ask(context.Background(), "anything at all", 5)
	require.NoError(t, err)
	assert.Equal(t, service.NoRelevantContent, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Zero(t, f.generator.Calls, "nothing to ground an answer on")
}

func TestQueryAskReturnsGroundedAnswer(t *testing.T) {
	f := newQueryFixture(t)
	f.seedChunks(t, "the sky is blue", "water boils at 100C", "go compiles fast")

	result, err := f.query.Ask(context.Background(), "water boils at 100C", 2)
	require.NoError(t, err)

	assert.Equal(t, "A grounded answer.", result.Answer)
	assert.Equal(t, "test-model", result.Model)
	assert.Equal(t, "water boils at 100C", result.Query)
	require.Len(t, result.Sources, 2)

	// The exact-match chunk comes first at distance zero.
	assert.Equal(t, "water boils at 100C", result.Sources[0].Content)
	assert.Zero(t, result.Sources[0].Distance)
	assert.LessOrEqual(t, result.Sources[0].Distance, result.Sources[1].Distance)

	// The prompt carries the retrieved context and the question.
	assert.Contains(t, f.generator.LastRequest.Prompt, "water boils at 100C")
	assert.Contains(t, f.generator.LastRequest.Prompt, "Question: water boils at 100C")
	assert.NotEmpty(t, f.generator.LastRequest.System)
}

func TestQueryAskDefaultTopK(t *testing.T) {
	f := newQueryFixture(t)
	contents := make([]string, 8)
	for i := range contents {
		contents[i] = strings.Repeat("abcdefgh", i+1)
	}
	f.seedChunks(t, contents...)

	result, err := f.query.Ask(context.Background(), "abcdefgh", 0)
	require.NoError(t, err)
	assert.Len(t, result.Sources, config.DefaultTopK)
}

func TestQueryAskTruncatesSourceContent(t *testing.T) {
	f := newQueryFixture(t)
	long := strings.Repeat("x", 800)
	f.seedChunks(t, long)

	result, err := f.query.Ask(context.Background(), "what does the page say", 1)
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Len(t, result.Sources[0].Content, 500)
	assert.NotContains(t, f.generator.LastRequest.Prompt, long,
		"the context is assembled from the truncated excerpt")
}

func TestQueryAskGenerationFailureDegrades(t *testing.T) {
	f := newQueryFixture(t)
	f.seedChunks(t, "some indexed content")
	f.generator.Err = assert.AnError

	result, err := f.query.Ask(context.Background(), "some indexed content", 1)
	require.NoError(t, err, "generation failure is not a request failure")
	assert.Contains(t, result.Answer, "Error generating answer:")
	require.Len(t, result.Sources, 1, "sources are still returned")
}

func TestQueryAskSkipsStaleChunks(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	// A vector whose chunk row no longer exists.
	_, err := f.index.Add(ctx, []string{"orphaned vector"}, []int64{98765})
	require.NoError(t, err)
	f.seedChunks(t, "surviving chunk")

	result, err := f.query.Ask(ctx, "orphaned vector", 5)
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "surviving chunk", result.Sources[0].Content)
}

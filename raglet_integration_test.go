package raglet_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglet/raglet"
	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/infrastructure/fetch"
	"github.com/raglet/raglet/infrastructure/provider"
)

const testPollPeriod = 20 * time.Millisecond

type fakeSite map[string]fetch.Page

func (s fakeSite) Page(_ context.Context, url string) (fetch.Page, error) {
	page, ok := s[url]
	if !ok {
		return fetch.Page{}, fmt.Errorf("fetch %s: unexpected status 404", url)
	}
	return page, nil
}

func newTestClient(t *testing.T, site fakeSite, extra ...raglet.Option) *raglet.Client {
	t.Helper()

	opts := []raglet.Option{
		raglet.WithSQLite(filepath.Join(t.TempDir(), "test.db")),
		raglet.WithDataDir(t.TempDir()),
		raglet.WithEmbedder(provider.NewFakeEmbedder(8)),
		raglet.WithEmbeddingDim(8),
		raglet.WithGenerator(&provider.FakeGenerator{Answer: "Paris is the capital of France."}),
		raglet.WithFetcher(site),
		raglet.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		raglet.WithWorkerPollPeriod(testPollPeriod),
	}
	opts = append(opts, extra...)

	client, err := raglet.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// waitForStatus polls until the document with the given ID reaches the
// wanted status, or fails the test after the timeout.
func waitForStatus(t *testing.T, client *raglet.Client, id int64, want document.Status) document.Document {
	t.Helper()

	var doc document.Document
	require.Eventually(t, func() bool {
		d, err := client.Documents.Get(context.Background(), id)
		if err != nil {
			return false
		}
		doc = d
		return doc.Status() == want
	}, 5*time.Second, testPollPeriod, "document %d never reached status %s", id, want)
	return doc
}

func TestIntegration_IngestAndQuery(t *testing.T) {
	t.Parallel()

	site := fakeSite{
		"https://example.com/france": {
			Title: "France",
			Text:  strings.Repeat("France is a country in Europe. Its capital is Paris. ", 40),
		},
	}
	client := newTestClient(t, site)
	ctx := context.Background()

	result, err := client.Documents.Accept(ctx, "https://example.com/france")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAccepted, result.Outcome)
	assert.Equal(t, document.StatusPending, result.Document.Status())

	doc := waitForStatus(t, client, result.Document.ID(), document.StatusCompleted)
	assert.Equal(t, "France", doc.Title())
	assert.Greater(t, doc.ChunkCount(), 1)
	assert.NotNil(t, doc.CompletedAt())
	assert.Equal(t, doc.ChunkCount(), client.Index().Count())

	answer, err := client.Query.Ask(ctx, "What is the capital of France?", 0)
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", answer.Answer)
	require.NotEmpty(t, answer.Sources)
	assert.Contains(t, answer.Sources[0].Content, "capital is Paris")
}

func TestIntegration_FetchFailureMarksDocumentFailed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, fakeSite{})
	ctx := context.Background()

	result, err := client.Documents.Accept(ctx, "https://example.com/missing")
	require.NoError(t, err)

	doc := waitForStatus(t, client, result.Document.ID(), document.StatusFailed)
	assert.Contains(t, doc.ErrorMessage(), "404")

	// A failed URL can be retried and goes back through the pipeline.
	retry, err := client.Documents.Accept(ctx, "https://example.com/missing")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAccepted, retry.Outcome)
	assert.Equal(t, document.StatusPending, retry.Document.Status())
	assert.Empty(t, retry.Document.ErrorMessage())
}

func TestIntegration_IndexSurvivesRestart(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dataDir := t.TempDir()
	site := fakeSite{
		"https://example.com/page": {
			Title: "Page",
			Text:  strings.Repeat("Persistent content about gardening and soil health. ", 40),
		},
	}
	fixed := []raglet.Option{
		raglet.WithSQLite(dbPath),
		raglet.WithDataDir(dataDir),
	}

	client := newTestClient(t, site, fixed...)
	ctx := context.Background()

	result, err := client.Documents.Accept(ctx, "https://example.com/page")
	require.NoError(t, err)
	doc := waitForStatus(t, client, result.Document.ID(), document.StatusCompleted)
	require.NoError(t, client.Close())

	reopened := newTestClient(t, site, fixed...)
	assert.Equal(t, doc.ChunkCount(), reopened.Index().Count())

	answer, err := reopened.Query.Ask(ctx, "how do I keep soil healthy", 3)
	require.NoError(t, err)
	require.NotEmpty(t, answer.Sources)
	assert.Contains(t, answer.Sources[0].Content, "gardening")
}

func TestIntegration_StatsReflectPipeline(t *testing.T) {
	t.Parallel()

	site := fakeSite{
		"https://example.com/a": {Title: "A", Text: strings.Repeat("alpha content ", 100)},
		"https://example.com/b": {Title: "B", Text: strings.Repeat("beta content ", 100)},
	}
	client := newTestClient(t, site)
	ctx := context.Background()

	for _, url := range []string{"https://example.com/a", "https://example.com/b"} {
		result, err := client.Documents.Accept(ctx, url)
		require.NoError(t, err)
		waitForStatus(t, client, result.Document.ID(), document.StatusCompleted)
	}

	stats, err := client.Stats.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Documents)
	assert.Zero(t, stats.PendingJobs)
	assert.Equal(t, client.Index().Count(), stats.Vectors)
	assert.Equal(t, 8, stats.VectorDim)
}

func TestIntegration_RequiresEmbedder(t *testing.T) {
	t.Parallel()

	_, err := raglet.New(
		raglet.WithSQLite(filepath.Join(t.TempDir(), "test.db")),
		raglet.WithDataDir(t.TempDir()),
		raglet.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.ErrorIs(t, err, raglet.ErrNoEmbedder)
}

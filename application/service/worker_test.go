package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/infrastructure/chunking"
	"github.com/raglet/raglet/infrastructure/fetch"
	"github.com/raglet/raglet/infrastructure/persistence"
	"github.com/raglet/raglet/infrastructure/provider"
	"github.com/raglet/raglet/infrastructure/vectorindex"
	"github.com/raglet/raglet/internal/testdb"
)

type stubFetcher struct {
	pages map[string]fetch.Page
	err   error
}

func (s stubFetcher) Page(_ context.Context, url string) (fetch.Page, error) {
	if s.err != nil {
		return fetch.Page{}, s.err
	}
	page, ok := s.pages[url]
	if !ok {
		return fetch.Page{}, errors.New("unexpected url " + url)
	}
	return page, nil
}

type workerFixture struct {
	documents persistence.DocumentStore
	chunks    persistence.ChunkStore
	queue     persistence.JobQueue
	index     *vectorindex.Index
	ingestor  *service.Ingestor
}

func newWorkerFixture(t *testing.T, fetcher service.PageFetcher) (*service.Worker, workerFixture) {
	t.Helper()
	db := testdb.New(t)
	dir := t.TempDir()

	f := workerFixture{
		documents: persistence.NewDocumentStore(db),
		chunks:    persistence.NewChunkStore(db),
		queue:     persistence.NewJobQueue(db),
		index: vectorindex.Open(
			provider.NewFakeEmbedder(8), 8,
			dir+"/vectors.bin", dir+"/idmap.bin",
			discardLogger(),
		),
	}
	f.ingestor = service.NewIngestor(f.documents, f.queue, discardLogger())

	worker := service.NewWorker(f.queue, f.documents, f.chunks, f.index, fetcher, discardLogger()).
		WithChunkParams(chunking.ChunkParams{Size: 50, Overlap: 10, MaxCount: 100})
	return worker, f
}

func TestWorkerProcessCompletesDocument(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("all work and no play makes a dull page ", 6)
	worker, f := newWorkerFixture(t, stubFetcher{pages: map[string]fetch.Page{
		"https://example.com/post": {Title: "A Post", Text: text},
	}})

	_, err := f.ingestor.Accept(ctx, "https://example.com/post")
	require.NoError(t, err)
	require.NoError(t, worker.Process(ctx, "https://example.com/post"))

	doc, err := f.documents.GetByURL(ctx, "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, document.StatusCompleted, doc.Status())
	assert.Equal(t, "A Post", doc.Title())
	assert.Equal(t, len([]rune(text)), doc.ContentLength())
	assert.Positive(t, doc.ChunkCount())
	assert.NotNil(t, doc.CompletedAt())

	stored, err := f.chunks.CountByDocument(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(doc.ChunkCount()), stored)
	assert.Equal(t, doc.ChunkCount(), f.index.Count(), "one vector per stored chunk")

	// Every stored chunk carries its vector index position.
	hits, err := f.index.Search(ctx, "all work and no play", doc.ChunkCount())
	require.NoError(t, err)
	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ChunkID
	}
	retrieved, err := f.chunks.GetByIDs(ctx, ids)
	require.NoError(t, err)
	require.Len(t, retrieved, len(hits))
	for _, c := range retrieved {
		assert.NotNil(t, c.IndexPos())
	}
}

func TestWorkerProcessFetchFailure(t *testing.T) {
	ctx := context.Background()
	worker, f := newWorkerFixture(t, stubFetcher{err: errors.New("connection refused")})

	_, err := f.ingestor.Accept(ctx, "https://example.com/unreachable")
	require.NoError(t, err)
	require.NoError(t, worker.Process(ctx, "https://example.com/unreachable"))

	doc, err := f.documents.GetByURL(ctx, "https://example.com/unreachable")
	require.NoError(t, err)
	assert.Equal(t, document.StatusFailed, doc.Status())
	assert.Contains(t, doc.ErrorMessage(), "connection refused")
	assert.Zero(t, f.index.Count())
}

func TestWorkerProcessEmptyContent(t *testing.T) {
	ctx := context.Background()
	worker, f := newWorkerFixture(t, stubFetcher{pages: map[string]fetch.Page{
		"https://example.com/blank": {Title: "Blank", Text: ""},
	}})

	_, err := f.ingestor.Accept(ctx, "https://example.com/blank")
	require.NoError(t, err)
	require.NoError(t, worker.Process(ctx, "https://example.com/blank"))

	doc, err := f.documents.GetByURL(ctx, "https://example.com/blank")
	require.NoError(t, err)
	assert.Equal(t, document.StatusFailed, doc.Status())
	assert.Contains(t, doc.ErrorMessage(), "no content chunks generated")
}

func TestWorkerProcessUnknownURL(t *testing.T) {
	worker, f := newWorkerFixture(t, stubFetcher{})

	// A job whose document record was removed out of band is dropped.
	require.NoError(t, worker.Process(context.Background(), "https://example.com/ghost"))
	assert.Zero(t, f.index.Count())
}

func TestWorkerProcessSkipsCompletedDocument(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("same content every time ", 10)
	worker, f := newWorkerFixture(t, stubFetcher{pages: map[string]fetch.Page{
		"https://example.com/dup": {Title: "Dup", Text: text},
	}})

	_, err := f.ingestor.Accept(ctx, "https://example.com/dup")
	require.NoError(t, err)
	require.NoError(t, worker.Process(ctx, "https://example.com/dup"))
	countAfterFirst := f.index.Count()

	// A duplicate job for an already completed document is a no-op.
	require.NoError(t, worker.Process(ctx, "https://example.com/dup"))

	doc, err := f.documents.GetByURL(ctx, "https://example.com/dup")
	require.NoError(t, err)
	assert.Equal(t, document.StatusCompleted, doc.Status())
	assert.Equal(t, countAfterFirst, f.index.Count())
}

func TestWorkerRetryPurgesOldChunks(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("recovered content after a transient failure ", 5)
	fetcher := &flakyFetcher{
		failures: 1,
		page:     fetch.Page{Title: "Flaky", Text: text},
	}
	worker, f := newWorkerFixture(t, fetcher)

	_, err := f.ingestor.Accept(ctx, "https://example.com/flaky")
	require.NoError(t, err)
	require.NoError(t, worker.Process(ctx, "https://example.com/flaky"))

	doc, err := f.documents.GetByURL(ctx, "https://example.com/flaky")
	require.NoError(t, err)
	require.Equal(t, document.StatusFailed, doc.Status())

	// Retry through the front door, then process again.
	result, err := f.ingestor.Accept(ctx, "https://example.com/flaky")
	require.NoError(t, err)
	require.Equal(t, service.OutcomeAccepted, result.Outcome)
	require.NoError(t, worker.Process(ctx, "https://example.com/flaky"))

	doc, err = f.documents.GetByURL(ctx, "https://example.com/flaky")
	require.NoError(t, err)
	assert.Equal(t, document.StatusCompleted, doc.Status())
	assert.Empty(t, doc.ErrorMessage())

	stored, err := f.chunks.CountByDocument(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(doc.ChunkCount()), stored, "chunks describe the successful attempt only")
}

type flakyFetcher struct {
	failures int
	page     fetch.Page
}

func (s *flakyFetcher) Page(_ context.Context, _ string) (fetch.Page, error) {
	if s.failures > 0 {
		s.failures--
		return fetch.Page{}, errors.New("temporary network error")
	}
	return s.page, nil
}

func TestWorkerStartProcessesQueuedJobs(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("queued work gets done eventually ", 8)
	worker, f := newWorkerFixture(t, stubFetcher{pages: map[string]fetch.Page{
		"https://example.com/queued": {Title: "Queued", Text: text},
	}})
	worker = worker.WithPollPeriod(10 * time.Millisecond).WithErrorPause(10 * time.Millisecond)

	_, err := f.ingestor.Accept(ctx, "https://example.com/queued")
	require.NoError(t, err)

	worker.Start(ctx)
	defer worker.Stop()

	require.Eventually(t, func() bool {
		doc, err := f.documents.GetByURL(ctx, "https://example.com/queued")
		return err == nil && doc.Status() == document.StatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	length, err := f.queue.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, length)
}

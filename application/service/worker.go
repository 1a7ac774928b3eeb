package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/domain/job"
	"github.com/raglet/raglet/infrastructure/chunking"
	"github.com/raglet/raglet/infrastructure/fetch"
	"github.com/raglet/raglet/infrastructure/vectorindex"
	"github.com/raglet/raglet/internal/database"
)

// PageFetcher retrieves a URL and reduces it to a title and plain text.
type PageFetcher interface {
	Page(ctx context.Context, url string) (fetch.Page, error)
}

// VectorIndex is the retrieval engine the worker feeds and the query
// service searches.
type VectorIndex interface {
	Add(ctx context.Context, texts []string, chunkIDs []int64) ([]int64, error)
	Search(ctx context.Context, query string, k int) ([]vectorindex.Result, error)
	Count() int
}

// Worker consumes ingestion jobs from the queue and materializes each URL
// into document metadata, stored chunks, and index vectors.
type Worker struct {
	queue     job.Queue
	documents document.Store
	chunks    document.ChunkStore
	index     VectorIndex
	fetcher   PageFetcher
	logger    *slog.Logger

	params     chunking.ChunkParams
	pollPeriod time.Duration
	errorPause time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewWorker creates an ingestion worker.
func NewWorker(
	queue job.Queue,
	documents document.Store,
	chunks document.ChunkStore,
	index VectorIndex,
	fetcher PageFetcher,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		queue:      queue,
		documents:  documents,
		chunks:     chunks,
		index:      index,
		fetcher:    fetcher,
		logger:     logger,
		params:     chunking.DefaultChunkParams(),
		pollPeriod: 5 * time.Second,
		errorPause: time.Second,
	}
}

// WithPollPeriod sets how often the worker checks the queue.
func (w *Worker) WithPollPeriod(d time.Duration) *Worker {
	w.pollPeriod = d
	return w
}

// WithErrorPause sets how long the loop backs off after a queue error.
func (w *Worker) WithErrorPause(d time.Duration) *Worker {
	w.errorPause = d
	return w
}

// WithChunkParams sets the chunking parameters.
func (w *Worker) WithChunkParams(p chunking.ChunkParams) *Worker {
	w.params = p
	return w
}

// Start begins consuming jobs in a goroutine. Stop it with Stop.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	w.logger.Info("ingestion worker started")
}

// Stop shuts the worker down, waiting for the job in flight to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
	w.logger.Info("ingestion worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker loop stopping")
			return
		case <-ticker.C:
			if err := w.processNext(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Error("worker error", slog.String("error", err.Error()))

				select {
				case <-ctx.Done():
					return
				case <-time.After(w.errorPause):
				}
			}
		}
	}
}

// processNext pops one job and processes it. A malformed payload is an
// error for logging purposes but never stops the loop; the bad row has
// already been consumed by the queue.
func (w *Worker) processNext(ctx context.Context) error {
	j, found, err := w.queue.Pop(ctx)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return w.Process(ctx, j.URL())
}

// Process runs the full ingestion pipeline for one URL. Pipeline failures
// are recorded on the document as FAILED rather than returned; the returned
// error covers infrastructure problems only.
func (w *Worker) Process(ctx context.Context, url string) error {
	doc, err := w.documents.GetByURL(ctx, url)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// The record was created before the job was queued; a missing
			// one means it was removed out of band. Drop the job.
			w.logger.Error("no document record for queued url", slog.String("url", url))
			return nil
		}
		return fmt.Errorf("look up document: %w", err)
	}

	doc, err = doc.MarkProcessing()
	if err != nil {
		// A duplicate job for a document another worker already finished
		// or is still working on. Nothing to do.
		w.logger.Info("skipping job",
			slog.String("url", url),
			slog.String("status", doc.Status().String()),
			slog.String("reason", err.Error()),
		)
		return nil
	}
	if doc, err = w.documents.Save(ctx, doc); err != nil {
		return fmt.Errorf("save processing status: %w", err)
	}
	w.logger.Info("processing url", slog.String("url", url))

	doc, procErr := w.ingest(ctx, doc)
	if procErr != nil {
		w.logger.Error("ingestion failed",
			slog.String("url", url),
			slog.String("error", procErr.Error()),
		)
		failed, err := doc.MarkFailed(procErr.Error())
		if err != nil {
			return fmt.Errorf("mark document failed: %w", err)
		}
		if _, err := w.documents.Save(ctx, failed); err != nil {
			return fmt.Errorf("save failed status: %w", err)
		}
		return nil
	}

	w.logger.Info("url processed",
		slog.String("url", url),
		slog.Int("chunks", doc.ChunkCount()),
	)
	return nil
}

// ingest runs the pipeline body with panic recovery. A panic in any stage
// becomes an ordinary failure on the document.
func (w *Worker) ingest(ctx context.Context, doc document.Document) (result document.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = doc, fmt.Errorf("ingestion panicked: %v", r)
		}
	}()
	return w.ingestSteps(ctx, doc)
}

func (w *Worker) ingestSteps(ctx context.Context, doc document.Document) (document.Document, error) {
	// A retry may leave chunks from the previous attempt behind; purge them
	// so chunk rows always describe the latest attempt.
	if err := w.chunks.DeleteByDocument(ctx, doc.ID()); err != nil {
		return doc, fmt.Errorf("purge existing chunks: %w", err)
	}

	page, err := w.fetcher.Page(ctx, doc.URL())
	if err != nil {
		return doc, err
	}
	doc = doc.WithTitle(page.Title).WithContentLength(utf8.RuneCountInString(page.Text))

	pieces, err := chunking.NewTextChunks(page.Text, w.params)
	if err != nil {
		return doc, fmt.Errorf("chunk content: %w", err)
	}
	if pieces.Count() == 0 {
		return doc, errors.New("no content chunks generated")
	}

	toSave := make([]document.Chunk, pieces.Count())
	for i, content := range pieces.Contents() {
		toSave[i] = document.NewChunk(doc.ID(), i, content)
	}
	saved, err := w.chunks.SaveAll(ctx, toSave)
	if err != nil {
		return doc, fmt.Errorf("save chunks: %w", err)
	}

	texts := make([]string, len(saved))
	ids := make([]int64, len(saved))
	for i, c := range saved {
		texts[i] = c.Content()
		ids[i] = c.ID()
	}
	positions, err := w.index.Add(ctx, texts, ids)
	if err != nil {
		return doc, err
	}

	for i, id := range ids {
		if err := w.chunks.UpdateIndexPos(ctx, id, positions[i]); err != nil {
			return doc, fmt.Errorf("record index position: %w", err)
		}
	}

	doc, err = doc.MarkCompleted(len(saved), time.Now().UTC())
	if err != nil {
		return doc, err
	}
	doc, err = w.documents.Save(ctx, doc)
	if err != nil {
		return doc, fmt.Errorf("save completed document: %w", err)
	}
	return doc, nil
}

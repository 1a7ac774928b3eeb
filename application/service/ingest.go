// Package service wires the domain together: accepting ingestion requests,
// working the job queue, and answering queries over the indexed content.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/domain/job"
	"github.com/raglet/raglet/internal/database"
)

// Outcome describes how an ingestion request was handled.
type Outcome string

// Ingestion request outcomes.
const (
	// OutcomeAccepted means a job was queued (new URL, re-push of a
	// pending one, or retry of a failed one).
	OutcomeAccepted Outcome = "accepted"
	// OutcomeAlreadyIngested means the URL is complete; nothing was queued.
	OutcomeAlreadyIngested Outcome = "already_ingested"
	// OutcomeProcessing means a worker is on it right now; nothing was queued.
	OutcomeProcessing Outcome = "processing"
)

// IngestResult is the stored document plus how the request was resolved.
type IngestResult struct {
	Document document.Document
	Outcome  Outcome
}

// Ingestor accepts URLs for ingestion and hands them to the queue.
type Ingestor struct {
	documents document.Store
	queue     job.Queue
	logger    *slog.Logger
}

// NewIngestor creates a new Ingestor.
func NewIngestor(documents document.Store, queue job.Queue, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		documents: documents,
		queue:     queue,
		logger:    logger,
	}
}

// Accept validates the URL and queues an ingestion job. Completed URLs are
// not re-ingested; URLs currently being processed are not queued twice; a
// failed URL is reset to pending and retried.
func (s *Ingestor) Accept(ctx context.Context, rawURL string) (IngestResult, error) {
	if err := job.ValidateURL(rawURL); err != nil {
		return IngestResult{}, err
	}

	doc, err := s.documents.GetByURL(ctx, rawURL)
	switch {
	case errors.Is(err, database.ErrNotFound):
		doc, err = s.documents.Save(ctx, document.New(rawURL))
		if err != nil {
			return IngestResult{}, fmt.Errorf("create document: %w", err)
		}
	case err != nil:
		return IngestResult{}, fmt.Errorf("look up document: %w", err)
	default:
		switch doc.Status() {
		case document.StatusCompleted:
			return IngestResult{Document: doc, Outcome: OutcomeAlreadyIngested}, nil
		case document.StatusProcessing:
			return IngestResult{Document: doc, Outcome: OutcomeProcessing}, nil
		case document.StatusFailed:
			doc, err = doc.ResetForRetry()
			if err != nil {
				return IngestResult{}, fmt.Errorf("reset document for retry: %w", err)
			}
			doc, err = s.documents.Save(ctx, doc)
			if err != nil {
				return IngestResult{}, fmt.Errorf("save reset document: %w", err)
			}
		case document.StatusPending:
			// Still waiting for a worker; push again so the job is not lost.
		}
	}

	j, err := job.New(rawURL, time.Now())
	if err != nil {
		return IngestResult{}, err
	}
	if err := s.queue.Push(ctx, j); err != nil {
		return IngestResult{}, fmt.Errorf("queue ingestion job: %w", err)
	}

	s.logger.Info("ingestion job queued", slog.String("url", rawURL))
	return IngestResult{Document: doc, Outcome: OutcomeAccepted}, nil
}

// Get retrieves a document by ID.
func (s *Ingestor) Get(ctx context.Context, id int64) (document.Document, error) {
	return s.documents.Get(ctx, id)
}

// List returns documents ordered newest first.
func (s *Ingestor) List(ctx context.Context, limit, offset int) ([]document.Document, error) {
	return s.documents.List(ctx, limit, offset)
}

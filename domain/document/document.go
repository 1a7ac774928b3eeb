// Package document provides the metadata domain types for ingested URLs
// and their text chunks.
package document

import (
	"time"
)

// maxErrorMessageLen bounds the stored error message on failed ingestions.
const maxErrorMessageLen = 1024

// Document is the durable record of one ingested URL.
type Document struct {
	id            int64
	url           string
	title         string
	status        Status
	contentLength int
	chunkCount    int
	errorMessage  string
	createdAt     time.Time
	updatedAt     time.Time
	completedAt   *time.Time
}

// New creates a pending Document for the given URL.
func New(url string) Document {
	return Document{
		url:    url,
		status: StatusPending,
	}
}

// NewWithID reconstructs a Document from stored fields (used by persistence).
func NewWithID(
	id int64,
	url, title string,
	status Status,
	contentLength, chunkCount int,
	errorMessage string,
	createdAt, updatedAt time.Time,
	completedAt *time.Time,
) Document {
	return Document{
		id:            id,
		url:           url,
		title:         title,
		status:        status,
		contentLength: contentLength,
		chunkCount:    chunkCount,
		errorMessage:  errorMessage,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		completedAt:   completedAt,
	}
}

// ID returns the document ID.
func (d Document) ID() int64 { return d.id }

// URL returns the source URL. URLs are globally unique per document.
func (d Document) URL() string { return d.url }

// Title returns the derived page title.
func (d Document) Title() string { return d.title }

// Status returns the ingestion status.
func (d Document) Status() Status { return d.status }

// ContentLength returns the cleaned text length in runes.
func (d Document) ContentLength() int { return d.contentLength }

// ChunkCount returns the number of stored chunks.
func (d Document) ChunkCount() int { return d.chunkCount }

// ErrorMessage returns the failure message from the last attempt, if any.
func (d Document) ErrorMessage() string { return d.errorMessage }

// CreatedAt returns when the document was first requested.
func (d Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns when the document was last modified.
func (d Document) UpdatedAt() time.Time { return d.updatedAt }

// CompletedAt returns when ingestion last completed, or nil.
func (d Document) CompletedAt() *time.Time { return d.completedAt }

// WithTitle returns a copy with the title set.
func (d Document) WithTitle(title string) Document {
	d.title = title
	return d
}

// WithContentLength returns a copy with the content length set.
func (d Document) WithContentLength(n int) Document {
	d.contentLength = n
	return d
}

// MarkProcessing transitions the document to processing.
func (d Document) MarkProcessing() (Document, error) {
	next, err := d.status.TransitionTo(StatusProcessing)
	if err != nil {
		return d, err
	}
	d.status = next
	return d, nil
}

// MarkCompleted transitions the document to completed, recording the chunk
// count and completion time and clearing any prior error.
func (d Document) MarkCompleted(chunkCount int, at time.Time) (Document, error) {
	next, err := d.status.TransitionTo(StatusCompleted)
	if err != nil {
		return d, err
	}
	d.status = next
	d.chunkCount = chunkCount
	d.errorMessage = ""
	d.completedAt = &at
	return d, nil
}

// MarkFailed transitions the document to failed with a truncated message.
func (d Document) MarkFailed(message string) (Document, error) {
	next, err := d.status.TransitionTo(StatusFailed)
	if err != nil {
		return d, err
	}
	d.status = next
	d.errorMessage = truncate(message, maxErrorMessageLen)
	return d, nil
}

// ResetForRetry transitions a failed document back to pending and clears the
// error message. The caller is responsible for purging the old chunks.
func (d Document) ResetForRetry() (Document, error) {
	next, err := d.status.TransitionTo(StatusPending)
	if err != nil {
		return d, err
	}
	d.status = next
	d.errorMessage = ""
	return d, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// Package job provides the ingestion job queue domain types.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrMalformedPayload indicates a queue payload that fails schema validation.
// Malformed payloads are rejected at the queue boundary so the consumption
// loop never crashes on bad input.
var ErrMalformedPayload = errors.New("malformed job payload")

// ErrInvalidURL indicates a URL that is not absolute http(s).
var ErrInvalidURL = errors.New("invalid url")

// Job is one unit of ingestion work: fetch, process, and index a URL.
type Job struct {
	id       int64
	url      string
	enqueued time.Time
}

// New creates a Job for the given URL, stamped with the enqueue time.
func New(rawURL string, enqueued time.Time) (Job, error) {
	if err := ValidateURL(rawURL); err != nil {
		return Job{}, err
	}
	return Job{url: rawURL, enqueued: enqueued.UTC()}, nil
}

// NewWithID reconstructs a Job from stored fields (used by persistence).
func NewWithID(id int64, rawURL string, enqueued time.Time) Job {
	return Job{id: id, url: rawURL, enqueued: enqueued}
}

// ID returns the job's queue ID.
func (j Job) ID() int64 { return j.id }

// URL returns the target URL.
func (j Job) URL() string { return j.url }

// EnqueuedAt returns when the job was pushed.
func (j Job) EnqueuedAt() time.Time { return j.enqueued }

// payload is the wire format of a queued job.
type payload struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

// MarshalPayload serializes the job to its queue payload:
// {"url": string, "timestamp": ISO-8601}.
func (j Job) MarshalPayload() ([]byte, error) {
	return json.Marshal(payload{
		URL:       j.url,
		Timestamp: j.enqueued.Format(time.RFC3339Nano),
	})
}

// UnmarshalPayload parses and validates a queue payload.
func UnmarshalPayload(data []byte) (Job, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := ValidateURL(p.URL); err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return Job{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedPayload, p.Timestamp)
	}

	return Job{url: p.URL, enqueued: ts}, nil
}

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w %q: must be absolute http(s)", ErrInvalidURL, rawURL)
	}
	return nil
}

// Queue is a durable FIFO of pending ingestion jobs, shared between the job
// producer (the API) and the ingestion worker.
type Queue interface {
	// Push appends a job to the tail of the queue.
	Push(ctx context.Context, j Job) error

	// Pop removes and returns the job at the head of the queue.
	// found is false when the queue is empty.
	Pop(ctx context.Context) (j Job, found bool, err error)

	// Len returns the number of pending jobs.
	Len(ctx context.Context) (int64, error)
}

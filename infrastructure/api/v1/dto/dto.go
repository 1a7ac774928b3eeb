// Package dto defines the request and response bodies of the v1 API.
package dto

import "time"

// IngestRequest is the body of POST /api/v1/ingest-url.
type IngestRequest struct {
	URL string `json:"url"`
}

// IngestResponse reports how an ingestion request was resolved.
type IngestResponse struct {
	Message    string `json:"message"`
	URL        string `json:"url"`
	Status     string `json:"status"`
	ChunkCount *int   `json:"chunk_count,omitempty"`
}

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SourceChunk is one retrieved chunk attributed in an answer.
type SourceChunk struct {
	Content    string  `json:"content"`
	Distance   float64 `json:"distance"`
	ChunkIndex int     `json:"chunk_index"`
}

// QueryResponse is the answer to a query with its supporting sources.
type QueryResponse struct {
	Query   string        `json:"query"`
	Answer  string        `json:"answer"`
	Sources []SourceChunk `json:"sources"`
	Model   string        `json:"model,omitempty"`
}

// DocumentResponse is one ingested URL record.
type DocumentResponse struct {
	ID            int64      `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title,omitempty"`
	Status        string     `json:"status"`
	ContentLength int        `json:"content_length"`
	ChunkCount    int        `json:"chunk_count"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// DocumentListResponse is a page of document records.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int64              `json:"total"`
}

// StatsResponse reports system counters.
type StatsResponse struct {
	Documents   int64 `json:"documents"`
	PendingJobs int64 `json:"pending_jobs"`
	Vectors     int   `json:"vectors"`
	VectorDim   int   `json:"vector_dim"`
}

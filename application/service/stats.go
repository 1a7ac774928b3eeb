package service

import (
	"context"
	"fmt"

	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/domain/job"
)

// Stats is a point-in-time snapshot of the system.
type Stats struct {
	Documents   int64
	PendingJobs int64
	Vectors     int
	VectorDim   int
}

// StatsService reports system counters.
type StatsService struct {
	documents document.Store
	queue     job.Queue
	index     VectorIndex
	dim       int
}

// NewStatsService creates a StatsService.
func NewStatsService(documents document.Store, queue job.Queue, index VectorIndex, dim int) *StatsService {
	return &StatsService{
		documents: documents,
		queue:     queue,
		index:     index,
		dim:       dim,
	}
}

// Snapshot collects current counters.
func (s *StatsService) Snapshot(ctx context.Context) (Stats, error) {
	docs, err := s.documents.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count documents: %w", err)
	}
	pending, err := s.queue.Len(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("queue length: %w", err)
	}
	return Stats{
		Documents:   docs,
		PendingJobs: pending,
		Vectors:     s.index.Count(),
		VectorDim:   s.dim,
	}, nil
}

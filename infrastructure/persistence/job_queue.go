package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/raglet/raglet/domain/job"
	"github.com/raglet/raglet/internal/database"
)

// JobQueue implements job.Queue as a durable FIFO table.
type JobQueue struct {
	db database.Database
}

// NewJobQueue creates a new JobQueue.
func NewJobQueue(db database.Database) JobQueue {
	return JobQueue{db: db}
}

// Push appends a job to the tail of the queue.
func (q JobQueue) Push(ctx context.Context, j job.Job) error {
	data, err := j.MarshalPayload()
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}

	model := JobModel{Payload: string(data)}
	result := q.db.Session(ctx).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("push job: %w", result.Error)
	}
	return nil
}

// Pop removes and returns the oldest job. The select and delete run in one
// transaction so concurrent consumers never hand out the same row. A row
// whose payload fails validation is discarded and reported as
// job.ErrMalformedPayload; the queue stays usable.
func (q JobQueue) Pop(ctx context.Context) (job.Job, bool, error) {
	var model JobModel

	err := database.WithTransaction(ctx, q.db, func(tx *gorm.DB) error {
		result := tx.Order("created_at ASC, id ASC").First(&model)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return result.Error
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		return job.Job{}, false, fmt.Errorf("pop job: %w", err)
	}

	if model.ID == 0 {
		return job.Job{}, false, nil
	}

	j, err := job.UnmarshalPayload([]byte(model.Payload))
	if err != nil {
		return job.Job{}, false, fmt.Errorf("pop job %d: %w", model.ID, err)
	}
	return job.NewWithID(model.ID, j.URL(), j.EnqueuedAt()), true, nil
}

// Len returns the number of pending jobs.
func (q JobQueue) Len(ctx context.Context) (int64, error) {
	var count int64
	result := q.db.Session(ctx).Model(&JobModel{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("queue length: %w", result.Error)
	}
	return count, nil
}

var _ job.Queue = JobQueue{}

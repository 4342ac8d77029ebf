package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
)

const jobKeyPrefix = "bulksend:job:"

// JobStatusRepositoryInterface stores the progress of asynchronous bulk sends.
type JobStatusRepositoryInterface interface {
	Save(ctx context.Context, job *model.BulkSendJob) error
	Get(ctx context.Context, id string) (*model.BulkSendJob, error)
}

// JobStatusRepository keeps job snapshots in Redis with an expiry.
type JobStatusRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}

// Save overwrites the job snapshot and refreshes its expiry.
func (r *JobStatusRepository) Save(ctx context.Context, job *model.BulkSendJob) error {
	job.UpdatedAt = time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = job.UpdatedAt
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.ID, err)
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return r.Client.Set(ctx, jobKey(job.ID), data, ttl).Err()
}

func (r *JobStatusRepository) Get(ctx context.Context, id string) (*model.BulkSendJob, error) {
	data, err := r.Client.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.NewNotFound("bulk send job", id)
		}
		return nil, err
	}
	var job model.BulkSendJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decoding job %s: %w", id, err)
	}
	return &job, nil
}

var _ JobStatusRepositoryInterface = (*JobStatusRepository)(nil)

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/metrics"
	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/repository"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

const DefaultBulkSendTopic = "bulk_sends"

// BulkSender runs one bulk send to completion.
type BulkSender interface {
	Send(ctx context.Context, req service.BulkSendRequest, progress service.ProgressFunc) (*service.BulkSendResult, error)
}

type bulkSendMessage struct {
	JobID   string                  `json:"job_id"`
	Request service.BulkSendRequest `json:"request"`
}

// BulkSendJobs runs bulk sends asynchronously and tracks them in the job
// store.
type BulkSendJobs struct {
	Queue  Queue
	Jobs   repository.JobStatusRepositoryInterface
	Sender BulkSender
	Topic  string
	Logger *zap.Logger
}

func (j *BulkSendJobs) topic() string {
	if j.Topic == "" {
		return DefaultBulkSendTopic
	}
	return j.Topic
}

func (j *BulkSendJobs) logger() *zap.Logger {
	if j.Logger == nil {
		return zap.NewNop()
	}
	return j.Logger
}

// Enqueue validates the request, records a queued job and publishes it.
func (j *BulkSendJobs) Enqueue(ctx context.Context, req service.BulkSendRequest) (*model.BulkSendJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job := &model.BulkSendJob{
		ID:     uuid.NewString(),
		Status: model.JobStatusQueued,
		Total:  len(req.Customers),
	}
	if err := j.Jobs.Save(ctx, job); err != nil {
		return nil, appErrors.NewUnavailable("job store", err)
	}

	body, err := json.Marshal(bulkSendMessage{JobID: job.ID, Request: req})
	if err != nil {
		return nil, fmt.Errorf("encoding job %s: %w", job.ID, err)
	}
	if err := j.Queue.Publish(ctx, j.topic(), body); err != nil {
		job.Error = err.Error()
		j.finish(ctx, job, model.JobStatusFailed, "")
		return nil, appErrors.NewUnavailable("job queue", err)
	}
	j.logger().Info("bulk send job queued", zap.String("job_id", job.ID), zap.Int("recipients", job.Total))
	return job, nil
}

func (j *BulkSendJobs) Get(ctx context.Context, id string) (*model.BulkSendJob, error) {
	return j.Jobs.Get(ctx, id)
}

// Start subscribes the job handler to the queue.
func (j *BulkSendJobs) Start() error {
	return j.Queue.Subscribe(j.topic(), j.Handle)
}

// Handle runs one queued job. Progress is written to the job store after
// every recipient.
func (j *BulkSendJobs) Handle(ctx context.Context, body []byte) error {
	var msg bulkSendMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decoding bulk send job: %w", err)
	}
	log := j.logger().With(zap.String("job_id", msg.JobID))

	job, err := j.Jobs.Get(ctx, msg.JobID)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			return err
		}
		job = &model.BulkSendJob{ID: msg.JobID, Total: len(msg.Request.Customers)}
	}
	if job.Status == model.JobStatusRunning || job.Status == model.JobStatusCompleted {
		log.Warn("skipping job that already ran", zap.String("status", job.Status))
		return nil
	}

	job.Status = model.JobStatusRunning
	if err := j.Jobs.Save(ctx, job); err != nil {
		log.Warn("failed to mark job running", zap.Error(err))
	}

	result, err := j.Sender.Send(ctx, msg.Request, func(processed, success, failed int) {
		job.Processed, job.Success, job.Failed = processed, success, failed
		if err := j.Jobs.Save(ctx, job); err != nil {
			log.Warn("failed to save job progress", zap.Error(err))
		}
	})
	if err != nil {
		job.Error = err.Error()
		j.finish(ctx, job, model.JobStatusFailed, "")
		return err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding job result: %w", err)
	}
	job.Processed, job.Success, job.Failed = result.Total, result.Success, result.Failed
	j.finish(ctx, job, model.JobStatusCompleted, string(encoded))
	log.Info("bulk send job completed", zap.Int("success", result.Success), zap.Int("failed", result.Failed))
	return nil
}

func (j *BulkSendJobs) finish(ctx context.Context, job *model.BulkSendJob, status, result string) {
	job.Status = status
	job.Result = result
	metrics.BulkSendJobs.WithLabelValues(status).Inc()
	if err := j.Jobs.Save(ctx, job); err != nil {
		j.logger().Error("failed to save job status", zap.String("job_id", job.ID), zap.Error(err))
	}
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/repository"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

type mockSender struct {
	err   error
	calls int
}

func (m *mockSender) Send(ctx context.Context, req service.BulkSendRequest, progress service.ProgressFunc) (*service.BulkSendResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	res := &service.BulkSendResult{Total: len(req.Customers)}
	for i, c := range req.Customers {
		ok := c.Email != "bad@x.co"
		if ok {
			res.Success++
		} else {
			res.Failed++
		}
		res.Results = append(res.Results, service.SendResult{CustomerID: c.ID, CustomerEmail: c.Email, Success: ok})
		progress(i+1, res.Success, res.Failed)
	}
	return res, nil
}

type failingQueue struct{ Queue }

func (failingQueue) Publish(context.Context, string, []byte) error {
	return errors.New("broker down")
}

func newJobStore(t *testing.T) *repository.JobStatusRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return &repository.JobStatusRepository{Client: client}
}

func sampleRequest() service.BulkSendRequest {
	return service.BulkSendRequest{
		Customers: []model.Recipient{
			{ID: 1, Name: "Taro", Email: "taro@acme.co"},
			{ID: 2, Name: "Bad", Email: "bad@x.co"},
		},
		Subject:      "s",
		BodyTemplate: "b",
	}
}

func TestBulkSendJobs_RunsQueuedJob(t *testing.T) {
	q := NewInMemoryQueue(nil)
	sender := &mockSender{}
	jobs := &BulkSendJobs{Queue: q, Jobs: newJobStore(t), Sender: sender}
	require.NoError(t, jobs.Start())
	ctx := context.Background()

	job, err := jobs.Enqueue(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, job.Status)
	assert.Equal(t, 2, job.Total)
	q.Wait()

	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, 2, got.Processed)
	assert.Equal(t, 1, got.Success)
	assert.Equal(t, 1, got.Failed)

	var result service.BulkSendResult
	require.NoError(t, json.Unmarshal([]byte(got.Result), &result))
	assert.Len(t, result.Results, 2)
	assert.Equal(t, 1, sender.calls)
}

func TestBulkSendJobs_SenderFailureMarksJobFailed(t *testing.T) {
	q := NewInMemoryQueue(nil)
	jobs := &BulkSendJobs{Queue: q, Jobs: newJobStore(t), Sender: &mockSender{err: errors.New("mailer exploded")}}
	require.NoError(t, jobs.Start())

	job, err := jobs.Enqueue(context.Background(), sampleRequest())
	require.NoError(t, err)
	q.Wait()

	got, err := jobs.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.Equal(t, "mailer exploded", got.Error)
}

func TestBulkSendJobs_DoesNotRerunCompletedJob(t *testing.T) {
	store := newJobStore(t)
	sender := &mockSender{}
	jobs := &BulkSendJobs{Queue: NewInMemoryQueue(nil), Jobs: store, Sender: sender}
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.BulkSendJob{ID: "done", Status: model.JobStatusCompleted}))
	body, _ := json.Marshal(bulkSendMessage{JobID: "done", Request: sampleRequest()})

	require.NoError(t, jobs.Handle(ctx, body))
	assert.Zero(t, sender.calls)
}

func TestBulkSendJobs_EnqueueErrors(t *testing.T) {
	store := newJobStore(t)
	jobs := &BulkSendJobs{Queue: failingQueue{}, Jobs: store, Sender: &mockSender{}}

	_, err := jobs.Enqueue(context.Background(), service.BulkSendRequest{})
	assert.True(t, appErrors.IsValidation(err))

	_, err = jobs.Enqueue(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, appErrors.IsUnavailable(err))
}

func TestBulkSendJobs_GetUnknown(t *testing.T) {
	jobs := &BulkSendJobs{Queue: NewInMemoryQueue(nil), Jobs: newJobStore(t), Sender: &mockSender{}}
	_, err := jobs.Get(context.Background(), "missing")
	assert.True(t, appErrors.IsNotFound(err))
}

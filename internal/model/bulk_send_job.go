// internal/model/bulk_send_job.go
package model

import "time"

const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// BulkSendJob tracks one asynchronous bulk send.
type BulkSendJob struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"` // queued, running, completed, failed
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Success   int       `json:"success"`
	Failed    int       `json:"failed"`
	Error     string    `json:"error,omitempty"`
	Result    string    `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

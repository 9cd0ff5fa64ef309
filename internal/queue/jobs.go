package queue

import (
	"context"
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// Job statuses
const (
	StatusQueued     = "QUEUED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
)

// Job is a unit of background work
type Job struct {
	ID        string
	Name      string
	Run       func(ctx context.Context) error
	Status    string
	Error     error
	CreatedAt time.Time
	Done      chan struct{}
}

// NewJob creates a job with default values
func NewJob(id, name string, run func(ctx context.Context) error) *Job {
	return &Job{
		ID:        id,
		Name:      name,
		Run:       run,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		Done:      make(chan struct{}),
	}
}

func (j *Job) finish(err error) {
	j.Error = err
	if err != nil {
		j.Status = types.StatusFailed
	} else {
		j.Status = StatusCompleted
	}
	close(j.Done)
}

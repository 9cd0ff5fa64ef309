package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
)

var (
	// ErrQueueFull is returned when the job buffer is at capacity
	ErrQueueFull = errors.New("job queue is full")

	// ErrStopped is returned when enqueueing after Stop
	ErrStopped = errors.New("worker pool stopped")
)

// WorkerPool runs jobs on a fixed set of goroutines
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	logger      logger.Logger

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount int, log logger.Logger) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WorkerPool{
		jobQueue:    make(chan *Job, 100), // Buffer of 100 jobs
		workerCount: workerCount,
		logger:      log,
	}
}

// Start launches the workers. Jobs receive a context cancelled by Stop.
func (wp *WorkerPool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	wp.mu.Lock()
	wp.cancel = cancel
	wp.mu.Unlock()

	wp.logger.Info(ctx, "Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// EnqueueJob adds a job to the queue without blocking
func (wp *WorkerPool) EnqueueJob(job *Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		return ErrStopped
	}

	job.Status = StatusQueued
	job.CreatedAt = time.Now()
	select {
	case wp.jobQueue <- job:
		wp.logger.Debug(context.Background(), "Job %s enqueued (%s)", job.ID, job.Name)
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop cancels running jobs, drains the queue and waits for workers to exit
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	if wp.cancel != nil {
		wp.cancel()
	}
	close(wp.jobQueue)
	wp.mu.Unlock()

	wp.wg.Wait()
	wp.logger.Info(context.Background(), "Worker pool stopped")
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		wp.runJob(ctx, id, job)
	}
}

func (wp *WorkerPool) runJob(ctx context.Context, workerID int, job *Job) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error(ctx, "Worker %d: PANIC processing job %s: %v\n%s",
				workerID, job.ID, r, string(debug.Stack()))
			job.finish(fmt.Errorf("worker panic: %v", r))
		}
	}()

	if ctx.Err() != nil {
		job.finish(ctx.Err())
		return
	}

	wp.logger.Debug(ctx, "Worker %d: Processing job %s (%s)", workerID, job.ID, job.Name)
	job.Status = StatusProcessing
	err := job.Run(ctx)
	if err != nil {
		wp.logger.Error(ctx, "Worker %d: Job %s failed: %v", workerID, job.ID, err)
	}
	job.finish(err)
}

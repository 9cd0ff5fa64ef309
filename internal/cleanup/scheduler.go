package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
)

// Scheduler removes temp audio left behind by interrupted downloads
type Scheduler struct {
	tempDir  string
	interval time.Duration
	maxAge   time.Duration
	logger   logger.Logger
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler creates a new cleanup scheduler
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		tempDir:  tempDir,
		interval: time.Duration(intervalMinutes) * time.Minute,
		maxAge:   time.Duration(maxAgeHours) * time.Hour,
		logger:   log,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start sweeps once immediately, then on every interval
func (s *Scheduler) Start() {
	ctx := context.Background()
	s.logger.Info(ctx, "Running initial temp file cleanup...")
	s.CleanOldFiles()

	ticker := time.NewTicker(s.interval)

	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.CleanOldFiles()
			case <-s.stopChan:
				return
			}
		}
	}()

	s.logger.Info(ctx, "Cleanup scheduler started (interval: %v, max age: %v)", s.interval, s.maxAge)
}

// Stop stops the scheduler and waits for an in-flight sweep
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		<-s.done
		s.logger.Info(context.Background(), "Cleanup scheduler stopped")
	})
}

// CleanOldFiles removes files older than maxAge and returns how many were deleted
func (s *Scheduler) CleanOldFiles() int {
	ctx := context.Background()
	now := s.now()

	var deletedCount int
	var deletedSize int64

	err := filepath.Walk(s.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if info.IsDir() {
			return nil
		}

		age := now.Sub(info.ModTime())
		if age <= s.maxAge {
			return nil
		}

		size := info.Size()
		if err := os.Remove(path); err != nil {
			s.logger.Warn(ctx, "Failed to delete old file %s: %v", path, err)
			return nil
		}
		deletedCount++
		deletedSize += size
		s.logger.Debug(ctx, "Deleted old temp file: %s (age: %s, size: %dKB)",
			filepath.Base(path), age.Round(time.Minute), size/1024)
		return nil
	})

	if err != nil {
		s.logger.Error(ctx, "Error during cleanup: %v", err)
	}

	if deletedCount > 0 {
		s.logger.Info(ctx, "Cleanup complete: %d files deleted, %.2fMB freed",
			deletedCount, float64(deletedSize)/(1024*1024))
	}
	return deletedCount
}

// EnsureTempDirExists creates the temp directory if it doesn't exist
func EnsureTempDirExists(tempDir string) error {
	return os.MkdirAll(tempDir, 0755)
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Job enqueues one named task every Interval
type Job struct {
	Task     string
	Interval time.Duration
}

// PeriodicJobs returns the reconciliation jobs with the configured intervals
func PeriodicJobs(cfg config.SchedulerConfig) []Job {
	return []Job{
		{Task: shared.TaskSyncWhatsAppApps, Interval: cfg.SyncAppsInterval},
		{Task: shared.TaskSyncCloudWABAs, Interval: cfg.SyncWABAsInterval},
		{Task: shared.TaskSyncCloudPhoneNumbers, Interval: cfg.SyncPhonesInterval},
	}
}

// Scheduler submits periodic tasks to the task queue. It never runs the
// work itself; overlapping runs are prevented by the handlers' lock.
type Scheduler struct {
	queue  shared.TaskQueue
	jobs   []Job
	config config.SchedulerConfig
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a scheduler for jobs
func NewScheduler(queue shared.TaskQueue, jobs []Job, cfg config.SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	for _, j := range jobs {
		if j.Interval <= 0 {
			return nil, fmt.Errorf("%w: job %s has interval %s", ErrInvalidConfig, j.Task, j.Interval)
		}
	}
	return &Scheduler{
		queue:  queue,
		jobs:   jobs,
		config: cfg,
		logger: logger,
	}, nil
}

// Start launches one ticker loop per job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrAlreadyRunning
	}
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.run(ctx, job)
	}

	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)), zap.Bool("run_on_start", s.config.RunOnStart))
	return nil
}

// Stop cancels the loops and waits for them until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	defer s.wg.Done()

	log := s.logger.With(zap.String("task", job.Task), zap.Duration("interval", job.Interval))
	failures := 0
	fire := func() {
		if err := s.enqueue(ctx, job); err != nil {
			failures++
			if s.config.MaxConsecutiveErrors > 0 && failures >= s.config.MaxConsecutiveErrors {
				log.Error("Periodic task keeps failing to enqueue", zap.Int("consecutive_failures", failures), zap.Error(err))
			} else {
				log.Warn("Failed to enqueue periodic task", zap.Error(err))
			}
			return
		}
		failures = 0
		log.Debug("Periodic task enqueued")
	}

	if s.config.RunOnStart {
		fire()
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fire()
		}
	}
}

func (s *Scheduler) enqueue(ctx context.Context, job Job) error {
	task, err := shared.NewTask(job.Task, nil)
	if err != nil {
		return err
	}
	if s.config.EnqueueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.EnqueueTimeout)
		defer cancel()
	}
	return s.queue.Enqueue(ctx, task)
}

// Package scheduler runs the periodic maintenance jobs: orphan cleanup,
// ICS feed sync and post-stay review requests.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/config"
)

// Job is one named periodic task. Spec uses the six-field cron format
// with a leading seconds field, or a descriptor such as "@hourly".
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	locker Locker
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a stopped scheduler. A nil rdb means locks are process local.
func New(cfg config.SchedulerConfig, rdb *redis.Client) *Scheduler {
	var locker Locker = localLocker{}
	if rdb != nil {
		locker = NewRedisLocker(rdb, cfg.LockPrefix, cfg.LockTTL)
	}
	return newScheduler(locker)
}

func newScheduler(locker Locker) *Scheduler {
	logger := applog.CronLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		locker: locker,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job. An empty Spec disables it.
func (s *Scheduler) Add(job Job) error {
	if job.Spec == "" {
		applog.Info("job disabled", "job", job.Name)
		return nil
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { s.runOnce(job) }); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	applog.Info("job scheduled", "job", job.Name, "spec", job.Spec)
	return nil
}

// runOnce runs job under its lock. A held lock skips the run.
func (s *Scheduler) runOnce(job Job) {
	release, ok, err := s.locker.Acquire(s.ctx, job.Name)
	if err != nil {
		applog.Error("job lock failed", err, "job", job.Name)
		return
	}
	if !ok {
		applog.Debug("job skipped, lock held elsewhere", "job", job.Name)
		return
	}
	defer release()

	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		applog.Error("job failed", err, "job", job.Name, "took_ms", time.Since(start).Milliseconds())
		return
	}
	applog.Info("job finished", "job", job.Name, "took_ms", time.Since(start).Milliseconds())
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for running jobs until ctx is done, at
// which point their context is cancelled.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		applog.Warn("scheduler stop timed out, cancelling jobs")
	}
	s.cancel()
}

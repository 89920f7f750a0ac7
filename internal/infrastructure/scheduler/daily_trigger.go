// Package scheduler runs the ledger's periodic maintenance jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidConfig is returned for an out-of-range trigger time
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// Job is one unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// DailyTriggerConfig holds the local time of day a job fires
type DailyTriggerConfig struct {
	Hour          int
	Minute        int
	CheckInterval time.Duration
	LockTTL       time.Duration
}

// DailyTrigger fires a job once per calendar day at the configured time.
// A missed slot (server down at that minute) is caught up on the first
// check after it. Runs across instances are serialised through the Locker.
type DailyTrigger struct {
	cfg    DailyTriggerConfig
	job    Job
	locker Locker
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	lastRun string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewDailyTrigger(cfg DailyTriggerConfig, job Job, locker Locker, logger *zap.Logger) (*DailyTrigger, error) {
	if cfg.Hour < 0 || cfg.Hour > 23 || cfg.Minute < 0 || cfg.Minute > 59 {
		return nil, fmt.Errorf("%w: %02d:%02d", ErrInvalidConfig, cfg.Hour, cfg.Minute)
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &DailyTrigger{
		cfg:    cfg,
		job:    job,
		locker: locker,
		logger: logger.With(zap.String("job", job.Name())),
		now:    time.Now,
	}, nil
}

// Start launches the check loop. Calling Start twice is a no-op.
func (t *DailyTrigger) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, t.cancel = context.WithCancel(ctx)

	t.wg.Add(1)
	go t.loop(ctx)
	t.logger.Info("daily trigger started",
		zap.String("at", fmt.Sprintf("%02d:%02d", t.cfg.Hour, t.cfg.Minute)),
		zap.Duration("check_interval", t.cfg.CheckInterval),
	)
}

// Stop cancels the loop and waits for an in-flight run or ctx
func (t *DailyTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		t.logger.Info("daily trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *DailyTrigger) loop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick runs the job when today's slot has passed and it has not run yet today.
// It reports whether the job ran.
func (t *DailyTrigger) Tick(ctx context.Context) bool {
	now := t.now()
	today := now.Format(time.DateOnly)
	slot := time.Date(now.Year(), now.Month(), now.Day(), t.cfg.Hour, t.cfg.Minute, 0, 0, now.Location())

	t.mu.Lock()
	due := t.lastRun != today && !now.Before(slot)
	if due {
		t.lastRun = today
	}
	t.mu.Unlock()
	if !due {
		return false
	}
	return t.runLocked(ctx)
}

func (t *DailyTrigger) runLocked(ctx context.Context) bool {
	release, err := t.locker.Acquire(ctx, "shopman:job:"+t.job.Name(), t.cfg.LockTTL)
	if errors.Is(err, ErrLockHeld) {
		t.logger.Info("job already running on another instance")
		return false
	}
	if err != nil {
		t.logger.Error("could not lock job", zap.Error(err))
		return false
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			t.logger.Warn("failed to release job lock", zap.Error(err))
		}
	}()

	start := time.Now()
	if err := t.job.Run(ctx); err != nil {
		t.logger.Error("scheduled job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return true
	}
	t.logger.Info("scheduled job finished", zap.Duration("elapsed", time.Since(start)))
	return true
}

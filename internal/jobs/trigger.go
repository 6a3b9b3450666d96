package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron"
)

const DefaultSweepInterval = 5 * time.Minute

type sweepRunner interface {
	Sweep(ctx context.Context, now time.Time) (SweepResult, error)
}

// Trigger runs the sweep once on Start and then on a fixed interval until Stop.
type Trigger struct {
	sweeper  sweepRunner
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
	wg   sync.WaitGroup
}

func NewTrigger(sweeper sweepRunner, interval time.Duration) *Trigger {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Trigger{
		sweeper:  sweeper,
		interval: interval,
		now:      time.Now,
	}
}

func (t *Trigger) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron != nil {
		slog.Info("sweep trigger already running")
		return nil
	}

	c := cron.New()
	if err := c.AddFunc(fmt.Sprintf("@every %s", t.interval), t.run); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	t.cron = c

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run()
	}()

	slog.Info("sweep trigger started", "interval", t.interval.String())
	return nil
}

// Stop cancels future ticks. A sweep already running is left to finish.
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron == nil {
		return
	}

	t.cron.Stop()
	t.cron = nil
	slog.Info("sweep trigger stopped")
}

func (t *Trigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cron != nil
}

// Wait blocks until the initial sweep started by Start has returned.
func (t *Trigger) Wait() {
	t.wg.Wait()
}

func (t *Trigger) run() {
	res, err := t.sweeper.Sweep(context.Background(), t.now())
	if errors.Is(err, ErrSweepInProgress) {
		slog.Info("previous sweep still running, skipping tick")
		return
	}
	if err != nil {
		slog.Error("scheduled post sweep failed", "error", err)
		return
	}
	slog.Debug("sweep tick done", "processed", res.Processed, "failed", res.Failed, "total", res.Total)
}

package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrCycleRunning = errors.New("cycle already running")

type CycleRunner interface {
	Run(ctx context.Context) (CycleReport, error)
}

// Scheduler runs a cycle, sleeps for the interval, and repeats. Cycles never
// overlap: a trigger that arrives while one is running is rejected.
type Scheduler struct {
	cycle    CycleRunner
	interval time.Duration
	logger   *zap.Logger
	running  atomic.Bool

	mu   sync.Mutex
	done chan struct{} // closed when the current cycle ends
}

func NewScheduler(cycle CycleRunner, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{cycle: cycle, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. Cancellation is only observed between
// cycles; a cycle in flight runs to completion on a detached context.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	for {
		if ctx.Err() != nil {
			s.logger.Info("scheduler stopped")
			return nil
		}

		if _, err := s.RunOnce(ctx); err != nil {
			if errors.Is(err, ErrCycleRunning) {
				s.logger.Warn("previous cycle still running, skipping")
			}
		}

		s.logger.Info("scheduler sleeping", zap.Duration("interval", s.interval))
		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce runs a single cycle unless one is already in progress.
func (s *Scheduler) RunOnce(ctx context.Context) (CycleReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return CycleReport{}, ErrCycleRunning
	}
	done := make(chan struct{})
	s.mu.Lock()
	s.done = done
	s.mu.Unlock()
	defer func() {
		s.running.Store(false)
		close(done)
	}()
	return s.cycle.Run(context.WithoutCancel(ctx))
}

// Wait blocks until the running cycle, whoever triggered it, has finished.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

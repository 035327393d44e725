// Package jobs runs periodic maintenance tasks inside the API process.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), logger: logger}
}

func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")
	s.cron.Start()
}

// Stop waits up to 30 seconds for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info("scheduler stopped")
	case <-time.After(30 * time.Second):
		s.logger.Warn("scheduler stop timeout reached")
	}
}

// AddJob registers cmd under a standard five-field cron spec.
func (s *Scheduler) AddJob(spec string, cmd func()) error {
	if _, err := s.cron.AddFunc(spec, cmd); err != nil {
		s.logger.Error("failed to add cron job", zap.String("spec", spec), zap.Error(err))
		return err
	}
	return nil
}

// Reconciler recomputes denormalized recent remarks.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// RegisterRemarksReconcile schedules r under spec. Each run is bounded by timeout.
func RegisterRemarksReconcile(s *Scheduler, spec string, timeout time.Duration, r Reconciler) error {
	return s.AddJob(spec, func() {
		RunRemarksReconcile(context.Background(), timeout, r, s.logger)
	})
}

// RunRemarksReconcile runs one reconciliation pass and logs the outcome.
func RunRemarksReconcile(ctx context.Context, timeout time.Duration, r Reconciler, logger *zap.Logger) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	fixed, err := r.Reconcile(ctx)
	if err != nil {
		logger.Error("remarks reconciliation failed", zap.Int("fixed", fixed), zap.Error(err))
		return fixed, err
	}
	logger.Info("remarks reconciliation finished",
		zap.Int("fixed", fixed),
		zap.Duration("duration", time.Since(start)))
	return fixed, nil
}

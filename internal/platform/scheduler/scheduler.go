// Package scheduler runs the periodic meeting reminder dispatch.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Dispatcher sends due reminders and reports how many went out.
type Dispatcher interface {
	DispatchReminders(ctx context.Context) (int, error)
}

// Scheduler wraps robfig/cron. Overlapping runs are skipped and panics are
// recovered so one bad tick never stops the loop.
type Scheduler struct {
	cron       *cron.Cron
	dispatcher Dispatcher
	spec       string
	logger     *slog.Logger
}

// New builds a Scheduler firing on spec, e.g. "@every 5m".
func New(dispatcher Dispatcher, spec string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		dispatcher: dispatcher,
		spec:       spec,
		logger:     logger,
	}
}

// Start registers the job and starts the cron loop. ctx is passed to every run.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduler: add %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "schedule", s.spec)
	return nil
}

// Stop halts the loop and waits for a running dispatch to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("reminder scheduler stopped")
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	sent, err := s.dispatcher.DispatchReminders(ctx)
	if err != nil {
		s.logger.Error("reminder dispatch failed", "error", err)
		return
	}
	if sent > 0 {
		s.logger.Info("meeting reminders sent", "count", sent)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}

// Package sweep periodically evicts idle abuse-guard state.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweepable drops its idle entries and reports how many it removed.
type Sweepable interface {
	Sweep() int
}

// Target is a named Sweepable.
type Target struct {
	Name  string
	Store Sweepable
}

// Sweeper runs every target's Sweep on a cron schedule.
type Sweeper struct {
	cron    *cron.Cron
	targets []Target
	logger  *zap.Logger
}

// New schedules targets every interval. The schedule does not run until
// Start is called.
func New(interval time.Duration, logger *zap.Logger, targets ...Target) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sweeper{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		targets: targets,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc("@every "+interval.String(), s.RunOnce); err != nil {
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}
	return s, nil
}

// RunOnce sweeps every target immediately.
func (s *Sweeper) RunOnce() {
	for _, t := range s.targets {
		if removed := t.Store.Sweep(); removed > 0 {
			s.logger.Debug("swept idle entries", zap.String("store", t.Name), zap.Int("removed", removed))
		}
	}
}

// Start begins the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep, or for ctx.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger for panic reporting.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

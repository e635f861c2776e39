package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/prepverse/testprep-service/internal/services"
)

const sweepTimeout = 2 * time.Minute

// ExpirySweeper runs the scheduled pass that marks overdue assignments
// expired. Expiry is also applied lazily on student reads; the sweep keeps
// rows honest for staff listings and reports even when nobody logs in.
type ExpirySweeper struct {
	cron       *cron.Cron
	assignment services.AssignmentService
	logger     *slog.Logger
	spec       string
}

func NewExpirySweeper(assignment services.AssignmentService, logger *slog.Logger, spec string) *ExpirySweeper {
	return &ExpirySweeper{
		cron:       cron.New(),
		assignment: assignment,
		logger:     logger,
		spec:       spec,
	}
}

// Start registers the sweep and kicks off the scheduler.
func (s *ExpirySweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Expiry sweeper started", "schedule", s.spec)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("Expiry sweeper stopped")
}

// RunOnce executes a single sweep outside the schedule.
func (s *ExpirySweeper) RunOnce(ctx context.Context, now time.Time) (int, error) {
	return s.assignment.ExpireOverdue(ctx, now)
}

func (s *ExpirySweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	count, err := s.assignment.ExpireOverdue(ctx, time.Now())
	if err != nil {
		s.logger.Error("Expiry sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.logger.Info("Expiry sweep completed", "expired", count)
	}
}

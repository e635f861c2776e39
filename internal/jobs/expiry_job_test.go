package jobs

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prepverse/testprep-service/internal/services"
)

type stubAssignmentService struct {
	services.AssignmentService

	expired int
	calls   int
}

func (s *stubAssignmentService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	s.calls++
	return s.expired, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExpirySweeper_RunOnce(t *testing.T) {
	stub := &stubAssignmentService{expired: 2}
	sweeper := NewExpirySweeper(stub, testLogger(), "0 5 * * *")

	count, err := sweeper.RunOnce(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if count != 2 || stub.calls != 1 {
		t.Errorf("count=%d calls=%d", count, stub.calls)
	}
}

func TestExpirySweeper_StartRejectsBadSpec(t *testing.T) {
	sweeper := NewExpirySweeper(&stubAssignmentService{}, testLogger(), "not a cron spec")
	if err := sweeper.Start(); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestExpirySweeper_StartAndStop(t *testing.T) {
	sweeper := NewExpirySweeper(&stubAssignmentService{}, testLogger(), "0 5 * * *")
	if err := sweeper.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sweeper.Stop(ctx)
}

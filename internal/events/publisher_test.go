package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(AssignmentCreated, map[string]interface{}{"assignment_id": uint(1)})

	if event.ID == "" {
		t.Error("event id must be assigned")
	}
	if event.Type != AssignmentCreated {
		t.Errorf("type = %q", event.Type)
	}
	if event.OccurredAt.IsZero() {
		t.Error("occurred_at must be set")
	}
}

func TestChannelPublisher_PublishAndClose(t *testing.T) {
	publisher := NewChannelPublisher("testprep.notifications", testLogger())

	event := NewEvent(AttemptCompleted, map[string]interface{}{"attempt_id": uint(3)})
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if err := publisher.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	if err := publisher.Publish(ctx, NewEvent(AssignmentRemoved, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if got := publisher.GetPublishedEvents(); len(got) != 1 || got[0].Type != AssignmentRemoved {
		t.Fatalf("unexpected events: %+v", got)
	}

	publisher.FailNext = true
	if err := publisher.Publish(ctx, NewEvent(AssignmentExpired, nil)); err == nil {
		t.Error("expected forced failure")
	}
	if err := publisher.Publish(ctx, NewEvent(AssignmentExpired, nil)); err != nil {
		t.Errorf("failure must only apply once: %v", err)
	}

	publisher.ClearEvents()
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("ClearEvents left events behind")
	}
}

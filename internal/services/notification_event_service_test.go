package services

import (
	"context"
	"testing"
	"time"

	"github.com/prepverse/testprep-service/internal/events"
	"github.com/prepverse/testprep-service/internal/models"
)

// waitForEvents polls the mock publisher until it has seen n events or the
// deadline passes. Publishing is fire-and-forget so tests cannot assert
// synchronously.
func waitForEvents(t *testing.T, publisher *events.MockEventPublisher, n int) []*events.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := publisher.GetPublishedEvents()
		if len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d events, got %d", n, len(publisher.GetPublishedEvents()))
	return nil
}

func TestNotificationEventService_PublishesAssignmentEvents(t *testing.T) {
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewNotificationEventService(publisher, testLogger())

	ctx := context.Background()
	assignment := &models.Assignment{ID: 1, StudentID: "s1", TestID: 3, Status: models.AssignmentAssigned}

	svc.AssignmentCreated(ctx, assignment)
	published := waitForEvents(t, publisher, 1)

	if published[0].Type != events.AssignmentCreated {
		t.Errorf("event type = %q", published[0].Type)
	}
	data, ok := published[0].Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data payload: %T", published[0].Data)
	}
	if data["student_id"] != "s1" {
		t.Errorf("student_id = %v", data["student_id"])
	}
}

func TestNotificationEventService_PublishesAttemptCompleted(t *testing.T) {
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewNotificationEventService(publisher, testLogger())

	attempt := &models.Attempt{ID: 4, AssignmentID: 1, StudentID: "s1", TestID: 3, TotalMarks: 11}
	svc.AttemptCompleted(context.Background(), attempt)

	published := waitForEvents(t, publisher, 1)
	if published[0].Type != events.AttemptCompleted {
		t.Errorf("event type = %q", published[0].Type)
	}
}

func TestNotificationEventService_PublishFailureDoesNotPropagate(t *testing.T) {
	publisher := events.NewMockEventPublisher(testLogger())
	publisher.FailNext = true
	svc := NewNotificationEventService(publisher, testLogger())

	// One of the two publishes fails; neither panics nor blocks the caller.
	svc.AssignmentRemoved(context.Background(), &models.Assignment{ID: 1})
	svc.AssignmentExpired(context.Background(), &models.Assignment{ID: 2})

	published := waitForEvents(t, publisher, 1)

	// Give the second goroutine a moment, then confirm exactly one landed.
	time.Sleep(50 * time.Millisecond)
	published = publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Errorf("expected exactly 1 published event, got %d", len(published))
	}
}

func TestNotificationEventService_SurvivesCancelledRequestContext(t *testing.T) {
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewNotificationEventService(publisher, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The durable write already happened; a dead request context must not
	// drop the event.
	svc.AttemptCompleted(ctx, &models.Attempt{ID: 9})
	waitForEvents(t, publisher, 1)
}

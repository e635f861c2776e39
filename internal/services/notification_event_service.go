package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/prepverse/testprep-service/internal/events"
	"github.com/prepverse/testprep-service/internal/models"
)

const publishTimeout = 5 * time.Second

// notificationEventService fans state changes out to the event bus.
// Every method is fire-and-forget: publishing happens on a detached
// goroutine and a failed publish is logged, never returned to the caller.
// The durable write has already happened by the time these run.
type notificationEventService struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewNotificationEventService(publisher events.EventPublisher, logger *slog.Logger) NotificationEventService {
	return &notificationEventService{
		publisher: publisher,
		logger:    logger,
	}
}

func (s *notificationEventService) AssignmentCreated(ctx context.Context, assignment *models.Assignment) {
	s.publish(ctx, events.AssignmentCreated, assignmentPayload(assignment))
}

func (s *notificationEventService) AssignmentRescheduled(ctx context.Context, assignment *models.Assignment) {
	s.publish(ctx, events.AssignmentRescheduled, assignmentPayload(assignment))
}

func (s *notificationEventService) AssignmentRemoved(ctx context.Context, assignment *models.Assignment) {
	s.publish(ctx, events.AssignmentRemoved, assignmentPayload(assignment))
}

func (s *notificationEventService) AssignmentExpired(ctx context.Context, assignment *models.Assignment) {
	s.publish(ctx, events.AssignmentExpired, assignmentPayload(assignment))
}

func (s *notificationEventService) AttemptCompleted(ctx context.Context, attempt *models.Attempt) {
	s.publish(ctx, events.AttemptCompleted, map[string]interface{}{
		"attempt_id":        attempt.ID,
		"assignment_id":     attempt.AssignmentID,
		"student_id":        attempt.StudentID,
		"test_id":           attempt.TestID,
		"total_marks":       attempt.TotalMarks,
		"percentage_score":  attempt.PercentageScore,
		"accuracy":          attempt.Accuracy,
		"correct_count":     attempt.CorrectCount,
		"wrong_count":       attempt.WrongCount,
		"unattempted_count": attempt.UnattemptedCount,
		"completed_at":      attempt.CompletedAt,
	})
}

func (s *notificationEventService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	// Detach from the request so its cancellation cannot drop the event.
	detached := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(detached, publishTimeout)
		defer cancel()

		event := events.NewEvent(eventType, data)
		if err := s.publisher.Publish(pubCtx, event); err != nil {
			s.logger.Error("Failed to publish event",
				"event_type", eventType,
				"event_id", event.ID,
				"error", err)
			return
		}
		s.logger.Debug("Event published", "event_type", eventType, "event_id", event.ID)
	}()
}

func assignmentPayload(a *models.Assignment) map[string]interface{} {
	payload := map[string]interface{}{
		"assignment_id": a.ID,
		"student_id":    a.StudentID,
		"test_id":       a.TestID,
		"status":        a.Status,
		"assigned_by":   a.AssignedBy,
	}
	if a.AvailableFrom != nil {
		payload["available_from"] = a.AvailableFrom
	}
	return payload
}

package services

import (
	"testing"
	"time"

	"github.com/prepverse/testprep-service/internal/models"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	return loc
}

func TestAvailabilityGate_CanStart(t *testing.T) {
	loc := kolkata(t)
	gate := NewAvailabilityGate(loc)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)

	assignedOn := func(availableFrom time.Time, status models.AssignmentStatus) *models.Assignment {
		return &models.Assignment{
			ID:            1,
			StudentID:     "s1",
			TestID:        1,
			Status:        status,
			AvailableFrom: &availableFrom,
		}
	}

	tests := []struct {
		name       string
		now        time.Time
		assignment *models.Assignment
		wantAllow  bool
		wantReason AvailabilityReason
		wantDays   int
	}{
		{
			name:       "window opens at midnight",
			now:        day,
			assignment: assignedOn(day, models.AssignmentAssigned),
			wantAllow:  true,
			wantReason: ReasonAvailable,
		},
		{
			name:       "last second of the day is still open",
			now:        day.Add(24*time.Hour - time.Second),
			assignment: assignedOn(day, models.AssignmentAssigned),
			wantAllow:  true,
			wantReason: ReasonAvailable,
		},
		{
			name:       "one second past midnight next day is expired",
			now:        day.Add(24*time.Hour + time.Second),
			assignment: assignedOn(day, models.AssignmentAssigned),
			wantAllow:  false,
			wantReason: ReasonExpired,
		},
		{
			name:       "tomorrow's assignment reports one day out",
			now:        day.Add(-10 * time.Hour),
			assignment: assignedOn(day, models.AssignmentAssigned),
			wantAllow:  false,
			wantReason: ReasonNotYetAvailable,
			wantDays:   1,
		},
		{
			name:       "three days out rounds up",
			now:        day.Add(-49 * time.Hour),
			assignment: assignedOn(day, models.AssignmentAssigned),
			wantAllow:  false,
			wantReason: ReasonNotYetAvailable,
			wantDays:   3,
		},
		{
			name:       "started assignment may resume past the window",
			now:        day.Add(25 * time.Hour),
			assignment: assignedOn(day, models.AssignmentStarted),
			wantAllow:  true,
			wantReason: ReasonAvailable,
		},
		{
			name:       "completed is refused regardless of day",
			now:        day,
			assignment: assignedOn(day, models.AssignmentCompleted),
			wantAllow:  false,
			wantReason: ReasonAlreadyCompleted,
		},
		{
			name:       "expired status short-circuits the window",
			now:        day,
			assignment: assignedOn(day, models.AssignmentExpired),
			wantAllow:  false,
			wantReason: ReasonExpired,
		},
		{
			name: "unset availability means available now",
			now:  day,
			assignment: &models.Assignment{
				ID: 2, Status: models.AssignmentAssigned,
			},
			wantAllow:  true,
			wantReason: ReasonAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.CanStart(tt.now, tt.assignment)
			if got.Allowed != tt.wantAllow {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tt.wantAllow)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.DaysUntil != tt.wantDays {
				t.Errorf("DaysUntil = %d, want %d", got.DaysUntil, tt.wantDays)
			}
		})
	}
}

func TestAvailabilityGate_DayBoundaries(t *testing.T) {
	loc := kolkata(t)
	gate := NewAvailabilityGate(loc)

	// Mid-afternoon instant truncates to local midnight.
	instant := time.Date(2026, 3, 10, 15, 42, 7, 0, loc)
	start := gate.StartOfDay(instant)
	if !start.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)) {
		t.Errorf("StartOfDay = %v", start)
	}

	end := gate.EndOfDay(instant)
	if !end.Equal(time.Date(2026, 3, 10, 23, 59, 59, 0, loc)) {
		t.Errorf("EndOfDay = %v", end)
	}

	// A UTC instant late on the 9th is already the 10th in Kolkata.
	utcEvening := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	if got := gate.StartOfDay(utcEvening); !got.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)) {
		t.Errorf("StartOfDay crossing timezone = %v", got)
	}
}

func TestNewAvailabilityGate_NilLocation(t *testing.T) {
	gate := NewAvailabilityGate(nil)
	got := gate.StartOfDay(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	if got.Location() != time.UTC {
		t.Errorf("expected UTC fallback, got %v", got.Location())
	}
}

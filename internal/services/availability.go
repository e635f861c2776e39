package services

import (
	"time"

	"github.com/prepverse/testprep-service/internal/models"
)

type AvailabilityReason string

const (
	ReasonAvailable        AvailabilityReason = "available"
	ReasonNotYetAvailable  AvailabilityReason = "not_yet_available"
	ReasonExpired          AvailabilityReason = "expired"
	ReasonAlreadyCompleted AvailabilityReason = "already_completed"
)

// AvailabilityDecision is the gate's verdict for one start/resume request.
// DaysUntil is populated only for ReasonNotYetAvailable.
type AvailabilityDecision struct {
	Allowed   bool               `json:"allowed"`
	Reason    AvailabilityReason `json:"reason"`
	DaysUntil int                `json:"days_until,omitempty"`
}

// AvailabilityGate decides whether a student may start or resume an
// assignment at a given instant. It is a pure function of (now, assignment)
// and the configured exam timezone; it touches no storage.
//
// The window is a single calendar day in one shared reference timezone. That
// is a deliberate simplification: students in other timezones see the window
// open and close on the server's day, not theirs.
type AvailabilityGate struct {
	loc *time.Location
}

func NewAvailabilityGate(loc *time.Location) *AvailabilityGate {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityGate{loc: loc}
}

// CanStart applies the gate rules in order: terminal statuses first, then the
// calendar-day window. An unset available_from means available immediately.
func (g *AvailabilityGate) CanStart(now time.Time, assignment *models.Assignment) AvailabilityDecision {
	switch assignment.Status {
	case models.AssignmentCompleted:
		return AvailabilityDecision{Reason: ReasonAlreadyCompleted}
	case models.AssignmentExpired:
		return AvailabilityDecision{Reason: ReasonExpired}
	}

	if assignment.AvailableFrom == nil {
		return AvailabilityDecision{Allowed: true, Reason: ReasonAvailable}
	}

	windowStart := g.StartOfDay(*assignment.AvailableFrom)
	windowEnd := windowStart.Add(24*time.Hour - time.Second) // 23:59:59 of the same day

	if now.Before(windowStart) {
		return AvailabilityDecision{
			Reason:    ReasonNotYetAvailable,
			DaysUntil: wholeDaysUntil(now, windowStart),
		}
	}

	// Past the window an untouched assignment expires; one already started
	// may still resume.
	if now.After(windowEnd) && assignment.Status == models.AssignmentAssigned {
		return AvailabilityDecision{Reason: ReasonExpired}
	}

	return AvailabilityDecision{Allowed: true, Reason: ReasonAvailable}
}

// StartOfDay truncates t to midnight of its calendar day in the gate's
// reference timezone.
func (g *AvailabilityGate) StartOfDay(t time.Time) time.Time {
	local := t.In(g.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, g.loc)
}

// EndOfDay returns 23:59:59 of t's calendar day in the reference timezone.
func (g *AvailabilityGate) EndOfDay(t time.Time) time.Time {
	return g.StartOfDay(t).Add(24*time.Hour - time.Second)
}

// wholeDaysUntil is the ceiling of the remaining duration in full days,
// surfaced to students as "available in N days".
func wholeDaysUntil(now, start time.Time) int {
	remaining := start.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

package services

import (
	"errors"
)

// Sentinel errors for expected, user-facing outcomes. The handler layer maps
// these onto HTTP statuses; anything unwrapped is a bug and surfaces as 500.
var (
	// Not found
	ErrTestNotFound       = errors.New("test not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrUserNotFound       = errors.New("user not found")

	// Forbidden
	ErrNotAssigned      = errors.New("test is not assigned to you")
	ErrAlreadyCompleted = errors.New("assignment already completed")

	// Conflict
	ErrAssignmentExists   = errors.New("assignment already exists for this student and test")
	ErrAttemptExists      = errors.New("an attempt has already been recorded for this assignment")
	ErrRescheduleConflict = errors.New("assignment can no longer be rescheduled")
	ErrRemoveConflict     = errors.New("assignment with a recorded attempt cannot be removed")

	// Validation
	ErrValidationFailed = errors.New("validation failed")
	ErrTestInactive     = errors.New("test is not active")
)

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/events"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	LogLevel slog.Level

	// ExamLocation anchors all availability-window math. Every student sees
	// the same calendar day regardless of their device timezone.
	ExamLocation *time.Location

	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	testService       TestService
	assignmentService AssignmentService
	attemptService    AttemptService
	notificationSvc   NotificationEventService
	reportService     ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, loc *time.Location) ServiceManager {
	config := ServiceManagerConfig{
		LogLevel:       slog.LevelInfo,
		ExamLocation:   loc,
		DefaultTimeout: 30 * time.Second,
	}
	return NewServiceManager(db, repo, logger, v, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	loc := sm.config.ExamLocation
	if loc == nil {
		loc = time.UTC
	}
	gate := NewAvailabilityGate(loc)

	sm.notificationSvc = NewNotificationEventService(sm.publisher, sm.logger)
	sm.logger.Info("Notification event service initialized")

	sm.testService = NewTestService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Test service initialized")

	sm.assignmentService = NewAssignmentService(sm.repo, sm.db, sm.logger, sm.validator, gate, sm.notificationSvc)
	sm.logger.Info("Assignment service initialized")

	sm.attemptService = NewAttemptService(sm.repo, sm.db, sm.logger, sm.validator, sm.notificationSvc)
	sm.logger.Info("Attempt service initialized")

	sm.reportService = NewReportService(sm.repo, sm.db, sm.logger)
	sm.logger.Info("Report service initialized")

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Test() TestService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.testService == nil {
		panic("test service not initialized")
	}
	return sm.testService
}

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.assignmentService == nil {
		panic("assignment service not initialized")
	}
	return sm.assignmentService
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.attemptService == nil {
		panic("attempt service not initialized")
	}
	return sm.attemptService
}

func (sm *serviceManager) Notification() NotificationEventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.notificationSvc == nil {
		panic("notification event service not initialized")
	}
	return sm.notificationSvc
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.reportService == nil {
		panic("report service not initialized")
	}
	return sm.reportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}
	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down")
	return nil
}

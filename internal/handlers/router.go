package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/prepverse/testprep-service/internal/config"
	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/services"
	"github.com/prepverse/testprep-service/internal/utils"
	"github.com/prepverse/testprep-service/internal/validator"
)

type HandlerManager struct {
	testHandler       *TestHandler
	assignmentHandler *AssignmentHandler
	attemptHandler    *AttemptHandler
	reportHandler     *ReportHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		testHandler:       NewTestHandler(serviceManager.Test(), validator, logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), validator, logger),
		attemptHandler:    NewAttemptHandler(serviceManager.Attempt(), validator, logger),
		reportHandler:     NewReportHandler(serviceManager.Report(), logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Assignment administration - Admins only
		assignments := v1.Group("/assignments")
		assignments.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			assignments.POST("", hm.assignmentHandler.CreateAssignment)
			assignments.PUT("/:student_id/:test_id/schedule", hm.assignmentHandler.RescheduleAssignment)
			assignments.DELETE("/:student_id/:test_id", hm.assignmentHandler.RemoveAssignment)
			assignments.GET("/students/:student_id", hm.assignmentHandler.GetAssignmentsByStudent)
		}

		// Test catalog
		tests := v1.Group("/tests")
		{
			tests.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.GET("/:id/attempts", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.attemptHandler.GetAttemptsByTest)
		}

		// Reports - Admins only
		reports := v1.Group("/reports")
		reports.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			reports.GET("/tests/:test_id/attempts.xlsx", hm.reportHandler.DownloadAttemptReport)
		}

		// Student self-service routes
		my := v1.Group("/my")
		my.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			my.GET("/assignments", hm.assignmentHandler.GetMyAssignments)
			my.POST("/assignments/:test_id/start", hm.assignmentHandler.StartAssignment)
			my.POST("/assignments/:test_id/submit", hm.attemptHandler.SubmitAttempt)
			my.GET("/attempts", hm.attemptHandler.GetMyAttempts)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "testprep-service",
		})
	})
}

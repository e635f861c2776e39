package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepverse/testprep-service/internal/services"
	"github.com/prepverse/testprep-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// DownloadAttemptReport streams the per-test attempt workbook.
func (h *ReportHandler) DownloadAttemptReport(c *gin.Context) {
	testID := h.parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Generating attempt report", "test_id", testID)

	file, err := h.reportService.AttemptReport(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("test_%d_attempts.xlsx", testID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)

	if err := file.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to stream report", "test_id", testID)
		c.Status(http.StatusInternalServerError)
	}
}

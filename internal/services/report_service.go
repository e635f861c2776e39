package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

var reportHeaders = []string{
	"Attempt ID", "Student ID", "Correct", "Wrong", "Unattempted",
	"Total Marks", "Max Marks", "Percentage", "Accuracy (%)",
	"Started At", "Completed At", "Time Taken (s)",
}

// AttemptReport renders every attempt for a test into a single-sheet
// workbook ordered by score descending.
func (s *reportService) AttemptReport(ctx context.Context, testID uint) (*excelize.File, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	attempts, total, err := s.repo.Attempt().GetByTest(ctx, nil, testID, repositories.AttemptFilters{
		SortBy:    "total_marks",
		SortOrder: "desc",
		Limit:     -1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Attempts"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write report header: %w", err)
		}
	}

	timeFormat := "2006-01-02 15:04:05"
	for row, attempt := range attempts {
		values := []interface{}{
			attempt.ID,
			attempt.StudentID,
			attempt.CorrectCount,
			attempt.WrongCount,
			attempt.UnattemptedCount,
			attempt.TotalMarks,
			attempt.MaxPossibleMarks,
			attempt.PercentageScore,
			attempt.Accuracy,
			attempt.StartedAt.Format(timeFormat),
			attempt.CompletedAt.Format(timeFormat),
			attempt.TimeTakenSeconds,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write report row: %w", err)
			}
		}
	}

	s.logger.Info("Attempt report generated", "test_id", test.ID, "rows", total)
	return f, nil
}

package dto

import (
	"time"

	"github.com/noah-isme/campus-erp-api/internal/models"
)

// GenerateReportRequest captures POST /reports/generate payload. The
// parameter set a type requires is validated in the service.
type GenerateReportRequest struct {
	Type         models.ReportType   `json:"type"`
	Format       models.ReportFormat `json:"format"`
	CourseID     string              `json:"course_id,omitempty"`
	Semester     *int                `json:"semester,omitempty"`
	AcademicYear string              `json:"academic_year,omitempty"`
	Year         *int                `json:"year,omitempty"`
	FromDate     *time.Time          `json:"from_date,omitempty"`
	ToDate       *time.Time          `json:"to_date,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}

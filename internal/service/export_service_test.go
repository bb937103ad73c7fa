package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/pkg/export"
	"github.com/noah-isme/campus-erp-api/pkg/storage"
)

type examExportStub struct{}

func (examExportStub) DeclaredDetails(_ context.Context, courseID string, semester int, academicYear string) ([]models.ExamResultDetail, error) {
	declared := declaredExamResult("result-1", "2025CS0001", semester, 85, 100, 9, true)
	declared.CourseID = courseID
	declared.AcademicYear = academicYear
	return []models.ExamResultDetail{*declared}, nil
}

type admissionExportStub struct{}

func (admissionExportStub) ListByYear(_ context.Context, year int) ([]models.ApplicationDetail, error) {
	rollNo := "2025CS0001"
	return []models.ApplicationDetail{
		{
			AdmissionApplication: models.AdmissionApplication{
				ApplicationID: "ADM2025000001",
				FirstName:     "Asha",
				LastName:      "Verma",
				Email:         "asha@example.com",
				Phone:         "9876543210",
				Status:        models.ApplicationStatusApproved,
				StudentID:     &rollNo,
				AppliedAt:     time.Date(year, time.June, 2, 9, 0, 0, 0, time.UTC),
			},
			CourseName: "Computer Science Engineering",
			CourseCode: "CS",
		},
	}, nil
}

type feeExportStub struct{}

func (feeExportStub) PaidBetween(_ context.Context, from, _ time.Time) ([]models.FeeDetail, error) {
	receipt := "RCP20250800001"
	method := models.PaymentMethodCash
	paidAt := from.Add(24 * time.Hour)
	return []models.FeeDetail{
		{
			Fee: models.Fee{
				ID:            "fee-1",
				StudentID:     "2025CS0001",
				FeeType:       models.FeeTypeTuition,
				Semester:      3,
				AcademicYear:  "2025-26",
				Amount:        45000,
				TotalAmount:   45000,
				Status:        models.FeeStatusPaid,
				PaymentMethod: &method,
				PaidAt:        &paidAt,
				ReceiptNumber: &receipt,
			},
			StudentName: "Asha Verma",
			CourseCode:  "CS",
		},
	}, nil
}

type libraryExportStub struct{}

func (libraryExportStub) IssuedBetween(_ context.Context, from, _ time.Time) ([]models.BookIssueDetail, error) {
	return []models.BookIssueDetail{
		{
			BookIssue: models.BookIssue{
				ID:        "issue-1",
				BookID:    "LB0042",
				StudentID: "2025CS0001",
				IssuedAt:  from.Add(2 * time.Hour),
				DueDate:   from.Add(14 * 24 * time.Hour),
				Status:    models.IssueStatusIssued,
			},
			BookTitle:   "The Go Programming Language",
			BookAuthor:  "Donovan & Kernighan",
			StudentName: "Asha Verma",
		},
	}, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(examExportStub{}, admissionExportStub{}, feeExportStub{}, libraryExportStub{}, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func TestExportServiceGenerateClassResultsCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	semester := 3
	job := &models.ReportJob{
		ID:   "job-1",
		Type: models.ReportTypeClassResults,
		Params: models.ReportJobParams{
			CourseID:     "course-1",
			Semester:     &semester,
			AcademicYear: "2025-26",
			Format:       models.ReportFormatCSV,
		},
		CreatedBy: "2025ADM0001",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/reports/download/")

	raw, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "Roll No")
	assert.Contains(t, content, "2025CS0001")
	assert.Contains(t, content, "PASS")
}

func TestExportServiceGenerateAdmissionRegisterPDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	year := 2025
	job := &models.ReportJob{
		ID:   "job-2",
		Type: models.ReportTypeAdmissionRegister,
		Params: models.ReportJobParams{
			Year:   &year,
			Format: models.ReportFormatPDF,
		},
		CreatedBy: "2025ADM0001",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ReportFormatPDF, result.Format)

	info, err := os.Stat(store.Path(result.RelativePath))
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateFeeCollectionNeedsRange(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-3",
		Type:      models.ReportTypeFeeCollection,
		Params:    models.ReportJobParams{Format: models.ReportFormatCSV},
		CreatedBy: "2025ADM0001",
	}
	_, err := svc.Generate(context.Background(), job)
	require.Error(t, err)
}

func TestExportServiceGenerateLibraryCirculationCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	from := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	job := &models.ReportJob{
		ID:   "job-4",
		Type: models.ReportTypeLibraryCirculation,
		Params: models.ReportJobParams{
			FromDate: &from,
			ToDate:   &to,
			Format:   models.ReportFormatCSV,
		},
		CreatedBy: "2025ADM0001",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	raw, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "LB0042")
}

func TestExportServiceMarksheetPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	declared := declaredExamResult("result-1", "2025CS0001", 3, 85, 100, 9, true)
	marksheet := &models.Marksheet{
		StudentID:    "2025CS0001",
		StudentName:  "Asha Verma",
		CourseName:   "Computer Science Engineering",
		Semester:     3,
		AcademicYear: "2025-26",
		Rows: []models.ExamResultDetail{
			{ExamResult: declared.ExamResult, StudentName: "Asha Verma", CourseName: "Computer Science Engineering", CourseCode: "CS"},
		},
		SGPA:      9.0,
		AllPassed: true,
	}

	payload, err := svc.MarksheetPDF(marksheet)
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestExportServiceReceiptPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	fees, err := feeExportStub{}.PaidBetween(context.Background(), time.Now().UTC(), time.Now().UTC())
	require.NoError(t, err)

	payload, err := svc.ReceiptPDF(&fees[0])
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestExportServiceReceiptPDFRequiresPaid(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	fee := pendingFee("fee-1", 45000, time.Now().UTC())
	_, err := svc.ReceiptPDF(fee)
	require.Error(t, err)
}

package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/pkg/export"
	"github.com/noah-isme/campus-erp-api/pkg/storage"
)

type exportResultSource interface {
	DeclaredDetails(ctx context.Context, courseID string, semester int, academicYear string) ([]models.ExamResultDetail, error)
}

type exportAdmissionSource interface {
	ListByYear(ctx context.Context, year int) ([]models.ApplicationDetail, error)
}

type exportFeeSource interface {
	PaidBetween(ctx context.Context, from, to time.Time) ([]models.FeeDetail, error)
}

type exportLibrarySource interface {
	IssuedBetween(ctx context.Context, from, to time.Time) ([]models.BookIssueDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderDocument(doc export.Document) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix   string
	ResultTTL   time.Duration
	Institution string
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	exams      exportResultSource
	admissions exportAdmissionSource
	fees       exportFeeSource
	library    exportLibrarySource
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(exams exportResultSource, admissions exportAdmissionSource, fees exportFeeSource, library exportLibrarySource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Institution == "" {
		cfg.Institution = "Campus ERP"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		exams:      exams,
		admissions: admissions,
		fees:       fees,
		library:    library,
		storage:    store,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset for the job definition and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/reports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// MarksheetPDF renders a student's semester grade card.
func (s *ExportService) MarksheetPDF(marksheet *models.Marksheet) ([]byte, error) {
	if marksheet == nil {
		return nil, fmt.Errorf("marksheet nil")
	}
	headers := []string{"Code", "Subject", "Max", "Marks", "Grade", "Points", "Result"}
	rows := make([]map[string]string, 0, len(marksheet.Rows))
	for _, row := range marksheet.Rows {
		rows = append(rows, map[string]string{
			"Code":    row.SubjectCode,
			"Subject": row.SubjectName,
			"Max":     fmt.Sprintf("%.0f", row.MaxMarks),
			"Marks":   formatMarks(row.MarksObtained),
			"Grade":   deref(row.Grade),
			"Points":  formatPoints(row.GradePoints),
			"Result":  resultCell(row.ExamResult),
		})
	}
	overall := "FAIL"
	if marksheet.AllPassed {
		overall = "PASS"
	}
	doc := export.Document{
		Heading: s.cfg.Institution,
		Title:   fmt.Sprintf("Statement of Marks - Semester %d (%s)", marksheet.Semester, marksheet.AcademicYear),
		Meta: []export.KV{
			{Label: "Roll Number", Value: marksheet.StudentID},
			{Label: "Name", Value: marksheet.StudentName},
			{Label: "Course", Value: marksheet.CourseName},
		},
		Dataset: export.Dataset{Headers: headers, Rows: rows},
		Summary: []export.KV{
			{Label: "SGPA", Value: fmt.Sprintf("%.2f", marksheet.SGPA)},
			{Label: "Overall Result", Value: overall},
		},
	}
	return s.pdf.RenderDocument(doc)
}

// ReceiptPDF renders the payment receipt for a settled fee.
func (s *ExportService) ReceiptPDF(fee *models.FeeDetail) ([]byte, error) {
	if fee == nil {
		return nil, fmt.Errorf("fee nil")
	}
	if fee.Status != models.FeeStatusPaid || fee.ReceiptNumber == nil {
		return nil, fmt.Errorf("fee %s is not paid", fee.ID)
	}
	rows := []map[string]string{
		{"Description": fmt.Sprintf("%s fee, semester %d (%s)", fee.FeeType, fee.Semester, fee.AcademicYear), "Amount": formatMoney(fee.Amount)},
	}
	if fee.LateFee > 0 {
		rows = append(rows, map[string]string{"Description": "Late fee", "Amount": formatMoney(fee.LateFee)})
	}
	if fee.Discount > 0 {
		rows = append(rows, map[string]string{"Description": "Discount", "Amount": "-" + formatMoney(fee.Discount)})
	}
	rows = append(rows, map[string]string{"Description": "Total", "Amount": formatMoney(fee.TotalAmount)})

	meta := []export.KV{
		{Label: "Receipt Number", Value: *fee.ReceiptNumber},
		{Label: "Roll Number", Value: fee.StudentID},
		{Label: "Name", Value: fee.StudentName},
	}
	if fee.PaidAt != nil {
		meta = append(meta, export.KV{Label: "Paid On", Value: fee.PaidAt.UTC().Format("02 Jan 2006 15:04")})
	}
	if fee.PaymentMethod != nil {
		meta = append(meta, export.KV{Label: "Payment Method", Value: string(*fee.PaymentMethod)})
	}
	if fee.TransactionRef != nil && *fee.TransactionRef != "" {
		meta = append(meta, export.KV{Label: "Reference", Value: *fee.TransactionRef})
	}

	doc := export.Document{
		Heading: s.cfg.Institution,
		Title:   "Fee Receipt",
		Meta:    meta,
		Dataset: export.Dataset{Headers: []string{"Description", "Amount"}, Rows: rows},
	}
	return s.pdf.RenderDocument(doc)
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	qualifier := "na"
	switch job.Type {
	case models.ReportTypeClassResults:
		qualifier = sanitizeFilename(fmt.Sprintf("%s_sem%d_%s", job.Params.CourseID, derefInt(job.Params.Semester), job.Params.AcademicYear))
	case models.ReportTypeAdmissionRegister:
		qualifier = fmt.Sprintf("%d", derefInt(job.Params.Year))
	case models.ReportTypeFeeCollection, models.ReportTypeLibraryCirculation:
		if job.Params.FromDate != nil && job.Params.ToDate != nil {
			qualifier = fmt.Sprintf("%s_%s", job.Params.FromDate.Format("20060102"), job.Params.ToDate.Format("20060102"))
		}
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), qualifier, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeClassResults:
		return s.buildClassResults(ctx, job.Params)
	case models.ReportTypeAdmissionRegister:
		return s.buildAdmissionRegister(ctx, job.Params)
	case models.ReportTypeFeeCollection:
		return s.buildFeeCollection(ctx, job.Params)
	case models.ReportTypeLibraryCirculation:
		return s.buildLibraryCirculation(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildClassResults(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	if params.CourseID == "" || params.Semester == nil || params.AcademicYear == "" {
		return export.Dataset{}, "", fmt.Errorf("class results need course, semester and academic year")
	}
	rows, err := s.exams.DeclaredDetails(ctx, params.CourseID, *params.Semester, params.AcademicYear)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	courseCode := params.CourseID
	for _, row := range rows {
		courseCode = row.CourseCode
		dataRows = append(dataRows, map[string]string{
			"Roll No":      row.StudentID,
			"Student":      row.StudentName,
			"Subject Code": row.SubjectCode,
			"Subject":      row.SubjectName,
			"Max Marks":    fmt.Sprintf("%.0f", row.MaxMarks),
			"Marks":        formatMarks(row.MarksObtained),
			"Grade":        deref(row.Grade),
			"Points":       formatPoints(row.GradePoints),
			"Result":       resultCell(row.ExamResult),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Roll No", "Student", "Subject Code", "Subject", "Max Marks", "Marks", "Grade", "Points", "Result"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Class Results %s Semester %d (%s)", courseCode, *params.Semester, params.AcademicYear)
	return dataset, title, nil
}

func (s *ExportService) buildAdmissionRegister(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	if params.Year == nil {
		return export.Dataset{}, "", fmt.Errorf("admission register needs a year")
	}
	applications, err := s.admissions.ListByYear(ctx, *params.Year)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(applications))
	for _, app := range applications {
		dataRows = append(dataRows, map[string]string{
			"Application ID": app.ApplicationID,
			"Applicant":      app.FirstName + " " + app.LastName,
			"Email":          app.Email,
			"Phone":          app.Phone,
			"Course":         app.CourseCode,
			"Status":         string(app.Status),
			"Applied On":     app.AppliedAt.UTC().Format("2006-01-02"),
			"Roll No":        deref(app.StudentID),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Application ID", "Applicant", "Email", "Phone", "Course", "Status", "Applied On", "Roll No"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Admission Register %d", *params.Year)
	return dataset, title, nil
}

func (s *ExportService) buildFeeCollection(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	if params.FromDate == nil || params.ToDate == nil {
		return export.Dataset{}, "", fmt.Errorf("fee collection needs a date range")
	}
	fees, err := s.fees.PaidBetween(ctx, *params.FromDate, *params.ToDate)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(fees))
	for _, fee := range fees {
		paidOn := ""
		if fee.PaidAt != nil {
			paidOn = fee.PaidAt.UTC().Format("2006-01-02")
		}
		method := ""
		if fee.PaymentMethod != nil {
			method = string(*fee.PaymentMethod)
		}
		dataRows = append(dataRows, map[string]string{
			"Receipt No": deref(fee.ReceiptNumber),
			"Roll No":    fee.StudentID,
			"Student":    fee.StudentName,
			"Fee Type":   string(fee.FeeType),
			"Amount":     formatMoney(fee.Amount),
			"Late Fee":   formatMoney(fee.LateFee),
			"Discount":   formatMoney(fee.Discount),
			"Total":      formatMoney(fee.TotalAmount),
			"Method":     method,
			"Paid On":    paidOn,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Receipt No", "Roll No", "Student", "Fee Type", "Amount", "Late Fee", "Discount", "Total", "Method", "Paid On"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Fee Collection %s to %s", params.FromDate.Format("2006-01-02"), params.ToDate.Format("2006-01-02"))
	return dataset, title, nil
}

func (s *ExportService) buildLibraryCirculation(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	if params.FromDate == nil || params.ToDate == nil {
		return export.Dataset{}, "", fmt.Errorf("library circulation needs a date range")
	}
	issues, err := s.library.IssuedBetween(ctx, *params.FromDate, *params.ToDate)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(issues))
	for _, issue := range issues {
		returnedOn := ""
		if issue.ReturnedAt != nil {
			returnedOn = issue.ReturnedAt.UTC().Format("2006-01-02")
		}
		dataRows = append(dataRows, map[string]string{
			"Book ID":     issue.BookID,
			"Title":       issue.BookTitle,
			"Author":      issue.BookAuthor,
			"Roll No":     issue.StudentID,
			"Student":     issue.StudentName,
			"Issued On":   issue.IssuedAt.UTC().Format("2006-01-02"),
			"Due Date":    issue.DueDate.UTC().Format("2006-01-02"),
			"Returned On": returnedOn,
			"Status":      string(issue.Status),
			"Late Fee":    formatMoney(issue.LateFee),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Book ID", "Title", "Author", "Roll No", "Student", "Issued On", "Due Date", "Returned On", "Status", "Late Fee"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Library Circulation %s to %s", params.FromDate.Format("2006-01-02"), params.ToDate.Format("2006-01-02"))
	return dataset, title, nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func derefInt(ptr *int) int {
	if ptr == nil {
		return 0
	}
	return *ptr
}

func formatMarks(marks *float64) string {
	if marks == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *marks)
}

func formatPoints(points *float64) string {
	if points == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *points)
}

func formatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func resultCell(result models.ExamResult) string {
	switch {
	case result.IsAbsent:
		return "AB"
	case result.HasMalpractice:
		return "MP"
	case result.IsPass != nil && *result.IsPass:
		return "PASS"
	case result.IsPass != nil:
		return "FAIL"
	default:
		return "-"
	}
}

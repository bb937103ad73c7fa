package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/dto"
	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/internal/repository"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/jobs"
)

type reportRepoStub struct {
	jobs map[string]*models.ReportJob
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (r *reportRepoStub) Create(_ context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *reportRepoStub) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return job, nil
}

func (r *reportRepoStub) Update(_ context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *reportRepoStub) ListQueued(_ context.Context, _ int) ([]models.ReportJob, error) {
	var queued []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *reportRepoStub) ListFinishedBefore(_ context.Context, _ time.Time, _ int) ([]models.ReportJob, error) {
	return nil, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newReportServiceForTest(t *testing.T) (*ReportService, *reportRepoStub, *queueStub, *ExportService) {
	t.Helper()
	repo := newReportRepoStub()
	queue := &queueStub{}
	exportSvc, _ := newExportServiceForTest(t)
	service := NewReportService(repo, queue, exportSvc, zap.NewNop(), ReportServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
		MaxRetries:      3,
	})
	return service, repo, queue, exportSvc
}

func classResultsRequest() dto.GenerateReportRequest {
	semester := 3
	return dto.GenerateReportRequest{
		Type:         models.ReportTypeClassResults,
		Format:       models.ReportFormatCSV,
		CourseID:     "course-1",
		Semester:     &semester,
		AcademicYear: "2025-26",
	}
}

func TestReportServiceCreateJob(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), classResultsRequest(), "EMP2025001")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	assert.Equal(t, 0, resp.Progress)

	stored, ok := repo.jobs[resp.ID]
	require.True(t, ok)
	assert.Equal(t, "EMP2025001", stored.CreatedBy)
	assert.Equal(t, "course-1", stored.Params.CourseID)
	assert.Equal(t, models.ReportFormatCSV, stored.Params.Format)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	svc, _, _, _ := newReportServiceForTest(t)
	year := 2025
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	tests := []struct {
		name string
		req  dto.GenerateReportRequest
	}{
		{
			name: "class results without semester",
			req: dto.GenerateReportRequest{
				Type:         models.ReportTypeClassResults,
				Format:       models.ReportFormatCSV,
				CourseID:     "course-1",
				AcademicYear: "2025-26",
			},
		},
		{
			name: "admission register without year",
			req: dto.GenerateReportRequest{
				Type:   models.ReportTypeAdmissionRegister,
				Format: models.ReportFormatPDF,
			},
		},
		{
			name: "fee collection without range",
			req: dto.GenerateReportRequest{
				Type:   models.ReportTypeFeeCollection,
				Format: models.ReportFormatCSV,
			},
		},
		{
			name: "library circulation with inverted range",
			req: dto.GenerateReportRequest{
				Type:     models.ReportTypeLibraryCirculation,
				Format:   models.ReportFormatCSV,
				FromDate: &to,
				ToDate:   &from,
			},
		},
		{
			name: "unknown format",
			req: dto.GenerateReportRequest{
				Type:   models.ReportTypeAdmissionRegister,
				Format: models.ReportFormat("xlsx"),
				Year:   &year,
			},
		},
		{
			name: "unknown type",
			req: dto.GenerateReportRequest{
				Type:   models.ReportType("payroll"),
				Format: models.ReportFormatCSV,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateJob(context.Background(), tt.req, "EMP2025001")
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestReportServiceCreateJobEnqueueFailure(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	queue.err = errors.New("queue full")

	_, err := svc.CreateJob(context.Background(), classResultsRequest(), "EMP2025001")
	require.Error(t, err)

	for _, job := range repo.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
		require.NotNil(t, job.ErrorMessage)
		assert.Equal(t, "failed to enqueue job", *job.ErrorMessage)
	}
}

func TestReportServiceGetStatus(t *testing.T) {
	svc, repo, _, _ := newReportServiceForTest(t)
	url := "/api/v1/reports/download/some-token"
	repo.jobs["job-1"] = &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeClassResults,
		Params:    models.ReportJobParams{CourseID: "course-1", Format: models.ReportFormatCSV},
		Status:    models.ReportStatusFinished,
		Progress:  100,
		ResultURL: &url,
		CreatedBy: "EMP2025001",
	}

	resp, err := svc.GetStatus(context.Background(), "job-1", "EMP2025001", string(models.RoleStaff))
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, resp.Status)
	assert.Equal(t, 100, resp.Progress)
	require.NotNil(t, resp.ResultURL)
	assert.Equal(t, url, *resp.ResultURL)
}

func TestReportServiceGetStatusOwnership(t *testing.T) {
	svc, repo, _, _ := newReportServiceForTest(t)
	repo.jobs["job-1"] = &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeClassResults,
		Status:    models.ReportStatusQueued,
		CreatedBy: "EMP2025001",
	}

	_, err := svc.GetStatus(context.Background(), "job-1", "EMP2025099", string(models.RoleStaff))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Admins can inspect any job.
	_, err = svc.GetStatus(context.Background(), "job-1", "EMP2025099", string(models.RoleAdmin))
	require.NoError(t, err)
}

func TestReportServiceGetStatusNotFound(t *testing.T) {
	svc, _, _, _ := newReportServiceForTest(t)

	_, err := svc.GetStatus(context.Background(), "ghost", "EMP2025001", string(models.RoleAdmin))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceResolveDownload(t *testing.T) {
	svc, repo, _, exportSvc := newReportServiceForTest(t)
	semester := 3
	job := &models.ReportJob{
		ID:   "job-download",
		Type: models.ReportTypeClassResults,
		Params: models.ReportJobParams{
			CourseID:     "course-1",
			Semester:     &semester,
			AcademicYear: "2025-26",
			Format:       models.ReportFormatCSV,
		},
		Status:    models.ReportStatusFinished,
		Progress:  100,
		CreatedBy: "EMP2025001",
	}
	repo.jobs[job.ID] = job

	result, err := exportSvc.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL
	now := time.Now()
	job.FinishedAt = &now

	download, err := svc.ResolveDownload(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(result.RelativePath), download.Filename)
	assert.Equal(t, models.ReportFormatCSV, download.Format)
	require.NoError(t, download.File.Close())
}

func TestReportServiceResolveDownloadNotReady(t *testing.T) {
	svc, repo, _, exportSvc := newReportServiceForTest(t)
	semester := 3
	job := &models.ReportJob{
		ID:   "job-pending",
		Type: models.ReportTypeClassResults,
		Params: models.ReportJobParams{
			CourseID:     "course-1",
			Semester:     &semester,
			AcademicYear: "2025-26",
			Format:       models.ReportFormatCSV,
		},
		Status:    models.ReportStatusProcessing,
		Progress:  10,
		CreatedBy: "EMP2025001",
	}
	repo.jobs[job.ID] = job

	result, err := exportSvc.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL

	_, err = svc.ResolveDownload(context.Background(), result.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceResolveDownloadBadToken(t *testing.T) {
	svc, _, _, _ := newReportServiceForTest(t)

	_, err := svc.ResolveDownload(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", Type: models.ReportTypeClassResults, Status: models.ReportStatusQueued}
	repo.jobs["job-2"] = &models.ReportJob{ID: "job-2", Type: models.ReportTypeFeeCollection, Status: models.ReportStatusFinished}

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "job-1", queue.jobs[0].ID)
}

type exportStub struct {
	result *ExportResult
	err    error
}

func (e exportStub) Generate(_ context.Context, _ *models.ReportJob) (*ExportResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func queuedReportJob(id string) *models.ReportJob {
	semester := 3
	return &models.ReportJob{
		ID:   id,
		Type: models.ReportTypeClassResults,
		Params: models.ReportJobParams{
			CourseID:     "course-1",
			Semester:     &semester,
			AcademicYear: "2025-26",
			Format:       models.ReportFormatCSV,
		},
		Status:    models.ReportStatusQueued,
		CreatedBy: "EMP2025001",
	}
}

func TestReportWorkerHandleSuccess(t *testing.T) {
	repo := newReportRepoStub()
	repo.jobs["job-1"] = queuedReportJob("job-1")
	exporter := exportStub{result: &ExportResult{URL: "/api/v1/reports/download/token"}}
	worker := NewReportWorker(repo, exporter, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, repo.jobs["job-1"].Status)
	assert.Equal(t, 100, repo.jobs["job-1"].Progress)
	require.NotNil(t, repo.jobs["job-1"].ResultURL)
	assert.Equal(t, "/api/v1/reports/download/token", *repo.jobs["job-1"].ResultURL)
}

func TestReportWorkerHandleFailureRequeues(t *testing.T) {
	repo := newReportRepoStub()
	repo.jobs["job-1"] = queuedReportJob("job-1")
	exporter := exportStub{err: errors.New("boom")}
	worker := NewReportWorker(repo, exporter, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusQueued, repo.jobs["job-1"].Status)
	assert.Equal(t, 0, repo.jobs["job-1"].Progress)
	require.NotNil(t, repo.jobs["job-1"].ErrorMessage)
}

func TestReportWorkerHandleFailureExhaustsRetries(t *testing.T) {
	repo := newReportRepoStub()
	repo.jobs["job-1"] = queuedReportJob("job-1")
	exporter := exportStub{err: errors.New("boom")}
	worker := NewReportWorker(repo, exporter, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusFailed, repo.jobs["job-1"].Status)
	assert.Equal(t, 100, repo.jobs["job-1"].Progress)
	require.NotNil(t, repo.jobs["job-1"].FinishedAt)
}

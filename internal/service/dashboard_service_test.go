package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type mockCacheRepo struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	if pattern == "dashboard:*" {
		m.entries = map[string][]byte{}
	}
	return nil
}

type mockDashAdmissions struct {
	stats      *models.AdmissionStatistics
	apps       map[string]*models.ApplicationDetail
	statsCalls int
}

func (m *mockDashAdmissions) Statistics(_ context.Context) (*models.AdmissionStatistics, error) {
	m.statsCalls++
	return m.stats, nil
}

func (m *mockDashAdmissions) Get(_ context.Context, id string) (*models.ApplicationDetail, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	return app, nil
}

type mockDashFees struct {
	stats     *models.FeeStatistics
	summaries map[string]*models.StudentFeeSummary
}

func (m *mockDashFees) Statistics(_ context.Context, _ string) (*models.FeeStatistics, error) {
	return m.stats, nil
}

func (m *mockDashFees) StudentSummary(_ context.Context, rollNo string) (*models.StudentFeeSummary, error) {
	return m.summaries[rollNo], nil
}

type mockDashLibrary struct {
	stats  *models.LibraryStatistics
	issues []models.BookIssueDetail
	filter models.BookIssueFilter
}

func (m *mockDashLibrary) Statistics(_ context.Context) (*models.LibraryStatistics, error) {
	return m.stats, nil
}

func (m *mockDashLibrary) ListIssues(_ context.Context, filter models.BookIssueFilter) ([]models.BookIssueDetail, *models.Pagination, error) {
	m.filter = filter
	return m.issues, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.issues)}, nil
}

type mockDashHostels struct {
	occupancy []models.HostelOccupancy
}

func (m *mockDashHostels) OccupancyStats(_ context.Context) ([]models.HostelOccupancy, error) {
	return m.occupancy, nil
}

type mockDashExams struct {
	pending int
	cgpa    *models.CumulativeGPA
	cgpaErr error
	sgpa    *models.SemesterGPA
	sgpaErr error
}

func (m *mockDashExams) PendingCount(_ context.Context) (int, error) {
	return m.pending, nil
}

func (m *mockDashExams) CumulativeGPA(_ context.Context, _ string) (*models.CumulativeGPA, error) {
	if m.cgpaErr != nil {
		return nil, m.cgpaErr
	}
	return m.cgpa, nil
}

func (m *mockDashExams) SemesterGPA(_ context.Context, _ string, _ int, _ string) (*models.SemesterGPA, error) {
	if m.sgpaErr != nil {
		return nil, m.sgpaErr
	}
	return m.sgpa, nil
}

type mockDashStudents struct {
	students map[string]*models.StudentDetail
	active   int
}

func (m *mockDashStudents) FindByRollNo(_ context.Context, rollNo string) (*models.StudentDetail, error) {
	student, ok := m.students[rollNo]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

func (m *mockDashStudents) CountActive(_ context.Context) (int, error) {
	return m.active, nil
}

type mockDashCourses struct {
	active int
}

func (m *mockDashCourses) CountActive(_ context.Context) (int, error) {
	return m.active, nil
}

type mockDashAdmissionCharts struct {
	months   []models.MonthlyCount
	from, to time.Time
}

func (m *mockDashAdmissionCharts) MonthlyApplications(_ context.Context, from, to time.Time) ([]models.MonthlyCount, error) {
	m.from, m.to = from, to
	return m.months, nil
}

type mockDashFeeCharts struct {
	months []models.MonthlyAmount
	today  float64
	day    time.Time
}

func (m *mockDashFeeCharts) MonthlyCollections(_ context.Context, _, _ time.Time) ([]models.MonthlyAmount, error) {
	return m.months, nil
}

func (m *mockDashFeeCharts) CollectedOn(_ context.Context, day time.Time) (float64, error) {
	m.day = day
	return m.today, nil
}

type dashboardFixture struct {
	admissions      *mockDashAdmissions
	fees            *mockDashFees
	library         *mockDashLibrary
	hostels         *mockDashHostels
	exams           *mockDashExams
	students        *mockDashStudents
	courses         *mockDashCourses
	admissionCharts *mockDashAdmissionCharts
	feeCharts       *mockDashFeeCharts
	cacheRepo       *mockCacheRepo
	service         *DashboardService
}

func newDashboardFixture() *dashboardFixture {
	f := &dashboardFixture{
		admissions: &mockDashAdmissions{
			stats: &models.AdmissionStatistics{
				Total: 40,
				ByStatus: map[models.ApplicationStatus]int{
					models.ApplicationStatusSubmitted:   12,
					models.ApplicationStatusUnderReview: 5,
				},
			},
			apps: map[string]*models.ApplicationDetail{},
		},
		fees:            &mockDashFees{stats: &models.FeeStatistics{TotalCollected: 250000}, summaries: map[string]*models.StudentFeeSummary{}},
		library:         &mockDashLibrary{stats: &models.LibraryStatistics{TotalBooks: 120}},
		hostels:         &mockDashHostels{occupancy: []models.HostelOccupancy{{HostelID: "hostel-1"}}},
		exams:           &mockDashExams{pending: 7},
		students:        &mockDashStudents{students: map[string]*models.StudentDetail{}, active: 310},
		courses:         &mockDashCourses{active: 6},
		admissionCharts: &mockDashAdmissionCharts{months: []models.MonthlyCount{{Month: "2025-07", Count: 14}}},
		feeCharts:       &mockDashFeeCharts{months: []models.MonthlyAmount{{Month: "2025-08", Amount: 90000}}, today: 4500},
		cacheRepo:       newMockCacheRepo(),
	}
	cache := NewCacheService(f.cacheRepo, nil, time.Minute, zap.NewNop(), true)
	f.service = NewDashboardService(DashboardServiceParams{
		Admissions:      f.admissions,
		Fees:            f.fees,
		Library:         f.library,
		Hostels:         f.hostels,
		Exams:           f.exams,
		Students:        f.students,
		Courses:         f.courses,
		AdmissionCharts: f.admissionCharts,
		FeeCharts:       f.feeCharts,
		Cache:           cache,
		Logger:          zap.NewNop(),
	})
	f.service.now = func() time.Time {
		return time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func TestDashboardServiceAdmin(t *testing.T) {
	f := newDashboardFixture()

	summary, cached, err := f.service.Admin(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 40, summary.Admissions.Total)
	assert.Equal(t, 250000.0, summary.Fees.TotalCollected)
	assert.Equal(t, 120, summary.Library.TotalBooks)
	assert.Len(t, summary.Hostels, 1)
	assert.Equal(t, 7, summary.PendingResults)
	assert.Equal(t, 310, summary.ActiveStudents)
	assert.Equal(t, 6, summary.ActiveCourses)
}

func TestDashboardServiceAdminCached(t *testing.T) {
	f := newDashboardFixture()

	_, cached, err := f.service.Admin(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.False(t, cached)

	summary, cached, err := f.service.Admin(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 40, summary.Admissions.Total)
	assert.Equal(t, 1, f.admissions.statsCalls)
}

func TestDashboardServiceStaff(t *testing.T) {
	f := newDashboardFixture()

	summary, cached, err := f.service.Staff(context.Background(), "2025ADM0001")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 12, summary.AdmissionQueue[models.ApplicationStatusSubmitted])
	assert.Equal(t, 7, summary.PendingResults)
	assert.Equal(t, 4500.0, summary.TodayCollection)
	assert.Equal(t, 10, f.feeCharts.day.Day())
}

func TestDashboardServiceStudent(t *testing.T) {
	f := newDashboardFixture()
	applicationID := "ADM2025000042"
	student := examStudent("2025CS0001")
	student.ApplicationID = &applicationID
	f.students.students["2025CS0001"] = student
	f.fees.summaries["2025CS0001"] = &models.StudentFeeSummary{TotalPending: 45000}
	f.exams.cgpa = &models.CumulativeGPA{StudentID: "2025CS0001", CGPA: 8.4}
	f.exams.sgpa = &models.SemesterGPA{StudentID: "2025CS0001", SGPA: 8.1}
	f.library.issues = []models.BookIssueDetail{{BookIssue: models.BookIssue{ID: "issue-1"}}}
	f.admissions.apps[applicationID] = &models.ApplicationDetail{
		AdmissionApplication: models.AdmissionApplication{ApplicationID: applicationID},
	}

	summary, cached, err := f.service.Student(context.Background(), "2025CS0001")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "2025CS0001", summary.Student.RollNo)
	require.NotNil(t, summary.CGPA)
	assert.Equal(t, 8.4, summary.CGPA.CGPA)
	require.NotNil(t, summary.CurrentSGPA)
	assert.Equal(t, 8.1, summary.CurrentSGPA.SGPA)
	assert.Equal(t, 45000.0, summary.Fees.TotalPending)
	assert.Len(t, summary.ActiveIssues, 1)
	require.NotNil(t, summary.Application)
	assert.Equal(t, applicationID, summary.Application.ApplicationID)

	assert.Equal(t, "2025CS0001", f.library.filter.StudentID)
	require.NotNil(t, f.library.filter.Status)
	assert.Equal(t, models.IssueStatusIssued, *f.library.filter.Status)
}

func TestDashboardServiceStudentWithoutResults(t *testing.T) {
	f := newDashboardFixture()
	f.students.students["2025CS0002"] = examStudent("2025CS0002")
	f.fees.summaries["2025CS0002"] = &models.StudentFeeSummary{}
	f.exams.cgpaErr = appErrors.Clone(appErrors.ErrNotFound, "no results")
	f.exams.sgpaErr = appErrors.Clone(appErrors.ErrNotFound, "no results")

	summary, _, err := f.service.Student(context.Background(), "2025CS0002")
	require.NoError(t, err)
	assert.Nil(t, summary.CGPA)
	assert.Nil(t, summary.CurrentSGPA)
	assert.Nil(t, summary.Application)
}

func TestDashboardServiceStudentNotFound(t *testing.T) {
	f := newDashboardFixture()

	_, _, err := f.service.Student(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDashboardServiceEnrollmentChart(t *testing.T) {
	f := newDashboardFixture()

	chart, err := f.service.EnrollmentChart(context.Background(), "2025-26")
	require.NoError(t, err)
	assert.Equal(t, "2025-26", chart.AcademicYear)
	assert.Len(t, chart.Months, 1)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), f.admissionCharts.from)
	assert.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), f.admissionCharts.to)
}

func TestDashboardServiceChartDefaultsToCurrentYear(t *testing.T) {
	f := newDashboardFixture()
	f.service.now = func() time.Time {
		return time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)
	}

	chart, err := f.service.FeeCollectionChart(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2025-26", chart.AcademicYear)
}

func TestDashboardServiceChartRejectsBadYear(t *testing.T) {
	f := newDashboardFixture()

	_, err := f.service.EnrollmentChart(context.Background(), "garbage")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDashboardServiceInvalidate(t *testing.T) {
	f := newDashboardFixture()

	_, _, err := f.service.Admin(context.Background(), "admin-1")
	require.NoError(t, err)
	require.NotEmpty(t, f.cacheRepo.entries)

	f.service.Invalidate(context.Background())
	assert.Empty(t, f.cacheRepo.entries)

	_, cached, err := f.service.Admin(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.False(t, cached)
}

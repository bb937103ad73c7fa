package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/dto"
	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type dashboardAdmissions interface {
	Statistics(ctx context.Context) (*models.AdmissionStatistics, error)
	Get(ctx context.Context, id string) (*models.ApplicationDetail, error)
}

type dashboardFees interface {
	Statistics(ctx context.Context, academicYear string) (*models.FeeStatistics, error)
	StudentSummary(ctx context.Context, rollNo string) (*models.StudentFeeSummary, error)
}

type dashboardLibrary interface {
	Statistics(ctx context.Context) (*models.LibraryStatistics, error)
	ListIssues(ctx context.Context, filter models.BookIssueFilter) ([]models.BookIssueDetail, *models.Pagination, error)
}

type dashboardHostels interface {
	OccupancyStats(ctx context.Context) ([]models.HostelOccupancy, error)
}

type dashboardExams interface {
	PendingCount(ctx context.Context) (int, error)
	CumulativeGPA(ctx context.Context, rollNo string) (*models.CumulativeGPA, error)
	SemesterGPA(ctx context.Context, rollNo string, semester int, academicYear string) (*models.SemesterGPA, error)
}

type dashboardStudentReader interface {
	FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error)
	CountActive(ctx context.Context) (int, error)
}

type dashboardCourseReader interface {
	CountActive(ctx context.Context) (int, error)
}

type dashboardAdmissionCharts interface {
	MonthlyApplications(ctx context.Context, from, to time.Time) ([]models.MonthlyCount, error)
}

type dashboardFeeCharts interface {
	MonthlyCollections(ctx context.Context, from, to time.Time) ([]models.MonthlyAmount, error)
	CollectedOn(ctx context.Context, day time.Time) (float64, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Admissions      dashboardAdmissions
	Fees            dashboardFees
	Library         dashboardLibrary
	Hostels         dashboardHostels
	Exams           dashboardExams
	Students        dashboardStudentReader
	Courses         dashboardCourseReader
	AdmissionCharts dashboardAdmissionCharts
	FeeCharts       dashboardFeeCharts
	Cache           *CacheService
	Logger          *zap.Logger
	CacheTTL        time.Duration
}

// DashboardService composes role-shaped summaries over the domain
// services, cached briefly in Redis.
type DashboardService struct {
	admissions      dashboardAdmissions
	fees            dashboardFees
	library         dashboardLibrary
	hostels         dashboardHostels
	exams           dashboardExams
	students        dashboardStudentReader
	courses         dashboardCourseReader
	admissionCharts dashboardAdmissionCharts
	feeCharts       dashboardFeeCharts
	cache           *CacheService
	logger          *zap.Logger
	now             func() time.Time
	cacheTTL        time.Duration
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		admissions:      params.Admissions,
		fees:            params.Fees,
		library:         params.Library,
		hostels:         params.Hostels,
		exams:           params.Exams,
		students:        params.Students,
		courses:         params.Courses,
		admissionCharts: params.AdmissionCharts,
		feeCharts:       params.FeeCharts,
		cache:           params.Cache,
		logger:          logger,
		now:             time.Now,
		cacheTTL:        ttl,
	}
}

// Admin returns the institution-wide snapshot and whether it came from
// cache.
func (s *DashboardService) Admin(ctx context.Context, principalID string) (*dto.AdminDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dashboard:admin:%s", principalID)
	var cached dto.AdminDashboardResponse
	if hit := s.tryCache(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	summary, err := s.composeAdmin(ctx)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Staff returns the working-queue snapshot for staff and faculty.
func (s *DashboardService) Staff(ctx context.Context, employeeID string) (*dto.StaffDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dashboard:staff:%s", employeeID)
	var cached dto.StaffDashboardResponse
	if hit := s.tryCache(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	summary, err := s.composeStaff(ctx)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Student returns a student's personal snapshot.
func (s *DashboardService) Student(ctx context.Context, rollNo string) (*dto.StudentDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%s", rollNo)
	var cached dto.StudentDashboardResponse
	if hit := s.tryCache(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	summary, err := s.composeStudent(ctx, rollNo)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// EnrollmentChart buckets applications by month for the academic year.
// An empty year defaults to the current one.
func (s *DashboardService) EnrollmentChart(ctx context.Context, academicYear string) (*dto.EnrollmentChartResponse, error) {
	year, from, to, err := s.chartWindow(academicYear)
	if err != nil {
		return nil, err
	}
	months, err := s.admissionCharts.MonthlyApplications(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment chart")
	}
	return &dto.EnrollmentChartResponse{AcademicYear: year, Months: months}, nil
}

// FeeCollectionChart buckets settled amounts by month for the academic
// year.
func (s *DashboardService) FeeCollectionChart(ctx context.Context, academicYear string) (*dto.FeeCollectionChartResponse, error) {
	year, from, to, err := s.chartWindow(academicYear)
	if err != nil {
		return nil, err
	}
	months, err := s.feeCharts.MonthlyCollections(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection chart")
	}
	return &dto.FeeCollectionChartResponse{AcademicYear: year, Months: months}, nil
}

// Invalidate drops all cached dashboard payloads. Mutating flows call
// this so stale summaries never outlive their TTL by much.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) composeAdmin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	admissions, err := s.admissions.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	fees, err := s.fees.Statistics(ctx, academicYearFor(s.now().UTC()))
	if err != nil {
		return nil, err
	}
	library, err := s.library.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	hostels, err := s.hostels.OccupancyStats(ctx)
	if err != nil {
		return nil, err
	}
	pendingResults, err := s.exams.PendingCount(ctx)
	if err != nil {
		return nil, err
	}
	activeStudents, err := s.students.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	activeCourses, err := s.courses.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}

	return &dto.AdminDashboardResponse{
		Admissions:     admissions,
		Fees:           fees,
		Library:        library,
		Hostels:        hostels,
		PendingResults: pendingResults,
		ActiveStudents: activeStudents,
		ActiveCourses:  activeCourses,
	}, nil
}

func (s *DashboardService) composeStaff(ctx context.Context) (*dto.StaffDashboardResponse, error) {
	admissions, err := s.admissions.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	pendingResults, err := s.exams.PendingCount(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.feeCharts.CollectedOn(ctx, s.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's collection")
	}

	return &dto.StaffDashboardResponse{
		AdmissionQueue:  admissions.ByStatus,
		PendingResults:  pendingResults,
		TodayCollection: today,
	}, nil
}

func (s *DashboardService) composeStudent(ctx context.Context, rollNo string) (*dto.StudentDashboardResponse, error) {
	student, err := s.students.FindByRollNo(ctx, rollNo)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	summary := &dto.StudentDashboardResponse{Student: student}

	// A student with no declared results yet simply has no GPA section.
	if cgpa, err := s.exams.CumulativeGPA(ctx, rollNo); err == nil {
		summary.CGPA = cgpa
	}
	year := academicYearFor(s.now().UTC())
	if sgpa, err := s.exams.SemesterGPA(ctx, rollNo, student.CurrentSemester, year); err == nil {
		summary.CurrentSGPA = sgpa
	}

	fees, err := s.fees.StudentSummary(ctx, rollNo)
	if err != nil {
		return nil, err
	}
	summary.Fees = fees

	issued := models.IssueStatusIssued
	issues, _, err := s.library.ListIssues(ctx, models.BookIssueFilter{StudentID: rollNo, Status: &issued})
	if err != nil {
		return nil, err
	}
	summary.ActiveIssues = issues

	if student.ApplicationID != nil {
		if application, err := s.admissions.Get(ctx, *student.ApplicationID); err == nil {
			summary.Application = application
		}
	}

	return summary, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// chartWindow resolves an academic year label to its July-to-July span.
func (s *DashboardService) chartWindow(academicYear string) (string, time.Time, time.Time, error) {
	year := academicYear
	if year == "" {
		year = academicYearFor(s.now().UTC())
	}

	start, ok := academicYearStart(year)
	if !ok {
		return "", time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "academic year must look like 2025-26")
	}
	from := time.Date(start, time.July, 1, 0, 0, 0, 0, time.UTC)
	return year, from, from.AddDate(1, 0, 0), nil
}

// academicYearStart parses the leading year of a 2025-26 style label.
func academicYearStart(academicYear string) (int, bool) {
	parts := strings.SplitN(academicYear, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return year, true
}

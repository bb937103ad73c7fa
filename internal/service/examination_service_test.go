package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/grading"
	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type mockExamRepo struct {
	results   []*models.ExamResultDetail
	declared  []models.ExamResult
	pending   int
	createErr error
	updateErr error
	updated   *models.ExamResult
}

func (m *mockExamRepo) Create(ctx context.Context, result *models.ExamResult) error {
	if m.createErr != nil {
		return m.createErr
	}
	result.ID = fmt.Sprintf("res-%d", len(m.results)+1)
	result.CreatedAt = time.Now().UTC()
	result.UpdatedAt = result.CreatedAt
	m.results = append(m.results, &models.ExamResultDetail{ExamResult: *result})
	return nil
}

func (m *mockExamRepo) FindByID(ctx context.Context, id string) (*models.ExamResultDetail, error) {
	for _, r := range m.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamRepo) Update(ctx context.Context, result *models.ExamResult) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = result
	for _, r := range m.results {
		if r.ID == result.ID {
			r.ExamResult = *result
		}
	}
	return nil
}

func (m *mockExamRepo) List(ctx context.Context, filter models.ExamResultFilter) ([]models.ExamResultDetail, int, error) {
	out := make([]models.ExamResultDetail, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockExamRepo) StudentResults(ctx context.Context, rollNo string, semester *int, academicYear string) ([]models.ExamResultDetail, error) {
	var out []models.ExamResultDetail
	for _, r := range m.results {
		if r.StudentID != rollNo {
			continue
		}
		if semester != nil && r.Semester != *semester {
			continue
		}
		if academicYear != "" && r.AcademicYear != academicYear {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockExamRepo) DeclaredByCourse(ctx context.Context, courseID string, semester int, academicYear string, examType *models.ExamType) ([]models.ExamResult, error) {
	return m.declared, nil
}

func (m *mockExamRepo) PendingCount(ctx context.Context) (int, error) {
	return m.pending, nil
}

type mockExamStudents struct {
	students map[string]*models.StudentDetail
}

func (m *mockExamStudents) FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error) {
	if s, ok := m.students[rollNo]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockExamAudit struct {
	logs []*models.AuditLog
}

func (m *mockExamAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func examStudent(rollNo string) *models.StudentDetail {
	return &models.StudentDetail{
		Student: models.Student{
			RollNo:          rollNo,
			FirstName:       "Asha",
			LastName:        "Verma",
			Gender:          models.GenderFemale,
			CourseID:        "course-1",
			CurrentSemester: 3,
			Active:          true,
		},
		CourseName: "Computer Science Engineering",
		CourseCode: "CS",
	}
}

func pendingExamResult(id, rollNo string, semester int) *models.ExamResultDetail {
	return &models.ExamResultDetail{
		ExamResult: models.ExamResult{
			ID:           id,
			StudentID:    rollNo,
			CourseID:     "course-1",
			SubjectName:  "Data Structures",
			SubjectCode:  "CS201",
			Semester:     semester,
			AcademicYear: "2025-26",
			ExamType:     models.ExamTypeSemester,
			MaxMarks:     100,
		},
		StudentName: "Asha Verma",
		CourseName:  "Computer Science Engineering",
		CourseCode:  "CS",
	}
}

func declaredExamResult(id, rollNo string, semester int, marks, max, points float64, pass bool) *models.ExamResultDetail {
	r := pendingExamResult(id, rollNo, semester)
	now := time.Now().UTC()
	letter := grading.Letter(grading.Percentage(marks, max), false, false)
	r.MaxMarks = max
	r.MarksObtained = &marks
	r.Grade = &letter
	r.GradePoints = &points
	r.IsPass = &pass
	r.ResultDeclaredAt = &now
	return r
}

func newExamService(repo *mockExamRepo, students *mockExamStudents, audit *mockExamAudit) *ExaminationService {
	return NewExaminationService(repo, students, audit, validator.New(), zap.NewNop())
}

func TestExaminationServiceCreateResult(t *testing.T) {
	repo := &mockExamRepo{}
	students := &mockExamStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newExamService(repo, students, &mockExamAudit{})

	res, err := svc.CreateResult(context.Background(), CreateExamResultRequest{
		StudentID:    "2025CS0001",
		SubjectName:  "Data Structures",
		SubjectCode:  "CS201",
		Semester:     3,
		AcademicYear: "2025-26",
		ExamType:     models.ExamTypeSemester,
		MaxMarks:     100,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "course-1", res.CourseID)
	assert.Nil(t, res.MarksObtained)
	assert.Nil(t, res.Grade)
}

func TestExaminationServiceCreateResultStudentMissing(t *testing.T) {
	svc := newExamService(&mockExamRepo{}, &mockExamStudents{}, &mockExamAudit{})

	_, err := svc.CreateResult(context.Background(), CreateExamResultRequest{
		StudentID:    "2025CS9999",
		SubjectName:  "Data Structures",
		SubjectCode:  "CS201",
		Semester:     3,
		AcademicYear: "2025-26",
		ExamType:     models.ExamTypeSemester,
		MaxMarks:     100,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExaminationServiceDeclareResult(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	audit := &mockExamAudit{}
	svc := newExamService(repo, &mockExamStudents{}, audit)

	res, err := svc.DeclareResult(context.Background(), "res-1", "EMP-1", DeclareResultRequest{
		MarksObtained: ptrFloat(85),
		InternalMarks: 25,
		ExternalMarks: 60,
	})
	require.NoError(t, err)
	require.NotNil(t, res.MarksObtained)
	assert.Equal(t, 85.0, *res.MarksObtained)
	assert.Equal(t, "A+", *res.Grade)
	assert.Equal(t, 9.0, *res.GradePoints)
	assert.True(t, *res.IsPass)
	assert.NotNil(t, res.ResultDeclaredAt)
	assert.Equal(t, "EMP-1", *res.ProcessedBy)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionResultDeclare, audit.logs[0].Action)
}

func TestExaminationServiceDeclareResultTwiceOverwrites(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	_, err := svc.DeclareResult(context.Background(), "res-1", "EMP-1", DeclareResultRequest{MarksObtained: ptrFloat(85)})
	require.NoError(t, err)

	res, err := svc.DeclareResult(context.Background(), "res-1", "EMP-2", DeclareResultRequest{MarksObtained: ptrFloat(92)})
	require.NoError(t, err)
	require.NotNil(t, res.MarksObtained)
	assert.Equal(t, 92.0, *res.MarksObtained)
	assert.Equal(t, "O", *res.Grade)
	assert.Equal(t, "EMP-2", *res.ProcessedBy)
}

func TestExaminationServiceDeclareAbsent(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	res, err := svc.DeclareResult(context.Background(), "res-1", "EMP-1", DeclareResultRequest{MarksObtained: ptrFloat(70), IsAbsent: true})
	require.NoError(t, err)
	require.NotNil(t, res.MarksObtained)
	assert.Equal(t, 0.0, *res.MarksObtained)
	assert.Equal(t, grading.GradeAbsent, *res.Grade)
	assert.Equal(t, 0.0, *res.GradePoints)
	assert.False(t, *res.IsPass)
}

func TestExaminationServiceDeclareMalpractice(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	res, err := svc.DeclareResult(context.Background(), "res-1", "EMP-1", DeclareResultRequest{MarksObtained: ptrFloat(88), HasMalpractice: true})
	require.NoError(t, err)
	require.NotNil(t, res.MarksObtained)
	assert.Equal(t, 0.0, *res.MarksObtained)
	assert.Equal(t, grading.GradeMalpractice, *res.Grade)
	assert.False(t, *res.IsPass)
}

func TestExaminationServiceDeclareDefaultsExternal(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	res, err := svc.DeclareResult(context.Background(), "res-1", "EMP-1", DeclareResultRequest{
		MarksObtained: ptrFloat(85),
		InternalMarks: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, res.InternalMarks)
	assert.Equal(t, 60.0, res.ExternalMarks)
}

func TestExaminationServiceDeclareComponentSum(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	res, err := svc.DeclareResult(context.Background(), "res-1", "EMP-1", DeclareResultRequest{
		InternalMarks: 28,
		ExternalMarks: 52,
	})
	require.NoError(t, err)
	require.NotNil(t, res.MarksObtained)
	assert.Equal(t, 80.0, *res.MarksObtained)
	assert.Equal(t, "A+", *res.Grade)
}

func TestExaminationServiceDeclareMarksExceedMax(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	_, err := svc.DeclareResult(context.Background(), "res-1", "EMP-1", DeclareResultRequest{MarksObtained: ptrFloat(120)})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "exceed maximum marks")
}

func TestExaminationServiceUpdateResultRequiresDeclared(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	_, err := svc.UpdateResult(context.Background(), "res-1", "EMP-1", DeclareResultRequest{MarksObtained: ptrFloat(60)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrResultNotDeclared.Code, appErrors.FromError(err).Code)
}

func TestExaminationServiceUpdateResultRecomputes(t *testing.T) {
	declared := declaredExamResult("res-1", "2025CS0001", 3, 50, 100, 5.0, true)
	declaredAt := *declared.ResultDeclaredAt
	repo := &mockExamRepo{results: []*models.ExamResultDetail{declared}}
	audit := &mockExamAudit{}
	svc := newExamService(repo, &mockExamStudents{}, audit)

	res, err := svc.UpdateResult(context.Background(), "res-1", "EMP-2", DeclareResultRequest{MarksObtained: ptrFloat(91)})
	require.NoError(t, err)
	assert.Equal(t, "O", *res.Grade)
	assert.Equal(t, 10.0, *res.GradePoints)
	assert.True(t, *res.IsPass)
	assert.True(t, declaredAt.Equal(*res.ResultDeclaredAt))

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionResultUpdate, audit.logs[0].Action)
}

func TestExaminationServicePercentage(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{declaredExamResult("res-1", "2025CS0001", 3, 72, 80, 10.0, true)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	pct, err := svc.Percentage(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, pct.Percentage)
	assert.Equal(t, 72.0, pct.MarksObtained)
	assert.Equal(t, 80.0, pct.MaxMarks)
	assert.Equal(t, "O", pct.Grade)
}

func TestExaminationServicePercentageNotDeclared(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{pendingExamResult("res-1", "2025CS0001", 3)}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	_, err := svc.Percentage(context.Background(), "res-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrResultNotDeclared.Code, appErrors.FromError(err).Code)
}

func TestExaminationServiceSemesterGPA(t *testing.T) {
	absent := pendingExamResult("res-3", "2025CS0001", 3)
	now := time.Now().UTC()
	absentGrade := grading.GradeAbsent
	zero := 0.0
	fail := false
	absent.IsAbsent = true
	absent.Grade = &absentGrade
	absent.GradePoints = &zero
	absent.IsPass = &fail
	absent.ResultDeclaredAt = &now

	repo := &mockExamRepo{results: []*models.ExamResultDetail{
		declaredExamResult("res-1", "2025CS0001", 3, 85, 100, 9.0, true),
		declaredExamResult("res-2", "2025CS0001", 3, 72, 100, 8.0, true),
		absent,
	}}
	students := &mockExamStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newExamService(repo, students, &mockExamAudit{})

	gpa, err := svc.SemesterGPA(context.Background(), "2025CS0001", 3, "2025-26")
	require.NoError(t, err)
	assert.Equal(t, 8.5, gpa.SGPA)
	assert.Equal(t, 2, gpa.CountedSubjects)
	assert.Equal(t, 3, gpa.TotalSubjects)
}

func TestExaminationServiceCumulativeGPA(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{
		declaredExamResult("res-1", "2025CS0001", 1, 85, 100, 9.0, true),
		declaredExamResult("res-2", "2025CS0001", 2, 95, 100, 10.0, true),
		declaredExamResult("res-3", "2025CS0001", 2, 62, 100, 7.0, true),
	}}
	students := &mockExamStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newExamService(repo, students, &mockExamAudit{})

	cgpa, err := svc.CumulativeGPA(context.Background(), "2025CS0001")
	require.NoError(t, err)
	assert.Equal(t, 8.67, cgpa.CGPA)
	assert.Equal(t, 3, cgpa.CountedSubjects)
	assert.Equal(t, 3, cgpa.TotalSubjects)
}

func TestExaminationServiceClassPerformance(t *testing.T) {
	fail := false
	passed := declaredExamResult("res-1", "2025CS0001", 3, 90, 100, 10.0, true)
	failed := declaredExamResult("res-2", "2025CS0002", 3, 35, 100, 0.0, false)
	absent := pendingExamResult("res-3", "2025CS0003", 3)
	absent.IsAbsent = true
	absent.IsPass = &fail

	repo := &mockExamRepo{declared: []models.ExamResult{passed.ExamResult, failed.ExamResult, absent.ExamResult}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	perf, err := svc.ClassPerformance(context.Background(), "course-1", 3, "2025-26", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, perf.TotalStudents)
	assert.Equal(t, 2, perf.Appeared)
	assert.Equal(t, 1, perf.Absent)
	assert.Equal(t, 1, perf.Passed)
	assert.Equal(t, 1, perf.Failed)
	assert.Equal(t, 50.0, perf.PassPercentage)
	require.NotNil(t, perf.HighestMarks)
	assert.Equal(t, 90.0, *perf.HighestMarks)
	require.NotNil(t, perf.LowestMarks)
	assert.Equal(t, 35.0, *perf.LowestMarks)
	require.NotNil(t, perf.AverageMarks)
	assert.Equal(t, 62.5, *perf.AverageMarks)
	assert.False(t, perf.MixedMaxMarks)
	require.NotNil(t, perf.ClassAveragePercentage)
	assert.Equal(t, 62.5, *perf.ClassAveragePercentage)
}

func TestExaminationServiceClassPerformanceExcludesMalpractice(t *testing.T) {
	passed := declaredExamResult("res-1", "2025CS0001", 3, 90, 100, 10.0, true)
	caught := declaredExamResult("res-2", "2025CS0002", 3, 0, 100, 0.0, false)
	caught.HasMalpractice = true

	repo := &mockExamRepo{declared: []models.ExamResult{passed.ExamResult, caught.ExamResult}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	perf, err := svc.ClassPerformance(context.Background(), "course-1", 3, "2025-26", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, perf.TotalStudents)
	assert.Equal(t, 1, perf.Appeared)
	assert.Equal(t, 1, perf.Malpractice)
	assert.Equal(t, 1, perf.Passed)
	assert.Equal(t, 0, perf.Failed)
	assert.Equal(t, 100.0, perf.PassPercentage)
	require.NotNil(t, perf.AverageMarks)
	assert.Equal(t, 90.0, *perf.AverageMarks)
}

func TestExaminationServiceClassPerformanceMixedMax(t *testing.T) {
	hundred := declaredExamResult("res-1", "2025CS0001", 3, 80, 100, 9.0, true)
	fifty := declaredExamResult("res-2", "2025CS0002", 3, 40, 50, 9.0, true)

	repo := &mockExamRepo{declared: []models.ExamResult{hundred.ExamResult, fifty.ExamResult}}
	svc := newExamService(repo, &mockExamStudents{}, &mockExamAudit{})

	perf, err := svc.ClassPerformance(context.Background(), "course-1", 3, "2025-26", nil)
	require.NoError(t, err)
	assert.True(t, perf.MixedMaxMarks)
	assert.Nil(t, perf.ClassAveragePercentage)
	require.NotNil(t, perf.AverageMarks)
	assert.Equal(t, 60.0, *perf.AverageMarks)
}

func TestExaminationServiceClassPerformanceEmpty(t *testing.T) {
	svc := newExamService(&mockExamRepo{}, &mockExamStudents{}, &mockExamAudit{})

	_, err := svc.ClassPerformance(context.Background(), "course-1", 3, "2025-26", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExaminationServiceMarksheet(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{
		declaredExamResult("res-1", "2025CS0001", 3, 85, 100, 9.0, true),
		declaredExamResult("res-2", "2025CS0001", 3, 72, 100, 8.0, true),
	}}
	students := &mockExamStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newExamService(repo, students, &mockExamAudit{})

	sheet, err := svc.Marksheet(context.Background(), "2025CS0001", 3, "2025-26")
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", sheet.StudentName)
	assert.Equal(t, "Computer Science Engineering", sheet.CourseName)
	assert.Len(t, sheet.Rows, 2)
	assert.Equal(t, 8.5, sheet.SGPA)
	assert.True(t, sheet.AllPassed)
}

func TestExaminationServiceMarksheetPendingRow(t *testing.T) {
	repo := &mockExamRepo{results: []*models.ExamResultDetail{
		declaredExamResult("res-1", "2025CS0001", 3, 85, 100, 9.0, true),
		pendingExamResult("res-2", "2025CS0001", 3),
	}}
	students := &mockExamStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newExamService(repo, students, &mockExamAudit{})

	sheet, err := svc.Marksheet(context.Background(), "2025CS0001", 3, "2025-26")
	require.NoError(t, err)
	assert.False(t, sheet.AllPassed)
	assert.Equal(t, 9.0, sheet.SGPA)
}

func TestExaminationServicePendingCount(t *testing.T) {
	svc := newExamService(&mockExamRepo{pending: 7}, &mockExamStudents{}, &mockExamAudit{})

	count, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func ptrFloat(v float64) *float64 {
	return &v
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/grading"
	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type examinationRepository interface {
	Create(ctx context.Context, result *models.ExamResult) error
	FindByID(ctx context.Context, id string) (*models.ExamResultDetail, error)
	Update(ctx context.Context, result *models.ExamResult) error
	List(ctx context.Context, filter models.ExamResultFilter) ([]models.ExamResultDetail, int, error)
	StudentResults(ctx context.Context, rollNo string, semester *int, academicYear string) ([]models.ExamResultDetail, error)
	DeclaredByCourse(ctx context.Context, courseID string, semester int, academicYear string, examType *models.ExamType) ([]models.ExamResult, error)
	PendingCount(ctx context.Context) (int, error)
}

type examStudentReader interface {
	FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error)
}

type examAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateExamResultRequest registers an exam record ahead of declaration.
type CreateExamResultRequest struct {
	StudentID    string          `json:"student_id" validate:"required"`
	SubjectName  string          `json:"subject_name" validate:"required"`
	SubjectCode  string          `json:"subject_code" validate:"required"`
	Semester     int             `json:"semester" validate:"required,gte=1,lte=12"`
	AcademicYear string          `json:"academic_year" validate:"required"`
	ExamType     models.ExamType `json:"exam_type" validate:"required,oneof=internal semester final supplementary"`
	ExamDate     *time.Time      `json:"exam_date"`
	MaxMarks     float64         `json:"max_marks" validate:"required,gt=0"`
}

// DeclareResultRequest carries the marks for declaring or revising a
// result. When MarksObtained is omitted the internal and external
// components are summed instead.
type DeclareResultRequest struct {
	MarksObtained  *float64 `json:"marks_obtained" validate:"omitempty,gte=0"`
	InternalMarks  float64  `json:"internal_marks" validate:"gte=0"`
	ExternalMarks  float64  `json:"external_marks" validate:"gte=0"`
	IsAbsent       bool     `json:"is_absent"`
	HasMalpractice bool     `json:"has_malpractice"`
	Remarks        *string  `json:"remarks"`
}

// ResultPercentage is the computed percentage view of a declared result.
type ResultPercentage struct {
	ResultID      string  `json:"result_id"`
	MarksObtained float64 `json:"marks_obtained"`
	MaxMarks      float64 `json:"max_marks"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
	GradePoints   float64 `json:"grade_points"`
}

// ExaminationService owns the result record lifecycle and the grade
// aggregation views built on top of it.
type ExaminationService struct {
	repo      examinationRepository
	students  examStudentReader
	audit     examAuditRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExaminationService constructs an ExaminationService.
func NewExaminationService(repo examinationRepository, students examStudentReader, audit examAuditRepository, validate *validator.Validate, logger *zap.Logger) *ExaminationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExaminationService{repo: repo, students: students, audit: audit, validator: validate, logger: logger}
}

// CreateResult registers an exam record. Marks stay null until declared.
func (s *ExaminationService) CreateResult(ctx context.Context, req CreateExamResultRequest) (*models.ExamResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam result payload")
	}

	student, err := s.students.FindByRollNo(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	result := &models.ExamResult{
		StudentID:    student.RollNo,
		CourseID:     student.CourseID,
		SubjectName:  req.SubjectName,
		SubjectCode:  req.SubjectCode,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		ExamType:     req.ExamType,
		ExamDate:     req.ExamDate,
		MaxMarks:     req.MaxMarks,
	}

	if err := s.repo.Create(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam result")
	}
	return result, nil
}

// DeclareResult publishes marks for a record, computing grade, grade
// points and pass status. Declaring again overwrites the previous marks
// and re-stamps the declaration time; the last writer wins.
func (s *ExaminationService) DeclareResult(ctx context.Context, id, staffID string, req DeclareResultRequest) (*models.ExamResult, error) {
	detail, err := s.loadResult(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyMarks(ctx, &detail.ExamResult, staffID, req, models.AuditActionResultDeclare, true)
}

// UpdateResult revises an already declared record and recomputes the
// derived fields.
func (s *ExaminationService) UpdateResult(ctx context.Context, id, staffID string, req DeclareResultRequest) (*models.ExamResult, error) {
	detail, err := s.loadResult(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.ResultDeclaredAt == nil {
		return nil, appErrors.Clone(appErrors.ErrResultNotDeclared, "result not yet declared")
	}
	return s.applyMarks(ctx, &detail.ExamResult, staffID, req, models.AuditActionResultUpdate, false)
}

// Get returns one result record with its context.
func (s *ExaminationService) Get(ctx context.Context, id string) (*models.ExamResultDetail, error) {
	return s.loadResult(ctx, id)
}

// Percentage returns the percentage view of a declared result.
func (s *ExaminationService) Percentage(ctx context.Context, id string) (*ResultPercentage, error) {
	detail, err := s.loadResult(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.ResultDeclaredAt == nil {
		return nil, appErrors.Clone(appErrors.ErrResultNotDeclared, "result not yet declared")
	}

	marks := 0.0
	if detail.MarksObtained != nil {
		marks = *detail.MarksObtained
	}
	percentage := round2(grading.Percentage(marks, detail.MaxMarks))
	grade := ""
	if detail.Grade != nil {
		grade = *detail.Grade
	}
	points := 0.0
	if detail.GradePoints != nil {
		points = *detail.GradePoints
	}

	return &ResultPercentage{
		ResultID:      detail.ID,
		MarksObtained: marks,
		MaxMarks:      detail.MaxMarks,
		Percentage:    percentage,
		Grade:         grade,
		GradePoints:   points,
	}, nil
}

// List returns result records with pagination.
func (s *ExaminationService) List(ctx context.Context, filter models.ExamResultFilter) ([]models.ExamResultDetail, *models.Pagination, error) {
	results, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam results")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return results, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// StudentResults returns a student's records, newest semester last.
func (s *ExaminationService) StudentResults(ctx context.Context, rollNo string, semester *int, academicYear string) ([]models.ExamResultDetail, error) {
	if _, err := s.students.FindByRollNo(ctx, rollNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	results, err := s.repo.StudentResults(ctx, rollNo, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student results")
	}
	return results, nil
}

// SemesterGPA computes the SGPA over one semester's declared results.
func (s *ExaminationService) SemesterGPA(ctx context.Context, rollNo string, semester int, academicYear string) (*models.SemesterGPA, error) {
	results, err := s.StudentResults(ctx, rollNo, &semester, academicYear)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no results recorded for this semester")
	}

	gpa := gpaOver(results)
	return &models.SemesterGPA{
		StudentID:       rollNo,
		Semester:        semester,
		AcademicYear:    academicYear,
		SGPA:            gpa.average,
		CountedSubjects: gpa.counted,
		TotalSubjects:   len(results),
	}, nil
}

// CumulativeGPA computes the CGPA across all declared results.
func (s *ExaminationService) CumulativeGPA(ctx context.Context, rollNo string) (*models.CumulativeGPA, error) {
	results, err := s.StudentResults(ctx, rollNo, nil, "")
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no results recorded for this student")
	}

	gpa := gpaOver(results)
	return &models.CumulativeGPA{
		StudentID:       rollNo,
		CGPA:            gpa.average,
		CountedSubjects: gpa.counted,
		TotalSubjects:   len(results),
	}, nil
}

// AcademicRecord assembles the student's full examination history with
// per-semester SGPA and the overall CGPA.
func (s *ExaminationService) AcademicRecord(ctx context.Context, rollNo string) (*models.AcademicRecord, error) {
	student, err := s.students.FindByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	results, err := s.repo.StudentResults(ctx, rollNo, nil, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student results")
	}

	bySemester := make(map[int][]models.ExamResultDetail)
	semesters := []int{}
	for _, r := range results {
		if _, seen := bySemester[r.Semester]; !seen {
			semesters = append(semesters, r.Semester)
		}
		bySemester[r.Semester] = append(bySemester[r.Semester], r)
	}

	record := &models.AcademicRecord{
		Student: *student,
		Results: results,
	}
	for _, sem := range semesters {
		rows := bySemester[sem]
		gpa := gpaOver(rows)
		record.Semesters = append(record.Semesters, models.SemesterGPA{
			StudentID:       rollNo,
			Semester:        sem,
			SGPA:            gpa.average,
			CountedSubjects: gpa.counted,
			TotalSubjects:   len(rows),
		})
	}

	total := gpaOver(results)
	record.CGPA = models.CumulativeGPA{
		StudentID:       rollNo,
		CGPA:            total.average,
		CountedSubjects: total.counted,
		TotalSubjects:   len(results),
	}
	return record, nil
}

// Marksheet builds the semester grade card.
func (s *ExaminationService) Marksheet(ctx context.Context, rollNo string, semester int, academicYear string) (*models.Marksheet, error) {
	student, err := s.students.FindByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	results, err := s.repo.StudentResults(ctx, rollNo, &semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student results")
	}
	if len(results) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no results recorded for this semester")
	}

	allPassed := true
	for _, r := range results {
		if r.ResultDeclaredAt == nil || r.IsPass == nil || !*r.IsPass {
			allPassed = false
			break
		}
	}

	gpa := gpaOver(results)
	return &models.Marksheet{
		StudentID:    rollNo,
		StudentName:  student.FirstName + " " + student.LastName,
		CourseName:   student.CourseName,
		Semester:     semester,
		AcademicYear: academicYear,
		Rows:         results,
		SGPA:         gpa.average,
		AllPassed:    allPassed,
	}, nil
}

// ClassPerformance aggregates declared results for a course cohort.
// Raw mark aggregates are always reported; the percentage average is
// omitted when subjects carry different maximum marks.
func (s *ExaminationService) ClassPerformance(ctx context.Context, courseID string, semester int, academicYear string, examType *models.ExamType) (*models.ClassPerformance, error) {
	rows, err := s.repo.DeclaredByCourse(ctx, courseID, semester, academicYear, examType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load declared results")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no declared results for this cohort")
	}

	perf := &models.ClassPerformance{
		CourseID:     courseID,
		Semester:     semester,
		AcademicYear: academicYear,
		ExamType:     examType,
	}

	students := make(map[string]struct{})
	var sum float64
	var highest, lowest *float64
	maxMarks := make(map[float64]struct{})
	appearedWithMarks := 0

	for i := range rows {
		r := rows[i]
		students[r.StudentID] = struct{}{}

		if r.HasMalpractice {
			perf.Malpractice++
		}
		if r.IsAbsent {
			perf.Absent++
		}
		if r.IsAbsent || r.HasMalpractice {
			continue
		}
		perf.Appeared++

		if r.IsPass != nil && *r.IsPass {
			perf.Passed++
		} else {
			perf.Failed++
		}

		if r.MarksObtained == nil {
			continue
		}
		marks := *r.MarksObtained
		appearedWithMarks++
		sum += marks
		maxMarks[r.MaxMarks] = struct{}{}
		if highest == nil || marks > *highest {
			highest = &marks
		}
		if lowest == nil || marks < *lowest {
			lowest = &marks
		}
	}

	perf.TotalStudents = len(students)
	if perf.Appeared > 0 {
		perf.PassPercentage = round2(float64(perf.Passed) / float64(perf.Appeared) * 100)
	}
	perf.HighestMarks = highest
	perf.LowestMarks = lowest
	if appearedWithMarks > 0 {
		avg := round2(sum / float64(appearedWithMarks))
		perf.AverageMarks = &avg
	}

	perf.MixedMaxMarks = len(maxMarks) > 1
	if !perf.MixedMaxMarks && appearedWithMarks > 0 {
		for mm := range maxMarks {
			if mm > 0 {
				pct := round2(sum / float64(appearedWithMarks) / mm * 100)
				perf.ClassAveragePercentage = &pct
			}
		}
	}

	return perf, nil
}

// PendingCount reports records awaiting declaration.
func (s *ExaminationService) PendingCount(ctx context.Context) (int, error) {
	count, err := s.repo.PendingCount(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending results")
	}
	return count, nil
}

func (s *ExaminationService) loadResult(ctx context.Context, id string) (*models.ExamResultDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam result")
	}
	return detail, nil
}

// applyMarks validates the marks, computes the derived grade fields and
// persists the record. declare controls the declaration timestamp: a
// declaration stamps it fresh, a revision keeps the original.
func (s *ExaminationService) applyMarks(ctx context.Context, result *models.ExamResult, staffID string, req DeclareResultRequest, auditAction string, declare bool) (*models.ExamResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}

	var marks float64
	if req.MarksObtained != nil {
		marks = *req.MarksObtained
	} else {
		marks = req.InternalMarks + req.ExternalMarks
	}

	external := req.ExternalMarks
	if external == 0 {
		external = marks - req.InternalMarks
	}

	// Absence and malpractice zero the marks regardless of the payload.
	if req.IsAbsent || req.HasMalpractice {
		marks = 0
	}
	if marks > result.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("marks obtained (%.2f) exceed maximum marks (%.2f)", marks, result.MaxMarks))
	}

	percentage := grading.Percentage(marks, result.MaxMarks)
	letter := grading.Letter(percentage, req.IsAbsent, req.HasMalpractice)
	points := grading.Points(letter)
	pass := grading.Passed(marks, result.MaxMarks, req.IsAbsent, req.HasMalpractice)

	now := time.Now().UTC()
	result.MarksObtained = &marks
	result.InternalMarks = req.InternalMarks
	result.ExternalMarks = external
	result.Grade = &letter
	result.GradePoints = &points
	result.IsPass = &pass
	result.IsAbsent = req.IsAbsent
	result.HasMalpractice = req.HasMalpractice
	result.Remarks = req.Remarks
	result.ProcessedBy = &staffID
	if declare || result.ResultDeclaredAt == nil {
		result.ResultDeclaredAt = &now
	}

	if err := s.repo.Update(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save exam result")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &staffID,
		Action:      auditAction,
		Resource:    "exam_result",
		ResourceID:  &result.ID,
		NewValues:   []byte(fmt.Sprintf(`{"grade":%q,"is_pass":%t}`, letter, pass)),
	}); err != nil {
		s.logger.Warn("failed to record result audit log", zap.Error(err))
	}

	s.logger.Info("exam result saved",
		zap.String("result_id", result.ID),
		zap.String("student_id", result.StudentID),
		zap.String("grade", letter))

	return result, nil
}

// gpaSummary carries the outcome of a grade point average pass.
type gpaSummary struct {
	average float64
	counted int
}

// gpaOver averages grade points across declared results, skipping absent
// and malpractice entries.
func gpaOver(results []models.ExamResultDetail) gpaSummary {
	points := make([]float64, 0, len(results))
	for _, r := range results {
		if r.ResultDeclaredAt == nil || r.IsAbsent || r.HasMalpractice || r.GradePoints == nil {
			continue
		}
		points = append(points, *r.GradePoints)
	}
	return gpaSummary{average: grading.GradePointAverage(points), counted: len(points)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

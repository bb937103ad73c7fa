package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-erp-api/internal/models"
)

func newExaminationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func examResultDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "subject_name", "subject_code", "semester", "academic_year",
		"exam_type", "exam_date", "max_marks", "marks_obtained", "internal_marks", "external_marks",
		"grade", "grade_points", "is_pass", "is_absent", "has_malpractice",
		"result_declared_at", "remarks", "processed_by", "created_at", "updated_at",
		"student_name", "course_name", "course_code",
	})
}

func TestExaminationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newExaminationMock(t)
	defer cleanup()
	repo := NewExaminationRepository(db)

	mock.ExpectExec("INSERT INTO exam_results").
		WillReturnResult(sqlmock.NewResult(1, 1))

	result := &models.ExamResult{
		StudentID:    "2025CS0001",
		CourseID:     "course-1",
		SubjectName:  "Data Structures",
		SubjectCode:  "CS201",
		Semester:     3,
		AcademicYear: "2025-26",
		ExamType:     models.ExamTypeSemester,
		MaxMarks:     100,
	}
	err := repo.Create(context.Background(), result)
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExaminationRepositoryListPending(t *testing.T) {
	db, mock, cleanup := newExaminationMock(t)
	defer cleanup()
	repo := NewExaminationRepository(db)

	rows := examResultDetailRows().AddRow(
		"res-1", "2025CS0001", "course-1", "Data Structures", "CS201", 3, "2025-26",
		"semester", nil, 100.0, nil, nil, nil,
		nil, nil, nil, false, false,
		nil, nil, nil, time.Now(), time.Now(),
		"Asha Nair", "Computer Science", "CS",
	)
	declared := false
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.student_id, r.course_id")).
		WithArgs("course-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exam_results r")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	results, total, err := repo.List(context.Background(), models.ExamResultFilter{CourseID: "course-1", Declared: &declared})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, results[0].MarksObtained)
	assert.Nil(t, results[0].ResultDeclaredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExaminationRepositoryStudentResults(t *testing.T) {
	db, mock, cleanup := newExaminationMock(t)
	defer cleanup()
	repo := NewExaminationRepository(db)

	marks := 72.0
	grade := "A"
	points := 8.0
	pass := true
	declaredAt := time.Now()
	rows := examResultDetailRows().AddRow(
		"res-1", "2025CS0001", "course-1", "Data Structures", "CS201", 3, "2025-26",
		"semester", nil, 100.0, marks, nil, nil,
		grade, points, pass, false, false,
		declaredAt, nil, "EMP-1", time.Now(), time.Now(),
		"Asha Nair", "Computer Science", "CS",
	)
	semester := 3
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.student_id, r.course_id")).
		WithArgs("2025CS0001", semester).
		WillReturnRows(rows)

	results, err := repo.StudentResults(context.Background(), "2025CS0001", &semester, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", *results[0].Grade)
	assert.Equal(t, 8.0, *results[0].GradePoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExaminationRepositoryDeclaredByCourse(t *testing.T) {
	db, mock, cleanup := newExaminationMock(t)
	defer cleanup()
	repo := NewExaminationRepository(db)

	marks := 91.0
	grade := "O"
	points := 10.0
	pass := true
	declaredAt := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "subject_name", "subject_code", "semester", "academic_year",
		"exam_type", "exam_date", "max_marks", "marks_obtained", "internal_marks", "external_marks",
		"grade", "grade_points", "is_pass", "is_absent", "has_malpractice",
		"result_declared_at", "remarks", "processed_by", "created_at", "updated_at",
	}).AddRow(
		"res-1", "2025CS0001", "course-1", "Data Structures", "CS201", 3, "2025-26",
		"semester", nil, 100.0, marks, nil, nil,
		grade, points, pass, false, false,
		declaredAt, nil, "EMP-1", time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.student_id, r.course_id")).
		WithArgs("course-1", 3, "2025-26").
		WillReturnRows(rows)

	results, err := repo.DeclaredByCourse(context.Background(), "course-1", 3, "2025-26", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, *results[0].IsPass)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExaminationRepositoryPendingCount(t *testing.T) {
	db, mock, cleanup := newExaminationMock(t)
	defer cleanup()
	repo := NewExaminationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exam_results WHERE result_declared_at IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))

	count, err := repo.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

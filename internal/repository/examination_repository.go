package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-erp-api/internal/models"
)

// ExaminationRepository manages persistence for exam result records.
type ExaminationRepository struct {
	db *sqlx.DB
}

// NewExaminationRepository constructs an ExaminationRepository.
func NewExaminationRepository(db *sqlx.DB) *ExaminationRepository {
	return &ExaminationRepository{db: db}
}

const examResultColumns = `r.id, r.student_id, r.course_id, r.subject_name, r.subject_code, r.semester, r.academic_year,
        r.exam_type, r.exam_date, r.max_marks, r.marks_obtained, r.internal_marks, r.external_marks,
        r.grade, r.grade_points, r.is_pass, r.is_absent, r.has_malpractice,
        r.result_declared_at, r.remarks, r.processed_by, r.created_at, r.updated_at`

const examResultDetailJoin = `FROM exam_results r
        JOIN students s ON s.roll_no = r.student_id
        JOIN courses c ON c.id = r.course_id`

// Create inserts a new exam result record.
func (r *ExaminationRepository) Create(ctx context.Context, result *models.ExamResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
	const query = `INSERT INTO exam_results (id, student_id, course_id, subject_name, subject_code, semester, academic_year,
        exam_type, exam_date, max_marks, marks_obtained, internal_marks, external_marks,
        grade, grade_points, is_pass, is_absent, has_malpractice,
        result_declared_at, remarks, processed_by, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :subject_name, :subject_code, :semester, :academic_year,
        :exam_type, :exam_date, :max_marks, :marks_obtained, :internal_marks, :external_marks,
        :grade, :grade_points, :is_pass, :is_absent, :has_malpractice,
        :result_declared_at, :remarks, :processed_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create exam result: %w", err)
	}
	return nil
}

// FindByID fetches an exam result with student and course context.
func (r *ExaminationRepository) FindByID(ctx context.Context, id string) (*models.ExamResultDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name, c.course_name, c.course_code
        %s WHERE r.id = $1`, examResultColumns, examResultDetailJoin)
	var detail models.ExamResultDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Update persists result declaration fields.
func (r *ExaminationRepository) Update(ctx context.Context, result *models.ExamResult) error {
	result.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exam_results SET marks_obtained = :marks_obtained, internal_marks = :internal_marks,
        external_marks = :external_marks, grade = :grade, grade_points = :grade_points, is_pass = :is_pass,
        is_absent = :is_absent, has_malpractice = :has_malpractice, result_declared_at = :result_declared_at,
        remarks = :remarks, processed_by = :processed_by, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("update exam result: %w", err)
	}
	return nil
}

// List returns exam results matching the provided filters.
func (r *ExaminationRepository) List(ctx context.Context, filter models.ExamResultFilter) ([]models.ExamResultDetail, int, error) {
	base := examResultDetailJoin
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("r.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Semester != nil {
		conditions = append(conditions, fmt.Sprintf("r.semester = $%d", len(args)+1))
		args = append(args, *filter.Semester)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("r.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.ExamType != nil {
		conditions = append(conditions, fmt.Sprintf("r.exam_type = $%d", len(args)+1))
		args = append(args, *filter.ExamType)
	}
	if filter.Declared != nil {
		if *filter.Declared {
			conditions = append(conditions, "r.result_declared_at IS NOT NULL")
		} else {
			conditions = append(conditions, "r.result_declared_at IS NULL")
		}
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"exam_date":    "r.exam_date",
		"semester":     "r.semester",
		"subject_code": "r.subject_code",
		"created_at":   "r.created_at",
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "r.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name, c.course_name, c.course_code
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, examResultColumns, base, column, order, size, offset)

	var results []models.ExamResultDetail
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exam results: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count exam results: %w", err)
	}
	return results, total, nil
}

// StudentResults returns a student's records ordered for marksheets.
// Semester and academic year narrow the scope when provided.
func (r *ExaminationRepository) StudentResults(ctx context.Context, rollNo string, semester *int, academicYear string) ([]models.ExamResultDetail, error) {
	conditions := []string{"r.student_id = $1"}
	args := []interface{}{rollNo}

	if semester != nil {
		conditions = append(conditions, fmt.Sprintf("r.semester = $%d", len(args)+1))
		args = append(args, *semester)
	}
	if academicYear != "" {
		conditions = append(conditions, fmt.Sprintf("r.academic_year = $%d", len(args)+1))
		args = append(args, academicYear)
	}

	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name, c.course_name, c.course_code
        %s WHERE %s ORDER BY r.semester ASC, r.subject_code ASC`,
		examResultColumns, examResultDetailJoin, strings.Join(conditions, " AND "))

	var results []models.ExamResultDetail
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("student results: %w", err)
	}
	return results, nil
}

// DeclaredByCourse returns declared results for one course cohort, the
// input set for class performance aggregation.
func (r *ExaminationRepository) DeclaredByCourse(ctx context.Context, courseID string, semester int, academicYear string, examType *models.ExamType) ([]models.ExamResult, error) {
	conditions := []string{"r.course_id = $1", "r.semester = $2", "r.academic_year = $3", "r.result_declared_at IS NOT NULL"}
	args := []interface{}{courseID, semester, academicYear}

	if examType != nil {
		conditions = append(conditions, fmt.Sprintf("r.exam_type = $%d", len(args)+1))
		args = append(args, *examType)
	}

	query := fmt.Sprintf(`SELECT %s FROM exam_results r WHERE %s ORDER BY r.student_id ASC, r.subject_code ASC`,
		examResultColumns, strings.Join(conditions, " AND "))

	var results []models.ExamResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("declared results by course: %w", err)
	}
	return results, nil
}

// DeclaredDetails returns declared cohort results with student and
// course context, ordered for result sheet exports.
func (r *ExaminationRepository) DeclaredDetails(ctx context.Context, courseID string, semester int, academicYear string) ([]models.ExamResultDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name, c.course_name, c.course_code
        %s WHERE r.course_id = $1 AND r.semester = $2 AND r.academic_year = $3 AND r.result_declared_at IS NOT NULL
        ORDER BY r.student_id ASC, r.subject_code ASC`, examResultColumns, examResultDetailJoin)

	var results []models.ExamResultDetail
	if err := r.db.SelectContext(ctx, &results, query, courseID, semester, academicYear); err != nil {
		return nil, fmt.Errorf("declared result details: %w", err)
	}
	return results, nil
}

// PendingCount counts records awaiting result declaration.
func (r *ExaminationRepository) PendingCount(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM exam_results WHERE result_declared_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count pending results: %w", err)
	}
	return count, nil
}

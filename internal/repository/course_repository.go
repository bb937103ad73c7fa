package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-erp-api/internal/models"
)

// CourseRepository manages persistence for course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `c.id, c.course_code, c.course_name, c.degree_name, c.program_level, c.duration_years,
        c.fees_per_semester, c.total_seats, c.accepting_applications, c.active, c.created_at, c.updated_at`

// courseSeatSelect annotates courses with enrolled and available seats.
const courseSeatSelect = `, COALESCE(e.enrolled, 0) AS enrolled_students,
        GREATEST(c.total_seats - COALESCE(e.enrolled, 0), 0) AS available_seats
        FROM courses c
        LEFT JOIN (SELECT course_id, COUNT(*) AS enrolled FROM students WHERE active = TRUE GROUP BY course_id) e ON e.course_id = c.id`

// List returns courses with seat occupancy annotations.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ProgramLevel != nil {
		conditions = append(conditions, fmt.Sprintf("c.program_level = $%d", len(args)+1))
		args = append(args, *filter.ProgramLevel)
	}
	if filter.Accepting != nil {
		conditions = append(conditions, fmt.Sprintf("c.accepting_applications = $%d", len(args)+1))
		args = append(args, *filter.Accepting)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("c.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.course_name) LIKE $%d OR LOWER(c.course_code) LIKE $%d OR LOWER(c.degree_name) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"course_code": "c.course_code",
		"course_name": "c.course_name",
		"created_at":  "c.created_at",
	}
	if sortBy == "" {
		sortBy = "course_code"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "c.course_code"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT %s%s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		courseColumns, courseSeatSelect, where, column, order, size, offset)

	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM courses c WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a course with seat occupancy by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s%s WHERE c.id = $1`, courseColumns, courseSeatSelect)
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByCode fetches a course by its unique code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s%s WHERE LOWER(c.course_code) = LOWER($1)`, courseColumns, courseSeatSelect)
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, code); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByCode checks code uniqueness optionally excluding an ID.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE LOWER(course_code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, course_code, course_name, degree_name, program_level, duration_years,
        fees_per_semester, total_seats, accepting_applications, active, created_at, updated_at)
        VALUES (:id, :course_code, :course_name, :degree_name, :program_level, :duration_years,
        :fees_per_semester, :total_seats, :accepting_applications, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET course_code = :course_code, course_name = :course_name, degree_name = :degree_name,
        program_level = :program_level, duration_years = :duration_years, fees_per_semester = :fees_per_semester,
        total_seats = :total_seats, accepting_applications = :accepting_applications, active = :active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// CountActive counts active courses for dashboards.
func (r *CourseRepository) CountActive(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM courses WHERE active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count active courses: %w", err)
	}
	return count, nil
}

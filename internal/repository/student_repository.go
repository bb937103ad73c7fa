package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-erp-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `s.roll_no, s.first_name, s.last_name, s.date_of_birth, s.gender, s.email, s.phone,
        s.address_line, s.city, s.state, s.pincode, s.guardian_name, s.guardian_phone,
        s.course_id, s.admission_year, s.current_semester, s.application_id, s.password_hash,
        s.must_change_password, s.hostel_id, s.hostel_room, s.active, s.last_login, s.created_at, s.updated_at`

const studentDetailJoin = `FROM students s
        JOIN courses c ON c.id = s.course_id
        LEFT JOIN hostels h ON h.id = s.hostel_id`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := studentDetailJoin
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("s.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Semester != nil {
		conditions = append(conditions, fmt.Sprintf("s.current_semester = $%d", len(args)+1))
		args = append(args, *filter.Semester)
	}
	if filter.AdmissionYear != nil {
		conditions = append(conditions, fmt.Sprintf("s.admission_year = $%d", len(args)+1))
		args = append(args, *filter.AdmissionYear)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("s.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.first_name || ' ' || s.last_name) LIKE $%d OR LOWER(s.roll_no) LIKE $%d OR LOWER(s.email) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"roll_no":    "s.roll_no",
		"first_name": "s.first_name",
		"created_at": "s.created_at",
	}
	if sortBy == "" {
		sortBy = "roll_no"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.roll_no"
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

	query := fmt.Sprintf(`SELECT %s, c.course_name, c.course_code, c.degree_name, h.name AS hostel_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, studentColumns, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByRollNo fetches a student detail by roll number.
func (r *StudentRepository) FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, c.course_name, c.course_code, c.degree_name, h.name AS hostel_name
        %s WHERE s.roll_no = $1`, studentColumns, studentDetailJoin)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, rollNo); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByEmail fetches a student by email for login resolution.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s WHERE LOWER(s.email) = LOWER($1) LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// CountByCourseAndYear counts students admitted to a course in a year.
// Feeds roll number serial generation.
func (r *StudentRepository) CountByCourseAndYear(ctx context.Context, courseID string, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE course_id = $1 AND admission_year = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, year); err != nil {
		return 0, fmt.Errorf("count students by course and year: %w", err)
	}
	return count, nil
}

// CountActiveByCourse counts active students in a course, the enrolled side
// of the seat availability check.
func (r *StudentRepository) CountActiveByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE course_id = $1 AND active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return count, nil
}

// ActiveByCourseSemester lists active students of a course currently in the
// given semester, the target set for fee demand generation.
func (r *StudentRepository) ActiveByCourseSemester(ctx context.Context, courseID string, semester int) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s
        WHERE s.course_id = $1 AND s.current_semester = $2 AND s.active = TRUE
        ORDER BY s.roll_no ASC`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, courseID, semester); err != nil {
		return nil, fmt.Errorf("active students by course semester: %w", err)
	}
	return students, nil
}

// ExistsByEmail checks if a student with the given email exists.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student email: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (roll_no, first_name, last_name, date_of_birth, gender, email, phone,
        address_line, city, state, pincode, guardian_name, guardian_phone,
        course_id, admission_year, current_semester, application_id, password_hash,
        must_change_password, hostel_id, hostel_room, active, last_login, created_at, updated_at)
        VALUES (:roll_no, :first_name, :last_name, :date_of_birth, :gender, :email, :phone,
        :address_line, :city, :state, :pincode, :guardian_name, :guardian_phone,
        :course_id, :admission_year, :current_semester, :application_id, :password_hash,
        :must_change_password, :hostel_id, :hostel_room, :active, :last_login, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies contact and guardian fields of an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET email = :email, phone = :phone, address_line = :address_line,
        city = :city, state = :state, pincode = :pincode,
        guardian_name = :guardian_name, guardian_phone = :guardian_phone, updated_at = :updated_at
        WHERE roll_no = :roll_no`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// SetSemester moves a student to the given semester.
func (r *StudentRepository) SetSemester(ctx context.Context, rollNo string, semester int) error {
	const query = `UPDATE students SET current_semester = $2, updated_at = $3 WHERE roll_no = $1`
	if _, err := r.db.ExecContext(ctx, query, rollNo, semester, time.Now().UTC()); err != nil {
		return fmt.Errorf("set student semester: %w", err)
	}
	return nil
}

// SetHostel updates a student's hostel allocation. Nil values clear it.
func (r *StudentRepository) SetHostel(ctx context.Context, rollNo string, hostelID, room *string) error {
	const query = `UPDATE students SET hostel_id = $2, hostel_room = $3, updated_at = $4 WHERE roll_no = $1`
	if _, err := r.db.ExecContext(ctx, query, rollNo, hostelID, room, time.Now().UTC()); err != nil {
		return fmt.Errorf("set student hostel: %w", err)
	}
	return nil
}

// UpdatePassword stores a new password hash and clears the rotation flag.
func (r *StudentRepository) UpdatePassword(ctx context.Context, rollNo, passwordHash string) error {
	const query = `UPDATE students SET password_hash = $2, must_change_password = FALSE, updated_at = $3 WHERE roll_no = $1`
	if _, err := r.db.ExecContext(ctx, query, rollNo, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student password: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the most recent successful login.
func (r *StudentRepository) UpdateLastLogin(ctx context.Context, rollNo string, at time.Time) error {
	const query = `UPDATE students SET last_login = $2 WHERE roll_no = $1`
	if _, err := r.db.ExecContext(ctx, query, rollNo, at); err != nil {
		return fmt.Errorf("update student last login: %w", err)
	}
	return nil
}

// Deactivate marks a student as inactive.
func (r *StudentRepository) Deactivate(ctx context.Context, rollNo string) error {
	const query = `UPDATE students SET active = FALSE, updated_at = $2 WHERE roll_no = $1`
	if _, err := r.db.ExecContext(ctx, query, rollNo, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	return nil
}

// CountActive counts active students for dashboards.
func (r *StudentRepository) CountActive(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return count, nil
}

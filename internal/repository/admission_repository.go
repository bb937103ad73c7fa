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

// AdmissionRepository manages persistence for admission applications.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository constructs an AdmissionRepository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

const applicationColumns = `a.application_id, a.first_name, a.last_name, a.date_of_birth, a.gender, a.email, a.phone,
        a.address_line, a.city, a.state, a.pincode, a.guardian_name, a.guardian_phone, a.guardian_relation,
        a.course_id, a.tenth_percentage, a.twelfth_percentage, a.entrance_exam_score,
        a.documents, a.documents_required, a.documents_verified, a.password_hash,
        a.status, a.processed_by, a.student_id, a.remarks, a.rejection_reason, a.processed_on,
        a.applied_at, a.created_at, a.updated_at`

// List returns applications matching the provided filters.
func (r *AdmissionRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	base := "FROM admission_applications a JOIN courses c ON c.id = a.course_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("a.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM a.applied_at) = $%d", len(args)+1))
		args = append(args, *filter.Year)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(a.first_name || ' ' || a.last_name) LIKE $%d OR LOWER(a.email) LIKE $%d OR LOWER(a.application_id) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"applied_at":     "a.applied_at",
		"application_id": "a.application_id",
		"status":         "a.status",
	}
	if sortBy == "" {
		sortBy = "applied_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "a.applied_at"
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

	query := fmt.Sprintf(`SELECT %s, c.course_name, c.course_code
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, applicationColumns, base, column, order, size, offset)

	var applications []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return applications, total, nil
}

// FindByID fetches an application with course context by application ID.
func (r *AdmissionRepository) FindByID(ctx context.Context, applicationID string) (*models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s, c.course_name, c.course_code
        FROM admission_applications a
        JOIN courses c ON c.id = a.course_id
        WHERE a.application_id = $1`, applicationColumns)
	var detail models.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, applicationID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByEmail fetches an application by applicant email.
func (r *AdmissionRepository) FindByEmail(ctx context.Context, email string) (*models.AdmissionApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM admission_applications a WHERE LOWER(a.email) = LOWER($1) ORDER BY a.applied_at DESC LIMIT 1`, applicationColumns)
	var app models.AdmissionApplication
	if err := r.db.GetContext(ctx, &app, query, email); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByYear returns every application of an admission year, ordered
// for the register export.
func (r *AdmissionRepository) ListByYear(ctx context.Context, year int) ([]models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s, c.course_name, c.course_code
        FROM admission_applications a
        JOIN courses c ON c.id = a.course_id
        WHERE EXTRACT(YEAR FROM a.applied_at) = $1
        ORDER BY a.application_id ASC`, applicationColumns)
	var applications []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &applications, query, year); err != nil {
		return nil, fmt.Errorf("list applications by year: %w", err)
	}
	return applications, nil
}

// CountByYear counts applications submitted in the given calendar year.
// Feeds application ID serial generation.
func (r *AdmissionRepository) CountByYear(ctx context.Context, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM admission_applications WHERE EXTRACT(YEAR FROM applied_at) = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, year); err != nil {
		return 0, fmt.Errorf("count applications by year: %w", err)
	}
	return count, nil
}

// Create inserts a new application record.
func (r *AdmissionRepository) Create(ctx context.Context, app *models.AdmissionApplication) error {
	now := time.Now().UTC()
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	const query = `INSERT INTO admission_applications (application_id, first_name, last_name, date_of_birth, gender, email, phone,
        address_line, city, state, pincode, guardian_name, guardian_phone, guardian_relation,
        course_id, tenth_percentage, twelfth_percentage, entrance_exam_score,
        documents, documents_required, documents_verified, password_hash,
        status, processed_by, student_id, remarks, rejection_reason, processed_on, applied_at, created_at, updated_at)
        VALUES (:application_id, :first_name, :last_name, :date_of_birth, :gender, :email, :phone,
        :address_line, :city, :state, :pincode, :guardian_name, :guardian_phone, :guardian_relation,
        :course_id, :tenth_percentage, :twelfth_percentage, :entrance_exam_score,
        :documents, :documents_required, :documents_verified, :password_hash,
        :status, :processed_by, :student_id, :remarks, :rejection_reason, :processed_on, :applied_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// Update persists workflow changes to an application.
func (r *AdmissionRepository) Update(ctx context.Context, app *models.AdmissionApplication) error {
	app.UpdatedAt = time.Now().UTC()
	const query = `UPDATE admission_applications SET status = :status, processed_by = :processed_by, student_id = :student_id,
        remarks = :remarks, rejection_reason = :rejection_reason, processed_on = :processed_on,
        documents = :documents, documents_required = :documents_required, documents_verified = :documents_verified,
        updated_at = :updated_at
        WHERE application_id = :application_id`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return nil
}

// statusCountRow scans grouped status counts.
type statusCountRow struct {
	Status models.ApplicationStatus `db:"status"`
	Count  int                      `db:"count"`
}

// CountByStatus returns application counts grouped by workflow status.
func (r *AdmissionRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM admission_applications GROUP BY status`
	var rows []statusCountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	counts := make(map[models.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountSince counts applications submitted after the given instant.
func (r *AdmissionRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM admission_applications WHERE applied_at >= $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, since); err != nil {
		return 0, fmt.Errorf("count recent applications: %w", err)
	}
	return count, nil
}

// MonthlyApplications buckets applications by submission month within the
// window, feeding the enrollment chart.
func (r *AdmissionRepository) MonthlyApplications(ctx context.Context, from, to time.Time) ([]models.MonthlyCount, error) {
	const query = `SELECT to_char(date_trunc('month', applied_at), 'YYYY-MM') AS month, COUNT(*) AS count
        FROM admission_applications
        WHERE applied_at >= $1 AND applied_at < $2
        GROUP BY 1 ORDER BY 1`
	var rows []models.MonthlyCount
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("monthly applications: %w", err)
	}
	return rows, nil
}

// ExistsPendingByEmail reports whether an open application exists for the
// email, used to reject duplicate submissions.
func (r *AdmissionRepository) ExistsPendingByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM admission_applications
        WHERE LOWER(email) = LOWER($1) AND status IN ($2, $3, $4) LIMIT 1`
	var exists int
	err := r.db.GetContext(ctx, &exists, query, email,
		models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview, models.ApplicationStatusDocumentsPending)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check pending application: %w", err)
	}
	return true, nil
}

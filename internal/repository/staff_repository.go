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

// StaffRepository manages persistence for staff records.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `s.employee_id, s.first_name, s.last_name, s.email, s.phone, s.role, s.department,
        s.designation, s.password_hash, s.active, s.last_login, s.created_at, s.updated_at`

// List returns staff matching the provided filters.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("s.role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("s.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.first_name || ' ' || s.last_name) LIKE $%d OR LOWER(s.email) LIKE $%d OR LOWER(s.employee_id) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"employee_id": "s.employee_id",
		"first_name":  "s.first_name",
		"created_at":  "s.created_at",
	}
	if sortBy == "" {
		sortBy = "employee_id"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.employee_id"
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

	query := fmt.Sprintf(`SELECT %s FROM staff s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		staffColumns, where, column, order, size, offset)

	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM staff s WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	return staff, total, nil
}

// FindByEmployeeID fetches a staff member by employee ID.
func (r *StaffRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*models.Staff, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff s WHERE s.employee_id = $1`, staffColumns)
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, employeeID); err != nil {
		return nil, err
	}
	return &staff, nil
}

// FindByEmail fetches a staff member by email for login resolution.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff s WHERE LOWER(s.email) = LOWER($1) LIMIT 1`, staffColumns)
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, email); err != nil {
		return nil, err
	}
	return &staff, nil
}

// ExistsByEmail checks email uniqueness optionally excluding an employee ID.
func (r *StaffRepository) ExistsByEmail(ctx context.Context, email string, excludeEmployeeID string) (bool, error) {
	query := "SELECT 1 FROM staff WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeEmployeeID != "" {
		query += " AND employee_id <> $2"
		args = append(args, excludeEmployeeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check staff email: %w", err)
	}
	return true, nil
}

// CountByYearAndRole counts staff joined in a year with the given role.
// Feeds employee ID serial generation.
func (r *StaffRepository) CountByYearAndRole(ctx context.Context, year int, role models.StaffRole) (int, error) {
	const query = `SELECT COUNT(*) FROM staff WHERE EXTRACT(YEAR FROM created_at) = $1 AND role = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, year, role); err != nil {
		return 0, fmt.Errorf("count staff by year and role: %w", err)
	}
	return count, nil
}

// Create inserts a new staff record.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	now := time.Now().UTC()
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now
	}
	staff.UpdatedAt = now
	const query = `INSERT INTO staff (employee_id, first_name, last_name, email, phone, role, department,
        designation, password_hash, active, last_login, created_at, updated_at)
        VALUES (:employee_id, :first_name, :last_name, :email, :phone, :role, :department,
        :designation, :password_hash, :active, :last_login, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update modifies an existing staff record.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET first_name = :first_name, last_name = :last_name, email = :email,
        phone = :phone, role = :role, department = :department, designation = :designation,
        active = :active, updated_at = :updated_at
        WHERE employee_id = :employee_id`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *StaffRepository) UpdatePassword(ctx context.Context, employeeID, passwordHash string) error {
	const query = `UPDATE staff SET password_hash = $2, updated_at = $3 WHERE employee_id = $1`
	if _, err := r.db.ExecContext(ctx, query, employeeID, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update staff password: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the most recent successful login.
func (r *StaffRepository) UpdateLastLogin(ctx context.Context, employeeID string, at time.Time) error {
	const query = `UPDATE staff SET last_login = $2 WHERE employee_id = $1`
	if _, err := r.db.ExecContext(ctx, query, employeeID, at); err != nil {
		return fmt.Errorf("update staff last login: %w", err)
	}
	return nil
}

package models

import "time"

// StaffRole represents the available staff roles for the RBAC system.
// Admin outranks staff, staff outranks faculty.
type StaffRole string

const (
	RoleAdmin   StaffRole = "admin"
	RoleStaff   StaffRole = "staff"
	RoleFaculty StaffRole = "faculty"
)

// Valid reports whether the role is one of the staff roles.
func (r StaffRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleFaculty:
		return true
	}
	return false
}

// RoleStudent is the portal role issued to student principals. It is not a
// staff role and never appears in the staff table.
const RoleStudent = "student"

// RoleApplicant is the portal role issued to admission applicants.
const RoleApplicant = "applicant"

// Staff represents an employee record. EmployeeID is the natural key,
// composed of joining year, a role prefix and a serial.
type Staff struct {
	EmployeeID   string     `db:"employee_id" json:"employee_id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	Role         StaffRole  `db:"role" json:"role"`
	Department   string     `db:"department" json:"department"`
	Designation  string     `db:"designation" json:"designation"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures filtering criteria for listing staff.
type StaffFilter struct {
	Role      *StaffRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*models.Staff, error)
	ExistsByEmail(ctx context.Context, email string, excludeEmployeeID string) (bool, error)
	CountByYearAndRole(ctx context.Context, year int, role models.StaffRole) (int, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) error
	UpdatePassword(ctx context.Context, employeeID, passwordHash string) error
}

// CreateStaffRequest captures fields for onboarding an employee.
type CreateStaffRequest struct {
	FirstName   string           `json:"first_name" validate:"required"`
	LastName    string           `json:"last_name" validate:"required"`
	Email       string           `json:"email" validate:"required,email"`
	Phone       string           `json:"phone" validate:"required,min=10"`
	Role        models.StaffRole `json:"role" validate:"required,oneof=admin staff faculty"`
	Department  string           `json:"department" validate:"required"`
	Designation string           `json:"designation" validate:"required"`
	Password    string           `json:"password" validate:"required,min=8"`
}

// UpdateStaffRequest modifies employee fields. The employee identifier is
// immutable; a role change does not rewrite its historical prefix.
type UpdateStaffRequest struct {
	FirstName   string           `json:"first_name" validate:"required"`
	LastName    string           `json:"last_name" validate:"required"`
	Email       string           `json:"email" validate:"required,email"`
	Phone       string           `json:"phone" validate:"required,min=10"`
	Role        models.StaffRole `json:"role" validate:"required,oneof=admin staff faculty"`
	Department  string           `json:"department" validate:"required"`
	Designation string           `json:"designation" validate:"required"`
	Active      bool             `json:"active"`
}

// StaffService handles employee management workflows.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService creates a new staff service.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated staff records.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error) {
	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return staff, pagination, nil
}

// Get returns an employee by identifier.
func (s *StaffService) Get(ctx context.Context, employeeID string) (*models.Staff, error) {
	staff, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return staff, nil
}

// Create onboards an employee, generating the employee identifier from
// the joining year, the role prefix and a per-year serial.
func (s *StaffService) Create(ctx context.Context, req CreateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.ExistsByEmail(ctx, email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check staff email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a staff member with this email already exists")
	}

	year := time.Now().UTC().Year()
	serial, err := s.repo.CountByYearAndRole(ctx, year, req.Role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate employee id")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	staff := &models.Staff{
		EmployeeID:   fmt.Sprintf("%d%s%04d", year, rolePrefix(req.Role), serial+1),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		Phone:        req.Phone,
		Role:         req.Role,
		Department:   req.Department,
		Designation:  req.Designation,
		PasswordHash: string(hash),
		Active:       true,
	}

	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
	}

	s.logger.Info("staff member onboarded",
		zap.String("employee_id", staff.EmployeeID),
		zap.String("role", string(staff.Role)))

	return staff, nil
}

// Update modifies an existing employee record.
func (s *StaffService) Update(ctx context.Context, employeeID string, req UpdateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	staff, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != staff.Email {
		exists, err := s.repo.ExistsByEmail(ctx, email, employeeID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check staff email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a staff member with this email already exists")
		}
	}

	staff.FirstName = req.FirstName
	staff.LastName = req.LastName
	staff.Email = email
	staff.Phone = req.Phone
	staff.Role = req.Role
	staff.Department = req.Department
	staff.Designation = req.Designation
	staff.Active = req.Active

	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff member")
	}
	return staff, nil
}

// ResetPassword issues a temporary password derived from the employee's
// phone number and returns it for out-of-band delivery.
func (s *StaffService) ResetPassword(ctx context.Context, employeeID string) (string, error) {
	staff, err := s.Get(ctx, employeeID)
	if err != nil {
		return "", err
	}

	temp := temporaryPassword(staff.Phone)
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, employeeID, string(hash)); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset password")
	}

	s.logger.Info("staff password reset", zap.String("employee_id", employeeID))

	return temp, nil
}

// rolePrefix maps a staff role onto the employee identifier prefix.
func rolePrefix(role models.StaffRole) string {
	switch role {
	case models.RoleAdmin:
		return "ADM"
	case models.RoleFaculty:
		return "FAC"
	default:
		return "STF"
	}
}

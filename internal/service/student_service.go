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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error)
	CountByCourseAndYear(ctx context.Context, courseID string, year int) (int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SetSemester(ctx context.Context, rollNo string, semester int) error
	Deactivate(ctx context.Context, rollNo string) error
}

type studentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

// CreateStudentRequest registers a student outside the admission workflow,
// typically for transfers or records migrated from the legacy system.
type CreateStudentRequest struct {
	FirstName     string        `json:"first_name" validate:"required"`
	LastName      string        `json:"last_name" validate:"required"`
	DateOfBirth   time.Time     `json:"date_of_birth" validate:"required"`
	Gender        models.Gender `json:"gender" validate:"required,oneof=male female other"`
	Email         string        `json:"email" validate:"required,email"`
	Phone         string        `json:"phone" validate:"required,min=10"`
	AddressLine   string        `json:"address_line" validate:"required"`
	City          string        `json:"city" validate:"required"`
	State         string        `json:"state" validate:"required"`
	Pincode       string        `json:"pincode" validate:"required"`
	GuardianName  string        `json:"guardian_name" validate:"required"`
	GuardianPhone string        `json:"guardian_phone" validate:"required"`
	CourseID      string        `json:"course_id" validate:"required"`
	AdmissionYear int           `json:"admission_year" validate:"omitempty,gte=2000"`
	Password      string        `json:"password" validate:"required,min=6"`
}

// UpdateStudentRequest holds the mutable contact fields of a student.
type UpdateStudentRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,min=10"`
	AddressLine   string `json:"address_line" validate:"required"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required"`
	Pincode       string `json:"pincode" validate:"required"`
	GuardianName  string `json:"guardian_name" validate:"required"`
	GuardianPhone string `json:"guardian_phone" validate:"required"`
}

// StudentService handles student record use-cases.
type StudentService struct {
	repo      studentRepository
	courses   studentCourseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, courses studentCourseReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// ProvisionFromApplication creates the student record behind an approved
// admission application and returns it with the temporary password.
func (s *StudentService) ProvisionFromApplication(ctx context.Context, event ApplicationApproved) (*models.Student, string, error) {
	app := event.Application

	exists, err := s.repo.ExistsByEmail(ctx, app.Email)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student email")
	}
	if exists {
		return nil, "", appErrors.Clone(appErrors.ErrConflict, "a student with this email already exists")
	}

	year := event.ApprovedAt.Year()
	serial, err := s.repo.CountByCourseAndYear(ctx, app.CourseID, year)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate roll number")
	}

	tempPassword := temporaryPassword(app.ApplicationID)
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash temporary password")
	}

	applicationID := app.ApplicationID
	student := &models.Student{
		RollNo:             fmt.Sprintf("%d%s%04d", year, event.CourseCode, serial+1),
		FirstName:          app.FirstName,
		LastName:           app.LastName,
		DateOfBirth:        app.DateOfBirth,
		Gender:             app.Gender,
		Email:              app.Email,
		Phone:              app.Phone,
		AddressLine:        app.AddressLine,
		City:               app.City,
		State:              app.State,
		Pincode:            app.Pincode,
		GuardianName:       app.GuardianName,
		GuardianPhone:      app.GuardianPhone,
		CourseID:           app.CourseID,
		AdmissionYear:      year,
		CurrentSemester:    1,
		ApplicationID:      &applicationID,
		PasswordHash:       string(hash),
		MustChangePassword: true,
		Active:             true,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student record")
	}

	s.logger.Info("student provisioned",
		zap.String("roll_no", student.RollNo),
		zap.String("application_id", applicationID))

	return student, tempPassword, nil
}

// Create registers a student directly, bypassing the admission pipeline.
// The roll number follows the same year/course/serial scheme as approved
// applications, so direct registrations share the cohort sequence.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course is not active")
	}
	if course.AvailableSeats <= 0 {
		return nil, appErrors.Clone(appErrors.ErrNoSeatsAvailable, "no available seats in the selected course")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this email already exists")
	}

	year := req.AdmissionYear
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	serial, err := s.repo.CountByCourseAndYear(ctx, req.CourseID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate roll number")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		RollNo:             fmt.Sprintf("%d%s%04d", year, course.CourseCode, serial+1),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		DateOfBirth:        req.DateOfBirth,
		Gender:             req.Gender,
		Email:              email,
		Phone:              req.Phone,
		AddressLine:        req.AddressLine,
		City:               req.City,
		State:              req.State,
		Pincode:            req.Pincode,
		GuardianName:       req.GuardianName,
		GuardianPhone:      req.GuardianPhone,
		CourseID:           req.CourseID,
		AdmissionYear:      year,
		CurrentSemester:    1,
		PasswordHash:       string(hash),
		MustChangePassword: true,
		Active:             true,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student record")
	}

	s.logger.Info("student registered",
		zap.String("roll_no", student.RollNo),
		zap.String("course_id", req.CourseID))

	return student, nil
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns detailed student information.
func (s *StudentService) Get(ctx context.Context, rollNo string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Update modifies contact and guardian details.
func (s *StudentService) Update(ctx context.Context, rollNo string, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	detail, err := s.repo.FindByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student := detail.Student
	student.Email = req.Email
	student.Phone = req.Phone
	student.AddressLine = req.AddressLine
	student.City = req.City
	student.State = req.State
	student.Pincode = req.Pincode
	student.GuardianName = req.GuardianName
	student.GuardianPhone = req.GuardianPhone

	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	detail.Student = student
	return detail, nil
}

// Promote moves a student to the next semester, bounded by twice the
// course duration in years.
func (s *StudentService) Promote(ctx context.Context, rollNo string) (*models.StudentDetail, error) {
	detail, err := s.repo.FindByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !detail.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not active")
	}

	course, err := s.courses.FindByID(ctx, detail.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	maxSemester := course.DurationYears * 2
	if detail.CurrentSemester >= maxSemester {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("student is already in the final semester (%d)", maxSemester))
	}

	next := detail.CurrentSemester + 1
	if err := s.repo.SetSemester(ctx, rollNo, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote student")
	}

	s.logger.Info("student promoted",
		zap.String("roll_no", rollNo),
		zap.Int("semester", next))

	detail.CurrentSemester = next
	return detail, nil
}

// Deactivate marks a student inactive, releasing their course seat.
func (s *StudentService) Deactivate(ctx context.Context, rollNo string) error {
	if _, err := s.repo.FindByRollNo(ctx, rollNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Deactivate(ctx, rollNo); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	return nil
}

// temporaryPassword derives the first-login password from the last four
// characters of the application ID.
func temporaryPassword(applicationID string) string {
	suffix := applicationID
	if len(applicationID) > 4 {
		suffix = applicationID[len(applicationID)-4:]
	}
	return "temp" + suffix
}

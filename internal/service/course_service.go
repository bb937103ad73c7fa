package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
	FindByCode(ctx context.Context, code string) (*models.CourseDetail, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	CountActive(ctx context.Context) (int, error)
}

// CreateCourseRequest captures fields for opening a new programme.
type CreateCourseRequest struct {
	CourseCode            string              `json:"course_code" validate:"required,alphanum,max=6"`
	CourseName            string              `json:"course_name" validate:"required"`
	DegreeName            string              `json:"degree_name" validate:"required"`
	ProgramLevel          models.ProgramLevel `json:"program_level" validate:"required,oneof=undergraduate postgraduate diploma"`
	DurationYears         int                 `json:"duration_years" validate:"required,gte=1,lte=6"`
	FeesPerSemester       float64             `json:"fees_per_semester" validate:"gte=0"`
	TotalSeats            int                 `json:"total_seats" validate:"required,gte=1"`
	AcceptingApplications bool                `json:"accepting_applications"`
}

// UpdateCourseRequest modifies programme fields.
type UpdateCourseRequest struct {
	CourseName            string              `json:"course_name" validate:"required"`
	DegreeName            string              `json:"degree_name" validate:"required"`
	ProgramLevel          models.ProgramLevel `json:"program_level" validate:"required,oneof=undergraduate postgraduate diploma"`
	DurationYears         int                 `json:"duration_years" validate:"required,gte=1,lte=6"`
	FeesPerSemester       float64             `json:"fees_per_semester" validate:"gte=0"`
	TotalSeats            int                 `json:"total_seats" validate:"required,gte=1"`
	AcceptingApplications bool                `json:"accepting_applications"`
	Active                bool                `json:"active"`
}

// CourseService handles programme catalogue workflows.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated courses with seat occupancy.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
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
	return courses, pagination, nil
}

// Get returns a course by identifier.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// GetByCode returns a course by its short code.
func (s *CourseService) GetByCode(ctx context.Context, code string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create opens a new programme ensuring code uniqueness. The course code
// feeds roll number generation and is normalised to upper case.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	req.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))

	exists, err := s.repo.ExistsByCode(ctx, req.CourseCode, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	}

	course := &models.Course{
		CourseCode:            req.CourseCode,
		CourseName:            req.CourseName,
		DegreeName:            req.DegreeName,
		ProgramLevel:          req.ProgramLevel,
		DurationYears:         req.DurationYears,
		FeesPerSemester:       req.FeesPerSemester,
		TotalSeats:            req.TotalSeats,
		AcceptingApplications: req.AcceptingApplications,
		Active:                true,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("course_code", course.CourseCode))

	return course, nil
}

// Update modifies an existing programme. Seats cannot shrink below the
// current enrolment.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TotalSeats < detail.EnrolledStudents {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("total seats cannot be below current enrolment (%d)", detail.EnrolledStudents))
	}

	course := detail.Course
	course.CourseName = req.CourseName
	course.DegreeName = req.DegreeName
	course.ProgramLevel = req.ProgramLevel
	course.DurationYears = req.DurationYears
	course.FeesPerSemester = req.FeesPerSemester
	course.TotalSeats = req.TotalSeats
	course.AcceptingApplications = req.AcceptingApplications
	course.Active = req.Active

	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return &course, nil
}

// SetAccepting toggles whether a programme accepts new applications.
func (s *CourseService) SetAccepting(ctx context.Context, id string, accepting bool) (*models.Course, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	course := detail.Course
	course.AcceptingApplications = accepting

	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.logger.Info("course admission window changed",
		zap.String("course_id", course.ID),
		zap.Bool("accepting", accepting))

	return &course, nil
}

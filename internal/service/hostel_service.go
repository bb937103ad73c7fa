package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type hostelRepository interface {
	List(ctx context.Context, hostelType *models.HostelType, activeOnly bool) ([]models.Hostel, error)
	FindByID(ctx context.Context, id string) (*models.Hostel, error)
	Create(ctx context.Context, hostel *models.Hostel) error
	Update(ctx context.Context, hostel *models.Hostel) error
	AdjustOccupancy(ctx context.Context, id string, delta int) error
	Occupancy(ctx context.Context) ([]models.HostelOccupancy, error)
}

type hostelStudentRepository interface {
	FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error)
	SetHostel(ctx context.Context, rollNo string, hostelID, room *string) error
}

// CreateHostelRequest captures fields for opening a hostel block.
type CreateHostelRequest struct {
	Name         string            `json:"name" validate:"required"`
	Type         models.HostelType `json:"type" validate:"required,oneof=boys girls"`
	WardenName   string            `json:"warden_name" validate:"required"`
	ContactPhone string            `json:"contact_phone" validate:"required,min=10"`
	TotalRooms   int               `json:"total_rooms" validate:"required,gte=1"`
	BedsPerRoom  int               `json:"beds_per_room" validate:"required,gte=1"`
}

// UpdateHostelRequest modifies a hostel block.
type UpdateHostelRequest struct {
	Name         string            `json:"name" validate:"required"`
	Type         models.HostelType `json:"type" validate:"required,oneof=boys girls"`
	WardenName   string            `json:"warden_name" validate:"required"`
	ContactPhone string            `json:"contact_phone" validate:"required,min=10"`
	TotalRooms   int               `json:"total_rooms" validate:"required,gte=1"`
	BedsPerRoom  int               `json:"beds_per_room" validate:"required,gte=1"`
	Active       bool              `json:"active"`
}

// AllocateRequest places a student in a hostel room.
type AllocateRequest struct {
	HostelID  string `json:"hostel_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Room      string `json:"room" validate:"required"`
}

// HostelService owns hostel blocks and student bed allocation.
type HostelService struct {
	repo      hostelRepository
	students  hostelStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHostelService creates a new hostel service.
func NewHostelService(repo hostelRepository, students hostelStudentRepository, validate *validator.Validate, logger *zap.Logger) *HostelService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostelService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns hostel blocks, optionally filtered by type.
func (s *HostelService) List(ctx context.Context, hostelType *models.HostelType, activeOnly bool) ([]models.Hostel, error) {
	hostels, err := s.repo.List(ctx, hostelType, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list hostels")
	}
	return hostels, nil
}

// Get returns one hostel block.
func (s *HostelService) Get(ctx context.Context, id string) (*models.Hostel, error) {
	hostel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hostel not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hostel")
	}
	return hostel, nil
}

// Create opens a hostel block.
func (s *HostelService) Create(ctx context.Context, req CreateHostelRequest) (*models.Hostel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hostel payload")
	}

	hostel := &models.Hostel{
		Name:         req.Name,
		Type:         req.Type,
		WardenName:   req.WardenName,
		ContactPhone: req.ContactPhone,
		TotalRooms:   req.TotalRooms,
		BedsPerRoom:  req.BedsPerRoom,
		Active:       true,
	}

	if err := s.repo.Create(ctx, hostel); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create hostel")
	}

	s.logger.Info("hostel created", zap.String("hostel_id", hostel.ID), zap.String("name", hostel.Name))
	return hostel, nil
}

// Update modifies a hostel block. Capacity cannot shrink below the beds
// currently occupied.
func (s *HostelService) Update(ctx context.Context, id string, req UpdateHostelRequest) (*models.Hostel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hostel payload")
	}

	hostel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TotalRooms*req.BedsPerRoom < hostel.OccupiedBeds {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("capacity cannot be below occupied beds (%d)", hostel.OccupiedBeds))
	}

	hostel.Name = req.Name
	hostel.Type = req.Type
	hostel.WardenName = req.WardenName
	hostel.ContactPhone = req.ContactPhone
	hostel.TotalRooms = req.TotalRooms
	hostel.BedsPerRoom = req.BedsPerRoom
	hostel.Active = req.Active

	if err := s.repo.Update(ctx, hostel); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update hostel")
	}
	return hostel, nil
}

// Allocate places a student in a hostel room, reserving a bed.
func (s *HostelService) Allocate(ctx context.Context, req AllocateRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}

	student, err := s.students.FindByRollNo(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not active")
	}
	if student.HostelID != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already has a hostel allocation")
	}

	hostel, err := s.Get(ctx, req.HostelID)
	if err != nil {
		return nil, err
	}
	if !hostel.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "hostel is not active")
	}
	if hostel.Type == models.HostelTypeBoys && student.Gender != models.GenderMale {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "this hostel admits male students only")
	}
	if hostel.Type == models.HostelTypeGirls && student.Gender != models.GenderFemale {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "this hostel admits female students only")
	}

	// The conditional increment is the capacity guard; losing the race
	// surfaces as no rows updated.
	if err := s.repo.AdjustOccupancy(ctx, req.HostelID, 1); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no beds available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve a bed")
	}

	if err := s.students.SetHostel(ctx, req.StudentID, &req.HostelID, &req.Room); err != nil {
		if releaseErr := s.repo.AdjustOccupancy(ctx, req.HostelID, -1); releaseErr != nil {
			s.logger.Warn("failed to release bed after allocation failure",
				zap.String("hostel_id", req.HostelID), zap.Error(releaseErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate hostel")
	}

	student.HostelID = &req.HostelID
	student.HostelRoom = &req.Room
	student.HostelName = &hostel.Name

	s.logger.Info("hostel allocated",
		zap.String("student_id", req.StudentID),
		zap.String("hostel_id", req.HostelID),
		zap.String("room", req.Room))

	return student, nil
}

// Vacate releases a student's bed and clears the allocation.
func (s *HostelService) Vacate(ctx context.Context, rollNo string) error {
	student, err := s.students.FindByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.HostelID == nil {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "student has no hostel allocation")
	}

	hostelID := *student.HostelID
	if err := s.students.SetHostel(ctx, rollNo, nil, nil); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear allocation")
	}

	if err := s.repo.AdjustOccupancy(ctx, hostelID, -1); err != nil {
		s.logger.Warn("failed to release bed on vacate",
			zap.String("hostel_id", hostelID), zap.Error(err))
	}

	s.logger.Info("hostel vacated",
		zap.String("student_id", rollNo),
		zap.String("hostel_id", hostelID))

	return nil
}

// OccupancyStats reports per-hostel bed utilisation.
func (s *HostelService) OccupancyStats(ctx context.Context) ([]models.HostelOccupancy, error) {
	occupancy, err := s.repo.Occupancy(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occupancy")
	}
	return occupancy, nil
}

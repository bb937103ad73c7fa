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

type admissionRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	FindByID(ctx context.Context, applicationID string) (*models.ApplicationDetail, error)
	CountByYear(ctx context.Context, year int) (int, error)
	Create(ctx context.Context, app *models.AdmissionApplication) error
	Update(ctx context.Context, app *models.AdmissionApplication) error
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	ExistsPendingByEmail(ctx context.Context, email string) (bool, error)
}

type admissionCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

// ApplicationApproved carries the approved application to the student
// provisioning side. The admission workflow emits it once per approval.
type ApplicationApproved struct {
	Application models.AdmissionApplication
	CourseCode  string
	ApprovedBy  string
	ApprovedAt  time.Time
}

// studentProvisioner turns an approved application into a student record.
// Implemented by StudentService.
type studentProvisioner interface {
	ProvisionFromApplication(ctx context.Context, event ApplicationApproved) (*models.Student, string, error)
}

type admissionAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// admissionNotifier delivers applicant-facing mail. Implemented by
// NotificationService; sends never fail the workflow.
type admissionNotifier interface {
	ApplicationSubmitted(ctx context.Context, app *models.AdmissionApplication, courseName string)
	AdmissionApproved(ctx context.Context, app *models.AdmissionApplication, rollNo, tempPassword string)
	AdmissionDeclined(ctx context.Context, app *models.AdmissionApplication, reason string)
	DocumentsRequested(ctx context.Context, app *models.AdmissionApplication, documents []string)
}

// AdmissionConfig holds the eligibility rules for new applications.
type AdmissionConfig struct {
	MinAge            int
	MaxAge            int
	MinTenthPercent   float64
	MinTwelfthPercent float64
	RequiredDocuments []string
}

// SubmitApplicationRequest is the public application payload.
type SubmitApplicationRequest struct {
	FirstName         string        `json:"first_name" validate:"required"`
	LastName          string        `json:"last_name" validate:"required"`
	DateOfBirth       time.Time     `json:"date_of_birth" validate:"required"`
	Gender            models.Gender `json:"gender" validate:"required,oneof=male female other"`
	Email             string        `json:"email" validate:"required,email"`
	Phone             string        `json:"phone" validate:"required,min=10"`
	AddressLine       string        `json:"address_line" validate:"required"`
	City              string        `json:"city" validate:"required"`
	State             string        `json:"state" validate:"required"`
	Pincode           string        `json:"pincode" validate:"required"`
	GuardianName      string        `json:"guardian_name" validate:"required"`
	GuardianPhone     string        `json:"guardian_phone" validate:"required"`
	GuardianRelation  string        `json:"guardian_relation" validate:"required"`
	CourseID          string        `json:"course_id" validate:"required"`
	TenthPercentage   float64       `json:"tenth_percentage" validate:"required,gte=0,lte=100"`
	TwelfthPercentage *float64      `json:"twelfth_percentage" validate:"omitempty,gte=0,lte=100"`
	EntranceExamScore *float64      `json:"entrance_exam_score" validate:"omitempty,gte=0"`
	Documents         []string      `json:"documents"`
	Password          string        `json:"password" validate:"required,min=6"`
}

// ApproveApplicationRequest carries optional approval remarks.
type ApproveApplicationRequest struct {
	Remarks *string `json:"remarks"`
}

// DeclineApplicationRequest requires an explicit reason.
type DeclineApplicationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RequestDocumentsRequest names the documents still missing.
type RequestDocumentsRequest struct {
	Documents []string `json:"documents" validate:"required,min=1"`
	Remarks   *string  `json:"remarks"`
}

// VerifyDocumentRequest marks one document of the checklist.
type VerifyDocumentRequest struct {
	Document string `json:"document" validate:"required"`
	Verified bool   `json:"verified"`
}

// ApprovalResult returns the outcome of an approval, including the
// provisioned student credentials handed to the applicant.
type ApprovalResult struct {
	Application       *models.ApplicationDetail `json:"application"`
	RollNo            string                    `json:"roll_no"`
	TemporaryPassword string                    `json:"temporary_password"`
}

// AdmissionService orchestrates the admission application workflow.
type AdmissionService struct {
	repo        admissionRepository
	courses     admissionCourseReader
	provisioner studentProvisioner
	audit       admissionAuditRepository
	notifier    admissionNotifier
	validator   *validator.Validate
	logger      *zap.Logger
	config      AdmissionConfig
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(repo admissionRepository, courses admissionCourseReader, provisioner studentProvisioner, audit admissionAuditRepository, notifier admissionNotifier, validate *validator.Validate, logger *zap.Logger, config AdmissionConfig) *AdmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AdmissionService{
		repo:        repo,
		courses:     courses,
		provisioner: provisioner,
		audit:       audit,
		notifier:    notifier,
		validator:   validate,
		logger:      logger,
		config:      config,
	}
}

// CheckEligibility screens a candidate without creating an application.
func (s *AdmissionService) CheckEligibility(dateOfBirth time.Time, tenthPercent float64, twelfthPercent *float64) models.EligibilityReport {
	report := models.EligibilityReport{Eligible: true}

	age := ageAt(dateOfBirth, time.Now().UTC())
	if age < s.config.MinAge || age > s.config.MaxAge {
		report.Eligible = false
		report.Reasons = append(report.Reasons, fmt.Sprintf("age must be between %d and %d years", s.config.MinAge, s.config.MaxAge))
	}
	if tenthPercent < s.config.MinTenthPercent {
		report.Eligible = false
		report.Reasons = append(report.Reasons, fmt.Sprintf("10th percentage must be at least %.0f%%", s.config.MinTenthPercent))
	}
	if twelfthPercent == nil {
		report.Eligible = false
		report.Reasons = append(report.Reasons, "12th percentage is required")
	} else if *twelfthPercent < s.config.MinTwelfthPercent {
		report.Eligible = false
		report.Reasons = append(report.Reasons, fmt.Sprintf("12th percentage must be at least %.0f%%", s.config.MinTwelfthPercent))
	}
	return report
}

// Submit registers a new application after the eligibility screen.
func (s *AdmissionService) Submit(ctx context.Context, req SubmitApplicationRequest) (*models.ApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	if report := s.CheckEligibility(req.DateOfBirth, req.TenthPercentage, req.TwelfthPercentage); !report.Eligible {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "not eligible: "+strings.Join(report.Reasons, "; "))
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active || !course.AcceptingApplications {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course is not accepting applications")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	pending, err := s.repo.ExistsPendingByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing applications")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an application with this email is already in progress")
	}

	year := time.Now().UTC().Year()
	serial, err := s.repo.CountByYear(ctx, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate application id")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	app := &models.AdmissionApplication{
		ApplicationID:     fmt.Sprintf("ADM%d%06d", year, serial+1),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		DateOfBirth:       req.DateOfBirth,
		Gender:            req.Gender,
		Email:             email,
		Phone:             req.Phone,
		AddressLine:       req.AddressLine,
		City:              req.City,
		State:             req.State,
		Pincode:           req.Pincode,
		GuardianName:      req.GuardianName,
		GuardianPhone:     req.GuardianPhone,
		GuardianRelation:  req.GuardianRelation,
		CourseID:          req.CourseID,
		TenthPercentage:   req.TenthPercentage,
		TwelfthPercentage: req.TwelfthPercentage,
		EntranceExamScore: req.EntranceExamScore,
		Documents:         models.DocumentList(req.Documents),
		DocumentsRequired: models.DocumentList(s.config.RequiredDocuments),
		DocumentsVerified: unverifiedChecklist(s.config.RequiredDocuments),
		PasswordHash:      string(hash),
		Status:            models.ApplicationStatusSubmitted,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.logger.Info("application submitted",
		zap.String("application_id", app.ApplicationID),
		zap.String("course_id", app.CourseID))

	s.notifier.ApplicationSubmitted(ctx, app, course.CourseName)

	detail := &models.ApplicationDetail{
		AdmissionApplication: *app,
		CourseName:           course.CourseName,
		CourseCode:           course.CourseCode,
	}
	return detail, nil
}

// Get returns one application.
func (s *AdmissionService) Get(ctx context.Context, applicationID string) (*models.ApplicationDetail, error) {
	app, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}
	return app, nil
}

// List returns applications with pagination.
func (s *AdmissionService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, *models.Pagination, error) {
	applications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return applications, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Approve accepts an application, provisions the student record and
// returns the issued credentials.
func (s *AdmissionService) Approve(ctx context.Context, applicationID, staffID string, req ApproveApplicationRequest) (*ApprovalResult, error) {
	app, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}

	switch app.Status {
	case models.ApplicationStatusApproved:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application is already approved")
	case models.ApplicationStatusDeclined:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application has been declined")
	}

	course, err := s.courses.FindByID(ctx, app.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.AvailableSeats <= 0 {
		return nil, appErrors.Clone(appErrors.ErrNoSeatsAvailable, "no available seats in the selected course")
	}

	now := time.Now().UTC()
	event := ApplicationApproved{
		Application: app.AdmissionApplication,
		CourseCode:  course.CourseCode,
		ApprovedBy:  staffID,
		ApprovedAt:  now,
	}

	student, tempPassword, err := s.provisioner.ProvisionFromApplication(ctx, event)
	if err != nil {
		return nil, err
	}

	app.Status = models.ApplicationStatusApproved
	app.ProcessedBy = &staffID
	app.StudentID = &student.RollNo
	app.Remarks = req.Remarks
	app.ProcessedOn = &now

	if err := s.repo.Update(ctx, &app.AdmissionApplication); err != nil {
		// The student record exists but the application still shows the
		// old status; surface the conflict for manual reconciliation.
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student created but application update failed")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &staffID,
		Action:      models.AuditActionApplicationApprove,
		Resource:    "admission_application",
		ResourceID:  &app.ApplicationID,
		NewValues:   []byte(fmt.Sprintf(`{"student_id":%q}`, student.RollNo)),
	}); err != nil {
		s.logger.Warn("failed to record approval audit log", zap.Error(err))
	}

	s.logger.Info("application approved",
		zap.String("application_id", app.ApplicationID),
		zap.String("roll_no", student.RollNo),
		zap.String("approved_by", staffID))

	s.notifier.AdmissionApproved(ctx, &app.AdmissionApplication, student.RollNo, tempPassword)

	return &ApprovalResult{
		Application:       app,
		RollNo:            student.RollNo,
		TemporaryPassword: tempPassword,
	}, nil
}

// Decline rejects an application with a reason.
func (s *AdmissionService) Decline(ctx context.Context, applicationID, staffID string, req DeclineApplicationRequest) (*models.ApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "decline reason is required")
	}

	app, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}

	switch app.Status {
	case models.ApplicationStatusApproved:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application is already approved")
	case models.ApplicationStatusDeclined:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application has already been declined")
	}

	now := time.Now().UTC()
	app.Status = models.ApplicationStatusDeclined
	app.ProcessedBy = &staffID
	app.RejectionReason = &req.Reason
	app.ProcessedOn = &now

	if err := s.repo.Update(ctx, &app.AdmissionApplication); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &staffID,
		Action:      models.AuditActionApplicationDecline,
		Resource:    "admission_application",
		ResourceID:  &app.ApplicationID,
		NewValues:   []byte(fmt.Sprintf(`{"reason":%q}`, req.Reason)),
	}); err != nil {
		s.logger.Warn("failed to record decline audit log", zap.Error(err))
	}

	s.notifier.AdmissionDeclined(ctx, &app.AdmissionApplication, req.Reason)

	return app, nil
}

// RequestDocuments moves an application to documents_pending and records
// what is still required.
func (s *AdmissionService) RequestDocuments(ctx context.Context, applicationID, staffID string, req RequestDocumentsRequest) (*models.ApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "at least one document must be requested")
	}

	app, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}

	switch app.Status {
	case models.ApplicationStatusApproved, models.ApplicationStatusDeclined:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application has already been processed")
	}

	app.Status = models.ApplicationStatusDocumentsPending
	app.DocumentsRequired = models.DocumentList(req.Documents)
	app.DocumentsVerified = unverifiedChecklist(req.Documents)
	app.ProcessedBy = &staffID
	app.Remarks = req.Remarks

	if err := s.repo.Update(ctx, &app.AdmissionApplication); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}

	s.notifier.DocumentsRequested(ctx, &app.AdmissionApplication, req.Documents)

	return app, nil
}

// Waitlist parks an application until seats free up.
func (s *AdmissionService) Waitlist(ctx context.Context, applicationID, staffID string, remarks *string) (*models.ApplicationDetail, error) {
	app, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}

	switch app.Status {
	case models.ApplicationStatusApproved, models.ApplicationStatusDeclined:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application has already been processed")
	}

	app.Status = models.ApplicationStatusWaitlisted
	app.ProcessedBy = &staffID
	app.Remarks = remarks

	if err := s.repo.Update(ctx, &app.AdmissionApplication); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	return app, nil
}

// MarkUnderReview flags an application as being processed.
func (s *AdmissionService) MarkUnderReview(ctx context.Context, applicationID, staffID string) (*models.ApplicationDetail, error) {
	app, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}

	if app.Status != models.ApplicationStatusSubmitted && app.Status != models.ApplicationStatusDocumentsPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only submitted applications can move to review")
	}

	app.Status = models.ApplicationStatusUnderReview
	app.ProcessedBy = &staffID

	if err := s.repo.Update(ctx, &app.AdmissionApplication); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	return app, nil
}

// VerifyDocument marks one checklist entry.
func (s *AdmissionService) VerifyDocument(ctx context.Context, applicationID, staffID string, req VerifyDocumentRequest) (*models.ApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}

	app, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}

	if app.DocumentsVerified == nil {
		app.DocumentsVerified = models.DocumentChecklist{}
	}
	app.DocumentsVerified[req.Document] = req.Verified
	app.ProcessedBy = &staffID

	if err := s.repo.Update(ctx, &app.AdmissionApplication); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	return app, nil
}

// Statistics summarises the admission pipeline.
func (s *AdmissionService) Statistics(ctx context.Context) (*models.AdmissionStatistics, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate applications")
	}

	total := 0
	for _, count := range byStatus {
		total += count
	}

	recent, err := s.repo.CountSince(ctx, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count recent applications")
	}

	stats := &models.AdmissionStatistics{
		Total:      total,
		ByStatus:   byStatus,
		Last30Days: recent,
	}
	if total > 0 {
		stats.ConversionRate = float64(byStatus[models.ApplicationStatusApproved]) / float64(total) * 100
	}
	return stats, nil
}

func applicantName(app *models.AdmissionApplication) string {
	return app.FirstName + " " + app.LastName
}

// unverifiedChecklist seeds the verification map with every document
// pending.
func unverifiedChecklist(documents []string) models.DocumentChecklist {
	checklist := make(models.DocumentChecklist, len(documents))
	for _, doc := range documents {
		checklist[doc] = false
	}
	return checklist
}

// ageAt returns completed years between birth and the reference date.
func ageAt(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

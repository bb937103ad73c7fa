package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/payments"
)

// Late fee accrual: a daily charge that doubles after the grace window,
// capped at a fraction of the base amount.
const (
	lateFeeDailyRate    = 50.0
	lateFeeEscalated    = 100.0
	lateFeeGraceDays    = 30
	lateFeeCapFraction  = 0.25
	receiptNumberFormat = "RCP%d%02d%05d"
)

// demandDueDays is the default payment window for a freshly raised demand.
const demandDueDays = 30

type feeRepository interface {
	Create(ctx context.Context, fee *models.Fee) error
	BulkCreate(ctx context.Context, fees []models.Fee) error
	FindByID(ctx context.Context, id string) (*models.FeeDetail, error)
	Update(ctx context.Context, fee *models.Fee) error
	List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error)
	ExistsDemand(ctx context.Context, studentID string, feeType models.FeeType, semester int, academicYear string) (bool, error)
	CountPaidInMonth(ctx context.Context, year int, month time.Month) (int, error)
	PendingPastDue(ctx context.Context, asOf time.Time) ([]models.Fee, error)
	StudentSummary(ctx context.Context, rollNo string) (*models.StudentFeeSummary, error)
	Statistics(ctx context.Context, academicYear string) (*models.FeeStatistics, error)
}

type feeStudentReader interface {
	FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error)
	ActiveByCourseSemester(ctx context.Context, courseID string, semester int) ([]models.Student, error)
}

type feeCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

type feeAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// feeNotifier mails payment receipts. Implemented by NotificationService.
type feeNotifier interface {
	PaymentReceipt(ctx context.Context, email, name string, fee *models.Fee)
}

// GenerateDemandsRequest raises a fee demand against every active student
// of a course semester. A zero amount falls back to the course's
// per-semester tuition fee, and a zero due window to thirty days.
type GenerateDemandsRequest struct {
	CourseID     string         `json:"course_id" validate:"required"`
	Semester     int            `json:"semester" validate:"required,gte=1,lte=12"`
	AcademicYear string         `json:"academic_year" validate:"required"`
	FeeType      models.FeeType `json:"fee_type" validate:"required,oneof=tuition hostel library laboratory exam miscellaneous"`
	Amount       float64        `json:"amount" validate:"gte=0"`
	DueInDays    int            `json:"due_in_days" validate:"gte=0,lte=365"`
}

// DemandGenerationResult reports the outcome of a demand run.
type DemandGenerationResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// RecordPaymentRequest settles a fee demand over the counter.
type RecordPaymentRequest struct {
	PaymentMethod  models.PaymentMethod `json:"payment_method" validate:"required,oneof=cash online bank_transfer cheque demand_draft"`
	TransactionRef *string              `json:"transaction_ref"`
	Remarks        *string              `json:"remarks"`
}

// CancelFeeRequest reverses a recorded payment.
type CancelFeeRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ApplyDiscountRequest reduces the payable amount of a pending demand.
type ApplyDiscountRequest struct {
	Discount float64 `json:"discount" validate:"required,gt=0"`
	Reason   string  `json:"reason" validate:"required"`
}

// FeeService owns the fee demand lifecycle: generation, collection,
// discounts, cancellation and the overdue sweep.
type FeeService struct {
	repo      feeRepository
	students  feeStudentReader
	courses   feeCourseReader
	audit     feeAuditRepository
	gateway   payments.Gateway
	notifier  feeNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs a FeeService. The gateway may be nil when
// online payments are disabled.
func NewFeeService(repo feeRepository, students feeStudentReader, courses feeCourseReader, audit feeAuditRepository, gateway payments.Gateway, notifier feeNotifier, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &FeeService{
		repo:      repo,
		students:  students,
		courses:   courses,
		audit:     audit,
		gateway:   gateway,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
	}
}

// GenerateDemands raises one demand per active student of the cohort,
// skipping students who already carry a demand for the same type,
// semester and academic year.
func (s *FeeService) GenerateDemands(ctx context.Context, req GenerateDemandsRequest) (*DemandGenerationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid demand payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	amount := req.Amount
	if amount == 0 {
		if req.FeeType != models.FeeTypeTuition {
			return nil, appErrors.Clone(appErrors.ErrValidation, "amount is required for non-tuition fee types")
		}
		amount = course.FeesPerSemester
	}
	if amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fee amount must be positive")
	}

	students, err := s.students.ActiveByCourseSemester(ctx, req.CourseID, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort")
	}

	days := req.DueInDays
	if days == 0 {
		days = demandDueDays
	}
	dueDate := time.Now().UTC().AddDate(0, 0, days)

	result := &DemandGenerationResult{}
	fees := make([]models.Fee, 0, len(students))
	for _, student := range students {
		exists, err := s.repo.ExistsDemand(ctx, student.RollNo, req.FeeType, req.Semester, req.AcademicYear)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing demand")
		}
		if exists {
			result.Skipped++
			continue
		}
		fees = append(fees, models.Fee{
			StudentID:    student.RollNo,
			FeeType:      req.FeeType,
			Semester:     req.Semester,
			AcademicYear: req.AcademicYear,
			Amount:       amount,
			TotalAmount:  amount,
			DueDate:      dueDate,
			Status:       models.FeeStatusPending,
		})
	}

	if len(fees) > 0 {
		if err := s.repo.BulkCreate(ctx, fees); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee demands")
		}
	}
	result.Created = len(fees)

	s.logger.Info("fee demands generated",
		zap.String("course_id", req.CourseID),
		zap.Int("semester", req.Semester),
		zap.String("fee_type", string(req.FeeType)),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// Get returns one fee demand with its student context.
func (s *FeeService) Get(ctx context.Context, id string) (*models.FeeDetail, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}
	return fee, nil
}

// List returns fee demands with pagination.
func (s *FeeService) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, *models.Pagination, error) {
	fees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee records")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return fees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// RecordPayment settles a demand collected by a staff member. The late
// fee is computed against the due date at payment time and a receipt
// number is issued.
func (s *FeeService) RecordPayment(ctx context.Context, id, staffID string, req RecordPaymentRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fee, err := s.markPaid(ctx, &detail.Fee, req.PaymentMethod, req.TransactionRef, &staffID, req.Remarks)
	if err != nil {
		return nil, err
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &staffID,
		Action:      models.AuditActionFeePayment,
		Resource:    "fee",
		ResourceID:  &fee.ID,
		NewValues:   []byte(fmt.Sprintf(`{"receipt_number":%q,"total_amount":%.2f}`, *fee.ReceiptNumber, fee.TotalAmount)),
	}); err != nil {
		s.logger.Warn("failed to record fee audit log", zap.Error(err))
	}

	s.sendReceipt(ctx, fee, detail.StudentName)
	return fee, nil
}

// CreateCheckout opens a hosted payment page for a pending demand. The
// late fee is stamped first so the charged amount matches the record.
func (s *FeeService) CreateCheckout(ctx context.Context, id string) (*payments.Checkout, error) {
	if s.gateway == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "online payments are not enabled")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payableGuard(&detail.Fee); err != nil {
		return nil, err
	}

	student, err := s.students.FindByRollNo(ctx, detail.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	fee := detail.Fee
	fee.LateFee = lateFeeFor(fee.Amount, fee.DueDate, time.Now().UTC())
	fee.TotalAmount = round2(fee.Amount + fee.LateFee - fee.Discount)
	if err := s.repo.Update(ctx, &fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee record")
	}

	checkout, err := s.gateway.CreateCheckout(ctx, payments.CheckoutInput{
		OrderID:      fee.ID,
		Amount:       fee.TotalAmount,
		ItemName:     fmt.Sprintf("%s fee, semester %d (%s)", fee.FeeType, fee.Semester, fee.AcademicYear),
		CustomerName: student.FirstName + " " + student.LastName,
		Email:        student.Email,
		Phone:        student.Phone,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create checkout session")
	}
	return checkout, nil
}

// ConfirmOnlinePayment settles a demand after the gateway reports a
// successful charge. There is no collecting staff member.
func (s *FeeService) ConfirmOnlinePayment(ctx context.Context, id, transactionRef string) (*models.Fee, error) {
	if transactionRef == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "transaction reference is required")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fee, err := s.markPaid(ctx, &detail.Fee, models.PaymentMethodOnline, &transactionRef, nil, nil)
	if err != nil {
		return nil, err
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		Action:     models.AuditActionFeePayment,
		Resource:   "fee",
		ResourceID: &fee.ID,
		NewValues:  []byte(fmt.Sprintf(`{"receipt_number":%q,"transaction_ref":%q}`, *fee.ReceiptNumber, transactionRef)),
	}); err != nil {
		s.logger.Warn("failed to record fee audit log", zap.Error(err))
	}

	s.sendReceipt(ctx, fee, detail.StudentName)
	return fee, nil
}

// Cancel reverses a settled payment, for example after a cheque bounces.
// The receipt and payment fields stay on the record as the audit trail.
func (s *FeeService) Cancel(ctx context.Context, id, staffID string, req CancelFeeRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancellation payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Status != models.FeeStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only paid fees can be cancelled")
	}

	fee := detail.Fee
	fee.Status = models.FeeStatusCancelled
	remark := "Cancelled: " + req.Reason
	fee.Remarks = &remark

	if err := s.repo.Update(ctx, &fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel fee record")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &staffID,
		Action:      models.AuditActionFeeCancel,
		Resource:    "fee",
		ResourceID:  &fee.ID,
		NewValues:   []byte(fmt.Sprintf(`{"reason":%q}`, req.Reason)),
	}); err != nil {
		s.logger.Warn("failed to record fee audit log", zap.Error(err))
	}

	return &fee, nil
}

// ApplyDiscount reduces the payable amount of an unpaid demand.
func (s *FeeService) ApplyDiscount(ctx context.Context, id, staffID string, req ApplyDiscountRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid discount payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payableGuard(&detail.Fee); err != nil {
		return nil, err
	}
	if req.Discount > detail.Amount {
		return nil, appErrors.Clone(appErrors.ErrValidation, "discount cannot exceed the base amount")
	}

	fee := detail.Fee
	fee.Discount = req.Discount
	fee.TotalAmount = round2(fee.Amount + fee.LateFee - fee.Discount)
	fee.Remarks = &req.Reason

	if err := s.repo.Update(ctx, &fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply discount")
	}

	s.logger.Info("fee discount applied",
		zap.String("fee_id", fee.ID),
		zap.String("staff_id", staffID),
		zap.Float64("discount", req.Discount))

	return &fee, nil
}

// SweepOverdue flips pending demands past their due date to overdue and
// stamps the accrued late fee. Returns the number of records updated.
func (s *FeeService) SweepOverdue(ctx context.Context, asOf time.Time) (int, error) {
	fees, err := s.repo.PendingPastDue(ctx, asOf)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load overdue candidates")
	}

	updated := 0
	for i := range fees {
		fee := fees[i]
		fee.Status = models.FeeStatusOverdue
		fee.LateFee = lateFeeFor(fee.Amount, fee.DueDate, asOf)
		fee.TotalAmount = round2(fee.Amount + fee.LateFee - fee.Discount)
		if err := s.repo.Update(ctx, &fee); err != nil {
			s.logger.Warn("failed to mark fee overdue", zap.String("fee_id", fee.ID), zap.Error(err))
			continue
		}
		updated++
	}

	if updated > 0 {
		s.logger.Info("overdue sweep finished", zap.Int("updated", updated))
	}
	return updated, nil
}

// StudentSummary totals a student's fee position.
func (s *FeeService) StudentSummary(ctx context.Context, rollNo string) (*models.StudentFeeSummary, error) {
	if _, err := s.students.FindByRollNo(ctx, rollNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	summary, err := s.repo.StudentSummary(ctx, rollNo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee summary")
	}
	return summary, nil
}

// Statistics aggregates collections, optionally for one academic year.
func (s *FeeService) Statistics(ctx context.Context, academicYear string) (*models.FeeStatistics, error) {
	stats, err := s.repo.Statistics(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee statistics")
	}
	return stats, nil
}

// markPaid applies the shared settlement path: guard, late fee, receipt
// number, status flip.
func (s *FeeService) markPaid(ctx context.Context, fee *models.Fee, method models.PaymentMethod, transactionRef *string, collectedBy, remarks *string) (*models.Fee, error) {
	if err := payableGuard(fee); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	serial, err := s.repo.CountPaidInMonth(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate receipt number")
	}
	receipt := fmt.Sprintf(receiptNumberFormat, now.Year(), int(now.Month()), serial+1)

	fee.LateFee = lateFeeFor(fee.Amount, fee.DueDate, now)
	fee.TotalAmount = round2(fee.Amount + fee.LateFee - fee.Discount)
	fee.Status = models.FeeStatusPaid
	fee.PaymentMethod = &method
	fee.PaidAt = &now
	fee.ReceiptNumber = &receipt
	fee.TransactionRef = transactionRef
	fee.CollectedBy = collectedBy
	if remarks != nil {
		fee.Remarks = remarks
	}

	if err := s.repo.Update(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.logger.Info("fee payment recorded",
		zap.String("fee_id", fee.ID),
		zap.String("receipt_number", receipt),
		zap.String("payment_method", string(method)),
		zap.Float64("total_amount", fee.TotalAmount))

	return fee, nil
}

func (s *FeeService) sendReceipt(ctx context.Context, fee *models.Fee, studentName string) {
	student, err := s.students.FindByRollNo(ctx, fee.StudentID)
	if err != nil {
		s.logger.Warn("failed to load student for receipt mail", zap.Error(err))
		return
	}
	s.notifier.PaymentReceipt(ctx, student.Email, studentName, fee)
}

// payableGuard rejects settlement or mutation of fees that are already
// paid or cancelled.
func payableGuard(fee *models.Fee) error {
	switch fee.Status {
	case models.FeeStatusPaid:
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "fee is already paid")
	case models.FeeStatusCancelled:
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "fee record is cancelled")
	default:
		return nil
	}
}

// lateFeeFor accrues the daily late charge past the due date, doubling
// after the grace window and capping at a fraction of the base amount.
func lateFeeFor(amount float64, dueDate, asOf time.Time) float64 {
	if !asOf.After(dueDate) {
		return 0
	}
	days := int(asOf.Sub(dueDate).Hours() / 24)
	if days <= 0 {
		return 0
	}

	var fee float64
	if days <= lateFeeGraceDays {
		fee = float64(days) * lateFeeDailyRate
	} else {
		fee = lateFeeGraceDays*lateFeeDailyRate + float64(days-lateFeeGraceDays)*lateFeeEscalated
	}

	if cap := amount * lateFeeCapFraction; fee > cap {
		fee = cap
	}
	return round2(fee)
}

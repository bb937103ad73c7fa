package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/payments"
)

type mockFeeRepo struct {
	fees        map[string]*models.FeeDetail
	existing    map[string]bool
	bulkCreated []models.Fee
	pastDue     []models.Fee
	paidCount   int
	summary     *models.StudentFeeSummary
	stats       *models.FeeStatistics
	updated     []*models.Fee
}

func (m *mockFeeRepo) Create(ctx context.Context, fee *models.Fee) error {
	fee.ID = fmt.Sprintf("fee-%d", len(m.fees)+1)
	if m.fees == nil {
		m.fees = make(map[string]*models.FeeDetail)
	}
	m.fees[fee.ID] = &models.FeeDetail{Fee: *fee}
	return nil
}

func (m *mockFeeRepo) BulkCreate(ctx context.Context, fees []models.Fee) error {
	m.bulkCreated = append(m.bulkCreated, fees...)
	return nil
}

func (m *mockFeeRepo) FindByID(ctx context.Context, id string) (*models.FeeDetail, error) {
	if f, ok := m.fees[id]; ok {
		return f, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) Update(ctx context.Context, fee *models.Fee) error {
	m.updated = append(m.updated, fee)
	if f, ok := m.fees[fee.ID]; ok {
		f.Fee = *fee
	}
	return nil
}

func (m *mockFeeRepo) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error) {
	out := make([]models.FeeDetail, 0, len(m.fees))
	for _, f := range m.fees {
		out = append(out, *f)
	}
	return out, len(out), nil
}

func (m *mockFeeRepo) ExistsDemand(ctx context.Context, studentID string, feeType models.FeeType, semester int, academicYear string) (bool, error) {
	return m.existing[studentID], nil
}

func (m *mockFeeRepo) CountPaidInMonth(ctx context.Context, year int, month time.Month) (int, error) {
	return m.paidCount, nil
}

func (m *mockFeeRepo) PendingPastDue(ctx context.Context, asOf time.Time) ([]models.Fee, error) {
	return m.pastDue, nil
}

func (m *mockFeeRepo) StudentSummary(ctx context.Context, rollNo string) (*models.StudentFeeSummary, error) {
	return m.summary, nil
}

func (m *mockFeeRepo) Statistics(ctx context.Context, academicYear string) (*models.FeeStatistics, error) {
	return m.stats, nil
}

type mockFeeStudents struct {
	students map[string]*models.StudentDetail
	cohort   []models.Student
}

func (m *mockFeeStudents) FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error) {
	if s, ok := m.students[rollNo]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeStudents) ActiveByCourseSemester(ctx context.Context, courseID string, semester int) ([]models.Student, error) {
	return m.cohort, nil
}

type mockFeeCourses struct {
	course *models.CourseDetail
}

func (m *mockFeeCourses) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	if m.course == nil {
		return nil, sql.ErrNoRows
	}
	return m.course, nil
}

type mockFeeAudit struct {
	logs []*models.AuditLog
}

func (m *mockFeeAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

type mockGateway struct {
	checkout *payments.Checkout
	err      error
	input    payments.CheckoutInput
}

func (m *mockGateway) CreateCheckout(ctx context.Context, in payments.CheckoutInput) (*payments.Checkout, error) {
	m.input = in
	if m.err != nil {
		return nil, m.err
	}
	return m.checkout, nil
}

func feeCourse() *models.CourseDetail {
	return &models.CourseDetail{
		Course: models.Course{
			ID:              "course-1",
			CourseCode:      "CS",
			CourseName:      "Computer Science Engineering",
			FeesPerSemester: 45000,
			Active:          true,
		},
	}
}

func pendingFee(id string, amount float64, dueDate time.Time) *models.FeeDetail {
	return &models.FeeDetail{
		Fee: models.Fee{
			ID:           id,
			StudentID:    "2025CS0001",
			FeeType:      models.FeeTypeTuition,
			Semester:     3,
			AcademicYear: "2025-26",
			Amount:       amount,
			TotalAmount:  amount,
			DueDate:      dueDate,
			Status:       models.FeeStatusPending,
		},
		StudentName: "Asha Verma",
		CourseCode:  "CS",
	}
}

func newFeeService(repo *mockFeeRepo, students *mockFeeStudents, courses *mockFeeCourses, audit *mockFeeAudit, gateway payments.Gateway) *FeeService {
	return NewFeeService(repo, students, courses, audit, gateway, nil, validator.New(), zap.NewNop())
}

func TestFeeServiceGenerateDemands(t *testing.T) {
	repo := &mockFeeRepo{existing: map[string]bool{"2025CS0002": true}}
	students := &mockFeeStudents{cohort: []models.Student{
		{RollNo: "2025CS0001"},
		{RollNo: "2025CS0002"},
	}}
	svc := newFeeService(repo, students, &mockFeeCourses{course: feeCourse()}, &mockFeeAudit{}, nil)

	res, err := svc.GenerateDemands(context.Background(), GenerateDemandsRequest{
		CourseID:     "course-1",
		Semester:     3,
		AcademicYear: "2025-26",
		FeeType:      models.FeeTypeTuition,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, repo.bulkCreated, 1)
	assert.Equal(t, "2025CS0001", repo.bulkCreated[0].StudentID)
	assert.Equal(t, 45000.0, repo.bulkCreated[0].Amount)
	assert.Equal(t, models.FeeStatusPending, repo.bulkCreated[0].Status)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 30), repo.bulkCreated[0].DueDate, time.Minute)
}

func TestFeeServiceGenerateDemandsCustomDueWindow(t *testing.T) {
	repo := &mockFeeRepo{}
	students := &mockFeeStudents{cohort: []models.Student{{RollNo: "2025CS0001"}}}
	svc := newFeeService(repo, students, &mockFeeCourses{course: feeCourse()}, &mockFeeAudit{}, nil)

	_, err := svc.GenerateDemands(context.Background(), GenerateDemandsRequest{
		CourseID:     "course-1",
		Semester:     3,
		AcademicYear: "2025-26",
		FeeType:      models.FeeTypeTuition,
		DueInDays:    7,
	})
	require.NoError(t, err)
	require.Len(t, repo.bulkCreated, 1)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 7), repo.bulkCreated[0].DueDate, time.Minute)
}

func TestFeeServiceGenerateDemandsNonTuitionNeedsAmount(t *testing.T) {
	svc := newFeeService(&mockFeeRepo{}, &mockFeeStudents{}, &mockFeeCourses{course: feeCourse()}, &mockFeeAudit{}, nil)

	_, err := svc.GenerateDemands(context.Background(), GenerateDemandsRequest{
		CourseID:     "course-1",
		Semester:     3,
		AcademicYear: "2025-26",
		FeeType:      models.FeeTypeHostel,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFeeServiceRecordPayment(t *testing.T) {
	due := time.Now().UTC().Add(-10 * 24 * time.Hour)
	repo := &mockFeeRepo{fees: map[string]*models.FeeDetail{"fee-1": pendingFee("fee-1", 45000, due)}}
	students := &mockFeeStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	audit := &mockFeeAudit{}
	svc := newFeeService(repo, students, &mockFeeCourses{}, audit, nil)

	fee, err := svc.RecordPayment(context.Background(), "fee-1", "EMP-1", RecordPaymentRequest{PaymentMethod: models.PaymentMethodCash})
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPaid, fee.Status)
	assert.Equal(t, 500.0, fee.LateFee)
	assert.Equal(t, 45500.0, fee.TotalAmount)
	require.NotNil(t, fee.ReceiptNumber)
	now := time.Now().UTC()
	assert.Equal(t, fmt.Sprintf("RCP%d%02d%05d", now.Year(), int(now.Month()), 1), *fee.ReceiptNumber)
	require.NotNil(t, fee.CollectedBy)
	assert.Equal(t, "EMP-1", *fee.CollectedBy)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionFeePayment, audit.logs[0].Action)
}

func TestFeeServiceRecordPaymentAlreadyPaid(t *testing.T) {
	paid := pendingFee("fee-1", 45000, time.Now())
	paid.Status = models.FeeStatusPaid
	repo := &mockFeeRepo{fees: map[string]*models.FeeDetail{"fee-1": paid}}
	svc := newFeeService(repo, &mockFeeStudents{}, &mockFeeCourses{}, &mockFeeAudit{}, nil)

	_, err := svc.RecordPayment(context.Background(), "fee-1", "EMP-1", RecordPaymentRequest{PaymentMethod: models.PaymentMethodCash})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "already paid")
}

func TestFeeServiceCancel(t *testing.T) {
	receipt := "RCP20250800001"
	paid := pendingFee("fee-1", 45000, time.Now())
	paid.Status = models.FeeStatusPaid
	paid.ReceiptNumber = &receipt
	repo := &mockFeeRepo{fees: map[string]*models.FeeDetail{"fee-1": paid}}
	audit := &mockFeeAudit{}
	svc := newFeeService(repo, &mockFeeStudents{}, &mockFeeCourses{}, audit, nil)

	fee, err := svc.Cancel(context.Background(), "fee-1", "EMP-1", CancelFeeRequest{Reason: "cheque bounced"})
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusCancelled, fee.Status)
	require.NotNil(t, fee.Remarks)
	assert.Equal(t, "Cancelled: cheque bounced", *fee.Remarks)
	require.NotNil(t, fee.ReceiptNumber)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionFeeCancel, audit.logs[0].Action)
}

func TestFeeServiceCancelUnpaid(t *testing.T) {
	repo := &mockFeeRepo{fees: map[string]*models.FeeDetail{"fee-1": pendingFee("fee-1", 45000, time.Now())}}
	svc := newFeeService(repo, &mockFeeStudents{}, &mockFeeCourses{}, &mockFeeAudit{}, nil)

	_, err := svc.Cancel(context.Background(), "fee-1", "EMP-1", CancelFeeRequest{Reason: "raised twice"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "only paid fees")
}

func TestFeeServiceApplyDiscount(t *testing.T) {
	repo := &mockFeeRepo{fees: map[string]*models.FeeDetail{"fee-1": pendingFee("fee-1", 45000, time.Now().Add(24*time.Hour))}}
	svc := newFeeService(repo, &mockFeeStudents{}, &mockFeeCourses{}, &mockFeeAudit{}, nil)

	fee, err := svc.ApplyDiscount(context.Background(), "fee-1", "EMP-1", ApplyDiscountRequest{Discount: 5000, Reason: "merit scholarship"})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, fee.Discount)
	assert.Equal(t, 40000.0, fee.TotalAmount)
}

func TestFeeServiceApplyDiscountExceedsAmount(t *testing.T) {
	repo := &mockFeeRepo{fees: map[string]*models.FeeDetail{"fee-1": pendingFee("fee-1", 1000, time.Now().Add(24*time.Hour))}}
	svc := newFeeService(repo, &mockFeeStudents{}, &mockFeeCourses{}, &mockFeeAudit{}, nil)

	_, err := svc.ApplyDiscount(context.Background(), "fee-1", "EMP-1", ApplyDiscountRequest{Discount: 1500, Reason: "oversized"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFeeServiceSweepOverdue(t *testing.T) {
	asOf := time.Now().UTC()
	repo := &mockFeeRepo{
		pastDue: []models.Fee{
			{ID: "fee-1", Amount: 45000, TotalAmount: 45000, DueDate: asOf.Add(-5 * 24 * time.Hour), Status: models.FeeStatusPending},
			{ID: "fee-2", Amount: 45000, TotalAmount: 45000, DueDate: asOf.Add(-40 * 24 * time.Hour), Status: models.FeeStatusPending},
		},
	}
	svc := newFeeService(repo, &mockFeeStudents{}, &mockFeeCourses{}, &mockFeeAudit{}, nil)

	updated, err := svc.SweepOverdue(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	require.Len(t, repo.updated, 2)
	assert.Equal(t, models.FeeStatusOverdue, repo.updated[0].Status)
	assert.Equal(t, 250.0, repo.updated[0].LateFee)
	assert.Equal(t, 2500.0, repo.updated[1].LateFee)
}

func TestFeeServiceCreateCheckout(t *testing.T) {
	due := time.Now().UTC().Add(-4 * 24 * time.Hour)
	repo := &mockFeeRepo{fees: map[string]*models.FeeDetail{"fee-1": pendingFee("fee-1", 45000, due)}}
	students := &mockFeeStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	gateway := &mockGateway{checkout: &payments.Checkout{Token: "tok", RedirectURL: "https://pay.example/tok"}}
	svc := newFeeService(repo, students, &mockFeeCourses{}, &mockFeeAudit{}, gateway)

	checkout, err := svc.CreateCheckout(context.Background(), "fee-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", checkout.Token)
	assert.Equal(t, "fee-1", gateway.input.OrderID)
	assert.Equal(t, 45200.0, gateway.input.Amount)
	assert.Equal(t, 45200.0, repo.fees["fee-1"].TotalAmount)
}

func TestFeeServiceCreateCheckoutDisabled(t *testing.T) {
	svc := newFeeService(&mockFeeRepo{}, &mockFeeStudents{}, &mockFeeCourses{}, &mockFeeAudit{}, nil)

	_, err := svc.CreateCheckout(context.Background(), "fee-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestFeeServiceConfirmOnlinePayment(t *testing.T) {
	repo := &mockFeeRepo{fees: map[string]*models.FeeDetail{"fee-1": pendingFee("fee-1", 45000, time.Now().UTC().Add(24*time.Hour))}}
	students := &mockFeeStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newFeeService(repo, students, &mockFeeCourses{}, &mockFeeAudit{}, nil)

	fee, err := svc.ConfirmOnlinePayment(context.Background(), "fee-1", "MID-12345")
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPaid, fee.Status)
	require.NotNil(t, fee.PaymentMethod)
	assert.Equal(t, models.PaymentMethodOnline, *fee.PaymentMethod)
	require.NotNil(t, fee.TransactionRef)
	assert.Equal(t, "MID-12345", *fee.TransactionRef)
	assert.Nil(t, fee.CollectedBy)
	assert.Equal(t, 0.0, fee.LateFee)
}

func TestLateFeeFor(t *testing.T) {
	due := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, lateFeeFor(45000, due, due))
	assert.Equal(t, 0.0, lateFeeFor(45000, due, due.Add(-time.Hour)))
	assert.Equal(t, 500.0, lateFeeFor(45000, due, due.Add(10*24*time.Hour)))
	assert.Equal(t, 1500.0, lateFeeFor(45000, due, due.Add(30*24*time.Hour)))
	assert.Equal(t, 2500.0, lateFeeFor(45000, due, due.Add(40*24*time.Hour)))
	// capped at a quarter of the base amount
	assert.Equal(t, 250.0, lateFeeFor(1000, due, due.Add(10*24*time.Hour)))
}

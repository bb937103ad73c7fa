package models

import "time"

// FeeStatus enumerates the lifecycle states of a fee record.
type FeeStatus string

const (
	FeeStatusPending   FeeStatus = "pending"
	FeeStatusPaid      FeeStatus = "paid"
	FeeStatusOverdue   FeeStatus = "overdue"
	FeeStatusCancelled FeeStatus = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s FeeStatus) Valid() bool {
	switch s {
	case FeeStatusPending, FeeStatusPaid, FeeStatusOverdue, FeeStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodDemandDraft  PaymentMethod = "demand_draft"
)

// FeeType enumerates fee categories.
type FeeType string

const (
	FeeTypeTuition       FeeType = "tuition"
	FeeTypeHostel        FeeType = "hostel"
	FeeTypeLibrary       FeeType = "library"
	FeeTypeLaboratory    FeeType = "laboratory"
	FeeTypeExam          FeeType = "exam"
	FeeTypeMiscellaneous FeeType = "miscellaneous"
)

// Valid reports whether the fee type is a known category.
func (t FeeType) Valid() bool {
	switch t {
	case FeeTypeTuition, FeeTypeHostel, FeeTypeLibrary,
		FeeTypeLaboratory, FeeTypeExam, FeeTypeMiscellaneous:
		return true
	}
	return false
}

// Fee represents a single fee demand against a student.
// TotalAmount is always Amount + LateFee - Discount.
type Fee struct {
	ID             string         `db:"id" json:"id"`
	StudentID      string         `db:"student_id" json:"student_id"`
	FeeType        FeeType        `db:"fee_type" json:"fee_type"`
	Semester       int            `db:"semester" json:"semester"`
	AcademicYear   string         `db:"academic_year" json:"academic_year"`
	Amount         float64        `db:"amount" json:"amount"`
	LateFee        float64        `db:"late_fee" json:"late_fee"`
	Discount       float64        `db:"discount" json:"discount"`
	TotalAmount    float64        `db:"total_amount" json:"total_amount"`
	DueDate        time.Time      `db:"due_date" json:"due_date"`
	Status         FeeStatus      `db:"status" json:"status"`
	PaymentMethod  *PaymentMethod `db:"payment_method" json:"payment_method,omitempty"`
	PaidAt         *time.Time     `db:"paid_at" json:"paid_at,omitempty"`
	ReceiptNumber  *string        `db:"receipt_number" json:"receipt_number,omitempty"`
	TransactionRef *string        `db:"transaction_ref" json:"transaction_ref,omitempty"`
	CollectedBy    *string        `db:"collected_by" json:"collected_by,omitempty"`
	Remarks        *string        `db:"remarks" json:"remarks,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// FeeDetail joins the fee with its student context.
type FeeDetail struct {
	Fee
	StudentName string `db:"student_name" json:"student_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
}

// FeeFilter captures query parameters for listing fees.
type FeeFilter struct {
	StudentID    string
	FeeType      *FeeType
	Status       *FeeStatus
	Semester     *int
	AcademicYear string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// StudentFeeSummary totals a student's fee position.
type StudentFeeSummary struct {
	StudentID    string  `json:"student_id"`
	TotalPaid    float64 `json:"total_paid"`
	TotalPending float64 `json:"total_pending"`
	PendingCount int     `json:"pending_count"`
	OverdueCount int     `json:"overdue_count"`
}

// FeeStatistics aggregates collections for reporting.
type FeeStatistics struct {
	AcademicYear   string                    `json:"academic_year,omitempty"`
	TotalCollected float64                   `json:"total_collected"`
	TotalPending   float64                   `json:"total_pending"`
	OverdueCount   int                       `json:"overdue_count"`
	CollectionRate float64                   `json:"collection_rate"`
	ByType         map[FeeType]float64       `json:"by_type"`
	ByMethod       map[PaymentMethod]float64 `json:"by_method"`
}

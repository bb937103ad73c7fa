package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin              = "LOGIN"
	AuditActionLogout             = "LOGOUT"
	AuditActionPasswordChange     = "PASSWORD_CHANGE"
	AuditActionApplicationApprove = "APPLICATION_APPROVE"
	AuditActionApplicationDecline = "APPLICATION_DECLINE"
	AuditActionStudentCreate      = "STUDENT_CREATE"
	AuditActionResultDeclare      = "RESULT_DECLARE"
	AuditActionResultUpdate       = "RESULT_UPDATE"
	AuditActionFeePayment         = "FEE_PAYMENT"
	AuditActionFeeCancel          = "FEE_CANCEL"
	AuditActionStaffCreate        = "STAFF_CREATE"
	AuditActionStaffUpdate        = "STAFF_UPDATE"
	AuditActionPasswordReset      = "PASSWORD_RESET"
	AuditActionCourseCreate       = "COURSE_CREATE"
	AuditActionCourseUpdate       = "COURSE_UPDATE"
	AuditActionHostelAllocate     = "HOSTEL_ALLOCATE"
	AuditActionHostelVacate       = "HOSTEL_VACATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	PrincipalID *string   `db:"principal_id" json:"principal_id,omitempty"`
	Action      string    `db:"action" json:"action"`
	Resource    string    `db:"resource" json:"resource"`
	ResourceID  *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues   []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues   []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	UserAgent   string    `db:"user_agent" json:"user_agent"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

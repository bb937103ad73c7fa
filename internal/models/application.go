package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ApplicationStatus enumerates the admission application workflow states.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted        ApplicationStatus = "submitted"
	ApplicationStatusUnderReview      ApplicationStatus = "under_review"
	ApplicationStatusDocumentsPending ApplicationStatus = "documents_pending"
	ApplicationStatusApproved         ApplicationStatus = "approved"
	ApplicationStatusDeclined         ApplicationStatus = "declined"
	ApplicationStatusWaitlisted       ApplicationStatus = "waitlisted"
)

// Valid reports whether the status is one of the workflow states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusUnderReview,
		ApplicationStatusDocumentsPending, ApplicationStatusApproved,
		ApplicationStatusDeclined, ApplicationStatusWaitlisted:
		return true
	}
	return false
}

// Gender values accepted on applications.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// DocumentList stores an ordered list of document names as JSONB.
type DocumentList []string

// Value marshals the list for persistence.
func (d DocumentList) Value() (driver.Value, error) {
	if d == nil {
		d = DocumentList{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal document list: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the list. Malformed payloads scan to
// an empty list rather than failing the row.
func (d *DocumentList) Scan(value interface{}) error {
	if value == nil {
		*d = DocumentList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DocumentList", value)
	}
	if len(data) == 0 {
		*d = DocumentList{}
		return nil
	}
	if err := json.Unmarshal(data, d); err != nil {
		*d = DocumentList{}
	}
	return nil
}

// DocumentChecklist maps document names to their verification state.
type DocumentChecklist map[string]bool

// Value marshals the checklist for persistence.
func (c DocumentChecklist) Value() (driver.Value, error) {
	if c == nil {
		c = DocumentChecklist{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal document checklist: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the checklist. Malformed payloads
// scan to an empty checklist rather than failing the row.
func (c *DocumentChecklist) Scan(value interface{}) error {
	if value == nil {
		*c = DocumentChecklist{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DocumentChecklist", value)
	}
	if len(data) == 0 {
		*c = DocumentChecklist{}
		return nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		*c = DocumentChecklist{}
	}
	return nil
}

// AdmissionApplication represents one admission application record.
// ApplicationID follows ADM<year><serial> and doubles as the applicant's
// portal login until a student record exists.
type AdmissionApplication struct {
	ApplicationID     string            `db:"application_id" json:"application_id"`
	FirstName         string            `db:"first_name" json:"first_name"`
	LastName          string            `db:"last_name" json:"last_name"`
	DateOfBirth       time.Time         `db:"date_of_birth" json:"date_of_birth"`
	Gender            Gender            `db:"gender" json:"gender"`
	Email             string            `db:"email" json:"email"`
	Phone             string            `db:"phone" json:"phone"`
	AddressLine       string            `db:"address_line" json:"address_line"`
	City              string            `db:"city" json:"city"`
	State             string            `db:"state" json:"state"`
	Pincode           string            `db:"pincode" json:"pincode"`
	GuardianName      string            `db:"guardian_name" json:"guardian_name"`
	GuardianPhone     string            `db:"guardian_phone" json:"guardian_phone"`
	GuardianRelation  string            `db:"guardian_relation" json:"guardian_relation"`
	CourseID          string            `db:"course_id" json:"course_id"`
	TenthPercentage   float64           `db:"tenth_percentage" json:"tenth_percentage"`
	TwelfthPercentage *float64          `db:"twelfth_percentage" json:"twelfth_percentage,omitempty"`
	EntranceExamScore *float64          `db:"entrance_exam_score" json:"entrance_exam_score,omitempty"`
	Documents         DocumentList      `db:"documents" json:"documents"`
	DocumentsRequired DocumentList      `db:"documents_required" json:"documents_required"`
	DocumentsVerified DocumentChecklist `db:"documents_verified" json:"documents_verified"`
	PasswordHash      string            `db:"password_hash" json:"-"`
	Status            ApplicationStatus `db:"status" json:"status"`
	ProcessedBy       *string           `db:"processed_by" json:"processed_by,omitempty"`
	StudentID         *string           `db:"student_id" json:"student_id,omitempty"`
	Remarks           *string           `db:"remarks" json:"remarks,omitempty"`
	RejectionReason   *string           `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ProcessedOn       *time.Time        `db:"processed_on" json:"processed_on,omitempty"`
	AppliedAt         time.Time         `db:"applied_at" json:"applied_at"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationDetail joins the application with its course context.
type ApplicationDetail struct {
	AdmissionApplication
	CourseName string `db:"course_name" json:"course_name"`
	CourseCode string `db:"course_code" json:"course_code"`
}

// ApplicationFilter captures query parameters for listing applications.
type ApplicationFilter struct {
	Status    *ApplicationStatus
	CourseID  string
	Year      *int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// EligibilityReport explains the outcome of the eligibility screen.
type EligibilityReport struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons,omitempty"`
}

// AdmissionStatistics aggregates application counts for reporting.
type AdmissionStatistics struct {
	Total          int                       `json:"total"`
	ByStatus       map[ApplicationStatus]int `json:"by_status"`
	ConversionRate float64                   `json:"conversion_rate"`
	Last30Days     int                       `json:"last_30_days"`
}

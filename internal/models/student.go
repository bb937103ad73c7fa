package models

import "time"

// Student represents an enrolled learner. RollNo is the natural key,
// composed of admission year, course code and a per-cohort serial.
type Student struct {
	RollNo             string     `db:"roll_no" json:"roll_no"`
	FirstName          string     `db:"first_name" json:"first_name"`
	LastName           string     `db:"last_name" json:"last_name"`
	DateOfBirth        time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Gender             Gender     `db:"gender" json:"gender"`
	Email              string     `db:"email" json:"email"`
	Phone              string     `db:"phone" json:"phone"`
	AddressLine        string     `db:"address_line" json:"address_line"`
	City               string     `db:"city" json:"city"`
	State              string     `db:"state" json:"state"`
	Pincode            string     `db:"pincode" json:"pincode"`
	GuardianName       string     `db:"guardian_name" json:"guardian_name"`
	GuardianPhone      string     `db:"guardian_phone" json:"guardian_phone"`
	CourseID           string     `db:"course_id" json:"course_id"`
	AdmissionYear      int        `db:"admission_year" json:"admission_year"`
	CurrentSemester    int        `db:"current_semester" json:"current_semester"`
	ApplicationID      *string    `db:"application_id" json:"application_id,omitempty"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	MustChangePassword bool       `db:"must_change_password" json:"must_change_password"`
	HostelID           *string    `db:"hostel_id" json:"hostel_id,omitempty"`
	HostelRoom         *string    `db:"hostel_room" json:"hostel_room,omitempty"`
	Active             bool       `db:"active" json:"active"`
	LastLogin          *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search        string
	CourseID      string
	Semester      *int
	AdmissionYear *int
	Active        *bool
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// StudentDetail contains student information with course and hostel context.
type StudentDetail struct {
	Student
	CourseName string  `db:"course_name" json:"course_name"`
	CourseCode string  `db:"course_code" json:"course_code"`
	DegreeName string  `db:"degree_name" json:"degree_name"`
	HostelName *string `db:"hostel_name" json:"hostel_name,omitempty"`
}

// AcademicRecord aggregates a student's examination history across
// semesters.
type AcademicRecord struct {
	Student   StudentDetail      `json:"student"`
	Semesters []SemesterGPA      `json:"semesters"`
	CGPA      CumulativeGPA      `json:"cgpa"`
	Results   []ExamResultDetail `json:"results"`
}

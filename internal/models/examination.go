package models

import "time"

// ExamType enumerates the examination categories for a result record.
type ExamType string

const (
	ExamTypeInternal      ExamType = "internal"
	ExamTypeSemester      ExamType = "semester"
	ExamTypeFinal         ExamType = "final"
	ExamTypeSupplementary ExamType = "supplementary"
)

// Valid reports whether the exam type is a known category.
func (t ExamType) Valid() bool {
	switch t {
	case ExamTypeInternal, ExamTypeSemester, ExamTypeFinal, ExamTypeSupplementary:
		return true
	}
	return false
}

// ExamResult represents a student's result record for one subject exam.
// Marks, grade and pass flag stay null until the result is declared.
type ExamResult struct {
	ID               string     `db:"id" json:"id"`
	StudentID        string     `db:"student_id" json:"student_id"`
	CourseID         string     `db:"course_id" json:"course_id"`
	SubjectName      string     `db:"subject_name" json:"subject_name"`
	SubjectCode      string     `db:"subject_code" json:"subject_code"`
	Semester         int        `db:"semester" json:"semester"`
	AcademicYear     string     `db:"academic_year" json:"academic_year"`
	ExamType         ExamType   `db:"exam_type" json:"exam_type"`
	ExamDate         *time.Time `db:"exam_date" json:"exam_date,omitempty"`
	MaxMarks         float64    `db:"max_marks" json:"max_marks"`
	MarksObtained    *float64   `db:"marks_obtained" json:"marks_obtained,omitempty"`
	InternalMarks    float64    `db:"internal_marks" json:"internal_marks"`
	ExternalMarks    float64    `db:"external_marks" json:"external_marks"`
	Grade            *string    `db:"grade" json:"grade,omitempty"`
	GradePoints      *float64   `db:"grade_points" json:"grade_points,omitempty"`
	IsPass           *bool      `db:"is_pass" json:"is_pass,omitempty"`
	IsAbsent         bool       `db:"is_absent" json:"is_absent"`
	HasMalpractice   bool       `db:"has_malpractice" json:"has_malpractice"`
	ResultDeclaredAt *time.Time `db:"result_declared_at" json:"result_declared_at,omitempty"`
	Remarks          *string    `db:"remarks" json:"remarks,omitempty"`
	ProcessedBy      *string    `db:"processed_by" json:"processed_by,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// ExamResultDetail joins the result with student and course context.
type ExamResultDetail struct {
	ExamResult
	StudentName string `db:"student_name" json:"student_name"`
	CourseName  string `db:"course_name" json:"course_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
}

// ExamResultFilter captures query parameters for listing result records.
type ExamResultFilter struct {
	StudentID    string
	CourseID     string
	Semester     *int
	AcademicYear string
	ExamType     *ExamType
	Declared     *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// SemesterGPA summarises a student's grade point average for one semester.
// Subjects marked absent or with malpractice are excluded from the average
// but still counted in TotalSubjects.
type SemesterGPA struct {
	StudentID       string  `json:"student_id"`
	Semester        int     `json:"semester"`
	AcademicYear    string  `json:"academic_year,omitempty"`
	SGPA            float64 `json:"sgpa"`
	CountedSubjects int     `json:"counted_subjects"`
	TotalSubjects   int     `json:"total_subjects"`
}

// CumulativeGPA is the grade point average across all declared semesters.
type CumulativeGPA struct {
	StudentID       string  `json:"student_id"`
	CGPA            float64 `json:"cgpa"`
	CountedSubjects int     `json:"counted_subjects"`
	TotalSubjects   int     `json:"total_subjects"`
}

// ClassPerformance aggregates declared results for a course cohort.
// ClassAveragePercentage is only present when every appeared result shares
// the same maximum marks; MixedMaxMarks flags the heterogeneous case.
type ClassPerformance struct {
	CourseID               string    `json:"course_id"`
	Semester               int       `json:"semester"`
	AcademicYear           string    `json:"academic_year"`
	ExamType               *ExamType `json:"exam_type,omitempty"`
	TotalStudents          int       `json:"total_students"`
	Appeared               int       `json:"appeared"`
	Absent                 int       `json:"absent"`
	Malpractice            int       `json:"malpractice"`
	Passed                 int       `json:"passed"`
	Failed                 int       `json:"failed"`
	PassPercentage         float64   `json:"pass_percentage"`
	HighestMarks           *float64  `json:"highest_marks,omitempty"`
	LowestMarks            *float64  `json:"lowest_marks,omitempty"`
	AverageMarks           *float64  `json:"average_marks,omitempty"`
	ClassAveragePercentage *float64  `json:"class_average_percentage,omitempty"`
	MixedMaxMarks          bool      `json:"mixed_max_marks"`
}

// Marksheet is a student's grade card for one semester.
type Marksheet struct {
	StudentID    string             `json:"student_id"`
	StudentName  string             `json:"student_name"`
	CourseName   string             `json:"course_name"`
	Semester     int                `json:"semester"`
	AcademicYear string             `json:"academic_year"`
	Rows         []ExamResultDetail `json:"rows"`
	SGPA         float64            `json:"sgpa"`
	AllPassed    bool               `json:"all_passed"`
}

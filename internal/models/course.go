package models

import "time"

// ProgramLevel classifies the academic level of a course.
type ProgramLevel string

const (
	ProgramLevelUndergraduate ProgramLevel = "undergraduate"
	ProgramLevelPostgraduate  ProgramLevel = "postgraduate"
	ProgramLevelDiploma       ProgramLevel = "diploma"
)

// Valid reports whether the level is one of the known programme levels.
func (l ProgramLevel) Valid() bool {
	switch l {
	case ProgramLevelUndergraduate, ProgramLevelPostgraduate, ProgramLevelDiploma:
		return true
	}
	return false
}

// Course represents an academic programme offered by the institution.
// CourseCode feeds roll number generation and must stay short and unique.
type Course struct {
	ID                    string       `db:"id" json:"id"`
	CourseCode            string       `db:"course_code" json:"course_code"`
	CourseName            string       `db:"course_name" json:"course_name"`
	DegreeName            string       `db:"degree_name" json:"degree_name"`
	ProgramLevel          ProgramLevel `db:"program_level" json:"program_level"`
	DurationYears         int          `db:"duration_years" json:"duration_years"`
	FeesPerSemester       float64      `db:"fees_per_semester" json:"fees_per_semester"`
	TotalSeats            int          `db:"total_seats" json:"total_seats"`
	AcceptingApplications bool         `db:"accepting_applications" json:"accepting_applications"`
	Active                bool         `db:"active" json:"active"`
	CreatedAt             time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseDetail annotates a course with its current seat occupancy.
type CourseDetail struct {
	Course
	EnrolledStudents int `db:"enrolled_students" json:"enrolled_students"`
	AvailableSeats   int `db:"available_seats" json:"available_seats"`
}

// CourseFilter captures query parameters for listing courses.
type CourseFilter struct {
	ProgramLevel *ProgramLevel
	Accepting    *bool
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

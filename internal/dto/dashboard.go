package dto

import "github.com/noah-isme/campus-erp-api/internal/models"

// AdminDashboardResponse is the institution-wide operations snapshot.
type AdminDashboardResponse struct {
	Admissions     *models.AdmissionStatistics `json:"admissions"`
	Fees           *models.FeeStatistics       `json:"fees"`
	Library        *models.LibraryStatistics   `json:"library"`
	Hostels        []models.HostelOccupancy    `json:"hostels"`
	PendingResults int                         `json:"pending_results"`
	ActiveStudents int                         `json:"active_students"`
	ActiveCourses  int                         `json:"active_courses"`
}

// StaffDashboardResponse is the working queue snapshot for staff and
// faculty principals.
type StaffDashboardResponse struct {
	AdmissionQueue  map[models.ApplicationStatus]int `json:"admission_queue"`
	PendingResults  int                              `json:"pending_results"`
	TodayCollection float64                          `json:"today_collection"`
}

// StudentDashboardResponse is a student's personal snapshot.
type StudentDashboardResponse struct {
	Student      *models.StudentDetail     `json:"student"`
	CGPA         *models.CumulativeGPA     `json:"cgpa,omitempty"`
	CurrentSGPA  *models.SemesterGPA       `json:"current_sgpa,omitempty"`
	Fees         *models.StudentFeeSummary `json:"fees"`
	ActiveIssues []models.BookIssueDetail  `json:"active_issues"`
	Application  *models.ApplicationDetail `json:"application,omitempty"`
}

// EnrollmentChartResponse buckets applications by month for one academic
// year.
type EnrollmentChartResponse struct {
	AcademicYear string                `json:"academic_year"`
	Months       []models.MonthlyCount `json:"months"`
}

// FeeCollectionChartResponse buckets settled amounts by month for one
// academic year.
type FeeCollectionChartResponse struct {
	AcademicYear string                 `json:"academic_year"`
	Months       []models.MonthlyAmount `json:"months"`
}

package models

import "time"

// Book represents a catalogue entry. BookID follows LB<serial>.
type Book struct {
	BookID          string    `db:"book_id" json:"book_id"`
	Title           string    `db:"title" json:"title"`
	Author          string    `db:"author" json:"author"`
	ISBN            *string   `db:"isbn" json:"isbn,omitempty"`
	Category        string    `db:"category" json:"category"`
	Publisher       *string   `db:"publisher" json:"publisher,omitempty"`
	TotalCopies     int       `db:"total_copies" json:"total_copies"`
	AvailableCopies int       `db:"available_copies" json:"available_copies"`
	ShelfLocation   *string   `db:"shelf_location" json:"shelf_location,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// BookFilter captures search parameters for the catalogue.
type BookFilter struct {
	Search    string
	Category  string
	Available *bool
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// IssueStatus enumerates circulation states of a book issue.
type IssueStatus string

const (
	IssueStatusIssued   IssueStatus = "issued"
	IssueStatusReturned IssueStatus = "returned"
)

// Valid reports whether the status is a known circulation state.
func (s IssueStatus) Valid() bool {
	return s == IssueStatusIssued || s == IssueStatusReturned
}

// BookIssue represents one circulation record of a book copy.
type BookIssue struct {
	ID         string      `db:"id" json:"id"`
	BookID     string      `db:"book_id" json:"book_id"`
	StudentID  string      `db:"student_id" json:"student_id"`
	IssuedAt   time.Time   `db:"issued_at" json:"issued_at"`
	DueDate    time.Time   `db:"due_date" json:"due_date"`
	RenewCount int         `db:"renew_count" json:"renew_count"`
	ReturnedAt *time.Time  `db:"returned_at" json:"returned_at,omitempty"`
	LateFee    float64     `db:"late_fee" json:"late_fee"`
	Status     IssueStatus `db:"status" json:"status"`
	IssuedBy   string      `db:"issued_by" json:"issued_by"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// BookIssueDetail joins an issue with book and student context.
type BookIssueDetail struct {
	BookIssue
	BookTitle   string `db:"book_title" json:"book_title"`
	BookAuthor  string `db:"book_author" json:"book_author"`
	StudentName string `db:"student_name" json:"student_name"`
}

// BookIssueFilter captures query parameters for listing issues.
type BookIssueFilter struct {
	BookID    string
	StudentID string
	Status    *IssueStatus
	Overdue   *bool
	Page      int
	PageSize  int
}

// LibraryStatistics aggregates circulation metrics.
type LibraryStatistics struct {
	TotalBooks        int            `json:"total_books"`
	TotalCopies       int            `json:"total_copies"`
	IssuedCopies      int            `json:"issued_copies"`
	OverdueIssues     int            `json:"overdue_issues"`
	PopularCategories map[string]int `json:"popular_categories"`
}

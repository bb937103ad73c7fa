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
)

// Circulation policy: two-week loans, two renewals, a small daily fine
// past the due date.
const (
	loanDays       = 14
	maxRenewals    = 2
	finePerDay     = 5.0
	fineDueDays    = 7
	bookIDFormat   = "LB%04d"
	renewExtension = loanDays * 24 * time.Hour
)

type libraryRepository interface {
	ListBooks(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error)
	FindBookByID(ctx context.Context, bookID string) (*models.Book, error)
	CountBooks(ctx context.Context) (int, error)
	CreateBook(ctx context.Context, book *models.Book) error
	UpdateBook(ctx context.Context, book *models.Book) error
	AdjustAvailability(ctx context.Context, bookID string, delta int) error
	CreateIssue(ctx context.Context, issue *models.BookIssue) error
	FindIssueByID(ctx context.Context, id string) (*models.BookIssueDetail, error)
	ActiveIssue(ctx context.Context, bookID, studentID string) (*models.BookIssue, error)
	UpdateIssue(ctx context.Context, issue *models.BookIssue) error
	ListIssues(ctx context.Context, filter models.BookIssueFilter) ([]models.BookIssueDetail, int, error)
	Statistics(ctx context.Context) (*models.LibraryStatistics, error)
}

type libraryStudentReader interface {
	FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error)
}

// libraryFeeCreator raises fine demands produced by late returns.
type libraryFeeCreator interface {
	Create(ctx context.Context, fee *models.Fee) error
}

// CreateBookRequest captures fields for adding a catalogue entry.
type CreateBookRequest struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	ISBN          *string `json:"isbn"`
	Category      string  `json:"category" validate:"required"`
	Publisher     *string `json:"publisher"`
	TotalCopies   int     `json:"total_copies" validate:"required,gte=1"`
	ShelfLocation *string `json:"shelf_location"`
}

// UpdateBookRequest modifies a catalogue entry.
type UpdateBookRequest struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	ISBN          *string `json:"isbn"`
	Category      string  `json:"category" validate:"required"`
	Publisher     *string `json:"publisher"`
	TotalCopies   int     `json:"total_copies" validate:"required,gte=1"`
	ShelfLocation *string `json:"shelf_location"`
	Active        bool    `json:"active"`
}

// IssueBookRequest lends a copy to a student.
type IssueBookRequest struct {
	BookID    string `json:"book_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

// ReturnResult reports the outcome of a return, including any fine.
type ReturnResult struct {
	Issue   *models.BookIssue `json:"issue"`
	LateFee float64           `json:"late_fee"`
}

// LibraryService owns the catalogue and the circulation lifecycle.
type LibraryService struct {
	repo      libraryRepository
	students  libraryStudentReader
	fees      libraryFeeCreator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLibraryService constructs a LibraryService. The fee creator may be
// nil when fines should not raise fee demands.
func NewLibraryService(repo libraryRepository, students libraryStudentReader, fees libraryFeeCreator, validate *validator.Validate, logger *zap.Logger) *LibraryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibraryService{repo: repo, students: students, fees: fees, validator: validate, logger: logger}
}

// ListBooks searches the catalogue.
func (s *LibraryService) ListBooks(ctx context.Context, filter models.BookFilter) ([]models.Book, *models.Pagination, error) {
	books, total, err := s.repo.ListBooks(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list books")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return books, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetBook returns one catalogue entry.
func (s *LibraryService) GetBook(ctx context.Context, bookID string) (*models.Book, error) {
	book, err := s.repo.FindBookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book")
	}
	return book, nil
}

// AddBook registers a catalogue entry, allocating the next book
// identifier.
func (s *LibraryService) AddBook(ctx context.Context, req CreateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid book payload")
	}

	count, err := s.repo.CountBooks(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate book id")
	}

	book := &models.Book{
		BookID:          fmt.Sprintf(bookIDFormat, count+1),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Category:        req.Category,
		Publisher:       req.Publisher,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
		ShelfLocation:   req.ShelfLocation,
		Active:          true,
	}

	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create book")
	}

	s.logger.Info("book added", zap.String("book_id", book.BookID), zap.String("title", book.Title))
	return book, nil
}

// UpdateBook modifies a catalogue entry. Copies on loan bound how far
// the total can shrink.
func (s *LibraryService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid book payload")
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	issued := book.TotalCopies - book.AvailableCopies
	if req.TotalCopies < issued {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("total copies cannot be below copies on loan (%d)", issued))
	}

	book.Title = req.Title
	book.Author = req.Author
	book.ISBN = req.ISBN
	book.Category = req.Category
	book.Publisher = req.Publisher
	book.TotalCopies = req.TotalCopies
	book.AvailableCopies = req.TotalCopies - issued
	book.ShelfLocation = req.ShelfLocation
	book.Active = req.Active

	if err := s.repo.UpdateBook(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update book")
	}
	return book, nil
}

// Issue lends a copy to a student for the standard loan period.
func (s *LibraryService) Issue(ctx context.Context, staffID string, req IssueBookRequest) (*models.BookIssue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}

	student, err := s.students.FindByRollNo(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not active")
	}

	book, err := s.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if !book.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "book is not in circulation")
	}

	if _, err := s.repo.ActiveIssue(ctx, req.BookID, req.StudentID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already holds a copy of this book")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active issues")
	}

	// The conditional decrement is the availability guard; losing the
	// race surfaces as no rows updated.
	if err := s.repo.AdjustAvailability(ctx, req.BookID, -1); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no copies available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve a copy")
	}

	now := time.Now().UTC()
	issue := &models.BookIssue{
		BookID:    req.BookID,
		StudentID: req.StudentID,
		IssuedAt:  now,
		DueDate:   now.Add(loanDays * 24 * time.Hour),
		Status:    models.IssueStatusIssued,
		IssuedBy:  staffID,
	}

	if err := s.repo.CreateIssue(ctx, issue); err != nil {
		if restoreErr := s.repo.AdjustAvailability(ctx, req.BookID, 1); restoreErr != nil {
			s.logger.Warn("failed to restore availability after issue failure",
				zap.String("book_id", req.BookID), zap.Error(restoreErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create issue")
	}

	s.logger.Info("book issued",
		zap.String("book_id", req.BookID),
		zap.String("student_id", req.StudentID),
		zap.Time("due_date", issue.DueDate))

	return issue, nil
}

// Renew extends an issue by the standard loan period. Overdue issues and
// issues at the renewal limit cannot be renewed.
func (s *LibraryService) Renew(ctx context.Context, issueID string) (*models.BookIssue, error) {
	detail, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	issue := detail.BookIssue

	if issue.Status != models.IssueStatusIssued {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "book is already returned")
	}
	if time.Now().UTC().After(issue.DueDate) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot renew an overdue issue")
	}
	if issue.RenewCount >= maxRenewals {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "renewal limit reached")
	}

	issue.DueDate = issue.DueDate.Add(renewExtension)
	issue.RenewCount++

	if err := s.repo.UpdateIssue(ctx, &issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to renew issue")
	}
	return &issue, nil
}

// Return closes an issue, restores availability and raises a fee demand
// for any accrued fine.
func (s *LibraryService) Return(ctx context.Context, issueID string) (*ReturnResult, error) {
	detail, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	issue := detail.BookIssue

	if issue.Status != models.IssueStatusIssued {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "book is already returned")
	}

	now := time.Now().UTC()
	issue.ReturnedAt = &now
	issue.LateFee = returnFine(issue.DueDate, now)
	issue.Status = models.IssueStatusReturned

	if err := s.repo.UpdateIssue(ctx, &issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close issue")
	}

	if err := s.repo.AdjustAvailability(ctx, issue.BookID, 1); err != nil {
		s.logger.Warn("failed to restore availability on return",
			zap.String("book_id", issue.BookID), zap.Error(err))
	}

	if issue.LateFee > 0 {
		s.raiseFine(ctx, &issue, now)
	}

	s.logger.Info("book returned",
		zap.String("issue_id", issue.ID),
		zap.String("book_id", issue.BookID),
		zap.Float64("late_fee", issue.LateFee))

	return &ReturnResult{Issue: &issue, LateFee: issue.LateFee}, nil
}

// StudentHistory lists a student's circulation records.
func (s *LibraryService) StudentHistory(ctx context.Context, rollNo string, page, pageSize int) ([]models.BookIssueDetail, *models.Pagination, error) {
	return s.listIssues(ctx, models.BookIssueFilter{StudentID: rollNo, Page: page, PageSize: pageSize})
}

// Overdues lists active issues past their due date.
func (s *LibraryService) Overdues(ctx context.Context, page, pageSize int) ([]models.BookIssueDetail, *models.Pagination, error) {
	issued := models.IssueStatusIssued
	overdue := true
	return s.listIssues(ctx, models.BookIssueFilter{Status: &issued, Overdue: &overdue, Page: page, PageSize: pageSize})
}

// ListIssues returns circulation records with pagination.
func (s *LibraryService) ListIssues(ctx context.Context, filter models.BookIssueFilter) ([]models.BookIssueDetail, *models.Pagination, error) {
	return s.listIssues(ctx, filter)
}

// Statistics aggregates circulation metrics.
func (s *LibraryService) Statistics(ctx context.Context) (*models.LibraryStatistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load library statistics")
	}
	return stats, nil
}

func (s *LibraryService) listIssues(ctx context.Context, filter models.BookIssueFilter) ([]models.BookIssueDetail, *models.Pagination, error) {
	issues, total, err := s.repo.ListIssues(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return issues, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *LibraryService) loadIssue(ctx context.Context, id string) (*models.BookIssueDetail, error) {
	detail, err := s.repo.FindIssueByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue record")
	}
	return detail, nil
}

// raiseFine creates a library fee demand for the fine. Failure is logged
// and left for manual follow-up; the return itself stands.
func (s *LibraryService) raiseFine(ctx context.Context, issue *models.BookIssue, returnedAt time.Time) {
	if s.fees == nil {
		return
	}

	student, err := s.students.FindByRollNo(ctx, issue.StudentID)
	if err != nil {
		s.logger.Warn("failed to load student for fine demand", zap.Error(err))
		return
	}

	fee := &models.Fee{
		StudentID:    issue.StudentID,
		FeeType:      models.FeeTypeLibrary,
		Semester:     student.CurrentSemester,
		AcademicYear: academicYearFor(returnedAt),
		Amount:       issue.LateFee,
		TotalAmount:  issue.LateFee,
		DueDate:      returnedAt.Add(fineDueDays * 24 * time.Hour),
		Status:       models.FeeStatusPending,
	}
	if err := s.fees.Create(ctx, fee); err != nil {
		s.logger.Warn("failed to raise fine demand",
			zap.String("issue_id", issue.ID), zap.Error(err))
	}
}

// returnFine accrues the daily fine for each full day past the due date.
func returnFine(dueDate, returnedAt time.Time) float64 {
	if !returnedAt.After(dueDate) {
		return 0
	}
	days := int(returnedAt.Sub(dueDate).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return float64(days) * finePerDay
}

// academicYearFor maps a date onto the July-to-June academic year label,
// e.g. 2025-26.
func academicYearFor(t time.Time) string {
	year := t.Year()
	if t.Month() < time.July {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

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
)

type availabilityChange struct {
	bookID string
	delta  int
}

type mockLibraryRepo struct {
	books       map[string]*models.Book
	issues      map[string]*models.BookIssueDetail
	activeIssue *models.BookIssue
	bookCount   int
	adjustErr   error
	adjusted    []availabilityChange
	stats       *models.LibraryStatistics
}

func (m *mockLibraryRepo) ListBooks(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error) {
	out := make([]models.Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (m *mockLibraryRepo) FindBookByID(ctx context.Context, bookID string) (*models.Book, error) {
	if b, ok := m.books[bookID]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLibraryRepo) CountBooks(ctx context.Context) (int, error) {
	return m.bookCount, nil
}

func (m *mockLibraryRepo) CreateBook(ctx context.Context, book *models.Book) error {
	if m.books == nil {
		m.books = make(map[string]*models.Book)
	}
	m.books[book.BookID] = book
	return nil
}

func (m *mockLibraryRepo) UpdateBook(ctx context.Context, book *models.Book) error {
	m.books[book.BookID] = book
	return nil
}

func (m *mockLibraryRepo) AdjustAvailability(ctx context.Context, bookID string, delta int) error {
	if m.adjustErr != nil && delta < 0 {
		return m.adjustErr
	}
	m.adjusted = append(m.adjusted, availabilityChange{bookID: bookID, delta: delta})
	if b, ok := m.books[bookID]; ok {
		b.AvailableCopies += delta
	}
	return nil
}

func (m *mockLibraryRepo) CreateIssue(ctx context.Context, issue *models.BookIssue) error {
	issue.ID = fmt.Sprintf("issue-%d", len(m.issues)+1)
	if m.issues == nil {
		m.issues = make(map[string]*models.BookIssueDetail)
	}
	m.issues[issue.ID] = &models.BookIssueDetail{BookIssue: *issue}
	return nil
}

func (m *mockLibraryRepo) FindIssueByID(ctx context.Context, id string) (*models.BookIssueDetail, error) {
	if i, ok := m.issues[id]; ok {
		return i, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLibraryRepo) ActiveIssue(ctx context.Context, bookID, studentID string) (*models.BookIssue, error) {
	if m.activeIssue != nil && m.activeIssue.BookID == bookID && m.activeIssue.StudentID == studentID {
		return m.activeIssue, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLibraryRepo) UpdateIssue(ctx context.Context, issue *models.BookIssue) error {
	if i, ok := m.issues[issue.ID]; ok {
		i.BookIssue = *issue
	}
	return nil
}

func (m *mockLibraryRepo) ListIssues(ctx context.Context, filter models.BookIssueFilter) ([]models.BookIssueDetail, int, error) {
	out := make([]models.BookIssueDetail, 0, len(m.issues))
	for _, i := range m.issues {
		out = append(out, *i)
	}
	return out, len(out), nil
}

func (m *mockLibraryRepo) Statistics(ctx context.Context) (*models.LibraryStatistics, error) {
	return m.stats, nil
}

type mockLibraryStudents struct {
	students map[string]*models.StudentDetail
}

func (m *mockLibraryStudents) FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error) {
	if s, ok := m.students[rollNo]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockLibraryFees struct {
	created []*models.Fee
}

func (m *mockLibraryFees) Create(ctx context.Context, fee *models.Fee) error {
	m.created = append(m.created, fee)
	return nil
}

func libraryBook(bookID string, total, available int) *models.Book {
	return &models.Book{
		BookID:          bookID,
		Title:           "The Go Programming Language",
		Author:          "Donovan & Kernighan",
		Category:        "Programming",
		TotalCopies:     total,
		AvailableCopies: available,
		Active:          true,
	}
}

func openIssue(id, bookID, rollNo string, dueDate time.Time, renewCount int) *models.BookIssueDetail {
	return &models.BookIssueDetail{
		BookIssue: models.BookIssue{
			ID:         id,
			BookID:     bookID,
			StudentID:  rollNo,
			IssuedAt:   dueDate.Add(-loanDays * 24 * time.Hour),
			DueDate:    dueDate,
			RenewCount: renewCount,
			Status:     models.IssueStatusIssued,
			IssuedBy:   "EMP-1",
		},
		BookTitle:   "The Go Programming Language",
		StudentName: "Asha Verma",
	}
}

func newLibraryService(repo *mockLibraryRepo, students *mockLibraryStudents, fees *mockLibraryFees) *LibraryService {
	var creator libraryFeeCreator
	if fees != nil {
		creator = fees
	}
	return NewLibraryService(repo, students, creator, validator.New(), zap.NewNop())
}

func TestLibraryServiceAddBook(t *testing.T) {
	repo := &mockLibraryRepo{bookCount: 41}
	svc := newLibraryService(repo, &mockLibraryStudents{}, nil)

	book, err := svc.AddBook(context.Background(), CreateBookRequest{
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		Category:    "Programming",
		TotalCopies: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "LB0042", book.BookID)
	assert.Equal(t, 3, book.AvailableCopies)
	assert.True(t, book.Active)
}

func TestLibraryServiceIssue(t *testing.T) {
	repo := &mockLibraryRepo{books: map[string]*models.Book{"LB0001": libraryBook("LB0001", 3, 2)}}
	students := &mockLibraryStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newLibraryService(repo, students, nil)

	issue, err := svc.Issue(context.Background(), "EMP-1", IssueBookRequest{BookID: "LB0001", StudentID: "2025CS0001"})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusIssued, issue.Status)
	assert.Equal(t, "EMP-1", issue.IssuedBy)
	assert.WithinDuration(t, time.Now().UTC().Add(loanDays*24*time.Hour), issue.DueDate, time.Minute)
	require.Len(t, repo.adjusted, 1)
	assert.Equal(t, -1, repo.adjusted[0].delta)
}

func TestLibraryServiceIssueNoCopies(t *testing.T) {
	repo := &mockLibraryRepo{
		books:     map[string]*models.Book{"LB0001": libraryBook("LB0001", 3, 0)},
		adjustErr: sql.ErrNoRows,
	}
	students := &mockLibraryStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newLibraryService(repo, students, nil)

	_, err := svc.Issue(context.Background(), "EMP-1", IssueBookRequest{BookID: "LB0001", StudentID: "2025CS0001"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "no copies available")
}

func TestLibraryServiceIssueDuplicateHold(t *testing.T) {
	repo := &mockLibraryRepo{
		books:       map[string]*models.Book{"LB0001": libraryBook("LB0001", 3, 2)},
		activeIssue: &models.BookIssue{ID: "issue-1", BookID: "LB0001", StudentID: "2025CS0001"},
	}
	students := &mockLibraryStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newLibraryService(repo, students, nil)

	_, err := svc.Issue(context.Background(), "EMP-1", IssueBookRequest{BookID: "LB0001", StudentID: "2025CS0001"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLibraryServiceIssueInactiveStudent(t *testing.T) {
	inactive := examStudent("2025CS0001")
	inactive.Active = false
	repo := &mockLibraryRepo{books: map[string]*models.Book{"LB0001": libraryBook("LB0001", 3, 2)}}
	students := &mockLibraryStudents{students: map[string]*models.StudentDetail{"2025CS0001": inactive}}
	svc := newLibraryService(repo, students, nil)

	_, err := svc.Issue(context.Background(), "EMP-1", IssueBookRequest{BookID: "LB0001", StudentID: "2025CS0001"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestLibraryServiceRenew(t *testing.T) {
	due := time.Now().UTC().Add(3 * 24 * time.Hour)
	repo := &mockLibraryRepo{issues: map[string]*models.BookIssueDetail{"issue-1": openIssue("issue-1", "LB0001", "2025CS0001", due, 0)}}
	svc := newLibraryService(repo, &mockLibraryStudents{}, nil)

	issue, err := svc.Renew(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Equal(t, 1, issue.RenewCount)
	assert.True(t, issue.DueDate.Equal(due.Add(renewExtension)))
}

func TestLibraryServiceRenewLimitReached(t *testing.T) {
	due := time.Now().UTC().Add(3 * 24 * time.Hour)
	repo := &mockLibraryRepo{issues: map[string]*models.BookIssueDetail{"issue-1": openIssue("issue-1", "LB0001", "2025CS0001", due, maxRenewals)}}
	svc := newLibraryService(repo, &mockLibraryStudents{}, nil)

	_, err := svc.Renew(context.Background(), "issue-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "renewal limit reached")
}

func TestLibraryServiceRenewOverdue(t *testing.T) {
	due := time.Now().UTC().Add(-24 * time.Hour)
	repo := &mockLibraryRepo{issues: map[string]*models.BookIssueDetail{"issue-1": openIssue("issue-1", "LB0001", "2025CS0001", due, 0)}}
	svc := newLibraryService(repo, &mockLibraryStudents{}, nil)

	_, err := svc.Renew(context.Background(), "issue-1")
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "overdue")
}

func TestLibraryServiceReturnOnTime(t *testing.T) {
	due := time.Now().UTC().Add(24 * time.Hour)
	repo := &mockLibraryRepo{
		books:  map[string]*models.Book{"LB0001": libraryBook("LB0001", 3, 2)},
		issues: map[string]*models.BookIssueDetail{"issue-1": openIssue("issue-1", "LB0001", "2025CS0001", due, 0)},
	}
	fees := &mockLibraryFees{}
	students := &mockLibraryStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newLibraryService(repo, students, fees)

	res, err := svc.Return(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.LateFee)
	assert.Equal(t, models.IssueStatusReturned, res.Issue.Status)
	require.NotNil(t, res.Issue.ReturnedAt)
	require.Len(t, repo.adjusted, 1)
	assert.Equal(t, 1, repo.adjusted[0].delta)
	assert.Empty(t, fees.created)
}

func TestLibraryServiceReturnLate(t *testing.T) {
	due := time.Now().UTC().Add(-6 * 24 * time.Hour)
	repo := &mockLibraryRepo{
		books:  map[string]*models.Book{"LB0001": libraryBook("LB0001", 3, 2)},
		issues: map[string]*models.BookIssueDetail{"issue-1": openIssue("issue-1", "LB0001", "2025CS0001", due, 0)},
	}
	fees := &mockLibraryFees{}
	students := &mockLibraryStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newLibraryService(repo, students, fees)

	res, err := svc.Return(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.LateFee)

	require.Len(t, fees.created, 1)
	fine := fees.created[0]
	assert.Equal(t, models.FeeTypeLibrary, fine.FeeType)
	assert.Equal(t, 30.0, fine.Amount)
	assert.Equal(t, "2025CS0001", fine.StudentID)
	assert.Equal(t, models.FeeStatusPending, fine.Status)
}

func TestLibraryServiceReturnTwice(t *testing.T) {
	due := time.Now().UTC()
	returned := openIssue("issue-1", "LB0001", "2025CS0001", due, 0)
	returned.Status = models.IssueStatusReturned
	repo := &mockLibraryRepo{issues: map[string]*models.BookIssueDetail{"issue-1": returned}}
	svc := newLibraryService(repo, &mockLibraryStudents{}, nil)

	_, err := svc.Return(context.Background(), "issue-1")
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "already returned")
}

func TestLibraryServiceUpdateBookShrinkBelowLoaned(t *testing.T) {
	repo := &mockLibraryRepo{books: map[string]*models.Book{"LB0001": libraryBook("LB0001", 5, 2)}}
	svc := newLibraryService(repo, &mockLibraryStudents{}, nil)

	_, err := svc.UpdateBook(context.Background(), "LB0001", UpdateBookRequest{
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		Category:    "Programming",
		TotalCopies: 2,
		Active:      true,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestReturnFine(t *testing.T) {
	due := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, returnFine(due, due))
	assert.Equal(t, 0.0, returnFine(due, due.Add(-time.Hour)))
	assert.Equal(t, 5.0, returnFine(due, due.Add(25*time.Hour)))
	assert.Equal(t, 50.0, returnFine(due, due.Add(10*24*time.Hour)))
}

func TestAcademicYearFor(t *testing.T) {
	assert.Equal(t, "2025-26", academicYearFor(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-26", academicYearFor(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-25", academicYearFor(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)))
}

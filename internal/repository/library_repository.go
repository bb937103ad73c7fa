package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-erp-api/internal/models"
)

// LibraryRepository manages persistence for books and circulation records.
type LibraryRepository struct {
	db *sqlx.DB
}

// NewLibraryRepository constructs a LibraryRepository.
func NewLibraryRepository(db *sqlx.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

const bookColumns = `b.book_id, b.title, b.author, b.isbn, b.category, b.publisher, b.total_copies,
        b.available_copies, b.shelf_location, b.active, b.created_at, b.updated_at`

const issueColumns = `i.id, i.book_id, i.student_id, i.issued_at, i.due_date, i.renew_count,
        i.returned_at, i.late_fee, i.status, i.issued_by, i.created_at, i.updated_at`

// ListBooks searches the catalogue.
func (r *LibraryRepository) ListBooks(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(b.title) LIKE $%d OR LOWER(b.author) LIKE $%d OR b.isbn LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(b.category) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Available != nil && *filter.Available {
		conditions = append(conditions, "b.available_copies > 0")
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("b.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"title":      "b.title",
		"author":     "b.author",
		"book_id":    "b.book_id",
		"created_at": "b.created_at",
	}
	if sortBy == "" {
		sortBy = "title"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "b.title"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM books b WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		bookColumns, where, column, order, size, offset)

	var books []models.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM books b WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	return books, total, nil
}

// FindBookByID fetches a book by its catalogue ID.
func (r *LibraryRepository) FindBookByID(ctx context.Context, bookID string) (*models.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books b WHERE b.book_id = $1`, bookColumns)
	var book models.Book
	if err := r.db.GetContext(ctx, &book, query, bookID); err != nil {
		return nil, err
	}
	return &book, nil
}

// CountBooks counts catalogue entries, feeding book ID generation.
func (r *LibraryRepository) CountBooks(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM books`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}

// CreateBook inserts a catalogue entry.
func (r *LibraryRepository) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now
	const query = `INSERT INTO books (book_id, title, author, isbn, category, publisher, total_copies,
        available_copies, shelf_location, active, created_at, updated_at)
        VALUES (:book_id, :title, :author, :isbn, :category, :publisher, :total_copies,
        :available_copies, :shelf_location, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// UpdateBook modifies a catalogue entry.
func (r *LibraryRepository) UpdateBook(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now().UTC()
	const query = `UPDATE books SET title = :title, author = :author, isbn = :isbn, category = :category,
        publisher = :publisher, total_copies = :total_copies, available_copies = :available_copies,
        shelf_location = :shelf_location, active = :active, updated_at = :updated_at
        WHERE book_id = :book_id`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

// AdjustAvailability changes the available copy count by delta, guarded
// against going negative or above total copies.
func (r *LibraryRepository) AdjustAvailability(ctx context.Context, bookID string, delta int) error {
	const query = `UPDATE books SET available_copies = available_copies + $2, updated_at = $3
        WHERE book_id = $1 AND available_copies + $2 >= 0 AND available_copies + $2 <= total_copies`
	res, err := r.db.ExecContext(ctx, query, bookID, delta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adjust book availability: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust book availability result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateIssue inserts a circulation record.
func (r *LibraryRepository) CreateIssue(ctx context.Context, issue *models.BookIssue) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now
	const query = `INSERT INTO book_issues (id, book_id, student_id, issued_at, due_date, renew_count,
        returned_at, late_fee, status, issued_by, created_at, updated_at)
        VALUES (:id, :book_id, :student_id, :issued_at, :due_date, :renew_count,
        :returned_at, :late_fee, :status, :issued_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, issue); err != nil {
		return fmt.Errorf("create book issue: %w", err)
	}
	return nil
}

// FindIssueByID fetches an issue with book and student context.
func (r *LibraryRepository) FindIssueByID(ctx context.Context, id string) (*models.BookIssueDetail, error) {
	query := fmt.Sprintf(`SELECT %s, b.title AS book_title, b.author AS book_author,
        s.first_name || ' ' || s.last_name AS student_name
        FROM book_issues i
        JOIN books b ON b.book_id = i.book_id
        JOIN students s ON s.roll_no = i.student_id
        WHERE i.id = $1`, issueColumns)
	var detail models.BookIssueDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ActiveIssue finds the open issue of a book to a student, if any.
func (r *LibraryRepository) ActiveIssue(ctx context.Context, bookID, studentID string) (*models.BookIssue, error) {
	query := fmt.Sprintf(`SELECT %s FROM book_issues i
        WHERE i.book_id = $1 AND i.student_id = $2 AND i.status = $3 LIMIT 1`, issueColumns)
	var issue models.BookIssue
	if err := r.db.GetContext(ctx, &issue, query, bookID, studentID, models.IssueStatusIssued); err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue persists renewal and return fields.
func (r *LibraryRepository) UpdateIssue(ctx context.Context, issue *models.BookIssue) error {
	issue.UpdatedAt = time.Now().UTC()
	const query = `UPDATE book_issues SET due_date = :due_date, renew_count = :renew_count,
        returned_at = :returned_at, late_fee = :late_fee, status = :status, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, issue); err != nil {
		return fmt.Errorf("update book issue: %w", err)
	}
	return nil
}

// ListIssues returns circulation records matching the filters.
func (r *LibraryRepository) ListIssues(ctx context.Context, filter models.BookIssueFilter) ([]models.BookIssueDetail, int, error) {
	base := `FROM book_issues i
        JOIN books b ON b.book_id = i.book_id
        JOIN students s ON s.roll_no = i.student_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.BookID != "" {
		conditions = append(conditions, fmt.Sprintf("i.book_id = $%d", len(args)+1))
		args = append(args, filter.BookID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("i.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Overdue != nil && *filter.Overdue {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d AND i.due_date < $%d", len(args)+1, len(args)+2))
		args = append(args, models.IssueStatusIssued, time.Now().UTC())
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, b.title AS book_title, b.author AS book_author,
        s.first_name || ' ' || s.last_name AS student_name
        %s ORDER BY i.issued_at DESC LIMIT %d OFFSET %d`, issueColumns, base, size, offset)

	var issues []models.BookIssueDetail
	if err := r.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list book issues: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count book issues: %w", err)
	}
	return issues, total, nil
}

// IssuedBetween lists circulation records issued in the window, ordered
// for the circulation report export.
func (r *LibraryRepository) IssuedBetween(ctx context.Context, from, to time.Time) ([]models.BookIssueDetail, error) {
	query := fmt.Sprintf(`SELECT %s, b.title AS book_title, b.author AS book_author,
        s.first_name || ' ' || s.last_name AS student_name
        FROM book_issues i
        JOIN books b ON b.book_id = i.book_id
        JOIN students s ON s.roll_no = i.student_id
        WHERE i.issued_at >= $1 AND i.issued_at < $2
        ORDER BY i.issued_at ASC`, issueColumns)
	var issues []models.BookIssueDetail
	if err := r.db.SelectContext(ctx, &issues, query, from, to); err != nil {
		return nil, fmt.Errorf("issues between: %w", err)
	}
	return issues, nil
}

// Statistics aggregates circulation metrics.
func (r *LibraryRepository) Statistics(ctx context.Context) (*models.LibraryStatistics, error) {
	const totalsQuery = `SELECT
        (SELECT COUNT(*) FROM books WHERE active = TRUE) AS total_books,
        (SELECT COALESCE(SUM(total_copies), 0) FROM books WHERE active = TRUE) AS total_copies,
        (SELECT COUNT(*) FROM book_issues WHERE status = 'issued') AS issued_copies,
        (SELECT COUNT(*) FROM book_issues WHERE status = 'issued' AND due_date < NOW()) AS overdue_issues`
	totals := struct {
		TotalBooks    int `db:"total_books"`
		TotalCopies   int `db:"total_copies"`
		IssuedCopies  int `db:"issued_copies"`
		OverdueIssues int `db:"overdue_issues"`
	}{}
	if err := r.db.GetContext(ctx, &totals, totalsQuery); err != nil {
		return nil, fmt.Errorf("library totals: %w", err)
	}

	const categoriesQuery = `SELECT b.category AS key, COUNT(*) AS count
        FROM book_issues i JOIN books b ON b.book_id = i.book_id
        GROUP BY b.category ORDER BY count DESC LIMIT 5`
	var categoryRows []struct {
		Key   string `db:"key"`
		Count int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &categoryRows, categoriesQuery); err != nil {
		return nil, fmt.Errorf("library categories: %w", err)
	}

	stats := &models.LibraryStatistics{
		TotalBooks:        totals.TotalBooks,
		TotalCopies:       totals.TotalCopies,
		IssuedCopies:      totals.IssuedCopies,
		OverdueIssues:     totals.OverdueIssues,
		PopularCategories: make(map[string]int, len(categoryRows)),
	}
	for _, row := range categoryRows {
		stats.PopularCategories[row.Key] = row.Count
	}
	return stats, nil
}

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

// FeeRepository manages persistence for fee records.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeColumns = `f.id, f.student_id, f.fee_type, f.semester, f.academic_year, f.amount, f.late_fee,
        f.discount, f.total_amount, f.due_date, f.status, f.payment_method, f.paid_at,
        f.receipt_number, f.transaction_ref, f.collected_by, f.remarks, f.created_at, f.updated_at`

// Create inserts a single fee record.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fee.CreatedAt.IsZero() {
		fee.CreatedAt = now
	}
	fee.UpdatedAt = now
	const query = `INSERT INTO fees (id, student_id, fee_type, semester, academic_year, amount, late_fee,
        discount, total_amount, due_date, status, payment_method, paid_at,
        receipt_number, transaction_ref, collected_by, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :fee_type, :semester, :academic_year, :amount, :late_fee,
        :discount, :total_amount, :due_date, :status, :payment_method, :paid_at,
        :receipt_number, :transaction_ref, :collected_by, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// BulkCreate inserts a batch of fee demands atomically.
func (r *FeeRepository) BulkCreate(ctx context.Context, fees []models.Fee) error {
	if len(fees) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk fee insert: %w", err)
	}
	const query = `INSERT INTO fees (id, student_id, fee_type, semester, academic_year, amount, late_fee,
        discount, total_amount, due_date, status, payment_method, paid_at,
        receipt_number, transaction_ref, collected_by, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :fee_type, :semester, :academic_year, :amount, :late_fee,
        :discount, :total_amount, :due_date, :status, :payment_method, :paid_at,
        :receipt_number, :transaction_ref, :collected_by, :remarks, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range fees {
		if fees[i].ID == "" {
			fees[i].ID = uuid.NewString()
		}
		if fees[i].CreatedAt.IsZero() {
			fees[i].CreatedAt = now
		}
		fees[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, fees[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk insert fee for %s: %w", fees[i].StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk fee insert: %w", err)
	}
	return nil
}

// FindByID fetches a fee with student context.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.FeeDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name, c.course_code
        FROM fees f
        JOIN students s ON s.roll_no = f.student_id
        JOIN courses c ON c.id = s.course_id
        WHERE f.id = $1`, feeColumns)
	var detail models.FeeDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Update persists payment and adjustment fields.
func (r *FeeRepository) Update(ctx context.Context, fee *models.Fee) error {
	fee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fees SET amount = :amount, late_fee = :late_fee, discount = :discount,
        total_amount = :total_amount, due_date = :due_date, status = :status, payment_method = :payment_method,
        paid_at = :paid_at, receipt_number = :receipt_number, transaction_ref = :transaction_ref,
        collected_by = :collected_by, remarks = :remarks, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("update fee: %w", err)
	}
	return nil
}

// List returns fees matching the provided filters.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error) {
	base := `FROM fees f
        JOIN students s ON s.roll_no = f.student_id
        JOIN courses c ON c.id = s.course_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("f.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.FeeType != nil {
		conditions = append(conditions, fmt.Sprintf("f.fee_type = $%d", len(args)+1))
		args = append(args, *filter.FeeType)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("f.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Semester != nil {
		conditions = append(conditions, fmt.Sprintf("f.semester = $%d", len(args)+1))
		args = append(args, *filter.Semester)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("f.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"due_date":   "f.due_date",
		"paid_at":    "f.paid_at",
		"created_at": "f.created_at",
	}
	if sortBy == "" {
		sortBy = "due_date"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "f.due_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name, c.course_code
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, feeColumns, base, column, order, size, offset)

	var fees []models.FeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fees: %w", err)
	}
	return fees, total, nil
}

// ExistsDemand reports whether a demand already exists for the student,
// type, semester and year, regardless of status except cancelled.
func (r *FeeRepository) ExistsDemand(ctx context.Context, studentID string, feeType models.FeeType, semester int, academicYear string) (bool, error) {
	const query = `SELECT 1 FROM fees WHERE student_id = $1 AND fee_type = $2 AND semester = $3
        AND academic_year = $4 AND status <> $5 LIMIT 1`
	var exists int
	err := r.db.GetContext(ctx, &exists, query, studentID, feeType, semester, academicYear, models.FeeStatusCancelled)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check fee demand: %w", err)
	}
	return true, nil
}

// CountPaidInMonth counts receipts issued in the given month. Feeds
// receipt number serial generation.
func (r *FeeRepository) CountPaidInMonth(ctx context.Context, year int, month time.Month) (int, error) {
	const query = `SELECT COUNT(*) FROM fees WHERE receipt_number IS NOT NULL
        AND EXTRACT(YEAR FROM paid_at) = $1 AND EXTRACT(MONTH FROM paid_at) = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, year, int(month)); err != nil {
		return 0, fmt.Errorf("count receipts in month: %w", err)
	}
	return count, nil
}

// MonthlyCollections buckets settled amounts by payment month within the
// window, feeding the collection chart.
func (r *FeeRepository) MonthlyCollections(ctx context.Context, from, to time.Time) ([]models.MonthlyAmount, error) {
	const query = `SELECT to_char(date_trunc('month', paid_at), 'YYYY-MM') AS month,
        COALESCE(SUM(total_amount), 0) AS amount
        FROM fees
        WHERE status = $1 AND paid_at >= $2 AND paid_at < $3
        GROUP BY 1 ORDER BY 1`
	var rows []models.MonthlyAmount
	if err := r.db.SelectContext(ctx, &rows, query, models.FeeStatusPaid, from, to); err != nil {
		return nil, fmt.Errorf("monthly collections: %w", err)
	}
	return rows, nil
}

// CollectedOn sums settled amounts for one calendar day.
func (r *FeeRepository) CollectedOn(ctx context.Context, day time.Time) (float64, error) {
	const query = `SELECT COALESCE(SUM(total_amount), 0) FROM fees
        WHERE status = $1 AND paid_at >= $2 AND paid_at < $3`
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	var total float64
	if err := r.db.GetContext(ctx, &total, query, models.FeeStatusPaid, start, start.Add(24*time.Hour)); err != nil {
		return 0, fmt.Errorf("collected on day: %w", err)
	}
	return total, nil
}

// PaidBetween lists settled fees in the window with student context,
// ordered for collection report exports.
func (r *FeeRepository) PaidBetween(ctx context.Context, from, to time.Time) ([]models.FeeDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name, c.course_code
        FROM fees f
        JOIN students s ON s.roll_no = f.student_id
        JOIN courses c ON c.id = s.course_id
        WHERE f.status = $1 AND f.paid_at >= $2 AND f.paid_at < $3
        ORDER BY f.paid_at ASC`, feeColumns)
	var fees []models.FeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, models.FeeStatusPaid, from, to); err != nil {
		return nil, fmt.Errorf("paid fees between: %w", err)
	}
	return fees, nil
}

// PendingPastDue lists pending fees whose due date has passed, the working
// set for the overdue sweep.
func (r *FeeRepository) PendingPastDue(ctx context.Context, asOf time.Time) ([]models.Fee, error) {
	query := fmt.Sprintf(`SELECT %s FROM fees f WHERE f.status = $1 AND f.due_date < $2 ORDER BY f.due_date ASC`, feeColumns)
	var fees []models.Fee
	if err := r.db.SelectContext(ctx, &fees, query, models.FeeStatusPending, asOf); err != nil {
		return nil, fmt.Errorf("pending past due fees: %w", err)
	}
	return fees, nil
}

// StudentSummary totals a student's paid and outstanding fees.
func (r *FeeRepository) StudentSummary(ctx context.Context, rollNo string) (*models.StudentFeeSummary, error) {
	const query = `SELECT
        COALESCE(SUM(total_amount) FILTER (WHERE status = 'paid'), 0) AS total_paid,
        COALESCE(SUM(total_amount) FILTER (WHERE status IN ('pending', 'overdue')), 0) AS total_pending,
        COUNT(*) FILTER (WHERE status = 'pending') AS pending_count,
        COUNT(*) FILTER (WHERE status = 'overdue') AS overdue_count
        FROM fees WHERE student_id = $1`
	row := struct {
		TotalPaid    float64 `db:"total_paid"`
		TotalPending float64 `db:"total_pending"`
		PendingCount int     `db:"pending_count"`
		OverdueCount int     `db:"overdue_count"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, rollNo); err != nil {
		return nil, fmt.Errorf("student fee summary: %w", err)
	}
	return &models.StudentFeeSummary{
		StudentID:    rollNo,
		TotalPaid:    row.TotalPaid,
		TotalPending: row.TotalPending,
		PendingCount: row.PendingCount,
		OverdueCount: row.OverdueCount,
	}, nil
}

// typeAmountRow scans grouped sums keyed by a text column.
type typeAmountRow struct {
	Key    string  `db:"key"`
	Amount float64 `db:"amount"`
}

// Statistics aggregates collections, optionally scoped to an academic year.
func (r *FeeRepository) Statistics(ctx context.Context, academicYear string) (*models.FeeStatistics, error) {
	conditions := "1=1"
	args := []interface{}{}
	if academicYear != "" {
		conditions = "academic_year = $1"
		args = append(args, academicYear)
	}

	totalsQuery := fmt.Sprintf(`SELECT
        COALESCE(SUM(total_amount) FILTER (WHERE status = 'paid'), 0) AS total_collected,
        COALESCE(SUM(total_amount) FILTER (WHERE status IN ('pending', 'overdue')), 0) AS total_pending,
        COUNT(*) FILTER (WHERE status = 'overdue') AS overdue_count
        FROM fees WHERE %s`, conditions)
	totals := struct {
		TotalCollected float64 `db:"total_collected"`
		TotalPending   float64 `db:"total_pending"`
		OverdueCount   int     `db:"overdue_count"`
	}{}
	if err := r.db.GetContext(ctx, &totals, totalsQuery, args...); err != nil {
		return nil, fmt.Errorf("fee totals: %w", err)
	}

	byTypeQuery := fmt.Sprintf(`SELECT fee_type AS key, COALESCE(SUM(total_amount), 0) AS amount
        FROM fees WHERE status = 'paid' AND %s GROUP BY fee_type`, conditions)
	var typeRows []typeAmountRow
	if err := r.db.SelectContext(ctx, &typeRows, byTypeQuery, args...); err != nil {
		return nil, fmt.Errorf("fee totals by type: %w", err)
	}

	byMethodQuery := fmt.Sprintf(`SELECT payment_method AS key, COALESCE(SUM(total_amount), 0) AS amount
        FROM fees WHERE status = 'paid' AND payment_method IS NOT NULL AND %s GROUP BY payment_method`, conditions)
	var methodRows []typeAmountRow
	if err := r.db.SelectContext(ctx, &methodRows, byMethodQuery, args...); err != nil {
		return nil, fmt.Errorf("fee totals by method: %w", err)
	}

	stats := &models.FeeStatistics{
		AcademicYear:   academicYear,
		TotalCollected: totals.TotalCollected,
		TotalPending:   totals.TotalPending,
		OverdueCount:   totals.OverdueCount,
		ByType:         make(map[models.FeeType]float64, len(typeRows)),
		ByMethod:       make(map[models.PaymentMethod]float64, len(methodRows)),
	}
	for _, row := range typeRows {
		stats.ByType[models.FeeType(row.Key)] = row.Amount
	}
	for _, row := range methodRows {
		stats.ByMethod[models.PaymentMethod(row.Key)] = row.Amount
	}
	if demanded := totals.TotalCollected + totals.TotalPending; demanded > 0 {
		stats.CollectionRate = totals.TotalCollected / demanded * 100
	}
	return stats, nil
}

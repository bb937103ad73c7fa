package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-erp-api/internal/models"
)

func newAdmissionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func applicationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"application_id", "first_name", "last_name", "date_of_birth", "gender", "email", "phone",
		"address_line", "city", "state", "pincode", "guardian_name", "guardian_phone", "guardian_relation",
		"course_id", "tenth_percentage", "twelfth_percentage", "entrance_exam_score",
		"documents", "documents_required", "documents_verified", "password_hash",
		"status", "processed_by", "student_id", "remarks", "rejection_reason", "processed_on",
		"applied_at", "created_at", "updated_at", "course_name", "course_code",
	})
}

func TestAdmissionRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newAdmissionMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	rows := applicationRows().AddRow(
		"ADM2025000123", "Asha", "Nair", time.Date(2006, 5, 12, 0, 0, 0, 0, time.UTC), "female", "asha@example.com", "9876543210",
		"12 MG Road", "Kochi", "Kerala", "682001", "Ravi Nair", "9876500000", "father",
		"course-1", 88.4, 79.2, nil,
		`["10th Mark Sheet"]`, `["10th Mark Sheet","12th Mark Sheet"]`, `{}`, "hash",
		"submitted", nil, nil, nil, nil, nil,
		time.Now(), time.Now(), time.Now(), "Computer Science", "CS",
	)
	status := models.ApplicationStatusSubmitted
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.application_id, a.first_name, a.last_name")).
		WithArgs(status).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admission_applications a")).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	applications, total, err := repo.List(context.Background(), models.ApplicationFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, applications, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "ADM2025000123", applications[0].ApplicationID)
	assert.Equal(t, models.ApplicationStatusSubmitted, applications[0].Status)
	assert.Equal(t, models.DocumentList{"10th Mark Sheet"}, applications[0].Documents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAdmissionMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectExec("INSERT INTO admission_applications").
		WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.AdmissionApplication{
		ApplicationID:   "ADM2025000123",
		FirstName:       "Asha",
		LastName:        "Nair",
		DateOfBirth:     time.Date(2006, 5, 12, 0, 0, 0, 0, time.UTC),
		Gender:          models.GenderFemale,
		Email:           "asha@example.com",
		Phone:           "9876543210",
		CourseID:        "course-1",
		TenthPercentage: 88.4,
		Status:          models.ApplicationStatusSubmitted,
	}
	err := repo.Create(context.Background(), app)
	require.NoError(t, err)
	assert.False(t, app.AppliedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryCountByYear(t *testing.T) {
	db, mock, cleanup := newAdmissionMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admission_applications WHERE EXTRACT(YEAR FROM applied_at) = $1")).
		WithArgs(2025).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(122))

	count, err := repo.CountByYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, 122, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newAdmissionMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("submitted", 12).
		AddRow("approved", 7).
		AddRow("declined", 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM admission_applications GROUP BY status")).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, counts[models.ApplicationStatusSubmitted])
	assert.Equal(t, 7, counts[models.ApplicationStatusApproved])
	assert.Equal(t, 3, counts[models.ApplicationStatusDeclined])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryExistsPendingByEmail(t *testing.T) {
	db, mock, cleanup := newAdmissionMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM admission_applications")).
		WithArgs("asha@example.com", models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview, models.ApplicationStatusDocumentsPending).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsPendingByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM admission_applications")).
		WithArgs("other@example.com", models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview, models.ApplicationStatusDocumentsPending).
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsPendingByEmail(context.Background(), "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type mockCourseRepo struct {
	courses   map[string]*models.CourseDetail
	codes     map[string]bool
	created   []models.Course
	updated   []models.Course
	listTotal int
}

func (m *mockCourseRepo) List(_ context.Context, _ models.CourseFilter) ([]models.CourseDetail, int, error) {
	details := make([]models.CourseDetail, 0, len(m.courses))
	for _, c := range m.courses {
		details = append(details, *c)
	}
	return details, m.listTotal, nil
}

func (m *mockCourseRepo) FindByID(_ context.Context, id string) (*models.CourseDetail, error) {
	if c, ok := m.courses[id]; ok {
		detail := *c
		return &detail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) FindByCode(_ context.Context, code string) (*models.CourseDetail, error) {
	for _, c := range m.courses {
		if c.CourseCode == code {
			detail := *c
			return &detail, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsByCode(_ context.Context, code string, _ string) (bool, error) {
	return m.codes[code], nil
}

func (m *mockCourseRepo) Create(_ context.Context, course *models.Course) error {
	course.ID = "course-new"
	m.created = append(m.created, *course)
	return nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *models.Course) error {
	m.updated = append(m.updated, *course)
	return nil
}

func (m *mockCourseRepo) CountActive(_ context.Context) (int, error) {
	return len(m.courses), nil
}

func mechanicalCourse() *models.CourseDetail {
	return &models.CourseDetail{
		Course: models.Course{
			ID:                    "course-2",
			CourseCode:            "ME",
			CourseName:            "Mechanical Engineering",
			DegreeName:            "B.Tech",
			ProgramLevel:          models.ProgramLevelUndergraduate,
			DurationYears:         4,
			FeesPerSemester:       42000,
			TotalSeats:            60,
			AcceptingApplications: true,
			Active:                true,
		},
		EnrolledStudents: 48,
		AvailableSeats:   12,
	}
}

func newCourseService(repo *mockCourseRepo) *CourseService {
	return NewCourseService(repo, validator.New(), zap.NewNop())
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := newCourseService(repo)

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		CourseCode:            "ece",
		CourseName:            "Electronics and Communication",
		DegreeName:            "B.Tech",
		ProgramLevel:          models.ProgramLevelUndergraduate,
		DurationYears:         4,
		FeesPerSemester:       40000,
		TotalSeats:            60,
		AcceptingApplications: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ECE", course.CourseCode)
	assert.True(t, course.Active)
	require.Len(t, repo.created, 1)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockCourseRepo{codes: map[string]bool{"ME": true}}
	svc := newCourseService(repo)

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		CourseCode:    "me",
		CourseName:    "Mechanical Engineering",
		DegreeName:    "B.Tech",
		ProgramLevel:  models.ProgramLevelUndergraduate,
		DurationYears: 4,
		TotalSeats:    60,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestCourseServiceCreateRejectsBadPayload(t *testing.T) {
	svc := newCourseService(&mockCourseRepo{})

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		CourseCode: "toolongcode",
		CourseName: "Broken",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateSeatsBelowEnrolment(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]*models.CourseDetail{"course-2": mechanicalCourse()}}
	svc := newCourseService(repo)

	_, err := svc.Update(context.Background(), "course-2", UpdateCourseRequest{
		CourseName:    "Mechanical Engineering",
		DegreeName:    "B.Tech",
		ProgramLevel:  models.ProgramLevelUndergraduate,
		DurationYears: 4,
		TotalSeats:    40,
		Active:        true,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "current enrolment (48)")
	assert.Empty(t, repo.updated)
}

func TestCourseServiceUpdate(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]*models.CourseDetail{"course-2": mechanicalCourse()}}
	svc := newCourseService(repo)

	course, err := svc.Update(context.Background(), "course-2", UpdateCourseRequest{
		CourseName:            "Mechanical Engineering",
		DegreeName:            "B.Tech",
		ProgramLevel:          models.ProgramLevelUndergraduate,
		DurationYears:         4,
		FeesPerSemester:       45000,
		TotalSeats:            72,
		AcceptingApplications: false,
		Active:                true,
	})
	require.NoError(t, err)
	assert.Equal(t, 72, course.TotalSeats)
	assert.Equal(t, 45000.0, course.FeesPerSemester)
	assert.False(t, course.AcceptingApplications)
	require.Len(t, repo.updated, 1)
}

func TestCourseServiceSetAccepting(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]*models.CourseDetail{"course-2": mechanicalCourse()}}
	svc := newCourseService(repo)

	course, err := svc.SetAccepting(context.Background(), "course-2", false)
	require.NoError(t, err)
	assert.False(t, course.AcceptingApplications)
	require.Len(t, repo.updated, 1)
}

func TestCourseServiceGetNotFound(t *testing.T) {
	svc := newCourseService(&mockCourseRepo{})

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceGetByCodeNormalises(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]*models.CourseDetail{"course-2": mechanicalCourse()}}
	svc := newCourseService(repo)

	course, err := svc.GetByCode(context.Background(), " me ")
	require.NoError(t, err)
	assert.Equal(t, "ME", course.CourseCode)
}

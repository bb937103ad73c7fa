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

type occupancyChange struct {
	hostelID string
	delta    int
}

type mockHostelRepo struct {
	hostels   map[string]*models.Hostel
	adjustErr error
	adjusted  []occupancyChange
	occupancy []models.HostelOccupancy
}

func (m *mockHostelRepo) List(ctx context.Context, hostelType *models.HostelType, activeOnly bool) ([]models.Hostel, error) {
	out := make([]models.Hostel, 0, len(m.hostels))
	for _, h := range m.hostels {
		out = append(out, *h)
	}
	return out, nil
}

func (m *mockHostelRepo) FindByID(ctx context.Context, id string) (*models.Hostel, error) {
	if h, ok := m.hostels[id]; ok {
		return h, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHostelRepo) Create(ctx context.Context, hostel *models.Hostel) error {
	hostel.ID = "hostel-1"
	if m.hostels == nil {
		m.hostels = make(map[string]*models.Hostel)
	}
	m.hostels[hostel.ID] = hostel
	return nil
}

func (m *mockHostelRepo) Update(ctx context.Context, hostel *models.Hostel) error {
	m.hostels[hostel.ID] = hostel
	return nil
}

func (m *mockHostelRepo) AdjustOccupancy(ctx context.Context, id string, delta int) error {
	if m.adjustErr != nil && delta > 0 {
		return m.adjustErr
	}
	m.adjusted = append(m.adjusted, occupancyChange{hostelID: id, delta: delta})
	if h, ok := m.hostels[id]; ok {
		h.OccupiedBeds += delta
	}
	return nil
}

func (m *mockHostelRepo) Occupancy(ctx context.Context) ([]models.HostelOccupancy, error) {
	return m.occupancy, nil
}

type mockHostelStudents struct {
	students   map[string]*models.StudentDetail
	setHostel  []string
	setHostelE error
}

func (m *mockHostelStudents) FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error) {
	if s, ok := m.students[rollNo]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHostelStudents) SetHostel(ctx context.Context, rollNo string, hostelID, room *string) error {
	if m.setHostelE != nil {
		return m.setHostelE
	}
	m.setHostel = append(m.setHostel, rollNo)
	if s, ok := m.students[rollNo]; ok {
		s.HostelID = hostelID
		s.HostelRoom = room
	}
	return nil
}

func girlsHostel(id string, totalRooms, bedsPerRoom, occupied int) *models.Hostel {
	return &models.Hostel{
		ID:           id,
		Name:         "Kaveri Block",
		Type:         models.HostelTypeGirls,
		WardenName:   "M. Iyer",
		ContactPhone: "9876543210",
		TotalRooms:   totalRooms,
		BedsPerRoom:  bedsPerRoom,
		OccupiedBeds: occupied,
		Active:       true,
	}
}

func newHostelService(repo *mockHostelRepo, students *mockHostelStudents) *HostelService {
	return NewHostelService(repo, students, validator.New(), zap.NewNop())
}

func TestHostelServiceAllocate(t *testing.T) {
	repo := &mockHostelRepo{hostels: map[string]*models.Hostel{"hostel-1": girlsHostel("hostel-1", 10, 2, 5)}}
	students := &mockHostelStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newHostelService(repo, students)

	student, err := svc.Allocate(context.Background(), AllocateRequest{HostelID: "hostel-1", StudentID: "2025CS0001", Room: "A-104"})
	require.NoError(t, err)
	require.NotNil(t, student.HostelID)
	assert.Equal(t, "hostel-1", *student.HostelID)
	assert.Equal(t, "A-104", *student.HostelRoom)
	require.Len(t, repo.adjusted, 1)
	assert.Equal(t, 1, repo.adjusted[0].delta)
	assert.Contains(t, students.setHostel, "2025CS0001")
}

func TestHostelServiceAllocateNoBeds(t *testing.T) {
	repo := &mockHostelRepo{
		hostels:   map[string]*models.Hostel{"hostel-1": girlsHostel("hostel-1", 10, 2, 20)},
		adjustErr: sql.ErrNoRows,
	}
	students := &mockHostelStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newHostelService(repo, students)

	_, err := svc.Allocate(context.Background(), AllocateRequest{HostelID: "hostel-1", StudentID: "2025CS0001", Room: "A-104"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "no beds available")
}

func TestHostelServiceAllocateAlreadyAllocated(t *testing.T) {
	allocated := examStudent("2025CS0001")
	existing := "hostel-9"
	allocated.HostelID = &existing
	repo := &mockHostelRepo{hostels: map[string]*models.Hostel{"hostel-1": girlsHostel("hostel-1", 10, 2, 5)}}
	students := &mockHostelStudents{students: map[string]*models.StudentDetail{"2025CS0001": allocated}}
	svc := newHostelService(repo, students)

	_, err := svc.Allocate(context.Background(), AllocateRequest{HostelID: "hostel-1", StudentID: "2025CS0001", Room: "A-104"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestHostelServiceAllocateGenderMismatch(t *testing.T) {
	boys := girlsHostel("hostel-1", 10, 2, 5)
	boys.Type = models.HostelTypeBoys
	repo := &mockHostelRepo{hostels: map[string]*models.Hostel{"hostel-1": boys}}
	students := &mockHostelStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newHostelService(repo, students)

	_, err := svc.Allocate(context.Background(), AllocateRequest{HostelID: "hostel-1", StudentID: "2025CS0001", Room: "A-104"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "male students only")
	assert.Empty(t, repo.adjusted)
}

func TestHostelServiceAllocateRollsBackBed(t *testing.T) {
	repo := &mockHostelRepo{hostels: map[string]*models.Hostel{"hostel-1": girlsHostel("hostel-1", 10, 2, 5)}}
	students := &mockHostelStudents{
		students:   map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")},
		setHostelE: assert.AnError,
	}
	svc := newHostelService(repo, students)

	_, err := svc.Allocate(context.Background(), AllocateRequest{HostelID: "hostel-1", StudentID: "2025CS0001", Room: "A-104"})
	require.Error(t, err)
	require.Len(t, repo.adjusted, 2)
	assert.Equal(t, 1, repo.adjusted[0].delta)
	assert.Equal(t, -1, repo.adjusted[1].delta)
}

func TestHostelServiceVacate(t *testing.T) {
	allocated := examStudent("2025CS0001")
	hostelID := "hostel-1"
	room := "A-104"
	allocated.HostelID = &hostelID
	allocated.HostelRoom = &room
	repo := &mockHostelRepo{hostels: map[string]*models.Hostel{"hostel-1": girlsHostel("hostel-1", 10, 2, 5)}}
	students := &mockHostelStudents{students: map[string]*models.StudentDetail{"2025CS0001": allocated}}
	svc := newHostelService(repo, students)

	err := svc.Vacate(context.Background(), "2025CS0001")
	require.NoError(t, err)
	require.Len(t, repo.adjusted, 1)
	assert.Equal(t, -1, repo.adjusted[0].delta)
	assert.Nil(t, allocated.HostelID)
}

func TestHostelServiceVacateWithoutAllocation(t *testing.T) {
	students := &mockHostelStudents{students: map[string]*models.StudentDetail{"2025CS0001": examStudent("2025CS0001")}}
	svc := newHostelService(&mockHostelRepo{}, students)

	err := svc.Vacate(context.Background(), "2025CS0001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestHostelServiceUpdateCapacityBelowOccupied(t *testing.T) {
	repo := &mockHostelRepo{hostels: map[string]*models.Hostel{"hostel-1": girlsHostel("hostel-1", 10, 2, 15)}}
	svc := newHostelService(repo, &mockHostelStudents{})

	_, err := svc.Update(context.Background(), "hostel-1", UpdateHostelRequest{
		Name:         "North Block",
		Type:         models.HostelTypeBoys,
		WardenName:   "R. Sharma",
		ContactPhone: "9876543210",
		TotalRooms:   5,
		BedsPerRoom:  2,
		Active:       true,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

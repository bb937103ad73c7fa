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

// HostelRepository manages hostel blocks and bed occupancy counters.
type HostelRepository struct {
	db *sqlx.DB
}

// NewHostelRepository constructs a HostelRepository.
func NewHostelRepository(db *sqlx.DB) *HostelRepository {
	return &HostelRepository{db: db}
}

const hostelColumns = `h.id, h.name, h.type, h.warden_name, h.contact_phone, h.total_rooms,
        h.beds_per_room, h.occupied_beds, h.active, h.created_at, h.updated_at`

// List returns hostel blocks, optionally filtered by type.
func (r *HostelRepository) List(ctx context.Context, hostelType *models.HostelType, activeOnly bool) ([]models.Hostel, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if hostelType != nil {
		conditions = append(conditions, fmt.Sprintf("h.type = $%d", len(args)+1))
		args = append(args, *hostelType)
	}
	if activeOnly {
		conditions = append(conditions, "h.active = TRUE")
	}
	query := fmt.Sprintf(`SELECT %s FROM hostels h WHERE %s ORDER BY h.name ASC`,
		hostelColumns, strings.Join(conditions, " AND "))

	var hostels []models.Hostel
	if err := r.db.SelectContext(ctx, &hostels, query, args...); err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}
	return hostels, nil
}

// FindByID fetches one hostel block.
func (r *HostelRepository) FindByID(ctx context.Context, id string) (*models.Hostel, error) {
	query := fmt.Sprintf(`SELECT %s FROM hostels h WHERE h.id = $1`, hostelColumns)
	var hostel models.Hostel
	if err := r.db.GetContext(ctx, &hostel, query, id); err != nil {
		return nil, err
	}
	return &hostel, nil
}

// Create inserts a hostel block.
func (r *HostelRepository) Create(ctx context.Context, hostel *models.Hostel) error {
	if hostel.ID == "" {
		hostel.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hostel.CreatedAt.IsZero() {
		hostel.CreatedAt = now
	}
	hostel.UpdatedAt = now
	const query = `INSERT INTO hostels (id, name, type, warden_name, contact_phone, total_rooms,
        beds_per_room, occupied_beds, active, created_at, updated_at)
        VALUES (:id, :name, :type, :warden_name, :contact_phone, :total_rooms,
        :beds_per_room, :occupied_beds, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hostel); err != nil {
		return fmt.Errorf("create hostel: %w", err)
	}
	return nil
}

// Update modifies a hostel block.
func (r *HostelRepository) Update(ctx context.Context, hostel *models.Hostel) error {
	hostel.UpdatedAt = time.Now().UTC()
	const query = `UPDATE hostels SET name = :name, type = :type, warden_name = :warden_name,
        contact_phone = :contact_phone, total_rooms = :total_rooms, beds_per_room = :beds_per_room,
        active = :active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, hostel); err != nil {
		return fmt.Errorf("update hostel: %w", err)
	}
	return nil
}

// AdjustOccupancy changes the occupied bed count by delta, guarded against
// exceeding capacity or dropping below zero.
func (r *HostelRepository) AdjustOccupancy(ctx context.Context, id string, delta int) error {
	const query = `UPDATE hostels SET occupied_beds = occupied_beds + $2, updated_at = $3
        WHERE id = $1 AND occupied_beds + $2 >= 0
        AND occupied_beds + $2 <= total_rooms * beds_per_room`
	res, err := r.db.ExecContext(ctx, query, id, delta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adjust hostel occupancy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust hostel occupancy result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Occupancy reports utilisation per hostel block.
func (r *HostelRepository) Occupancy(ctx context.Context) ([]models.HostelOccupancy, error) {
	const query = `SELECT h.id AS hostel_id, h.name, h.type,
        h.total_rooms * h.beds_per_room AS total_beds,
        h.occupied_beds,
        CASE WHEN h.total_rooms * h.beds_per_room > 0
             THEN ROUND(h.occupied_beds * 100.0 / (h.total_rooms * h.beds_per_room), 2)
             ELSE 0 END AS occupancy_percent
        FROM hostels h
        WHERE h.active = TRUE
        ORDER BY h.name ASC`
	var rows []models.HostelOccupancy
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("hostel occupancy: %w", err)
	}
	return rows, nil
}

package models

import "time"

// HostelType classifies a hostel block.
type HostelType string

const (
	HostelTypeBoys  HostelType = "boys"
	HostelTypeGirls HostelType = "girls"
)

// Valid reports whether the type is one of the known hostel types.
func (t HostelType) Valid() bool {
	return t == HostelTypeBoys || t == HostelTypeGirls
}

// Hostel represents one hostel block and its aggregate bed capacity.
type Hostel struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Type         HostelType `db:"type" json:"type"`
	WardenName   string     `db:"warden_name" json:"warden_name"`
	ContactPhone string     `db:"contact_phone" json:"contact_phone"`
	TotalRooms   int        `db:"total_rooms" json:"total_rooms"`
	BedsPerRoom  int        `db:"beds_per_room" json:"beds_per_room"`
	OccupiedBeds int        `db:"occupied_beds" json:"occupied_beds"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// HostelOccupancy reports per-hostel utilisation for dashboards.
type HostelOccupancy struct {
	HostelID         string     `db:"hostel_id" json:"hostel_id"`
	Name             string     `db:"name" json:"name"`
	Type             HostelType `db:"type" json:"type"`
	TotalBeds        int        `db:"total_beds" json:"total_beds"`
	OccupiedBeds     int        `db:"occupied_beds" json:"occupied_beds"`
	OccupancyPercent float64    `db:"occupancy_percent" json:"occupancy_percent"`
}

package models

import "time"

// RefreshToken represents a persisted refresh token session. PrincipalID
// is a roll number, employee ID or application ID depending on the type.
type RefreshToken struct {
	ID            string        `db:"id" json:"id"`
	PrincipalID   string        `db:"principal_id" json:"principal_id"`
	PrincipalType PrincipalType `db:"principal_type" json:"principal_type"`
	Token         string        `db:"token" json:"token"`
	ExpiresAt     time.Time     `db:"expires_at" json:"expires_at"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	Revoked       bool          `db:"revoked" json:"revoked"`
	RevokedAt     *time.Time    `db:"revoked_at" json:"revoked_at,omitempty"`
	IPAddress     string        `db:"ip_address" json:"ip_address"`
	UserAgent     string        `db:"user_agent" json:"user_agent"`
}

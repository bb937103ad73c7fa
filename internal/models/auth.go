package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PrincipalType distinguishes the credentialed account kinds.
type PrincipalType string

const (
	PrincipalStaff     PrincipalType = "staff"
	PrincipalStudent   PrincipalType = "student"
	PrincipalApplicant PrincipalType = "applicant"
)

// LoginRequest holds credentials for authenticating any principal. The
// identifier may be an email, a roll number, an employee ID or an
// application ID; resolution is attempted in that order.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
	IP         string `json:"-"`
	UserAgent  string `json:"-"`
}

// LoginResponse returns the issued tokens and principal info.
type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	Principal    PrincipalInfo `json:"principal"`
	IssuedAt     time.Time     `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest payload for updating a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// PrincipalInfo describes the authenticated account in responses.
type PrincipalInfo struct {
	ID    string        `json:"id"`
	Type  PrincipalType `json:"type"`
	Role  string        `json:"role"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	PrincipalID   string        `json:"principal_id"`
	PrincipalType PrincipalType `json:"principal_type"`
	Role          string        `json:"role"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	jwt.RegisteredClaims
}

package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-erp-api/internal/models"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
)

type authStaffRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Staff, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*models.Staff, error)
	UpdateLastLogin(ctx context.Context, employeeID string, at time.Time) error
	UpdatePassword(ctx context.Context, employeeID, passwordHash string) error
}

type authStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	FindByRollNo(ctx context.Context, rollNo string) (*models.StudentDetail, error)
	UpdateLastLogin(ctx context.Context, rollNo string, at time.Time) error
	UpdatePassword(ctx context.Context, rollNo, passwordHash string) error
}

type authApplicationRepository interface {
	FindByID(ctx context.Context, applicationID string) (*models.ApplicationDetail, error)
}

type authTokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokePrincipalTokens(ctx context.Context, principalID string, principalType models.PrincipalType) error
}

type authAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows. Staff
// sessions are shorter lived than student and applicant sessions.
type AuthConfig struct {
	AccessTokenSecret    string
	StaffTokenExpiry     time.Duration
	StaffRefreshExpiry   time.Duration
	StudentTokenExpiry   time.Duration
	StudentRefreshExpiry time.Duration
	Issuer               string
	Audience             []string
	SingleSession        bool
}

// principal is the resolved account behind a login identifier.
type principal struct {
	ID           string
	Type         models.PrincipalType
	Role         string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
}

// AuthService authenticates staff, students and applicants through a
// single login endpoint.
type AuthService struct {
	staff     authStaffRepository
	students  authStudentRepository
	admission authApplicationRepository
	tokens    authTokenRepository
	audit     authAuditRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(staff authStaffRepository, students authStudentRepository, admission authApplicationRepository, tokens authTokenRepository, audit authAuditRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		staff:     staff,
		students:  students,
		admission: admission,
		tokens:    tokens,
		audit:     audit,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// Login authenticates any principal and returns issued tokens. The
// identifier is resolved as an email (students first, then staff), a roll
// number, an employee ID or an application ID, in that order.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	p, err := s.resolvePrincipal(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		return nil, err
	}

	if !p.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	if s.config.SingleSession {
		if err := s.tokens.RevokePrincipalTokens(ctx, p.ID, p.Type); err != nil {
			s.logger.Warn("failed to revoke previous refresh tokens", zap.Error(err))
		}
	}

	accessExpiry, refreshExpiry := s.expiriesFor(p.Type)

	accessToken, err := s.generateAccessToken(p, accessExpiry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	refreshTokenValue, err := s.generateRefreshTokenString()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	refreshToken := &models.RefreshToken{
		ID:            uuid.NewString(),
		PrincipalID:   p.ID,
		PrincipalType: p.Type,
		Token:         refreshTokenValue,
		ExpiresAt:     time.Now().UTC().Add(refreshExpiry),
		CreatedAt:     time.Now().UTC(),
		Revoked:       false,
		IPAddress:     req.IP,
		UserAgent:     req.UserAgent,
	}

	if err := s.tokens.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist refresh token")
	}

	s.stampLastLogin(ctx, p)

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &p.ID,
		Action:      models.AuditActionLogin,
		Resource:    "auth",
		ResourceID:  &p.ID,
		NewValues:   []byte(fmt.Sprintf(`{"principal_type":%q}`, p.Type)),
		IPAddress:   req.IP,
		UserAgent:   req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login audit log", zap.Error(err))
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		ExpiresIn:    int64(accessExpiry.Seconds()),
		IssuedAt:     time.Now().UTC(),
		Principal: models.PrincipalInfo{
			ID:    p.ID,
			Type:  p.Type,
			Role:  p.Role,
			Name:  p.Name,
			Email: p.Email,
		},
	}, nil
}

// RefreshToken exchanges a refresh token for a new token pair. The used
// token is revoked so each refresh token works exactly once.
func (s *AuthService) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	storedToken, err := s.tokens.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch refresh token")
	}

	if storedToken.Revoked || time.Now().UTC().After(storedToken.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}

	p, err := s.loadPrincipal(ctx, storedToken.PrincipalID, storedToken.PrincipalType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "associated account no longer exists")
		}
		return nil, err
	}

	if !p.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is deactivated")
	}

	if err := s.tokens.RevokeRefreshToken(ctx, storedToken.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to revoke used refresh token", zap.Error(err))
	}

	accessExpiry, refreshExpiry := s.expiriesFor(p.Type)

	accessToken, err := s.generateAccessToken(p, accessExpiry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate access token")
	}

	refreshTokenValue, err := s.generateRefreshTokenString()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	newRefresh := &models.RefreshToken{
		ID:            uuid.NewString(),
		PrincipalID:   p.ID,
		PrincipalType: p.Type,
		Token:         refreshTokenValue,
		ExpiresAt:     time.Now().UTC().Add(refreshExpiry),
		CreatedAt:     time.Now().UTC(),
		Revoked:       false,
		IPAddress:     req.IP,
		UserAgent:     req.UserAgent,
	}

	if err := s.tokens.CreateRefreshToken(ctx, newRefresh); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist refresh token")
	}

	return &models.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh.Token,
		ExpiresIn:    int64(accessExpiry.Seconds()),
		IssuedAt:     time.Now().UTC(),
	}, nil
}

// Logout revokes the provided refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken, principalID string, meta models.LoginRequest) error {
	storedToken, err := s.tokens.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load refresh token")
	}

	if storedToken.PrincipalID != principalID {
		return appErrors.Clone(appErrors.ErrForbidden, "token does not belong to this account")
	}

	if err := s.tokens.RevokeRefreshToken(ctx, storedToken.ID, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke refresh token")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &principalID,
		Action:      models.AuditActionLogout,
		Resource:    "auth",
		ResourceID:  &principalID,
		IPAddress:   meta.IP,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record logout audit log", zap.Error(err))
	}

	return nil
}

// ChangePassword updates the password of a staff or student principal.
// Applicant passwords are fixed at submission time.
func (s *AuthService) ChangePassword(ctx context.Context, principalID string, principalType models.PrincipalType, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	if principalType == models.PrincipalApplicant {
		return appErrors.Clone(appErrors.ErrForbidden, "applicant passwords cannot be changed")
	}

	p, err := s.loadPrincipal(ctx, principalID, principalType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	switch principalType {
	case models.PrincipalStaff:
		err = s.staff.UpdatePassword(ctx, principalID, string(newHash))
	case models.PrincipalStudent:
		err = s.students.UpdatePassword(ctx, principalID, string(newHash))
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "unsupported principal type")
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	if err := s.tokens.RevokePrincipalTokens(ctx, principalID, principalType); err != nil {
		s.logger.Warn("failed to revoke refresh tokens after password change", zap.Error(err))
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &principalID,
		Action:      models.AuditActionPasswordChange,
		Resource:    "auth",
		ResourceID:  &principalID,
	}); err != nil {
		s.logger.Warn("failed to record password change audit log", zap.Error(err))
	}

	return nil
}

// Profile returns the authenticated principal's descriptive info.
func (s *AuthService) Profile(ctx context.Context, principalID string, principalType models.PrincipalType) (*models.PrincipalInfo, error) {
	p, err := s.loadPrincipal(ctx, principalID, principalType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, err
	}
	return &models.PrincipalInfo{
		ID:    p.ID,
		Type:  p.Type,
		Role:  p.Role,
		Name:  p.Name,
		Email: p.Email,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// resolvePrincipal maps a login identifier to an account. Identifier
// collisions are impossible: roll numbers, employee IDs and application
// IDs have disjoint shapes, and emails are unique within each table.
func (s *AuthService) resolvePrincipal(ctx context.Context, identifier string) (*principal, error) {
	if strings.Contains(identifier, "@") {
		student, err := s.students.FindByEmail(ctx, identifier)
		if err == nil {
			return studentPrincipal(student), nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student account")
		}
		staff, err := s.staff.FindByEmail(ctx, identifier)
		if err == nil {
			return staffPrincipal(staff), nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve staff account")
		}
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	detail, err := s.students.FindByRollNo(ctx, identifier)
	if err == nil {
		return studentPrincipal(&detail.Student), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student account")
	}

	staff, err := s.staff.FindByEmployeeID(ctx, identifier)
	if err == nil {
		return staffPrincipal(staff), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve staff account")
	}

	app, err := s.admission.FindByID(ctx, identifier)
	if err == nil {
		return applicantPrincipal(&app.AdmissionApplication), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve applicant account")
	}

	return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
}

// loadPrincipal fetches an account by its known type.
func (s *AuthService) loadPrincipal(ctx context.Context, id string, principalType models.PrincipalType) (*principal, error) {
	switch principalType {
	case models.PrincipalStaff:
		staff, err := s.staff.FindByEmployeeID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, err
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff account")
		}
		return staffPrincipal(staff), nil
	case models.PrincipalStudent:
		detail, err := s.students.FindByRollNo(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, err
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student account")
		}
		return studentPrincipal(&detail.Student), nil
	case models.PrincipalApplicant:
		app, err := s.admission.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, err
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant account")
		}
		return applicantPrincipal(&app.AdmissionApplication), nil
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown principal type")
	}
}

func (s *AuthService) stampLastLogin(ctx context.Context, p *principal) {
	var err error
	switch p.Type {
	case models.PrincipalStaff:
		err = s.staff.UpdateLastLogin(ctx, p.ID, time.Now().UTC())
	case models.PrincipalStudent:
		err = s.students.UpdateLastLogin(ctx, p.ID, time.Now().UTC())
	case models.PrincipalApplicant:
		// No login stamp on applications.
	}
	if err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
}

func (s *AuthService) expiriesFor(principalType models.PrincipalType) (time.Duration, time.Duration) {
	if principalType == models.PrincipalStaff {
		return s.config.StaffTokenExpiry, s.config.StaffRefreshExpiry
	}
	return s.config.StudentTokenExpiry, s.config.StudentRefreshExpiry
}

func (s *AuthService) generateAccessToken(p *principal, expiry time.Duration) (string, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(expiry)
	claims := &models.JWTClaims{
		PrincipalID:   p.ID,
		PrincipalType: p.Type,
		Role:          p.Role,
		Name:          p.Name,
		Email:         p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   p.ID,
			Audience:  s.config.Audience,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func (s *AuthService) generateRefreshTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func staffPrincipal(st *models.Staff) *principal {
	return &principal{
		ID:           st.EmployeeID,
		Type:         models.PrincipalStaff,
		Role:         string(st.Role),
		Name:         st.FirstName + " " + st.LastName,
		Email:        st.Email,
		PasswordHash: st.PasswordHash,
		Active:       st.Active,
	}
}

func studentPrincipal(st *models.Student) *principal {
	return &principal{
		ID:           st.RollNo,
		Type:         models.PrincipalStudent,
		Role:         models.RoleStudent,
		Name:         st.FirstName + " " + st.LastName,
		Email:        st.Email,
		PasswordHash: st.PasswordHash,
		Active:       st.Active,
	}
}

func applicantPrincipal(app *models.AdmissionApplication) *principal {
	return &principal{
		ID:           app.ApplicationID,
		Type:         models.PrincipalApplicant,
		Role:         models.RoleApplicant,
		Name:         app.FirstName + " " + app.LastName,
		Email:        app.Email,
		PasswordHash: app.PasswordHash,
		Active:       true,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/model"
	"masterdata-service/pkg/jwtutil"
	"masterdata-service/pkg/logger"
	"masterdata-service/prometheus"
)

// LoginResult is returned by a successful login
type LoginResult struct {
	Token      string      `json:"token"`
	TokenType  string      `json:"token_type"`
	ExpiresAt  time.Time   `json:"expires_at"`
	User       *model.User `json:"user"`
	Privileges []string    `json:"privileges"`
}

// Profile is the authenticated user together with the grants of the token
type Profile struct {
	User       *model.User `json:"user"`
	RoleName   string      `json:"role_name"`
	Privileges []string    `json:"privileges"`
}

// AuthService verifies credentials and issues tokens
type AuthService struct {
	db  *gorm.DB
	jwt *jwtutil.JWTUtil
	now func() time.Time
}

// NewAuthService creates an AuthService
func NewAuthService(db *gorm.DB, jwt *jwtutil.JWTUtil) *AuthService {
	return &AuthService{db: db, jwt: jwt, now: time.Now}
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies login (a login id or email) and password and issues a token
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	log := logger.FromStdContext(ctx)

	defer prometheus.TrackDBOperation("users", "query")(time.Now())

	var user model.User
	err := s.db.WithContext(ctx).
		Where("login_id = ? OR email = ?", login, login).
		Order("id").
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("User not found", zap.String("login", login))
			prometheus.RecordAuthError("user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn("Invalid password", zap.String("login", login))
		prometheus.RecordAuthError("invalid_password")
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		log.Warn("Inactive user attempted login", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("inactive_user")
		return nil, ErrInvalidCredentials
	}
	if user.TenantID != nil {
		var tenant model.Tenant
		if err := s.db.WithContext(ctx).Select("id", "active").Take(&tenant, *user.TenantID).Error; err != nil || !tenant.Active {
			log.Warn("User tenant is missing or inactive", zap.Uint("user_id", user.ID), zap.Uint("tenant_id", *user.TenantID))
			prometheus.RecordAuthError("inactive_tenant")
			return nil, ErrInvalidCredentials
		}
	}

	result, err := s.IssueToken(ctx, &user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		log.Warn("Failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("login_id", user.LoginID))
	return result, nil
}

// IssueToken signs a token for user carrying the privileges of its role
func (s *AuthService) IssueToken(ctx context.Context, user *model.User) (*LoginResult, error) {
	roleName, privileges, err := s.grants(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(jwtutil.UserClaims{
		UserID:     user.ID,
		TenantID:   user.TenantID,
		LoginID:    user.LoginID,
		Mobile:     user.Mobile,
		Email:      user.Email,
		UserType:   user.UserType,
		RoleName:   roleName,
		Privileges: privileges,
	})
	if err != nil {
		prometheus.RecordAuthError("token_generation_failed")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to read issued token: %w", err)
	}

	return &LoginResult{
		Token:      token,
		TokenType:  "Bearer",
		ExpiresAt:  claims.ExpiresAt.Time,
		User:       user,
		Privileges: privileges,
	}, nil
}

// grants returns the role name and active privileges of user. Inactive roles grant nothing.
func (s *AuthService) grants(ctx context.Context, user *model.User) (string, []string, error) {
	if user.RoleID == nil {
		return "", []string{}, nil
	}

	var role model.Role
	err := s.db.WithContext(ctx).Preload("Privileges").Take(&role, *user.RoleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", []string{}, nil
		}
		return "", nil, fmt.Errorf("failed to load role: %w", err)
	}
	if !role.Active {
		return role.Name, []string{}, nil
	}
	return role.Name, role.PrivilegeNames(), nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, uc *auth.UserContext) (*Profile, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Take(&user, uc.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &Profile{User: &user, RoleName: uc.RoleName, Privileges: uc.Privileges}, nil
}

// internal/domain/user/service.go
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

var (
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrEmailTaken         = apperror.Conflict("user with this email already exists")
	ErrInvalidCredentials = apperror.Unauthenticated("invalid email or password")
	ErrInvalidRefresh     = apperror.Unauthenticated("invalid refresh token")
	ErrWrongPassword      = apperror.InvalidArgument("current password is incorrect")
)

// Service handles identity: accounts, credentials and tokens
type Service struct {
	users           Repository
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	log             logrus.FieldLogger
}

// NewService creates a new user service
func NewService(users Repository, cfg *config.Config, log logrus.FieldLogger) *Service {
	return &Service{
		users:           users,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		log:             log,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required,max=255"`
	Phone    string `json:"phone" binding:"max=30"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents profile update data. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" binding:"omitempty,min=1,max=255"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=500"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User *User `json:"user"`
	auth.TokenPair
}

// Register creates a new user account and signs it in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := NormalizeEmail(req.Email)

	if err := s.passwordManager.ValidatePassword(req.Password); err != nil {
		return nil, apperror.InvalidArgument(err.Error())
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &User{
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
		LastLoginAt:  &now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if apperror.IsKind(err, apperror.KindConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", u.ID).Info("user registered")

	return s.issue(u)
}

// Login authenticates a user by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	if err := s.users.Update(ctx, u); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to record last login")
	}

	return s.issue(u)
}

// Refresh exchanges a refresh token for a new access token. The refresh token
// is rotated when rotation is enabled.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.log.WithError(err).Debug("refresh token rejected")
		return nil, ErrInvalidRefresh
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrInvalidRefresh
	}

	if s.config.JWT.RefreshTokenRotation {
		return s.issue(u)
	}

	access, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User: u,
		TokenPair: auth.TokenPair{
			AccessToken:  access,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
		},
	}, nil
}

// Me returns the caller's account
func (s *Service) Me(ctx context.Context, userID uint) (*User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile updates name, phone and avatar
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, apperror.InvalidArgument("full name cannot be empty")
		}
		u.FullName = name
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return u, nil
}

// ChangePassword changes the password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwordManager.VerifyPassword(req.CurrentPassword, u.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return ErrWrongPassword
		}
		return err
	}

	if err := s.passwordManager.ValidatePassword(req.NewPassword); err != nil {
		return apperror.InvalidArgument(err.Error())
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	u.PasswordHash = hashedPassword
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.WithField("user_id", u.ID).Info("password changed")
	return nil
}

// JWTManager exposes the token manager used by the auth middleware
func (s *Service) JWTManager() *auth.JWTManager {
	return s.jwtManager
}

func (s *Service) issue(u *User) (*AuthResponse, error) {
	pair, err := s.jwtManager.GeneratePair(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: u, TokenPair: *pair}, nil
}

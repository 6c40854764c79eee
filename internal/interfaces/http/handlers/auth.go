// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// IdentityService is the account API used by the auth and profile handlers
type IdentityService interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error)
	Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*user.AuthResponse, error)
	Me(ctx context.Context, userID uint) (*user.User, error)
	UpdateProfile(ctx context.Context, userID uint, req *user.UpdateProfileRequest) (*user.User, error)
	ChangePassword(ctx context.Context, userID uint, req *user.ChangePasswordRequest) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users IdentityService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users IdentityService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", response)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", response)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req user.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Token refreshed successfully", response)
}

// Logout acknowledges a logout. Tokens are stateless, so the client drops them.
func (h *AuthHandler) Logout(c *gin.Context) {
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

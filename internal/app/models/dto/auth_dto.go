package dto

import (
	"time"

	"github.com/yigit/tutorledger/internal/app/models"
)

// RegisterRequest represents a self-service registration
type RegisterRequest struct {
	Username string          `json:"username" binding:"required,username" example:"mdupont"`
	Email    string          `json:"email" binding:"required,email" example:"parent@example.com"`
	Password string          `json:"password" binding:"required,min=8" example:"s3cret-pass"`
	RoleType models.RoleType `json:"roleType" binding:"required,oneof=TEACHER PARENT" example:"PARENT"`
}

// LoginRequest accepts a username or an email as login
type LoginRequest struct {
	Login    string `json:"login" binding:"required" example:"teacher"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string        `json:"accessToken"`
	TokenType             string        `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64         `json:"expiresIn" example:"3600"`
	RefreshToken          string        `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64         `json:"refreshTokenExpiresIn,omitempty" example:"2592000"`
	User                  *UserResponse `json:"user,omitempty"`
}

// UserResponse represents public user information
type UserResponse struct {
	ID        int64     `json:"id" example:"2"`
	Username  string    `json:"username" example:"mdupont"`
	Email     string    `json:"email" example:"parent@example.com"`
	RoleType  string    `json:"roleType" example:"PARENT"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse maps a user model onto its public shape
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		RoleType:  string(u.RoleType),
		CreatedAt: u.CreatedAt,
	}
}

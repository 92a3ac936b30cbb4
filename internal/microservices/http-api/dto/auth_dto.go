package dto

import (
	"time"

	"animehub/internal/microservices/http-api/models"
)

// Data Transfer Objects for authentication requests and responses

// RegisterRequest: payload for user registration. A role sent by the client
// is not part of the payload and never honoured.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest: payload for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"` // seconds
	User      UserResponse `json:"user"`
}

// UserResponse is the account as its owner (or an admin) sees it.
type UserResponse struct {
	ID           string              `json:"id"`
	Username     string              `json:"username"`
	Email        string              `json:"email"`
	Role         string              `json:"role"`
	ProfileLinks models.ProfileLinks `json:"profile_links"`
	CreatedAt    time.Time           `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		ProfileLinks: u.ProfileLinks.Normalized(),
		CreatedAt:    u.CreatedAt,
	}
}

func NewAuthResponse(token string, ttl time.Duration, u *models.User) AuthResponse {
	return AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(ttl.Seconds()),
		User:      NewUserResponse(u),
	}
}

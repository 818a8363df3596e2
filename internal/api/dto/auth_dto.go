package dto

import (
	"time"

	"github.com/spec-kit/contacts-service/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest accepts the OAuth2 password form (username carries the email)
// or the same fields as JSON.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// EmailRequest payload for confirmation and reset requests.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the new password.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" form:"new_password" validate:"required,max=72"`
}

// TokenResponse standard response for login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// NewTokenResponse wraps a token pair.
func NewTokenResponse(pair domain.TokenPair) TokenResponse {
	return TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, TokenType: "bearer"}
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse hides credentials and session state.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
	}
}

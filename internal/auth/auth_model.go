package auth

import "github.com/DhavalSuthar-24/padel/internal/user"

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30" example:"ana_padel"`
	Email    string `json:"email" binding:"required,email" example:"ana@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"password123"`
	Phone    string `json:"phone,omitempty" binding:"omitempty,max=30" example:"+34600000000"`
	City     string `json:"city,omitempty" binding:"omitempty,max=100" example:"Valencia"`
}

type LoginRequest struct {
	LoginIdentifier string `json:"login_identifier" binding:"required" example:"ana@example.com"` // email or username
	Password        string `json:"password" binding:"required" example:"password123"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"` // seconds
	User        user.Profile `json:"user"`
}

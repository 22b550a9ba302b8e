package dto

import "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"

// SignupRequest carries the data for a new account. Role is optional and
// defaults to "user" when omitted.
type SignupRequest struct {
	Username string           `json:"username" binding:"required,min=3,max=50"`
	Email    string           `json:"email" binding:"required,email,max=100"`
	FullName string           `json:"full_name" binding:"max=100"`
	CPF      string           `json:"cpf" binding:"omitempty,len=11,numeric"`
	Password string           `json:"password" binding:"required,min=8"`
	Role     *domain.UserRole `json:"role" binding:"omitempty,oneof=admin user"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries the refresh token presented to the refresh and
// logout endpoints.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is returned by the refresh endpoint: a new access token only,
// no replacement refresh token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenPairResponse is returned by a successful login.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// MessageResponse is a generic informational response body.
type MessageResponse struct {
	Message string `json:"message"`
}

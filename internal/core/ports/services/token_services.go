package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
)

// AccessClaims are the claims embedded in an access token. Subject carries
// the username.
type AccessClaims struct {
	UserID int64           `json:"user_id"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims embedded in a refresh token. Subject carries
// the user ID as a string and ID carries the jti.
type RefreshClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenSvcFacade defines the token codec: issuance and validation of signed,
// expiring access and refresh tokens, plus at-rest hashing of refresh tokens.
type TokenSvcFacade interface {
	// IssueAccessToken creates a signed access token for the user and returns
	// it with its expiry time.
	IssueAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// IssueRefreshToken creates a signed refresh token for the user ID,
	// generating a fresh jti when none is supplied, and returns the encoded
	// token, the jti and the expiry time.
	IssueRefreshToken(ctx context.Context, userID int64, jti string) (string, string, time.Time, error)

	// DecodeAccessToken verifies signature and expiry of an access token.
	// Fails with apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid.
	DecodeAccessToken(ctx context.Context, tokenString string) (*AccessClaims, error)

	// DecodeRefreshToken verifies signature and expiry of a refresh token and
	// additionally requires the type claim to be "refresh".
	DecodeRefreshToken(ctx context.Context, tokenString string) (*RefreshClaims, error)

	// HashToken produces the one-way digest stored for a refresh token.
	HashToken(tokenString string) (string, error)

	// VerifyTokenHash reports whether tokenString produced storedHash.
	VerifyTokenHash(tokenString, storedHash string) bool
}

package services

import (
	"context"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/dto"
)

// AuthSvcFacade orchestrates registration, authentication, refresh rotation
// and logout. Every failure it returns is one of the apperrors sentinels;
// low-level jwt/bcrypt/store errors never cross this boundary untranslated.
type AuthSvcFacade interface {
	// Register creates a new user after checking email uniqueness first and
	// username uniqueness second. No tokens are issued at registration.
	Register(ctx context.Context, req dto.SignupRequest) (*domain.User, error)

	// Authenticate verifies credentials, then the account's active flag, and
	// on success issues an access token plus a fresh single-use refresh token
	// whose record is persisted as active.
	Authenticate(ctx context.Context, username, password string) (*dto.TokenPairResponse, error)

	// Refresh consumes a presented refresh token (single-use rotation: the
	// record is deactivated on every path that reaches it) and issues a new
	// access token. It deliberately does not mint a replacement refresh
	// token; callers re-authenticate when the chain runs out.
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)

	// Logout revokes the refresh-token record named by the presented token.
	// Best-effort and idempotent: it never returns an error, whatever the
	// input.
	Logout(ctx context.Context, refreshToken string)
}

package repositories

import (
	"context"
	"time"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
)

// RefreshTokenRepositoryFacade persists refresh-token rotation records keyed
// by jti.
type RefreshTokenRepositoryFacade interface {
	// SaveRefreshToken persists a new refresh-token record and populates its
	// generated ID and CreatedAt.
	SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error

	// FindRefreshTokenByJTI retrieves a refresh-token record by its jti,
	// active or not. Returns apperrors.ErrNotFound when no row exists.
	FindRefreshTokenByJTI(ctx context.Context, jti string) (*domain.RefreshToken, error)

	// DeactivateRefreshTokenByJTI atomically flips is_active to false for the
	// record with the given jti, but only if it is still active. Returns
	// apperrors.ErrNotFound when no active row was flipped, which is how a
	// concurrent rotation loser observes it lost the race.
	DeactivateRefreshTokenByJTI(ctx context.Context, jti string, revokedAt time.Time) error

	// DeleteRefreshTokenByJTI removes a record outright. Administrative only;
	// core flows deactivate instead so rows persist for audit.
	DeleteRefreshTokenByJTI(ctx context.Context, jti string) error

	// CountActiveRefreshTokens returns the number of currently active
	// refresh-token records (the admin dashboard's "active sessions").
	CountActiveRefreshTokens(ctx context.Context) (int64, error)
}

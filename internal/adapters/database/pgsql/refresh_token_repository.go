package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/apperrors"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	portsrepo "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/repositories"
)

// RefreshTokenRepository persists refresh-token rotation records in
// PostgreSQL.
type RefreshTokenRepository struct {
	db *pgxpool.Pool
}

func NewRefreshTokenRepository(db *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Ensure RefreshTokenRepository implements the facade.
var _ portsrepo.RefreshTokenRepositoryFacade = (*RefreshTokenRepository)(nil)

func (r *RefreshTokenRepository) SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	query := `
        INSERT INTO refresh_tokens (jti, user_id, token_hash, expires_at, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at;
    `
	err := r.db.QueryRow(ctx, query,
		token.JTI,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.IsActive,
	).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindRefreshTokenByJTI(ctx context.Context, jti string) (*domain.RefreshToken, error) {
	query := `
        SELECT id, jti, user_id, token_hash, expires_at, created_at, is_active, revoked_at
        FROM refresh_tokens
        WHERE jti = $1;
    `
	var token domain.RefreshToken
	err := r.db.QueryRow(ctx, query, jti).Scan(
		&token.ID,
		&token.JTI,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.IsActive,
		&token.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token by jti: %w", err)
	}
	return &token, nil
}

// DeactivateRefreshTokenByJTI flips is_active to false only if the record is
// still active. The WHERE clause plus the rows-affected check make the flip
// atomic relative to concurrent refreshers: the loser of a rotation race
// affects zero rows and gets ErrNotFound.
func (r *RefreshTokenRepository) DeactivateRefreshTokenByJTI(ctx context.Context, jti string, revokedAt time.Time) error {
	query := `
        UPDATE refresh_tokens
        SET is_active = FALSE, revoked_at = $2
        WHERE jti = $1 AND is_active = TRUE;
    `
	cmdTag, err := r.db.Exec(ctx, query, jti, revokedAt)
	if err != nil {
		return fmt.Errorf("failed to deactivate refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteRefreshTokenByJTI(ctx context.Context, jti string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE jti = $1;`, jti)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *RefreshTokenRepository) CountActiveRefreshTokens(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM refresh_tokens WHERE is_active = TRUE;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active refresh tokens: %w", err)
	}
	return count, nil
}

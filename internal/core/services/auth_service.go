package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/apperrors"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	portsrepo "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/repositories"
	portssvc "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/services"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/dto"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/middleware"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/utils"
)

// bearerTokenType is the token_type value returned with every issued token.
const bearerTokenType = "bearer"

// authService orchestrates the credential and token lifecycle. It owns all
// writes to refresh-token records; no other component mutates them.
type authService struct {
	userRepo    portsrepo.UserRepositoryFacade
	refreshRepo portsrepo.RefreshTokenRepositoryFacade
	tokenSvc    portssvc.TokenSvcFacade
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo portsrepo.UserRepositoryFacade,
	refreshRepo portsrepo.RefreshTokenRepositoryFacade,
	tokenSvc portssvc.TokenSvcFacade,
) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		tokenSvc:    tokenSvc,
	}
}

// Register creates a new user account. Email uniqueness is checked before
// username uniqueness, so a request that collides on both reports the email
// conflict. No tokens are issued here.
func (s *authService) Register(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	if _, err := s.userRepo.FindUserByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.ErrEmailExists
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	if _, err := s.userRepo.FindUserByUsername(ctx, req.Username); err == nil {
		return nil, apperrors.ErrUsernameExists
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := domain.RoleUser
	if req.Role != nil {
		role = *req.Role
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		CPF:          req.CPF,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

// Authenticate verifies credentials and issues an access token plus a fresh
// refresh token whose record is persisted as active. Unknown usernames and
// wrong passwords are indistinguishable to the caller; a disabled account
// with a correct password gets its own error.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*dto.TokenPairResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("login attempt for unknown username")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Warn("login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	accessToken, _, err := s.tokenSvc.IssueAccessToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, jti, expiresAt, err := s.tokenSvc.IssueRefreshToken(ctx, user.ID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	tokenHash, err := s.tokenSvc.HashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	record := &domain.RefreshToken{
		JTI:       jti,
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	if err := s.refreshRepo.SaveRefreshToken(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    bearerTokenType,
	}, nil
}

// Refresh consumes a presented refresh token and issues a new access token.
// The record is single-use: it is deactivated on every path that reaches it,
// and the deactivation is an atomic conditional update, so of two concurrent
// calls with the same token exactly one can succeed. No replacement refresh
// token is minted; extending the chain is left to re-authentication.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.tokenSvc.DecodeRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	jti := claims.ID

	record, err := s.refreshRepo.FindRefreshTokenByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	// Unknown, consumed/revoked, wrong owner and hash-mismatched tokens all
	// collapse to the same error to avoid oracle leakage.
	if !record.IsActive || record.UserID != userID || !s.tokenSvc.VerifyTokenHash(refreshToken, record.TokenHash) {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	now := time.Now().UTC()
	if now.After(record.ExpiresAt.UTC()) {
		// Lazy expiry detection: the record is retired on the first refresh
		// attempt past its expiry, so a follow-up attempt sees it inactive.
		if err := s.refreshRepo.DeactivateRefreshTokenByJTI(ctx, jti, now); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to deactivate expired refresh token: %w", err)
		}
		return nil, apperrors.ErrRefreshTokenExpired
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUserInactiveOrMissing
		}
		return nil, fmt.Errorf("failed to look up refresh token owner: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactiveOrMissing
	}

	if err := s.refreshRepo.DeactivateRefreshTokenByJTI(ctx, jti, now); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// A concurrent refresh consumed the record first.
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to deactivate refresh token: %w", err)
	}

	accessToken, _, err := s.tokenSvc.IssueAccessToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   bearerTokenType,
	}, nil
}

// Logout revokes the refresh-token record named by the presented token. It
// is best-effort and idempotent: malformed tokens, unknown jtis and already
// revoked records are all swallowed so the endpoint never leaks whether the
// token was valid.
func (s *authService) Logout(ctx context.Context, refreshToken string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	claims, err := s.tokenSvc.DecodeRefreshToken(ctx, refreshToken)
	if err != nil {
		logger.Debug("logout with undecodable refresh token")
		return
	}

	if err := s.refreshRepo.DeactivateRefreshTokenByJTI(ctx, claims.ID, time.Now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("failed to deactivate refresh token on logout", "error", err)
		}
	}
}

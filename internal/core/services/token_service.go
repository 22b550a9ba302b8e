package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/apperrors"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	portssvc "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/services"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/utils"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/pkg/config"
)

const refreshTokenType = "refresh"

// tokenService implements the TokenSvcFacade: HS256-signed, time-bounded
// access and refresh tokens plus at-rest hashing of refresh tokens. The
// signing key, issuer and TTLs come from the injected configuration.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

// IssueAccessToken creates a signed access token carrying the user's
// username (subject), ID, email and role.
func (s *tokenService) IssueAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.JWTExpiryDuration)

	claims := portssvc.AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWTIssuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefreshToken creates a signed refresh token for the user ID. A fresh
// random jti is generated when none is supplied.
func (s *tokenService) IssueRefreshToken(ctx context.Context, userID int64, jti string) (string, string, time.Time, error) {
	if jti == "" {
		jti = uuid.NewString()
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.RefreshTokenExpiryDuration)

	claims := portssvc.RefreshClaims{
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWTIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}

// DecodeAccessToken verifies signature and expiry of an access token.
func (s *tokenService) DecodeAccessToken(ctx context.Context, tokenString string) (*portssvc.AccessClaims, error) {
	claims := &portssvc.AccessClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeRefreshToken verifies signature and expiry of a refresh token and
// rejects tokens whose type claim is not "refresh".
func (s *tokenService) DecodeRefreshToken(ctx context.Context, tokenString string) (*portssvc.RefreshClaims, error) {
	claims := &portssvc.RefreshClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// parse validates the signature and registered claims of a token, mapping
// jwt-level failures to the two codec error kinds. Expiry is reported as
// ErrTokenExpired; everything else collapses to ErrTokenInvalid.
func (s *tokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return apperrors.ErrTokenExpired
		}
		return apperrors.ErrTokenInvalid
	}
	if !token.Valid {
		return apperrors.ErrTokenInvalid
	}
	return nil
}

// HashToken produces the one-way digest stored for a refresh token.
func (s *tokenService) HashToken(tokenString string) (string, error) {
	return utils.HashToken(tokenString)
}

// VerifyTokenHash reports whether tokenString produced storedHash.
func (s *tokenService) VerifyTokenHash(tokenString, storedHash string) bool {
	return utils.CheckTokenHash(tokenString, storedHash)
}

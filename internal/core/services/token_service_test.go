package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/apperrors"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/services"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  "test-secret-key-for-unit-tests",
		JWTIssuer:                  "auth-microservice-test",
		JWTExpiryDuration:          time.Hour,
		RefreshTokenExpiryDuration: 7 * 24 * time.Hour,
	}
}

func testUser() *domain.User {
	return &domain.User{
		ID:       42,
		Username: "alice",
		Email:    "alice@x.com",
		Role:     domain.RoleUser,
		IsActive: true,
	}
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	svc := services.NewTokenService(testConfig())
	ctx := context.Background()

	token, expiresAt, err := svc.IssueAccessToken(ctx, testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.DecodeAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, "auth-microservice-test", claims.Issuer)
}

func TestTokenService_RefreshTokenRoundTrip(t *testing.T) {
	svc := services.NewTokenService(testConfig())
	ctx := context.Background()

	token, jti, expiresAt, err := svc.IssueRefreshToken(ctx, 42, "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.DecodeRefreshToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestTokenService_RefreshTokenKeepsSuppliedJTI(t *testing.T) {
	svc := services.NewTokenService(testConfig())

	token, jti, _, err := svc.IssueRefreshToken(context.Background(), 42, "my-jti")
	require.NoError(t, err)
	assert.Equal(t, "my-jti", jti)

	claims, err := svc.DecodeRefreshToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "my-jti", claims.ID)
}

func TestTokenService_FreshJTIsAreUnique(t *testing.T) {
	svc := services.NewTokenService(testConfig())

	_, jti1, _, err := svc.IssueRefreshToken(context.Background(), 42, "")
	require.NoError(t, err)
	_, jti2, _, err := svc.IssueRefreshToken(context.Background(), 42, "")
	require.NoError(t, err)

	assert.NotEqual(t, jti1, jti2)
}

func TestTokenService_DecodeRejectsAccessTokenAsRefresh(t *testing.T) {
	svc := services.NewTokenService(testConfig())
	ctx := context.Background()

	accessToken, _, err := svc.IssueAccessToken(ctx, testUser())
	require.NoError(t, err)

	_, err = svc.DecodeRefreshToken(ctx, accessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestTokenService_DecodeExpired(t *testing.T) {
	cfg := testConfig()
	cfg.JWTExpiryDuration = -time.Minute
	cfg.RefreshTokenExpiryDuration = -time.Minute
	svc := services.NewTokenService(cfg)
	ctx := context.Background()

	accessToken, _, err := svc.IssueAccessToken(ctx, testUser())
	require.NoError(t, err)
	_, err = svc.DecodeAccessToken(ctx, accessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	refreshToken, _, _, err := svc.IssueRefreshToken(ctx, 42, "")
	require.NoError(t, err)
	_, err = svc.DecodeRefreshToken(ctx, refreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestTokenService_DecodeTampered(t *testing.T) {
	svc := services.NewTokenService(testConfig())
	ctx := context.Background()

	token, _, err := svc.IssueAccessToken(ctx, testUser())
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.DecodeAccessToken(ctx, tampered)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestTokenService_DecodeWrongSecret(t *testing.T) {
	svc := services.NewTokenService(testConfig())
	otherCfg := testConfig()
	otherCfg.JWTSecret = "a-completely-different-secret"
	otherSvc := services.NewTokenService(otherCfg)

	token, _, err := svc.IssueAccessToken(context.Background(), testUser())
	require.NoError(t, err)

	_, err = otherSvc.DecodeAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestTokenService_DecodeGarbage(t *testing.T) {
	svc := services.NewTokenService(testConfig())

	_, err := svc.DecodeAccessToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.DecodeRefreshToken(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestTokenService_HashAndVerifyToken(t *testing.T) {
	svc := services.NewTokenService(testConfig())

	token, _, _, err := svc.IssueRefreshToken(context.Background(), 42, "")
	require.NoError(t, err)

	hash, err := svc.HashToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, hash)

	assert.True(t, svc.VerifyTokenHash(token, hash))
	assert.False(t, svc.VerifyTokenHash(token+"x", hash))
}

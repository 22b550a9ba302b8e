package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/apperrors"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/services"
)

func TestUserService_GetUserByUsername(t *testing.T) {
	users := newMemoryUserRepo()
	tokens := newMemoryRefreshRepo()
	svc := services.NewUserService(users, tokens)
	ctx := context.Background()

	seeded := &domain.User{Username: "alice", Email: "alice@x.com", Role: domain.RoleUser, IsActive: true}
	require.NoError(t, users.SaveUser(ctx, seeded))

	user, err := svc.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)

	_, err = svc.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	svc := services.NewUserService(newMemoryUserRepo(), newMemoryRefreshRepo())

	_, err := svc.GetUserByID(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_GetDashboardStats(t *testing.T) {
	users := newMemoryUserRepo()
	tokens := newMemoryRefreshRepo()
	svc := services.NewUserService(users, tokens)
	ctx := context.Background()

	require.NoError(t, users.SaveUser(ctx, &domain.User{Username: "root", Role: domain.RoleAdmin, IsActive: true}))
	require.NoError(t, users.SaveUser(ctx, &domain.User{Username: "alice", Role: domain.RoleUser, IsActive: true}))
	require.NoError(t, users.SaveUser(ctx, &domain.User{Username: "bob", Role: domain.RoleUser, IsActive: false}))

	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, tokens.SaveRefreshToken(ctx, &domain.RefreshToken{JTI: "jti-1", UserID: 1, ExpiresAt: expiresAt, IsActive: true}))
	require.NoError(t, tokens.SaveRefreshToken(ctx, &domain.RefreshToken{JTI: "jti-2", UserID: 2, ExpiresAt: expiresAt, IsActive: false}))

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.AdminUsers)
	assert.Equal(t, int64(1), stats.ActiveSessions)
}

func TestUserService_ListUsers(t *testing.T) {
	users := newMemoryUserRepo()
	svc := services.NewUserService(users, newMemoryRefreshRepo())
	ctx := context.Background()

	require.NoError(t, users.SaveUser(ctx, &domain.User{Username: "alice"}))
	require.NoError(t, users.SaveUser(ctx, &domain.User{Username: "bob"}))

	listed, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

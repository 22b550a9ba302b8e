package services

import (
	"context"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
)

// UserReaderSvc defines read operations for user identity data.
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsers retrieves all users, most recent first.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// DashboardStats aggregates the counters shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	AdminUsers     int64 `json:"admin_users"`
	ActiveSessions int64 `json:"active_sessions"`
}

// UserStatsSvc defines the aggregate reads backing the admin surface.
type UserStatsSvc interface {
	// GetDashboardStats collects user and session counters.
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserStatsSvc
}

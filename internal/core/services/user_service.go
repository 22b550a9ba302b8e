package services

import (
	"context"
	"fmt"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	portsrepo "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/repositories"
	portssvc "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/services"
)

// userService serves identity reads and the admin dashboard aggregates.
type userService struct {
	userRepo    portsrepo.UserRepositoryFacade
	refreshRepo portsrepo.RefreshTokenRepositoryFacade
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo portsrepo.UserRepositoryFacade,
	refreshRepo portsrepo.RefreshTokenRepositoryFacade,
) portssvc.UserSvcFacade {
	return &userService{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
	}
}

func (s *userService) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetDashboardStats collects the user and session counters shown on the
// admin dashboard.
func (s *userService) GetDashboardStats(ctx context.Context) (*portssvc.DashboardStats, error) {
	totalUsers, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	activeUsers, err := s.userRepo.CountActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	adminUsers, err := s.userRepo.CountUsersByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to count admin users: %w", err)
	}
	activeSessions, err := s.refreshRepo.CountActiveRefreshTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}

	return &portssvc.DashboardStats{
		TotalUsers:     totalUsers,
		ActiveUsers:    activeUsers,
		AdminUsers:     adminUsers,
		ActiveSessions: activeSessions,
	}, nil
}

package repositories

import (
	"context"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID int64) (*domain.User, error)

	// FindUserByUsername retrieves a specific user by their unique username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUserByEmail retrieves a specific user by their unique email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUsers retrieves all users, most recent first.
	FindUsers(ctx context.Context) ([]domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser persists a new user and populates its generated ID and
	// CreatedAt.
	SaveUser(ctx context.Context, user *domain.User) error

	// UpdateUser updates an existing user's mutable fields (role, is_active,
	// password hash).
	UpdateUser(ctx context.Context, user domain.User) error
}

// UserStatsReader defines aggregate queries backing the admin dashboard.
type UserStatsReader interface {
	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int64, error)

	// CountActiveUsers returns the number of users with is_active = true.
	CountActiveUsers(ctx context.Context) (int64, error)

	// CountUsersByRole returns the number of users holding the given role.
	CountUsersByRole(ctx context.Context, role domain.UserRole) (int64, error)
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserStatsReader
}

package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/apperrors"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	portssvc "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/services"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/services"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/dto"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/utils"
)

// --- In-memory fakes (mutex-guarded, matching the pgsql adapters' contract) ---

type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byID: map[int64]*domain.User{}}
}

func (m *memoryUserRepo) SaveUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	clone := *user
	m.byID[user.ID] = &clone
	return nil
}

func (m *memoryUserRepo) FindUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[userID]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryUserRepo) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryUserRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryUserRepo) FindUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]domain.User, 0, len(m.byID))
	for _, user := range m.byID {
		users = append(users, *user)
	}
	return users, nil
}

func (m *memoryUserRepo) UpdateUser(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return apperrors.ErrNotFound
	}
	clone := user
	m.byID[user.ID] = &clone
	return nil
}

func (m *memoryUserRepo) CountUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

func (m *memoryUserRepo) CountActiveUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, user := range m.byID {
		if user.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *memoryUserRepo) CountUsersByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, user := range m.byID {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

type memoryRefreshRepo struct {
	mu     sync.Mutex
	nextID int64
	byJTI  map[string]*domain.RefreshToken
}

func newMemoryRefreshRepo() *memoryRefreshRepo {
	return &memoryRefreshRepo{byJTI: map[string]*domain.RefreshToken{}}
}

func (m *memoryRefreshRepo) SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	token.ID = m.nextID
	token.CreatedAt = time.Now().UTC()
	clone := *token
	m.byJTI[token.JTI] = &clone
	return nil
}

func (m *memoryRefreshRepo) FindRefreshTokenByJTI(ctx context.Context, jti string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.byJTI[jti]; ok {
		clone := *token
		return &clone, nil
	}
	return nil, apperrors.ErrNotFound
}

// DeactivateRefreshTokenByJTI mirrors the conditional UPDATE of the pgsql
// adapter: only a still-active record is flipped, so of two concurrent
// rotations exactly one observes success.
func (m *memoryRefreshRepo) DeactivateRefreshTokenByJTI(ctx context.Context, jti string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.byJTI[jti]
	if !ok || !token.IsActive {
		return apperrors.ErrNotFound
	}
	token.IsActive = false
	token.RevokedAt = &revokedAt
	return nil
}

func (m *memoryRefreshRepo) DeleteRefreshTokenByJTI(ctx context.Context, jti string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byJTI[jti]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.byJTI, jti)
	return nil
}

func (m *memoryRefreshRepo) CountActiveRefreshTokens(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, token := range m.byJTI {
		if token.IsActive {
			count++
		}
	}
	return count, nil
}

// setExpiry backdates a stored record, simulating a token whose row has
// outlived its validity window.
func (m *memoryRefreshRepo) setExpiry(jti string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.byJTI[jti]; ok {
		token.ExpiresAt = expiresAt
	}
}

// --- Fixture ---

type authFixture struct {
	users    *memoryUserRepo
	tokens   *memoryRefreshRepo
	tokenSvc portssvc.TokenSvcFacade
	auth     portssvc.AuthSvcFacade
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMemoryUserRepo()
	tokens := newMemoryRefreshRepo()
	tokenSvc := services.NewTokenService(testConfig())
	return &authFixture{
		users:    users,
		tokens:   tokens,
		tokenSvc: tokenSvc,
		auth:     services.NewAuthService(users, tokens, tokenSvc),
	}
}

func (f *authFixture) registerAlice(t *testing.T) *domain.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), dto.SignupRequest{
		Username: "alice",
		Email:    "alice@x.com",
		FullName: "Alice Doe",
		Password: "pw123-secret",
	})
	require.NoError(t, err)
	return user
}

// --- Register ---

func TestRegister_Defaults(t *testing.T) {
	f := newAuthFixture(t)

	user := f.registerAlice(t)

	assert.NotZero(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "pw123-secret", user.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("pw123-secret", user.PasswordHash))
	assert.False(t, user.CreatedAt.IsZero())
}

func TestRegister_ExplicitAdminRole(t *testing.T) {
	f := newAuthFixture(t)

	adminRole := domain.RoleAdmin
	user, err := f.auth.Register(context.Background(), dto.SignupRequest{
		Username: "root",
		Email:    "root@x.com",
		Password: "pw123-secret",
		Role:     &adminRole,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)

	_, err := f.auth.Register(context.Background(), dto.SignupRequest{
		Username: "someone-else",
		Email:    "alice@x.com",
		Password: "pw123-secret",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)

	_, err := f.auth.Register(context.Background(), dto.SignupRequest{
		Username: "alice",
		Email:    "unused@x.com",
		Password: "pw123-secret",
	})
	assert.ErrorIs(t, err, apperrors.ErrUsernameExists)
}

func TestRegister_EmailCheckedBeforeUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)

	// Collides on both; the email conflict must win.
	_, err := f.auth.Register(context.Background(), dto.SignupRequest{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "pw123-secret",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
}

// --- Authenticate ---

func TestAuthenticate_Success(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	accessClaims, err := f.tokenSvc.DecodeAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", accessClaims.Subject)
	assert.Equal(t, user.ID, accessClaims.UserID)
	assert.Equal(t, "alice@x.com", accessClaims.Email)
	assert.Equal(t, domain.RoleUser, accessClaims.Role)

	refreshClaims, err := f.tokenSvc.DecodeRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)

	record, err := f.tokens.FindRefreshTokenByJTI(ctx, refreshClaims.ID)
	require.NoError(t, err)
	assert.True(t, record.IsActive)
	assert.Equal(t, user.ID, record.UserID)
	assert.NotEqual(t, pair.RefreshToken, record.TokenHash, "raw token must never be stored")
	assert.True(t, f.tokenSvc.VerifyTokenHash(pair.RefreshToken, record.TokenHash))
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), record.ExpiresAt, 10*time.Second)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Authenticate(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)

	_, err := f.auth.Authenticate(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerAlice(t)

	user.IsActive = false
	require.NoError(t, f.users.UpdateUser(context.Background(), *user))

	// Correct password on a disabled account must be distinguishable from
	// bad credentials.
	_, err := f.auth.Authenticate(context.Background(), "alice", "pw123-secret")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	result, err := f.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "bearer", result.TokenType)
	assert.NotEmpty(t, result.AccessToken)

	// The presented record is consumed even on success.
	claims, err := f.tokenSvc.DecodeRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	record, err := f.tokens.FindRefreshTokenByJTI(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, record.IsActive)
	assert.NotNil(t, record.RevokedAt)
}

func TestRefresh_SingleUse(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefresh_GarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefresh_UnknownJTI(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)
	ctx := context.Background()

	// A validly signed refresh token whose record was never persisted.
	token, _, _, err := f.tokenSvc.IssueRefreshToken(ctx, 1, "")
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefresh_HashMismatch(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerAlice(t)
	ctx := context.Background()

	// Persist a record whose hash belongs to a different token string.
	presented, jti, expiresAt, err := f.tokenSvc.IssueRefreshToken(ctx, user.ID, "")
	require.NoError(t, err)
	otherHash, err := f.tokenSvc.HashToken("a.different.token")
	require.NoError(t, err)
	require.NoError(t, f.tokens.SaveRefreshToken(ctx, &domain.RefreshToken{
		JTI:       jti,
		UserID:    user.ID,
		TokenHash: otherHash,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}))

	_, err = f.auth.Refresh(ctx, presented)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefresh_ExpiryPrecedence(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)
	claims, err := f.tokenSvc.DecodeRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Backdate the stored record past its validity window. The first attempt
	// reports the expiry and retires the record.
	f.tokens.setExpiry(claims.ID, time.Now().Add(-time.Hour))

	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)

	record, err := f.tokens.FindRefreshTokenByJTI(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, record.IsActive)

	// The follow-up attempt sees an inactive record, not an expired one.
	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	assert.NotErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
}

func TestRefresh_InactiveOwner(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, f.users.UpdateUser(ctx, *user))

	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrUserInactiveOrMissing)
}

func TestRefresh_ConcurrentRotationRace(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.auth.Refresh(ctx, pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent refresh may succeed")
}

// --- Logout ---

func TestLogout_RevokesRecord(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)
	claims, err := f.tokenSvc.DecodeRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)

	f.auth.Logout(ctx, pair.RefreshToken)

	record, err := f.tokens.FindRefreshTokenByJTI(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, record.IsActive)
	assert.NotNil(t, record.RevokedAt)

	// A revoked token no longer refreshes.
	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestLogout_Idempotent(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAlice(t)
	ctx := context.Background()

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123-secret")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		f.auth.Logout(ctx, pair.RefreshToken)
		f.auth.Logout(ctx, pair.RefreshToken)
		f.auth.Logout(ctx, "garbage string")
		f.auth.Logout(ctx, "")
	})
}

// --- End-to-end scenario ---

func TestScenario_RegisterLoginRefreshReuse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, dto.SignupRequest{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)

	pair, err := f.auth.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	result, err := f.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)

	claims, err := f.tokenSvc.DecodeRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	record, err := f.tokens.FindRefreshTokenByJTI(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, record.IsActive)

	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

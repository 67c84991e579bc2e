package httpapi

import (
	"context"
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sucursalpos/internal/cache"
	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
	"sucursalpos/internal/store/memory"
)

type revocationsMock struct {
	mock.Mock
}

func (m *revocationsMock) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *revocationsMock) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type branchesStub map[string]bool

func (b branchesStub) ValidateBranch(_ context.Context, branchID string) error {
	if !b[branchID] {
		return store.ErrNotFound
	}
	return nil
}

func newTestAuth(t *testing.T, revocations cache.TokenRevocations) (*AuthManager, *memory.Store) {
	t.Helper()
	repo := memory.New()
	return NewAuthManager("unit-test-secret-0123456789abcdef", time.Hour, repo, revocations), repo
}

func TestAuthManagerLoginCarriesProfileIntoToken(t *testing.T) {
	auth, _ := newTestAuth(t, nil)
	ctx := context.Background()

	created, err := auth.CreateEmployee(ctx, branchesStub{"br-1": true}, domain.EmployeeCreateRequest{
		Email: "Clerk@Example.com", Password: "secret1", Name: " Clerk ", BranchID: "br-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", created.Email)
	assert.Equal(t, "Clerk", created.Name)
	assert.Equal(t, domain.RoleEmployee, created.Role)

	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "clerk@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "/sale", resp.Home)

	sess, err := auth.ParseToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{
		UserID:   created.ID,
		Name:     "Clerk",
		Email:    "clerk@example.com",
		Role:     domain.RoleEmployee,
		BranchID: "br-1",
	}, sess)
}

func TestAuthManagerCreateAccountValidation(t *testing.T) {
	auth, _ := newTestAuth(t, nil)
	ctx := context.Background()

	_, err := auth.CreateEmployee(ctx, branchesStub{}, domain.EmployeeCreateRequest{
		Email: "a@example.com", Password: "secret1", Name: "A", BranchID: "br-x",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = auth.CreateAdmin(ctx, domain.EmployeeCreateRequest{Email: "a@example.com", Password: "short", Name: "A"})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	_, err = auth.CreateAdmin(ctx, domain.EmployeeCreateRequest{Email: "nope", Password: "secret1", Name: "A"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	admin, err := auth.CreateAdmin(ctx, domain.EmployeeCreateRequest{Email: "boss@example.com", Password: "secret1", Name: "Boss", BranchID: "ignored"})
	require.NoError(t, err)
	assert.Empty(t, admin.BranchID)

	_, err = auth.CreateAdmin(ctx, domain.EmployeeCreateRequest{Email: "boss@example.com", Password: "secret2", Name: "Boss 2"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestAuthManagerLoginErrors(t *testing.T) {
	auth, repo := newTestAuth(t, nil)
	ctx := context.Background()

	_, err := auth.CreateAdmin(ctx, domain.EmployeeCreateRequest{Email: "boss@example.com", Password: "secret1", Name: "Boss"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, domain.LoginRequest{Email: "boss@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, domain.LoginRequest{Email: "missing@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, domain.LoginRequest{Email: "boss at example", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	hash, err := hashPassword("secret1")
	require.NoError(t, err)
	require.NoError(t, repo.CreateCredential(ctx, domain.Credential{Email: "orphan@example.com", UserID: "usr-gone", PasswordHash: hash}))
	_, err = auth.Login(ctx, domain.LoginRequest{Email: "orphan@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	require.NoError(t, repo.CreateCredential(ctx, domain.Credential{Email: "odd@example.com", UserID: "usr-odd", PasswordHash: hash}))
	_, err = repo.CreateUser(ctx, domain.User{ID: "usr-odd", Email: "odd@example.com", Name: "Odd", Role: "auditor"})
	require.NoError(t, err)
	_, err = auth.Login(ctx, domain.LoginRequest{Email: "odd@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrRoleUndefined)
}

func TestAuthManagerLogoutRevokesUntilExpiry(t *testing.T) {
	revocations := &revocationsMock{}
	auth, _ := newTestAuth(t, revocations)
	ctx := context.Background()
	now := time.Date(2026, 4, 14, 9, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }

	_, err := auth.CreateAdmin(ctx, domain.EmployeeCreateRequest{Email: "boss@example.com", Password: "secret1", Name: "Boss"})
	require.NoError(t, err)
	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := auth.parseClaims(resp.AccessToken)
	require.NoError(t, err)

	revocations.On("Revoke", mock.Anything, claims.ID, time.Hour).Return(nil).Once()
	sess, err := auth.Logout(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims.Subject, sess.UserID)

	revocations.On("IsRevoked", mock.Anything, claims.ID).Return(true, nil).Once()
	_, err = auth.ParseToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	revocations.AssertExpectations(t)
}

func TestAuthManagerParseTokenSurfacesRevocationStoreFailure(t *testing.T) {
	revocations := &revocationsMock{}
	auth, _ := newTestAuth(t, revocations)
	ctx := context.Background()

	_, err := auth.CreateAdmin(ctx, domain.EmployeeCreateRequest{Email: "boss@example.com", Password: "secret1", Name: "Boss"})
	require.NoError(t, err)
	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)

	down := errors.New("redis: connection refused")
	revocations.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, down)

	_, err = auth.ParseToken(ctx, resp.AccessToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestAuthManagerRejectsForeignAndExpiredTokens(t *testing.T) {
	auth, _ := newTestAuth(t, nil)
	ctx := context.Background()

	other := NewAuthManager("another-secret-0123456789abcdefgh", time.Hour, memory.New(), nil)
	forged, err := other.sign(domain.User{ID: "usr-1", Role: domain.RoleAdmin}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = auth.ParseToken(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := auth.sign(domain.User{ID: "usr-1", Role: domain.RoleAdmin}, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = auth.ParseToken(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, posCustomClaims{Role: domain.RoleAdmin})
	unsigned, err := none.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ParseToken(ctx, unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type failingProfiles struct {
	*memory.Store
	fail bool
}

func (f *failingProfiles) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if f.fail {
		return nil, errors.New("users table unavailable")
	}
	return f.Store.CreateUser(ctx, user)
}

func TestAuthManagerCreateAccountRemovesCredentialWhenProfileFails(t *testing.T) {
	repo := &failingProfiles{Store: memory.New(), fail: true}
	auth := NewAuthManager("unit-test-secret-0123456789abcdef", time.Hour, repo, nil)
	ctx := context.Background()
	req := domain.EmployeeCreateRequest{Email: "clerk@example.com", Password: "secret1", Name: "Clerk", BranchID: "br-1"}

	_, err := auth.CreateEmployee(ctx, branchesStub{"br-1": true}, req)
	require.Error(t, err)
	_, err = repo.GetCredentialByEmail(ctx, "clerk@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	repo.fail = false
	created, err := auth.CreateEmployee(ctx, branchesStub{"br-1": true}, req)
	require.NoError(t, err)
	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "clerk@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.User.ID)
}

func TestAuthManagerParseTokenFollowsCurrentProfile(t *testing.T) {
	auth, repo := newTestAuth(t, nil)
	ctx := context.Background()

	created, err := auth.CreateEmployee(ctx, branchesStub{"br-1": true}, domain.EmployeeCreateRequest{
		Email: "clerk@example.com", Password: "secret1", Name: "Clerk", BranchID: "br-1",
	})
	require.NoError(t, err)
	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "clerk@example.com", Password: "secret1"})
	require.NoError(t, err)

	moved := created
	moved.BranchID = "br-2"
	moved.Name = "Clerk Norte"
	_, err = repo.UpdateUser(ctx, moved)
	require.NoError(t, err)

	sess, err := auth.ParseToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "br-2", sess.BranchID)
	assert.Equal(t, "Clerk Norte", sess.Name)

	require.NoError(t, repo.DeleteUser(ctx, created.ID))
	_, err = auth.ParseToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := hashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, isPasswordHash(hash))
	assert.True(t, verifyPassword(hash, "secret1"))
	assert.False(t, verifyPassword(hash, "secret2"))
	assert.False(t, verifyPassword("secret1", "secret1"), "plain text must never verify")
	assert.False(t, verifyPassword(hash, "   "))
}

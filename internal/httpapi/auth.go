package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sucursalpos/internal/cache"
	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
	"sucursalpos/internal/xid"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProfileNotFound    = errors.New("user profile not found")
	ErrRoleUndefined      = errors.New("user role is not defined")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const minPasswordLength = 6

// BranchValidator checks that an employee's branch exists before the account
// is written.
type BranchValidator interface {
	ValidateBranch(ctx context.Context, branchID string) error
}

type AuthManager struct {
	secret      []byte
	tokenTTL    time.Duration
	repo        store.Repository
	revocations cache.TokenRevocations
	now         func() time.Time
}

type posCustomClaims struct {
	jwtlib.RegisteredClaims
	Role     string `json:"role"`
	BranchID string `json:"branch_id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, repo store.Repository, revocations cache.TokenRevocations) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	if revocations == nil {
		revocations = cache.NewMemoryRevocations()
	}
	return &AuthManager{
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
		repo:        repo,
		revocations: revocations,
		now:         time.Now,
	}
}

// Login checks the password against the stored credential, then resolves the
// profile the credential points at. The home route depends on the role.
func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	cred, err := a.repo.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResponse{}, ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}
	if !verifyPassword(cred.PasswordHash, req.Password) {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}

	user, err := a.repo.GetUser(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResponse{}, ErrProfileNotFound
		}
		return domain.LoginResponse{}, err
	}

	home, err := homeFor(user.Role)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	expiresAt := a.now().UTC().Add(a.tokenTTL)
	token, err := a.sign(*user, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		Home:        home,
		User:        *user,
	}, nil
}

func homeFor(role string) (string, error) {
	switch role {
	case domain.RoleAdmin:
		return "/admin", nil
	case domain.RoleEmployee:
		return "/sale", nil
	default:
		return "", ErrRoleUndefined
	}
}

// ParseToken validates signature, expiry and revocation, then rebuilds the
// session from the current profile. A deleted profile invalidates its tokens
// and a branch reassignment takes effect on the next request.
func (a *AuthManager) ParseToken(ctx context.Context, tokenStr string) (domain.Session, error) {
	claims, err := a.parseClaims(tokenStr)
	if err != nil {
		return domain.Session{}, err
	}
	revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return domain.Session{}, ErrInvalidToken
	}

	user, err := a.repo.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidToken
		}
		return domain.Session{}, fmt.Errorf("load session profile: %w", err)
	}
	if _, err := homeFor(user.Role); err != nil {
		return domain.Session{}, ErrInvalidToken
	}
	return domain.Session{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		BranchID: user.BranchID,
	}, nil
}

// Logout revokes the token until it would have expired anyway.
func (a *AuthManager) Logout(ctx context.Context, tokenStr string) (domain.Session, error) {
	claims, err := a.parseClaims(tokenStr)
	if err != nil {
		return domain.Session{}, err
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(a.now()); remaining > 0 {
			ttl = remaining
		}
	}
	if err := a.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return domain.Session{}, fmt.Errorf("revoke token: %w", err)
	}
	return domain.Session{UserID: claims.Subject, Role: claims.Role, BranchID: claims.BranchID}, nil
}

func (a *AuthManager) parseClaims(tokenStr string) (*posCustomClaims, error) {
	claims := &posCustomClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *AuthManager) sign(user domain.User, expiresAt time.Time) (string, error) {
	claims := posCustomClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwtlib.NewNumericDate(a.now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "sucursalpos",
		},
		Role:     user.Role,
		BranchID: user.BranchID,
		Name:     user.Name,
		Email:    user.Email,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// CreateEmployee registers an employee account tied to an existing branch.
func (a *AuthManager) CreateEmployee(ctx context.Context, branches BranchValidator, req domain.EmployeeCreateRequest) (domain.User, error) {
	if branches != nil {
		if err := branches.ValidateBranch(ctx, strings.TrimSpace(req.BranchID)); err != nil {
			return domain.User{}, err
		}
	}
	return a.createAccount(ctx, req, domain.RoleEmployee)
}

// CreateAdmin registers an admin account. Admins have no branch.
func (a *AuthManager) CreateAdmin(ctx context.Context, req domain.EmployeeCreateRequest) (domain.User, error) {
	req.BranchID = ""
	return a.createAccount(ctx, req, domain.RoleAdmin)
}

func (a *AuthManager) createAccount(ctx context.Context, req domain.EmployeeCreateRequest, role string) (domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", store.ErrInvalidRecord, err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", store.ErrInvalidRecord)
	}
	if strings.TrimSpace(req.Password) == "" || len(req.Password) < minPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", store.ErrInvalidRecord, minPasswordLength)
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password")
	}

	now := a.now().UTC()
	user := domain.User{
		ID:        xid.New("usr"),
		Name:      name,
		Email:     email,
		Role:      role,
		BranchID:  strings.TrimSpace(req.BranchID),
		CreatedAt: now,
	}
	if err := a.repo.CreateCredential(ctx, domain.Credential{
		Email:        email,
		UserID:       user.ID,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.User{}, fmt.Errorf("%w: email already registered", store.ErrConflict)
		}
		return domain.User{}, err
	}

	created, err := a.repo.CreateUser(ctx, user)
	if err != nil {
		if delErr := a.repo.DeleteCredential(ctx, email); delErr != nil {
			log.Printf("[httpapi] WARN: credential for %s left without a profile: %v", email, delErr)
		}
		return domain.User{}, err
	}
	return *created, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}


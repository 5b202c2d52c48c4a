package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dombarter/solar-api/internal/core/domain"
	"github.com/dombarter/solar-api/internal/core/ports"
)

const defaultTokenTTL = 30 * time.Minute

// AccountService implements registration, login and identity lookup.
type AccountService struct {
	repo     ports.UserRepository
	tokens   ports.TokenIssuer
	attempts ports.LoginAttempts // nil disables lockout
	policy   PasswordPolicy
	tokenTTL time.Duration
}

func NewAccountService(repo ports.UserRepository, tokens ports.TokenIssuer, attempts ports.LoginAttempts, policy PasswordPolicy, tokenTTL time.Duration) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AccountService{
		repo:     repo,
		tokens:   tokens,
		attempts: attempts,
		policy:   policy,
		tokenTTL: tokenTTL,
	}
}

// Register creates the identity and grants it the default User role.
// Weak passwords fail with *domain.PasswordPolicyError listing every
// violated rule; duplicates fail with domain.ErrUserExists.
func (s *AccountService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeUsername(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.policy.Validate(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:            uuid.NewString(),
		Username:      email,
		Email:         email,
		PasswordHash:  string(hash),
		SecurityStamp: uuid.NewString(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddToRole(ctx, created.ID, domain.RoleUser); err != nil {
		return nil, err
	}
	created.Roles = append(created.Roles, domain.RoleUser)

	return created, nil
}

// Login verifies credentials and mints a credential embedding the user's
// role list. "No such user" and "wrong password" are deliberately
// indistinguishable; both count as a failed attempt against the lockout
// key, whether or not the account exists.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeUsername(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if s.attempts != nil {
		locked, err := s.attempts.TooMany(ctx, email)
		if err != nil {
			return "", nil, err
		}
		if locked {
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByUsername(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, s.failAttempt(ctx, email)
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, s.failAttempt(ctx, email)
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, email); err != nil {
			return "", nil, err
		}
	}

	token, err := s.tokens.Issue(user, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// CurrentUser resolves a verified subject claim back to the stored identity.
func (s *AccountService) CurrentUser(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, normalizeUsername(username))
}

func (s *AccountService) failAttempt(ctx context.Context, key string) error {
	if s.attempts != nil {
		if err := s.attempts.RecordFailure(ctx, key); err != nil {
			return err
		}
	}
	return domain.ErrInvalidCredentials
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

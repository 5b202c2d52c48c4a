package ports

import (
	"context"

	"github.com/dombarter/solar-api/internal/core/domain"
)

// UserRepository defines the interface for identity persistence. The store
// exclusively owns user and role records; token issuance only reads role
// membership through it.
type UserRepository interface {
	// Create persists a new user. Returns domain.ErrUserExists when the
	// username is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// FindByUsername loads a user with its role memberships. Returns
	// domain.ErrUserNotFound when no such user exists.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// AddToRole grants the named role to the user. The role must already
	// be seeded.
	AddToRole(ctx context.Context, userID, role string) error

	// EnsureRoles creates any of the named roles that do not exist yet.
	// Idempotent; called once at startup.
	EnsureRoles(ctx context.Context, names []string) error
}

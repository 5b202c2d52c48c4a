package ports

import (
	"context"

	"github.com/dombarter/solar-api/internal/core/domain"
)

type AccountService interface {
	// Register creates an identity and assigns it the default User role.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Login verifies credentials and mints a signed token. Lookup failure
	// and password mismatch both surface as domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// CurrentUser resolves the identity behind a verified subject claim.
	CurrentUser(ctx context.Context, username string) (*domain.User, error)
}

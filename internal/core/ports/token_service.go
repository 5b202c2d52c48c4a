package ports

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dombarter/solar-api/internal/core/domain"
)

// AuthClaims is the only claim shape this service issues or accepts: the
// registered claims plus an explicit role list. Roles are trusted as
// embedded at verification time; there is no store round-trip per request.
type AuthClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

type TokenIssuer interface {
	// Issue mints a signed credential for the user, expiring after ttl.
	// Each token carries a fresh unique id (jti).
	Issue(user *domain.User, ttl time.Duration) (string, error)
}

type TokenVerifier interface {
	// Verify checks signature, issuer, audience and expiry; all are
	// mandatory. Returns domain.ErrInvalidToken on any failure.
	Verify(token string) (*AuthClaims, error)
}

type TokenService interface {
	TokenIssuer
	TokenVerifier
}

package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dombarter/solar-api/internal/core/domain"
	"github.com/dombarter/solar-api/internal/core/ports"
)

// TokenService issues and verifies HS256-signed credentials. Tokens are
// stateless: no issuance log, no revocation list.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
}

func NewTokenService(key, issuer, audience string) *TokenService {
	return &TokenService{key: []byte(key), issuer: issuer, audience: audience}
}

// Issue mints a credential with subject = username, a fresh jti, one role
// list claim, issuer, audience and expiry = now + ttl.
func (s *TokenService) Issue(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &ports.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: append([]string(nil), user.Roles...),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}

// Verify validates signature, issuer, audience and expiry. Any failure
// collapses to domain.ErrInvalidToken so callers cannot distinguish why a
// credential was rejected.
func (s *TokenService) Verify(tokenString string) (*ports.AuthClaims, error) {
	claims := &ports.AuthClaims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

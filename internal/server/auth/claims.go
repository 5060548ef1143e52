// Package auth implements signing and parsing of the two token kinds issued
// by the service. Both kinds share one HS256 secret and differ only by claim
// shape: access tokens are stateless, refresh tokens additionally carry the
// family id that ties successive rotations together.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims are the claims of a short-lived access token. Subject is the
// user id; JIT uniquely identifies this token instance. Access tokens are
// never persisted, their validity is purely signature + expiry.
type AccessClaims struct {
	jwt.RegisteredClaims
	JIT string `json:"jit"`
}

// RefreshClaims are the claims of a rotating refresh token. Family stays
// stable across rotations of one logical session; JIT changes on every
// rotation.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Family string `json:"family"`
	JIT    string `json:"jit"`
}

// NewAccessClaims mints access claims for userID with a fresh jit.
func NewAccessClaims(userID string, issuedAt time.Time, ttl time.Duration) *AccessClaims {
	return &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		JIT: uuid.NewString(),
	}
}

// NewRefreshClaims mints refresh claims for userID in the given family with
// a fresh jit.
func NewRefreshClaims(userID, family string, issuedAt time.Time, ttl time.Duration) *RefreshClaims {
	return &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Family: family,
		JIT:    uuid.NewString(),
	}
}

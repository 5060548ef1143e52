package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/matoscout/api/internal/common"
)

// Codec signs and parses tokens with one symmetric secret. The secret is
// fixed at construction; a Codec is safe for concurrent use.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Encode signs claims with HS256 and returns the compact serialization.
func (c *Codec) Encode(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return tokenString, nil
}

// Decode parses and verifies tokenString into the claim type C. Malformed
// tokens, bad signatures, non-HMAC algorithm headers, and expired tokens all
// fail with common.ErrInvalidToken. Decode performs no persistence lookups.
func Decode[C any, PC interface {
	*C
	jwt.Claims
}](c *Codec, tokenString string) (*C, error) {
	claims := PC(new(C))

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return (*C)(claims), nil
}

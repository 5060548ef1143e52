// Package tokens implements the refresh-token rotation protocol: one
// persisted record per family, rotated in place on every successful refresh,
// revoked family-wide when a stale token is presented.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matoscout/api/internal/common"
	"github.com/matoscout/api/internal/server/auth"
	"github.com/matoscout/api/internal/server/models"
	"github.com/matoscout/api/internal/server/repositories/refreshtokens"
)

// Ledger issues, persists, validates, and rotates refresh tokens for a
// configured TTL. It holds no state beyond its repository handle and is safe
// for concurrent use.
type Ledger struct {
	repo refreshtokens.Repository
	ttl  time.Duration
}

func NewLedger(repo refreshtokens.Repository, ttl time.Duration) *Ledger {
	return &Ledger{repo: repo, ttl: ttl}
}

// Issue mints refresh claims for userID in family with a fresh jit. Nothing
// is persisted yet.
func (l *Ledger) Issue(userID, family string) *auth.RefreshClaims {
	return auth.NewRefreshClaims(userID, family, time.Now(), l.ttl)
}

// Persist upserts the family record for claims. Used on sign-in, where the
// family is brand new and nothing can conflict.
func (l *Ledger) Persist(ctx context.Context, claims *auth.RefreshClaims) error {
	if err := l.repo.Save(ctx, record(claims)); err != nil {
		return fmt.Errorf("persisting refresh token: %w", err)
	}
	return nil
}

// Validate checks that claims still name the current token of its family.
// If no record holds the claimed jit, the token was already rotated away or
// never existed: the presenter is holding a stale (likely stolen) token, so
// the entire family is revoked before returning common.ErrInvalidToken.
// The legitimate client's current token dies with the family, forcing
// re-authentication and limiting the blast radius of the leak.
func (l *Ledger) Validate(ctx context.Context, claims *auth.RefreshClaims) error {
	_, err := l.repo.FindByJIT(ctx, claims.JIT)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("looking up refresh token: %w", err)
	}

	if err := l.repo.DeleteFamily(ctx, claims.Family); err != nil {
		return fmt.Errorf("revoking token family: %w", err)
	}
	return common.ErrInvalidToken
}

// Rotate issues the next token of the family and persists it with a
// compare-and-swap on the previous jit. Losing the swap means either a
// concurrent rotation of the same token already won, or a concurrent
// reuse-revocation deleted the family; the loser is rejected with
// common.ErrInvalidToken and nothing is re-created. On a plain lost race
// the family survives, since the winning client holds a valid token.
func (l *Ledger) Rotate(ctx context.Context, claims *auth.RefreshClaims) (*auth.RefreshClaims, error) {
	next := l.Issue(claims.Subject, claims.Family)

	won, err := l.repo.Rotate(ctx, record(next), claims.JIT)
	if err != nil {
		return nil, fmt.Errorf("rotating refresh token: %w", err)
	}
	if !won {
		return nil, common.ErrInvalidToken
	}

	return next, nil
}

func record(claims *auth.RefreshClaims) *models.RefreshToken {
	return &models.RefreshToken{
		UserID:  claims.Subject,
		JIT:     claims.JIT,
		Family:  claims.Family,
		Expires: claims.ExpiresAt.Time,
	}
}

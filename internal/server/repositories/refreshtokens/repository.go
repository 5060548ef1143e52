// Package refreshtokens declares the persistence contract for refresh-token
// families.
package refreshtokens

import (
	"context"

	"github.com/matoscout/api/internal/server/models"
)

// Repository stores at most one row per family. Save upserts keyed on the
// family column; Rotate updates the existing row only while its current jit
// matches the rotating token's previous jit, so exactly one of several
// concurrent rotations can win and a revoked family stays gone.
type Repository interface {
	// Save upserts the family row unconditionally. Used on sign-in, where
	// the family is brand new.
	Save(ctx context.Context, token *models.RefreshToken) error

	// Rotate replaces the family row's jit only if the row exists and its
	// current jit equals prevJIT. It reports whether the write won; false
	// means a concurrent rotation got there first or the family was revoked.
	Rotate(ctx context.Context, token *models.RefreshToken, prevJIT string) (bool, error)

	// FindByJIT returns the row whose current jit matches, or
	// common.ErrorNotFound.
	FindByJIT(ctx context.Context, jit string) (*models.RefreshToken, error)

	// DeleteFamily removes the family row, revoking every token ever issued
	// for that family. Deleting an absent family is not an error.
	DeleteFamily(ctx context.Context, family string) error
}

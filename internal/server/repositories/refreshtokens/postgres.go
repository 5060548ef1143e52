// Package refreshtokens provides a PostgreSQL-backed repository for the
// refresh-token rotation protocol.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/matoscout/api/internal/common"
	"github.com/matoscout/api/internal/dbx"
	"github.com/matoscout/api/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save upserts the row for token's family. On conflict the existing row's
// jit, expiry, and created_at are overwritten, which is what makes rotation
// atomic: each family has exactly one current token state.
func (r *PostgresRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, jit, family, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (family) DO UPDATE
		SET jit = EXCLUDED.jit,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), token.UserID, token.JIT, token.Family, token.Expires)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Rotate replaces the family row's jit with a compare-and-swap: the UPDATE
// only fires while the row still exists and carries prevJIT. Zero rows
// affected means either a concurrent rotation replaced the jit first or a
// concurrent reuse-revocation deleted the family; in both cases this write
// lost and must not re-create the row.
func (r *PostgresRepository) Rotate(ctx context.Context, token *models.RefreshToken, prevJIT string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET jit = $1,
		    expires_at = $2,
		    created_at = now()
		WHERE family = $3 AND jit = $4
	`
	res, err := r.db.ExecContext(ctx, query,
		token.JIT, token.Expires, token.Family, prevJIT)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return rows == 1, nil
}

// FindByJIT returns the family row currently holding jit.
func (r *PostgresRepository) FindByJIT(ctx context.Context, jit string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, jit, family, expires_at, created_at
		FROM refresh_tokens
		WHERE jit = $1
	`
	token := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, jit).Scan(
		&token.ID, &token.UserID, &token.JIT, &token.Family, &token.Expires, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

// DeleteFamily removes the family row.
func (r *PostgresRepository) DeleteFamily(ctx context.Context, family string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE family = $1
	`
	if _, err := r.db.ExecContext(ctx, query, family); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Package users declares the persistence contract for user credentials.
package users

import (
	"context"

	"github.com/matoscout/api/internal/server/models"
)

type Repository interface {
	// Create stores a new credential record and returns it with its id set.
	// A duplicate email yields common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks up a credential by its normalized email address.
	// Implementations return common.ErrorNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

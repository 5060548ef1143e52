package repomanager

import (
	"context"
	"database/sql"

	"github.com/matoscout/api/internal/dbx"
	"github.com/matoscout/api/internal/server/repositories/refreshtokens"
	"github.com/matoscout/api/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

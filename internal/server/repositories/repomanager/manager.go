package repomanager

import (
	"context"
	"database/sql"

	"github.com/avdokushin/authgate/internal/dbx"
	"github.com/avdokushin/authgate/internal/server/repositories/accounts"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}

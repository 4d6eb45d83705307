package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/emphub/internal/dbx"
	"github.com/dmitrijs2005/emphub/internal/server/repositories/employees"
	"github.com/dmitrijs2005/emphub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Employees(db dbx.DBTX) employees.Repository
}

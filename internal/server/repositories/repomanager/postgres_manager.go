// Package repomanager provides the PostgreSQL RepositoryManager: repository
// constructors bound to a DBTX plus the goose migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/emphub/internal/dbx"
	"github.com/dmitrijs2005/emphub/internal/server/migrations"
	"github.com/dmitrijs2005/emphub/internal/server/repositories/employees"
	"github.com/dmitrijs2005/emphub/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to db, which may be a *sql.Tx.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Employees returns an employees.Repository bound to db.
func (m *PostgresRepositoryManager) Employees(db dbx.DBTX) employees.Repository {
	return employees.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := Prepare(); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Prepare points goose at the embedded migrations and the pgx dialect.
// cmd/migrate calls it before running goose commands directly.
func Prepare() error {
	goose.SetBaseFS(migrations.Migrations)
	return goose.SetDialect("pgx")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

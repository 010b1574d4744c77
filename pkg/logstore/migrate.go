package logstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationTable keeps goose bookkeeping away from any table the host
// application migrates itself.
const migrationTable = "logs_goose_version"

// MigratePostgres applies the logs table migrations over the pool.
// The bridged database/sql handle shares the pool's connections, so it
// is not closed here.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	return migrate(ctx, stdlib.OpenDBFromPool(pool), "postgres", "migrations/postgres", log)
}

// MigrateSQLite applies the logs table migrations to the database file.
func MigrateSQLite(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	return migrate(ctx, db, "sqlite3", "migrations/sqlite", log)
}

func migrate(ctx context.Context, db *sql.DB, dialect, dir string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName(migrationTable)

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// Error level only - goose returns an error that propagates up, and
	// os.Exit(1) would skip shutdown and cleanup.
	g.log.Error(fmt.Sprintf(format, args...))
}

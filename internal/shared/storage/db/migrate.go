package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var gooseSetup sync.Once

func setupGoose() error {
	var err error
	gooseSetup.Do(func() {
		goose.SetBaseFS(migrationFiles)
		err = goose.SetDialect("postgres")
	})
	return err
}

// RunMigrations applies embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, "up")
}

// Migrate runs a goose command ("up", "down" or "status") against the embedded migrations.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	if database == nil {
		return nil
	}
	if err := setupGoose(); err != nil {
		return err
	}
	switch command {
	case "up":
		return goose.UpContext(ctx, database, "migrations")
	case "down":
		return goose.DownContext(ctx, database, "migrations")
	case "status":
		return goose.StatusContext(ctx, database, "migrations")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

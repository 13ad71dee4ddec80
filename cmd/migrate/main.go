package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"os"

	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/storage/db"
	"assessment-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.Env)
	defer telemetry.Sync()
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"err": err})
		telemetry.Sync()
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "err": err})
		sqlDB.Close()
		telemetry.Sync()
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}

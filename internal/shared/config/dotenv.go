package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"assessment-backend/internal/shared/telemetry"
)

// loadEnvFiles loads KEY=VALUE files if they exist. Variables already set in
// the process environment win. Missing files are skipped.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			telemetry.Warn("config.env_file_failed", map[string]any{"path": path, "err": err})
		}
	}
}

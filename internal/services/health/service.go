package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. db may be nil when the
// service runs on in-memory repositories.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status reports overall health and the state of each dependency.
func (s *Service) Status(ctx context.Context) (bool, map[string]string) {
	checks := map[string]string{"store": "memory"}
	if s.DB == nil {
		return true, checks
	}
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(pctx); err != nil {
		checks["store"] = "unavailable"
		return false, checks
	}
	checks["store"] = "postgres"
	return true, checks
}

package checks

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/database"
	"github.com/charlesng35/notesd/internal/monitoring"
)

// Database returns a probe that pings the primary store.
func Database(db *gorm.DB) monitoring.Check {
	return monitoring.Check{
		Name: "database",
		Probe: func(ctx context.Context) error {
			if db == nil {
				return errors.New("database not configured")
			}
			return database.Ping(ctx, db)
		},
	}
}

package checks

import (
	"context"

	"github.com/charlesng35/notesd/internal/monitoring"
)

// RedisPinger represents the minimal interface required to probe a redis connection.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// Redis returns a probe for the optional Redis cache. A failing cache only
// degrades the report since every cache consumer falls back to the database.
func Redis(client RedisPinger) monitoring.Check {
	return monitoring.Check{
		Name:     "redis",
		Optional: true,
		Probe:    client.Ping,
	}
}

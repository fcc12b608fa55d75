package app

import (
	"strings"

	"github.com/charlesng35/notesd/internal/database"
	"github.com/charlesng35/notesd/internal/storage"
)

// Supported avatar storage drivers.
const (
	AvatarDriverLocal = "local"
	AvatarDriverS3    = "s3"
)

// AvatarDriver returns the normalised avatar storage driver.
func (c StorageConfig) AvatarDriver() string {
	driver := strings.ToLower(strings.TrimSpace(c.Avatars.Driver))
	if driver == "" {
		return AvatarDriverLocal
	}
	return driver
}

// S3Config converts the avatar bucket settings into the storage package representation.
func (c StorageConfig) S3Config() storage.S3Config {
	s3 := c.Avatars.S3
	return storage.S3Config{
		Bucket:          strings.TrimSpace(s3.Bucket),
		Region:          strings.TrimSpace(s3.Region),
		Endpoint:        strings.TrimSpace(s3.Endpoint),
		AccessKeyID:     strings.TrimSpace(s3.AccessKeyID),
		SecretAccessKey: s3.SecretAccessKey,
		Prefix:          strings.TrimSpace(s3.Prefix),
		PublicURL:       strings.TrimSpace(s3.PublicURL),
		PathStyle:       s3.PathStyle,
	}
}

// DatabaseOpenConfig converts DatabaseConfig into database.Open parameters.
func (c DatabaseConfig) DatabaseOpenConfig() database.Config {
	dbCfg := database.Config{
		Driver:     strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:       strings.TrimSpace(c.Path),
		DSN:        strings.TrimSpace(c.DSN),
		LogQueries: c.LogQueries,
	}

	var auth DBAuthConfig
	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
		return dbCfg
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		auth = c.Postgres
	case "mysql":
		auth = c.MySQL
	default:
		// Leave driver as-is to surface unsupported driver error during open.
		return dbCfg
	}

	dbCfg.Host = strings.TrimSpace(auth.Host)
	dbCfg.Port = auth.Port
	dbCfg.Name = strings.TrimSpace(auth.Database)
	dbCfg.User = strings.TrimSpace(auth.Username)
	dbCfg.Password = auth.Password
	return dbCfg
}

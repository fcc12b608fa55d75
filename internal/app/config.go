package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the notes backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	BaseURL         string        `mapstructure:"base_url"`
	PublicDir       string        `mapstructure:"public_dir"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver     string       `mapstructure:"driver"`
	Path       string       `mapstructure:"path"`
	DSN        string       `mapstructure:"dsn"`
	LogQueries bool         `mapstructure:"log_queries"`
	Postgres   DBAuthConfig `mapstructure:"postgres"`
	MySQL      DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
	// Sessions caches session lookups in the active cache backend.
	Sessions bool `mapstructure:"sessions"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	Access  TokenSettings   `mapstructure:"access"`
	Refresh TokenSettings   `mapstructure:"refresh"`
	Session SessionSettings `mapstructure:"session"`
	Cookies CookieSettings  `mapstructure:"cookies"`
}

// TokenSettings configures one signed token kind.
type TokenSettings struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

// SessionSettings configures server side sessions.
type SessionSettings struct {
	TokenBytes    int  `mapstructure:"token_bytes"`
	RotateRefresh bool `mapstructure:"rotate_refresh"`
}

// CookieSettings names and scopes the credential cookies.
type CookieSettings struct {
	AccessName  string `mapstructure:"access_name"`
	RefreshName string `mapstructure:"refresh_name"`
	Domain      string `mapstructure:"domain"`
	Path        string `mapstructure:"path"`
}

// RateLimitConfig limits requests per client IP on the API.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// StorageConfig selects where uploaded files are kept.
type StorageConfig struct {
	Avatars AvatarStorageConfig `mapstructure:"avatars"`
}

// AvatarStorageConfig configures the avatar store.
type AvatarStorageConfig struct {
	Driver string          `mapstructure:"driver"`
	Dir    string          `mapstructure:"dir"`
	S3     S3StorageConfig `mapstructure:"s3"`
}

// S3StorageConfig holds S3 compatible bucket settings.
type S3StorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Prefix          string `mapstructure:"prefix"`
	PublicURL       string `mapstructure:"public_url"`
	PathStyle       bool   `mapstructure:"path_style"`
}

// MaintenanceConfig schedules background cleanup.
type MaintenanceConfig struct {
	Schedule     string `mapstructure:"schedule"`
	SessionPurge bool   `mapstructure:"session_purge"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.public_dir", "./public")
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/notes.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.username", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.mysql.host", "")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")

	v.SetDefault("cache.sessions", false)
	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("auth.access.secret", "")
	v.SetDefault("auth.access.ttl", "1h")
	v.SetDefault("auth.access.issuer", "notesd")
	v.SetDefault("auth.refresh.secret", "")
	v.SetDefault("auth.refresh.ttl", "720h") // 30 days
	v.SetDefault("auth.session.token_bytes", 32)
	v.SetDefault("auth.session.rotate_refresh", false)
	v.SetDefault("auth.cookies.access_name", "ACCESS")
	v.SetDefault("auth.cookies.refresh_name", "REFRESH")
	v.SetDefault("auth.cookies.domain", "")
	v.SetDefault("auth.cookies.path", "/")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1h")

	v.SetDefault("storage.avatars.driver", "local")
	v.SetDefault("storage.avatars.dir", "")
	v.SetDefault("storage.avatars.s3.bucket", "")
	v.SetDefault("storage.avatars.s3.region", "us-east-1")
	v.SetDefault("storage.avatars.s3.endpoint", "")
	v.SetDefault("storage.avatars.s3.access_key_id", "")
	v.SetDefault("storage.avatars.s3.secret_access_key", "")
	v.SetDefault("storage.avatars.s3.prefix", "")
	v.SetDefault("storage.avatars.s3.public_url", "")
	v.SetDefault("storage.avatars.s3.path_style", false)

	v.SetDefault("maintenance.schedule", "@every 1h")
	v.SetDefault("maintenance.session_purge", false)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// AvatarDir resolves the local avatar directory, defaulting to public_dir/images/user.
func (c *Config) AvatarDir() string {
	if dir := strings.TrimSpace(c.Storage.Avatars.Dir); dir != "" {
		return dir
	}
	public := strings.TrimRight(strings.TrimSpace(c.Server.PublicDir), "/")
	if public == "" {
		public = "./public"
	}
	return public + "/images/user"
}

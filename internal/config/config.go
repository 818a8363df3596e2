package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Mail      MailConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string   `env:"APP_NAME" envDefault:"contacts-service"`
	Env                   string   `env:"APP_ENV" envDefault:"development"`
	Host                  string   `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string   `env:"APP_PORT" envDefault:"8080"`
	Version               string   `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int      `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	CORSOrigins           string   `env:"HTTP_CORS_ORIGINS" envDefault:"*"`
	BannedUserAgents      []string `env:"HTTP_BANNED_USER_AGENTS" envSeparator:"," envDefault:"Googlebot,Python-urllib"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	// Driver selects the cache backend: "redis" or "memory".
	Driver string `env:"CACHE_DRIVER" envDefault:"redis"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret       string        `env:"AUTH_JWT_SECRET"`
	Algorithm       string        `env:"AUTH_JWT_ALGORITHM" envDefault:"HS256"`
	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`
	ResetTokenTTL   time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"30m"`
	EmailTokenTTL   time.Duration `env:"AUTH_EMAIL_TOKEN_TTL" envDefault:"24h"`
	UserCacheTTL    time.Duration `env:"AUTH_USER_CACHE_TTL" envDefault:"300s"`
	BcryptCost      int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
}

// MailConfig holds SMTP settings for outgoing notifications.
type MailConfig struct {
	Host     string `env:"MAIL_SERVER"`
	Port     int    `env:"MAIL_PORT" envDefault:"465"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	From     string `env:"MAIL_FROM" envDefault:"noreply@example.com"`
	FromName string `env:"MAIL_FROM_NAME" envDefault:"Contacts Service"`
	SSL      bool   `env:"MAIL_SSL_TLS" envDefault:"true"`
	// PublicURL is the externally reachable base used in email links.
	PublicURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080/"`
}

// StorageConfig holds S3-compatible object storage settings for avatars.
type StorageConfig struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	PublicURL string `env:"S3_PUBLIC_URL"`
}

// RateLimitConfig bounds the password-reset request endpoint.
type RateLimitConfig struct {
	ResetRequestMax    int           `env:"RATE_LIMIT_RESET_MAX" envDefault:"1"`
	ResetRequestWindow time.Duration `env:"RATE_LIMIT_RESET_WINDOW" envDefault:"60s"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot safely start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if c.Auth.Algorithm != "HS256" {
		return fmt.Errorf("AUTH_JWT_ALGORITHM must be HS256, got %q", c.Auth.Algorithm)
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 || c.Auth.ResetTokenTTL <= 0 || c.Auth.EmailTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	switch c.Redis.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("CACHE_DRIVER must be redis or memory, got %q", c.Redis.Driver)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Enabled reports whether avatar uploads are configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// Enabled reports whether SMTP delivery is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

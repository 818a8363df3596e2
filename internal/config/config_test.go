package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "contacts-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, []string{"Googlebot", "Python-urllib"}, cfg.App.BannedUserAgents)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 300*time.Second, cfg.Auth.UserCacheTTL)
	assert.Equal(t, 1, cfg.RateLimit.ResetRequestMax)
	assert.Equal(t, time.Minute, cfg.RateLimit.ResetRequestWindow)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CACHE_DRIVER", "memory")
	t.Setenv("S3_BUCKET", "avatars")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "memory", cfg.Redis.Driver)
	assert.True(t, cfg.Storage.Enabled())
}

func TestLoad_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Auth: AuthConfig{
				JWTSecret:       "s",
				Algorithm:       "HS256",
				AccessTokenTTL:  time.Minute,
				RefreshTokenTTL: time.Hour,
				ResetTokenTTL:   time.Minute,
				EmailTokenTTL:   time.Hour,
			},
			Redis: RedisConfig{Driver: "redis"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad algorithm", mutate: func(c *Config) { c.Auth.Algorithm = "RS256" }, wantErr: "HS256"},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.ResetTokenTTL = 0 }, wantErr: "positive"},
		{name: "bad driver", mutate: func(c *Config) { c.Redis.Driver = "memcached" }, wantErr: "CACHE_DRIVER"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

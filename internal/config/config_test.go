package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

// clearEnv unsets every variable Load reads, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{ConfigPathEnvVar}
	for k := range envMappings {
		keys = append(keys, strings.ToUpper(k))
	}
	for _, k := range keys {
		if _, ok := os.LookupEnv(k); ok {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sqlite:////tmp/test.db", cfg.Database.URL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)

	// Everything but the secret is valid out of the box.
	cfg.Auth.JWTSecret = testSecret
	assert.NoError(t, cfg.Validate())
}

func TestLoad_RequiresSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret is required")
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "sqlite:///data/app.db")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, ":8081", cfg.Server.Addr())
	assert.Equal(t, "sqlite:///data/app.db", cfg.Database.URL)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.SlogLevel())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_LegacySecretName(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "legacy-secret-value-123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret-value-123", cfg.Auth.JWTSecret)

	t.Setenv("JWT_SECRET_KEY", testSecret)
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret, "JWT_SECRET_KEY should win")
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
  shutdown_timeout: 3s
auth:
  jwt_secret: from-the-file-0123456
  issuer: file-issuer
cors:
  allowed_origins:
    - https://file.example
rate_limit:
  requests: 3
  window: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	// Environment beats the file.
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "from-the-file-0123456", cfg.Auth.JWTSecret)
	assert.Equal(t, "file-issuer", cfg.Auth.Issuer)
	assert.Equal(t, []string{"https://file.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 3, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	// Untouched keys keep their defaults.
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("JWT_SECRET_KEY", testSecret)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "port too big", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: "at least 16"},
		{name: "no database", mutate: func(c *Config) { c.Database.URL = " " }, wantErr: "database.url"},
		{name: "zero access ttl", mutate: func(c *Config) { c.Auth.AccessTTL = 0 }, wantErr: "auth.access_ttl"},
		{name: "access outlives refresh", mutate: func(c *Config) { c.Auth.AccessTTL = 200 * time.Hour }, wantErr: "must not exceed"},
		{name: "bcrypt cost", mutate: func(c *Config) { c.Auth.BcryptCost = 2 }, wantErr: "auth.bcrypt_cost"},
		{name: "no origins", mutate: func(c *Config) { c.CORS.AllowedOrigins = nil }, wantErr: "cors.allowed_origins"},
		{name: "rate limit", mutate: func(c *Config) { c.RateLimit.Requests = 0 }, wantErr: "rate_limit"},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Auth.JWTSecret = testSecret
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = -1
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "logging.format")
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range tests {
		assert.Equal(t, want, LoggingConfig{Level: name}.SlogLevel(), name)
	}
}

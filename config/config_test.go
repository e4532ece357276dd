package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
auth:
  jwt_secret: file-secret-0123456789
mail:
  batch_size: 3
login_id:
  store_codes:
    Shibuya: sby
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-secret-0123456789", cfg.Auth.JWTSecret)
	assert.Equal(t, 3, cfg.Mail.BatchSize)
	assert.Equal(t, time.Second, cfg.Mail.BatchDelay)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "Asia/Tokyo", cfg.Server.TimezoneName)
	assert.Equal(t, "stf", cfg.LoginID.FallbackCode)
	assert.Equal(t, "sby", cfg.LoginID.StoreCodes["shibuya"])
	assert.False(t, cfg.Queue.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: file-secret-0123456789
`)
	t.Setenv("SHIFT_AUTH_JWT_SECRET", "env-secret-0123456789")
	t.Setenv("SHIFT_SERVER_PORT", "7070")
	t.Setenv("SHIFT_CRON_SECRET", "cron")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret-0123456789", cfg.Auth.JWTSecret)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "cron", cfg.Cron.Secret)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "server:\n  port: 8080\n"},
		{"short secret", "auth:\n  jwt_secret: short\n"},
		{"bad port", "server:\n  port: 70000\nauth:\n  jwt_secret: file-secret-0123456789\n"},
		{"zero batch", "auth:\n  jwt_secret: file-secret-0123456789\nmail:\n  batch_size: 0\n"},
		{"malformed yaml", "auth: [jwt_secret\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "shift", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shift sslmode=disable TimeZone=UTC", c.DSN())

	c.URL = "postgres://u:p@db/shift"
	assert.Equal(t, "postgres://u:p@db/shift", c.DSN())
}

func TestServerConfig_Location(t *testing.T) {
	assert.Equal(t, "Asia/Tokyo", (&ServerConfig{TimezoneName: "Asia/Tokyo"}).Location().String())
	assert.Equal(t, time.Local, (&ServerConfig{TimezoneName: "Mars/Base"}).Location())
	assert.Equal(t, time.Local, (&ServerConfig{}).Location())
}

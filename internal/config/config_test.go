package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[server]
http_port = 8080

[database]
host = "localhost"
port = 5432
user = "agenda"
password = "from-file"
dbname = "agenda"

[auth]
jwt_secret = "0123456789abcdef"

[reservations]
max_occurrences = 52
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, "America/Sao_Paulo", cfg.Reservations.Timezone)
	assert.Equal(t, 60, cfg.Redis.TTL)
	assert.Equal(t, "host=localhost port=5432 user=agenda password=from-file dbname=agenda sslmode=disable",
		cfg.Database.DSN())

	loc, err := cfg.Reservations.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("JWT_SECRET", "another-secret-of-16")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "another-secret-of-16", cfg.Auth.JWTSecret)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sample))

	cfg, err := Load("does-not-exist.toml")
	require.NoError(t, err)
	assert.Equal(t, "agenda", cfg.Database.DBName)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrLoadConfig)

	_, err = Load(writeConfig(t, `[server]
http_port = 8080`))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeConfig(t, sample+`
[metrics]
enabled = true
`))
	assert.ErrorIs(t, err, ErrInvalidConfig, "metrics path required when enabled")

	_, err = Load(writeConfig(t, sample[:len(sample)-len("max_occurrences = 52\n")]+`timezone = "Mars/Olympus"
`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "STORAGE_TYPE", "DATABASE_URL", "JWT_SECRET",
	"INDEX_CACHE_TTL", "CORS_ALLOWED_ORIGINS", "LOG_SQL",
}

// clearEnv сбрасывает переменные на время теста
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageInMemory, cfg.Storage)
	assert.Equal(t, 20*time.Second, cfg.IndexCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
port: "9000"
storage: postgres
databaseUrl: postgres://yaml
jwtSecret: from-yaml
indexCacheTtl: 5s
logSql: true
postgres:
  maxOpenConns: 3
`)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.IndexCacheTTL)
	assert.True(t, cfg.LogSQL)
	assert.Equal(t, 3, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 5, cfg.Postgres.MaxIdleConns)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	env := writeFile(t, ".env", "JWT_SECRET=dotenv\nINDEX_CACHE_TTL=0s\n")

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.JWTSecret)
	assert.Equal(t, time.Duration(0), cfg.IndexCacheTTL)

	// Отсутствующий .env не мешает запуску
	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"), "")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "port: [1"), "")
	assert.Error(t, err)

	t.Setenv("LOG_SQL", "maybe")
	_, err = Load("", "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg.JWTSecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Storage = StoragePostgres
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
	cfg.DatabaseURL = "postgres://x"
	assert.NoError(t, cfg.Validate())

	cfg.Storage = "redis"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

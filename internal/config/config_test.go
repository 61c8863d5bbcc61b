package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "root:pass@tcp(localhost:3306)/gatherguru")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "gatherguru")
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("START", "")
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8082", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.BookingTTL)
	assert.Equal(t, time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, "gatherguru", cfg.AMQPExchange)
	assert.False(t, cfg.PaymentsEnabled())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env.test")
	require.NoError(t, os.WriteFile(file, []byte("HTTP_ADDR=:9000\nSTRIPE_SECRET_KEY=sk_test_1\n"), 0o600))
	t.Setenv("START", file)
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("STRIPE_SECRET_KEY", "")
	os.Unsetenv("HTTP_ADDR")
	os.Unsetenv("STRIPE_SECRET_KEY")
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.True(t, cfg.PaymentsEnabled())
}

func TestLoadMissingNamedFile(t *testing.T) {
	t.Setenv("START", filepath.Join(t.TempDir(), "missing.env"))
	setRequired(t)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("START", "")
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	assert.Error(t, err)
}

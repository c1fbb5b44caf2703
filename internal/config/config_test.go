package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_WRITE_HOST", "db.internal")
	t.Setenv("QUEUE_VISIBILITY_TIMEOUT", "45s")

	require.NoError(t, Load(""))
	c := Get()

	assert.Equal(t, "kisanpay", c.AppName)
	assert.Equal(t, ":8080", c.HttpListenAddr)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, "db.internal", c.PostgresWrite().Host)
	assert.Equal(t, "localhost", c.PostgresRead().Host)
	assert.Equal(t, "disable", c.PostgresWrite().SSLMode)
	assert.False(t, c.Logger().Production)
	assert.Equal(t, "info", c.Logger().Level)

	limits := c.HTTPLimits()
	assert.Equal(t, 10*time.Second, limits.ReadTimeout)
	assert.Equal(t, 1<<20, limits.MaxRequestBodySize)

	q := c.LedgerQueue()
	assert.Equal(t, "ledger-events", q.Name)
	assert.Equal(t, 45*time.Second, q.VisibilityTimeout)
	assert.True(t, q.EnableDLQ)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=kisanpay-test\nADMIN_LISTEN_ADDR=:9999\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("ADMIN_LISTEN_ADDR")
	})

	assert.Equal(t, path, EnvPathFromArgs([]string{"api", "--env=" + path}))
	require.NoError(t, Load(path))
	assert.Equal(t, "kisanpay-test", Get().AppName)
	assert.Equal(t, ":9999", Get().AdminListenAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.env")))
	assert.Empty(t, EnvPathFromArgs([]string{"--env=/does/not/exist"}))
}

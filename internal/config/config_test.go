package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "STORAGE_BACKEND", "SESSION_TTL", "AUTH_MODE", "LISTEN_ADDR", "PUBLIC_BASE_URL"} {
		t.Setenv(k, "")
	}
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "file", c.DBType)
	assert.Equal(t, ":8088", c.ListenAddr)
	assert.Equal(t, "http://localhost:8088", c.PublicBaseURL)
	assert.Equal(t, 720*time.Hour, c.SessionTTL)
}

func TestValidate(t *testing.T) {
	base := Config{Env: "development", DBType: "file", DataDir: "data", AuthMode: "local", SessionTTL: time.Hour}
	require.NoError(t, base.Validate())

	pg := base
	pg.DBType = "postgres"
	assert.ErrorContains(t, pg.Validate(), "POSTGRES_DSN")

	remote := base
	remote.AuthMode = "remote"
	assert.ErrorContains(t, remote.Validate(), "AUTH_SERVICE_URL")

	env := base
	env.Env = "qa"
	assert.Error(t, env.Validate())

	backend := base
	backend.DBType = "sqlite"
	assert.Error(t, backend.Validate())
}

func TestFromEnvRejectsBadTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "SESSION_TTL")
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nBABY_A=one\nBABY_B=\"two\"\nnot a pair\n"), 0o600))
	t.Setenv("BABY_A", "kept")
	t.Setenv("BABY_B", "")
	os.Unsetenv("BABY_B")

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "kept", os.Getenv("BABY_A"))
	assert.Equal(t, "two", os.Getenv("BABY_B"))
}

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"silant-backend/internal/logger"
)

const testFixtures = `
catalogs:
  engine_model:
    - name: Kubota D1803
      description: Diesel
  service_type:
    - name: TO-1
users:
  - username: manager
    password: secret
    role: MANAGER
`

func writeConfig(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`
database:
  driver: sqlite
  dsn: %s
  max_open_conns: 1
  max_idle_conns: 1
  log_level: silent
auth:
  jwt_secret: a-test-secret-that-is-at-least-32-bytes
log:
  level: error
`, filepath.Join(dir, "silant.db"))
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return dir, path
}

func ctl(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"--config", configPath}, args...), &out)
	return out.String(), err
}

func TestSeedIsIdempotent(t *testing.T) {
	dir, configPath := writeConfig(t)
	fixtures := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(testFixtures), 0o600))

	for i := 0; i < 2; i++ {
		out, err := ctl(t, configPath, "seed", "-f", fixtures)
		require.NoError(t, err)
		assert.Equal(t, "seeded 2 catalog entries and 1 users\n", out)
	}

	out, err := ctl(t, configPath, "delete-catalog", "--kind", "service_type", "--name", "TO-1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted service_type")

	_, err = ctl(t, configPath, "delete-catalog", "--kind", "service_type", "--name", "TO-1")
	assert.ErrorContains(t, err, "does not exist")
}

func TestUserCommands(t *testing.T) {
	_, configPath := writeConfig(t)

	_, err := ctl(t, configPath, "migrate")
	require.NoError(t, err)

	out, err := ctl(t, configPath, "create-user", "--username", "lesprom", "--password", "pw", "--role", "CLIENT", "--first-name", "Lesprom")
	require.NoError(t, err)
	assert.Contains(t, out, "created user lesprom")

	_, err = ctl(t, configPath, "create-user", "--username", "lesprom", "--password", "pw", "--role", "CLIENT")
	assert.ErrorContains(t, err, "already exists")

	_, err = ctl(t, configPath, "create-user", "--username", "x", "--password", "pw", "--role", "AUDITOR")
	assert.ErrorContains(t, err, "unknown role")

	_, err = ctl(t, configPath, "create-user", "--username", "x")
	assert.ErrorContains(t, err, "--password is required")

	out, err = ctl(t, configPath, "delete-user", "--username", "lesprom")
	require.NoError(t, err)
	assert.Equal(t, "deleted user lesprom\n", out)
}

func TestLogLevelOverride(t *testing.T) {
	_, configPath := writeConfig(t)

	err := run([]string{"--config", configPath, "--log-level", "debug", "migrate"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, logger.Level())

	_, err = ctl(t, configPath, "migrate")
	require.NoError(t, err)
	assert.Equal(t, zapcore.ErrorLevel, logger.Level(), "without the flag the configured level applies")

	err = run([]string{"--config", configPath, "--log-level", "loud", "migrate"}, io.Discard)
	assert.ErrorContains(t, err, "--log-level")
}

func TestUnknownCommand(t *testing.T) {
	_, configPath := writeConfig(t)

	out, err := ctl(t, configPath, "frobnicate")
	assert.ErrorContains(t, err, `unknown command "frobnicate"`)
	assert.Contains(t, out, "delete-catalog")
}

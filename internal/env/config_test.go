package env

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdir moves to a fresh directory, restored when the test ends.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// unsetenv clears variables, restored when the test ends.
func unsetenv(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t)
	unsetenv(t, "REDIS_HOST", "REDIS_PORT", "REDIS_PROTOCOL", "REDIS_TIMEOUT")

	config, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Config{
		Host:     "localhost",
		Port:     6379,
		Protocol: 2,
		Timeout:  5 * time.Second,
	}, config)
	require.Equal(t, "localhost:6379", config.Addr())
}

func TestLoadConfig_Environment(t *testing.T) {
	chdir(t)
	t.Setenv("REDIS_HOST", "::1")
	t.Setenv("REDIS_PORT", "7000")
	t.Setenv("REDIS_PROTOCOL", "3")
	t.Setenv("REDIS_TIMEOUT", "250ms")

	config, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, config.Protocol)
	require.Equal(t, 250*time.Millisecond, config.Timeout)
	require.Equal(t, "[::1]:7000", config.Addr())
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := chdir(t)
	t.Setenv("REDIS_HOST", "from-env")
	unsetenv(t, "REDIS_PORT")

	content := "REDIS_HOST=from-file\nREDIS_PORT=6380\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte(content), 0o600))

	config, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, "from-env", config.Host, "the environment wins over the file")
	require.Equal(t, 6380, config.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdir(t)

	t.Setenv("REDIS_PROTOCOL", "4")
	_, err := LoadConfig(context.Background())
	require.ErrorContains(t, err, "REDIS_PROTOCOL must be 2 or 3")

	t.Setenv("REDIS_PROTOCOL", "2")
	t.Setenv("REDIS_PORT", "not-a-port")
	_, err = LoadConfig(context.Background())
	require.Error(t, err)
}

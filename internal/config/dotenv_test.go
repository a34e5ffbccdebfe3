package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working directory
// for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeDotEnv(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadReadsStoreSettingsFromDotEnv(t *testing.T) {
	unsetenv(t, configEnv...)
	dir := t.TempDir()
	chdir(t, dir)
	writeDotEnv(t, dir, "STORE_BACKEND=sqlite\nDB_PATH=./data/prices.db\nLOG_LEVEL=warn\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "./data/prices.db", cfg.StorePath())
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadPrefersProcessEnvOverDotEnv(t *testing.T) {
	unsetenv(t, configEnv...)
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("SAMPLES_PATH", "/srv/cropcalc/samples.csv")
	writeDotEnv(t, dir, "SAMPLES_PATH=./other.csv\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/cropcalc/samples.csv", cfg.StorePath())
}

func TestLoadRejectsInvalidBackendFromDotEnv(t *testing.T) {
	unsetenv(t, configEnv...)
	dir := t.TempDir()
	chdir(t, dir)
	writeDotEnv(t, dir, "STORE_BACKEND=redis\n")

	_, err := Load()
	assert.ErrorContains(t, err, "STORE_BACKEND")
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

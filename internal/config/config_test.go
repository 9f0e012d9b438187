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
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/unemployment.csv", cfg.Dataset.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10.0, cfg.Charts.Width)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LP_SERVER_PORT", "9090")
	t.Setenv("LP_DATASET_PATH", "/var/data/rates.csv")
	t.Setenv("LP_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/data/rates.csv", cfg.Dataset.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("LP_SERVER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Port")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LP_LOGGING_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_LoggingNormalization(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	cfg.normalize()

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 3000
dataset:
  path: testdata/rates.csv
`), 0o644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "testdata/rates.csv", cfg.Dataset.Path)
}

func TestMergeConfigs_EnvWins(t *testing.T) {
	file := *Default()
	file.Server.Port = 3000
	file.Dataset.Path = "file.csv"

	env := Config{}
	env.Server.Port = 9090

	merged := mergeConfigs(file, env)
	assert.Equal(t, 9090, merged.Server.Port)
	assert.Equal(t, "file.csv", merged.Dataset.Path)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

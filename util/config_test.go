package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o644)
	require.NoError(t, err)

	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(t.TempDir())
	require.NoError(t, err, "missing config file must fall back to defaults")

	require.Equal(t, "development", config.Environment)
	require.Equal(t, "info", config.LogLevel)
	require.Equal(t, "text", config.OutputFormat)
	require.Equal(t, 8, config.CheckConcurrency)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := writeConfigFile(t, "ENVIRONMENT=production\nLOG_LEVEL=warn\nOUTPUT_FORMAT=yaml\nCHECK_CONCURRENCY=2\n")

	config, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, "production", config.Environment)
	require.Equal(t, "warn", config.LogLevel)
	require.Equal(t, "yaml", config.OutputFormat)
	require.Equal(t, 2, config.CheckConcurrency)
}

func TestLoadConfigPartialFile(t *testing.T) {
	dir := writeConfigFile(t, "LOG_LEVEL=debug\n")

	config, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, "debug", config.LogLevel)
	require.Equal(t, "development", config.Environment, "unset keys keep their defaults")
	require.Equal(t, 8, config.CheckConcurrency)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown_log_level",
			content: "LOG_LEVEL=shout\n",
		},
		{
			name:    "unknown_environment",
			content: "ENVIRONMENT=prod\n",
		},
		{
			name:    "unknown_output_format",
			content: "OUTPUT_FORMAT=xml\n",
		},
		{
			name:    "zero_concurrency",
			content: "CHECK_CONCURRENCY=0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfigFile(t, tt.content)

			_, err := LoadConfig(dir)
			require.Error(t, err, "expected validation error for %q", tt.content)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	config := Config{
		Environment:      "development",
		LogLevel:         "info",
		OutputFormat:     "text",
		CheckConcurrency: 4,
	}
	require.NoError(t, config.Validate())

	config.CheckConcurrency = 0
	require.Error(t, config.Validate())
}

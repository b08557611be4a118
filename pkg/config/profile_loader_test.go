package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOverrideFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadOverrideFile(t *testing.T) {
	path := writeOverrideFile(t, `
log_level: DEBUG
storage_root: /var/lib/agentic-identity
storage_backends:
  - file
  - sql
otlp_endpoint: otel-collector:4317
`)

	o, err := config.LoadOverrideFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", o.LogLevel)
	assert.Equal(t, "/var/lib/agentic-identity", o.StorageRoot)
	assert.Equal(t, []string{"file", "sql"}, o.EnabledStorageBackends)
	assert.Equal(t, "otel-collector:4317", o.OTLPEndpoint)
}

func TestLoadOverrideFileMissing(t *testing.T) {
	_, err := config.LoadOverrideFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOverrideApplyOnlyLayersSetFields(t *testing.T) {
	base := &config.Config{
		LogLevel:                    "INFO",
		StorageRoot:                 "./data/identity",
		EnabledStorageBackends:      []string{"file"},
		OTLPEndpoint:                "localhost:4317",
		Argon2TestOverrideMemoryKiB: 0,
	}

	o := &config.Override{LogLevel: "WARN"}
	merged := o.Apply(base)

	assert.Equal(t, "WARN", merged.LogLevel)
	assert.Equal(t, "./data/identity", merged.StorageRoot)
	assert.Equal(t, []string{"file"}, merged.EnabledStorageBackends)
	assert.Equal(t, "localhost:4317", merged.OTLPEndpoint)
}

func TestOverrideApplyNilIsNoOp(t *testing.T) {
	base := &config.Config{LogLevel: "INFO"}
	var o *config.Override
	assert.Same(t, base, o.Apply(base))
}

func TestLoadWithOverrideNoPath(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	cfg, err := config.LoadWithOverride("")
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.LogLevel)
}

func TestLoadWithOverrideMissingFileIsIgnored(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	cfg, err := config.LoadWithOverride(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.LogLevel)
}

func TestLoadWithOverrideLayersFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	path := writeOverrideFile(t, "log_level: DEBUG\n")

	cfg, err := config.LoadWithOverride(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

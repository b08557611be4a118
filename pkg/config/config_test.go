package config_test

import (
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/config"
	"github.com/stretchr/testify/assert"
)

// TestLoad_Defaults verifies that Load() returns sensible defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("AGENTIC_IDENTITY_STORAGE_ROOT", "")
	t.Setenv("AGENTIC_IDENTITY_STORAGE_BACKENDS", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("AGENTIC_IDENTITY_TEST_ARGON2_MEMORY_KIB", "")

	cfg := config.Load()

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Contains(t, cfg.StorageRoot, "identity")
	assert.Equal(t, []string{"file"}, cfg.EnabledStorageBackends)
	assert.Equal(t, uint32(0), cfg.Argon2TestOverrideMemoryKiB)
}

// TestLoad_Overrides verifies that environment variables correctly
// override default values.
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("AGENTIC_IDENTITY_STORAGE_ROOT", "/var/lib/agentic-identity")
	t.Setenv("AGENTIC_IDENTITY_STORAGE_BACKENDS", "file,sql")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")
	t.Setenv("AGENTIC_IDENTITY_TEST_ARGON2_MEMORY_KIB", "256")

	cfg := config.Load()

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "/var/lib/agentic-identity", cfg.StorageRoot)
	assert.Equal(t, []string{"file", "sql"}, cfg.EnabledStorageBackends)
	assert.Equal(t, "otel-collector:4317", cfg.OTLPEndpoint)
	assert.Equal(t, uint32(256), cfg.Argon2TestOverrideMemoryKiB)
}

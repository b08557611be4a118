package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration for the identity engines and the
// storage/observability layers that wrap them.
type Config struct {
	LogLevel string

	// StorageRoot is the directory under which the encrypted identity file
	// and per-record JSON stores live.
	StorageRoot string

	// EnabledStorageBackends lists which record-store backends a host
	// should stand up ("file" is always implicitly available; "sql" and
	// "cloud" require the corresponding optional dependency).
	EnabledStorageBackends []string

	OTLPEndpoint string

	// Argon2TestOverrideMemoryKiB carries a test-only Argon2id memory cost
	// read from the environment. No package consumes it: the identity
	// file's KDF always uses pkg/aicrypto's fixed parameters, whatever
	// this field holds.
	Argon2TestOverrideMemoryKiB uint32
}

// Load loads configuration from environment variables, falling back to
// sensible local defaults.
func Load() *Config {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	storageRoot := os.Getenv("AGENTIC_IDENTITY_STORAGE_ROOT")
	if storageRoot == "" {
		storageRoot = "./data/identity"
	}

	backends := os.Getenv("AGENTIC_IDENTITY_STORAGE_BACKENDS")
	var enabled []string
	if backends == "" {
		enabled = []string{"file"}
	} else {
		for _, b := range strings.Split(backends, ",") {
			if b = strings.TrimSpace(b); b != "" {
				enabled = append(enabled, b)
			}
		}
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	var argon2Override uint32
	if v := os.Getenv("AGENTIC_IDENTITY_TEST_ARGON2_MEMORY_KIB"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			argon2Override = uint32(n)
		}
	}

	return &Config{
		LogLevel:                    logLevel,
		StorageRoot:                 storageRoot,
		EnabledStorageBackends:      enabled,
		OTLPEndpoint:                otlpEndpoint,
		Argon2TestOverrideMemoryKiB: argon2Override,
	}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Override is an optional YAML layer applied on top of the environment-
// sourced Config, for hosts (the CLI, a long-running daemon) that want a
// checked-in file rather than a pile of env vars. Any field left at its
// zero value in the YAML leaves the corresponding Config field untouched.
type Override struct {
	LogLevel               string   `yaml:"log_level,omitempty"`
	StorageRoot            string   `yaml:"storage_root,omitempty"`
	EnabledStorageBackends []string `yaml:"storage_backends,omitempty"`
	OTLPEndpoint           string   `yaml:"otlp_endpoint,omitempty"`
}

// LoadOverrideFile reads and parses a YAML override file at path.
func LoadOverrideFile(path string) (*Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config override %q: %w", path, err)
	}
	var o Override
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse config override %q: %w", path, err)
	}
	return &o, nil
}

// Apply layers o on top of cfg, field by field, returning cfg for chaining.
func (o *Override) Apply(cfg *Config) *Config {
	if o == nil {
		return cfg
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.StorageRoot != "" {
		cfg.StorageRoot = o.StorageRoot
	}
	if len(o.EnabledStorageBackends) > 0 {
		cfg.EnabledStorageBackends = o.EnabledStorageBackends
	}
	if o.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = o.OTLPEndpoint
	}
	return cfg
}

// LoadWithOverride loads the environment-sourced Config, then layers an
// optional YAML override file on top if path is non-empty and exists.
func LoadWithOverride(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	override, err := LoadOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return override.Apply(cfg), nil
}

// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the convos-invite
// tooling.
//
// Configuration is loaded from a single file specified by:
//   - CONVOS_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This keeps
// configuration deterministic with no hidden overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for the invite tooling.
type Config struct {
	// InboxID is this client's inbox identity on the transport,
	// lowercase hex.
	InboxID string `yaml:"inbox_id"`

	// KeyFile is the path to the secp256k1 private key, 32 raw bytes
	// or 64 hex characters.
	KeyFile string `yaml:"key_file"`

	// Link configures how invite links are rendered.
	Link LinkConfig `yaml:"link"`
}

// LinkConfig configures the deep-link carriers invites are rendered
// into.
type LinkConfig struct {
	// Host is the web-link host, e.g. "converse.cash".
	Host string `yaml:"host"`

	// Scheme is the custom app-link scheme, e.g. "convos".
	Scheme string `yaml:"scheme"`
}

// Default returns the built-in defaults. InboxID and KeyFile have no
// defaults; they must come from the file.
func Default() *Config {
	return &Config{
		Link: LinkConfig{
			Host:   "converse.cash",
			Scheme: "convos",
		},
	}
}

// Load reads configuration from the file named by CONVOS_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv("CONVOS_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("CONVOS_CONFIG is not set (use --config or set the environment variable)")
	}
	return LoadFile(path)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the required fields are present.
func (c *Config) Validate() error {
	if c.InboxID == "" {
		return fmt.Errorf("inbox_id is required")
	}
	if c.KeyFile == "" {
		return fmt.Errorf("key_file is required")
	}
	if c.Link.Host == "" {
		return fmt.Errorf("link.host is required")
	}
	if c.Link.Scheme == "" {
		return fmt.Errorf("link.scheme is required")
	}
	return nil
}

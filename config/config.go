// Package config loads archiver configuration from an optional YAML file
// with environment variable overrides, following the morph.io convention of
// passing secrets through the environment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDatabasePath is the database filename morph.io collects after
	// a scraper run.
	DefaultDatabasePath = "data.sqlite"

	// DefaultIdentityURL is the Data Together identity service.
	DefaultIdentityURL = "https://ident.archivers.space"
)

// Config holds the settings shared by the archiver session and the CLI.
type Config struct {
	DatabasePath string `yaml:"database_path"`
	IdentityURL  string `yaml:"identity_url"`
	APIKey       string `yaml:"api_key"`
}

// Default returns a Config populated with defaults and environment
// overrides only.
func Default() *Config {
	cfg := &Config{
		DatabasePath: DefaultDatabasePath,
		IdentityURL:  DefaultIdentityURL,
	}
	cfg.applyEnv()
	return cfg
}

// Load reads the YAML config at path, fills in defaults for unset fields,
// and applies environment overrides. A missing file is not an error; the
// defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	if cfg.IdentityURL == "" {
		cfg.IdentityURL = DefaultIdentityURL
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MORPH_DT_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("ARCHIVER_DB_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("ARCHIVER_IDENTITY_URL"); v != "" {
		c.IdentityURL = v
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const envClientSecret = "DIRSYNC_CLIENT_SECRET"

type Config struct {
	Directory DirectoryConfig `toml:"directory"`
	Store     StoreConfig     `toml:"store"`
	Sync      SyncConfig      `toml:"sync"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

type DirectoryConfig struct {
	BaseURL      string   `toml:"base_url"`
	TokenURL     string   `toml:"token_url"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	Scopes       []string `toml:"scopes"`
}

type StoreConfig struct {
	ConfigFile string `toml:"config_file"`
	Partition  string `toml:"partition"`
}

type SyncConfig struct {
	Interval          string `toml:"interval"`
	DryRun            bool   `toml:"dry_run"`
	LookupConcurrency int    `toml:"lookup_concurrency"`

	interval time.Duration
}

type LogConfig struct {
	Level   string `toml:"level"`
	Format  string `toml:"format"`
	NoColor bool   `toml:"no_color"`
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{Partition: "default"},
	}
}

// loadConfig reads the TOML config at path. DIRSYNC_CLIENT_SECRET
// overrides directory.client_secret so the secret can stay out of the
// file.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if secret := os.Getenv(envClientSecret); secret != "" {
		cfg.Directory.ClientSecret = secret
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Directory.BaseURL == "" {
		return errors.New("directory.base_url is required")
	}
	if c.Store.ConfigFile == "" {
		return errors.New("store.config_file is required")
	}
	if c.Directory.TokenURL != "" && (c.Directory.ClientID == "" || c.Directory.ClientSecret == "") {
		return errors.New("directory.token_url requires client_id and client_secret")
	}
	if c.Store.Partition == "" {
		c.Store.Partition = "default"
	}
	if c.Sync.Interval != "" {
		d, err := time.ParseDuration(c.Sync.Interval)
		if err != nil {
			return fmt.Errorf("parse sync.interval: %w", err)
		}
		if d <= 0 {
			return errors.New("sync.interval must be positive")
		}
		c.Sync.interval = d
	}
	return nil
}

// Package config provides configuration loading for repotext.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables, with hardcoded defaults as the base layer.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete repotext configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	GitHub  GitHubConfig  `koanf:"github"`
	Acquire AcquireConfig `koanf:"acquire"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// GitHubConfig holds GitHub endpoint and credential configuration.
//
// The base URLs exist so tests and proxy deployments can point the
// pipeline at alternate hosts; production leaves them at the defaults.
type GitHubConfig struct {
	Token      Secret `koanf:"token"`
	APIBaseURL string `koanf:"api_base_url"`
	RawBaseURL string `koanf:"raw_base_url"`
	WebBaseURL string `koanf:"web_base_url"`
}

// AcquireConfig holds acquisition pipeline configuration.
type AcquireConfig struct {
	// ProbeTimeout bounds branch existence probes.
	ProbeTimeout Duration `koanf:"probe_timeout"`
	// ListTimeout bounds tree queries and directory page fetches.
	ListTimeout Duration `koanf:"list_timeout"`
	// FetchTimeout bounds one raw content fetch.
	FetchTimeout Duration `koanf:"fetch_timeout"`
	// CloneTimeout bounds the whole clone operation.
	CloneTimeout Duration `koanf:"clone_timeout"`

	// LineCap is the per-file emitted line limit; content beyond it is
	// replaced with a truncation notice. 0 disables truncation.
	LineCap int `koanf:"line_cap"`
	// MaxFiles caps the number of files fetched per acquisition,
	// truncating the discovered list in discovery order. 0 is unlimited.
	MaxFiles int `koanf:"max_files"`
	// Concurrency is the fetch worker pool size.
	Concurrency int `koanf:"concurrency"`
	// ScrapeDepth bounds directory recursion for the scraping strategy.
	ScrapeDepth int `koanf:"scrape_depth"`
	// RatePerSecond throttles raw content fetches. 0 disables throttling.
	RatePerSecond float64 `koanf:"rate_per_second"`

	// ClonePrimary promotes the clone strategy to the front of the
	// fallback order for deployments where outbound scraping is
	// undesirable.
	ClonePrimary bool `koanf:"clone_primary"`

	// TempRoot is the parent directory for clone workspaces.
	// Empty selects the system temporary directory.
	TempRoot string `koanf:"temp_root"`
}

// applyDefaults fills zero values with production defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.GitHub.APIBaseURL == "" {
		cfg.GitHub.APIBaseURL = "https://api.github.com"
	}
	if cfg.GitHub.RawBaseURL == "" {
		cfg.GitHub.RawBaseURL = "https://raw.githubusercontent.com"
	}
	if cfg.GitHub.WebBaseURL == "" {
		cfg.GitHub.WebBaseURL = "https://github.com"
	}
	if cfg.Acquire.ProbeTimeout == 0 {
		cfg.Acquire.ProbeTimeout = Duration(5 * time.Second)
	}
	if cfg.Acquire.ListTimeout == 0 {
		cfg.Acquire.ListTimeout = Duration(15 * time.Second)
	}
	if cfg.Acquire.FetchTimeout == 0 {
		cfg.Acquire.FetchTimeout = Duration(20 * time.Second)
	}
	if cfg.Acquire.CloneTimeout == 0 {
		cfg.Acquire.CloneTimeout = Duration(2 * time.Minute)
	}
	if cfg.Acquire.LineCap == 0 {
		cfg.Acquire.LineCap = 2000
	}
	if cfg.Acquire.MaxFiles == 0 {
		cfg.Acquire.MaxFiles = 1000
	}
	if cfg.Acquire.Concurrency == 0 {
		cfg.Acquire.Concurrency = 8
	}
	if cfg.Acquire.ScrapeDepth == 0 {
		cfg.Acquire.ScrapeDepth = 20
	}
	if cfg.Acquire.RatePerSecond == 0 {
		cfg.Acquire.RatePerSecond = 10
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Acquire.LineCap < 0 {
		return errors.New("line cap cannot be negative")
	}
	if c.Acquire.MaxFiles < 0 {
		return errors.New("max files cannot be negative")
	}
	if c.Acquire.Concurrency < 1 {
		return errors.New("fetch concurrency must be at least 1")
	}
	if c.Acquire.ScrapeDepth < 1 {
		return errors.New("scrape depth must be at least 1")
	}
	if c.Acquire.RatePerSecond < 0 {
		return errors.New("rate limit cannot be negative")
	}
	return nil
}

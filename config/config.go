// Package config provides configuration loading and management for Tagsonomy.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Tagsonomy configuration
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Tags      TagsConfig      `yaml:"tags"`
	Sync      SyncConfig      `yaml:"sync"`
	Graph     GraphConfig     `yaml:"graph"`
	NATS      NATSConfig      `yaml:"nats"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// WorkspaceConfig configures the remote catalog workspace
type WorkspaceConfig struct {
	// URL is the workspace host, with or without scheme
	URL string `yaml:"url"`
	// Token is the bearer token; ${VAR} references are expanded at load time
	Token string `yaml:"token"`
	// TokenFile is read when Token is empty
	TokenFile string `yaml:"token_file"`
}

// TagsConfig configures tag ownership and budget
type TagsConfig struct {
	// Prefix marks tag keys owned by this tool (default: "tx_")
	Prefix string `yaml:"prefix"`
	// MaxTags is the per-securable tag-count ceiling (default: 50)
	MaxTags int `yaml:"max_tags"`
}

// SyncConfig configures the batch pass
type SyncConfig struct {
	// Concurrency is the worker pool size (default: 1, matching serial runs)
	Concurrency int `yaml:"concurrency"`
	// RateLimit is the remote API requests-per-second budget (default: 10)
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the maximum request burst (default: 5)
	RateBurst int `yaml:"rate_burst"`
	// Timeout is the per-request timeout (default: 30s)
	Timeout time.Duration `yaml:"timeout"`
}

// GraphConfig configures ontology document discovery
type GraphConfig struct {
	// Paths are file paths or doublestar globs for ontology documents
	Paths []string `yaml:"paths"`
}

// NATSConfig configures optional run event publishing
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
}

// MetricsConfig configures the optional Prometheus listener
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tags: TagsConfig{
			Prefix:  "tx_",
			MaxTags: 50,
		},
		Sync: SyncConfig{
			Concurrency: 1,
			RateLimit:   10.0,
			RateBurst:   5,
			Timeout:     30 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Tags.Prefix == "" {
		return fmt.Errorf("tags.prefix is required")
	}
	if c.Tags.MaxTags <= 0 {
		return fmt.Errorf("tags.max_tags must be positive")
	}
	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("sync.concurrency must be at least 1")
	}
	if c.Sync.RateLimit <= 0 {
		return fmt.Errorf("sync.rate_limit must be positive")
	}
	return nil
}

// ResolveToken returns the workspace token, reading TokenFile when Token is
// empty. The result is trimmed, matching tokens pasted into files by hand.
func (c *Config) ResolveToken() (string, error) {
	if c.Workspace.Token != "" {
		return strings.TrimSpace(c.Workspace.Token), nil
	}
	if c.Workspace.TokenFile == "" {
		return "", fmt.Errorf("workspace.token or workspace.token_file is required")
	}
	data, err := os.ReadFile(c.Workspace.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", c.Workspace.TokenFile)
	}
	return token, nil
}

// LoadFromFile loads configuration from a YAML file, expanding ${VAR}
// environment references before parsing so secrets stay out of the file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Workspace
	if other.Workspace.URL != "" {
		c.Workspace.URL = other.Workspace.URL
	}
	if other.Workspace.Token != "" {
		c.Workspace.Token = other.Workspace.Token
	}
	if other.Workspace.TokenFile != "" {
		c.Workspace.TokenFile = other.Workspace.TokenFile
	}

	// Tags
	if other.Tags.Prefix != "" {
		c.Tags.Prefix = other.Tags.Prefix
	}
	if other.Tags.MaxTags != 0 {
		c.Tags.MaxTags = other.Tags.MaxTags
	}

	// Sync
	if other.Sync.Concurrency != 0 {
		c.Sync.Concurrency = other.Sync.Concurrency
	}
	if other.Sync.RateLimit != 0 {
		c.Sync.RateLimit = other.Sync.RateLimit
	}
	if other.Sync.RateBurst != 0 {
		c.Sync.RateBurst = other.Sync.RateBurst
	}
	if other.Sync.Timeout != 0 {
		c.Sync.Timeout = other.Sync.Timeout
	}

	// Graph
	if len(other.Graph.Paths) > 0 {
		c.Graph.Paths = other.Graph.Paths
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}

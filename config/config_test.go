package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "tx_", cfg.Tags.Prefix)
	assert.Equal(t, 50, cfg.Tags.MaxTags)
	assert.Equal(t, 1, cfg.Sync.Concurrency)
	assert.Equal(t, 10.0, cfg.Sync.RateLimit)
	assert.Equal(t, 5, cfg.Sync.RateBurst)
	assert.Equal(t, 30*time.Second, cfg.Sync.Timeout)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty prefix",
			mutate:  func(c *Config) { c.Tags.Prefix = "" },
			wantErr: "tags.prefix",
		},
		{
			name:    "zero max tags",
			mutate:  func(c *Config) { c.Tags.MaxTags = 0 },
			wantErr: "tags.max_tags",
		},
		{
			name:    "negative max tags",
			mutate:  func(c *Config) { c.Tags.MaxTags = -1 },
			wantErr: "tags.max_tags",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Sync.Concurrency = 0 },
			wantErr: "sync.concurrency",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Sync.RateLimit = 0 },
			wantErr: "sync.rate_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tagsonomy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
workspace:
  url: dbc.example.com
tags:
  prefix: acme_
  max_tags: 20
sync:
  concurrency: 4
graph:
  paths:
    - ontology/**/*.yaml
`), 0644))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "dbc.example.com", cfg.Workspace.URL)
		assert.Equal(t, "acme_", cfg.Tags.Prefix)
		assert.Equal(t, 20, cfg.Tags.MaxTags)
		assert.Equal(t, 4, cfg.Sync.Concurrency)
		assert.Equal(t, []string{"ontology/**/*.yaml"}, cfg.Graph.Paths)
		// untouched defaults survive
		assert.Equal(t, 10.0, cfg.Sync.RateLimit)
	})

	t.Run("expands environment references", func(t *testing.T) {
		t.Setenv("TAGSONOMY_TEST_TOKEN", "sekret")
		path := filepath.Join(t.TempDir(), "tagsonomy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
workspace:
  token: ${TAGSONOMY_TEST_TOKEN}
`), 0644))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "sekret", cfg.Workspace.Token)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tags: ["), 0644))
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Workspace.URL = "dbc.example.com"
	cfg.Tags.Prefix = "acme_"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Workspace.URL, loaded.Workspace.URL)
	assert.Equal(t, cfg.Tags.Prefix, loaded.Tags.Prefix)
	assert.Equal(t, cfg.Tags.MaxTags, loaded.Tags.MaxTags)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Workspace.URL = "base.example.com"

	base.Merge(&Config{
		Workspace: WorkspaceConfig{Token: "tok"},
		Tags:      TagsConfig{MaxTags: 10},
		NATS:      NATSConfig{URL: "nats://localhost:4222"},
	})

	assert.Equal(t, "base.example.com", base.Workspace.URL, "zero values never override")
	assert.Equal(t, "tok", base.Workspace.Token)
	assert.Equal(t, 10, base.Tags.MaxTags)
	assert.Equal(t, "tx_", base.Tags.Prefix)
	assert.Equal(t, "nats://localhost:4222", base.NATS.URL)

	base.Merge(nil)
	assert.Equal(t, "tok", base.Workspace.Token)
}

func TestResolveToken(t *testing.T) {
	t.Run("inline token wins", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Workspace.Token = " tok \n"
		cfg.Workspace.TokenFile = "/nonexistent"

		token, err := cfg.ResolveToken()
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})

	t.Run("token file fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("filetok\n"), 0600))

		cfg := DefaultConfig()
		cfg.Workspace.TokenFile = path

		token, err := cfg.ResolveToken()
		require.NoError(t, err)
		assert.Equal(t, "filetok", token)
	})

	t.Run("empty token file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0600))

		cfg := DefaultConfig()
		cfg.Workspace.TokenFile = path

		_, err := cfg.ResolveToken()
		assert.Error(t, err)
	})

	t.Run("neither configured", func(t *testing.T) {
		_, err := DefaultConfig().ResolveToken()
		assert.Error(t, err)
	})
}

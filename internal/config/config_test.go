package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.WSPushInterval)
	assert.Equal(t, []string{SourceReddit}, cfg.Dashboard.Sources)
	assert.Equal(t, 50, cfg.Dashboard.PostLimit)
	assert.Equal(t, 500, cfg.Dashboard.MaxLimit)
	assert.Equal(t, 20, cfg.Dashboard.NewsLimit)
	assert.Equal(t, 8, cfg.Dashboard.SampleSize)
	assert.Equal(t, 10, cfg.Dashboard.StatsLimit)
	assert.Equal(t, BackendGroq, cfg.Narrative.Backend)
	assert.Equal(t, "llama3-8b-8192", cfg.Narrative.GroqModel)
	assert.Len(t, cfg.Reddit.Subreddits, 10)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.NATS.Enabled)
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecodash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_EnvOverridesFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
sources: [reddit, bluesky]
subreddits: [climate, ZeroWaste]
queries:
  news: "plastic ban"
  bluesky: "rewilding"
dashboard:
  post_limit: 30
  max_limit: 200
  news_limit: 5
narrative:
  backend: gemini
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DASHBOARD_POST_LIMIT", "40")
	t.Setenv("BLUESKY_QUERY", "solar")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"reddit", "bluesky"}, cfg.Dashboard.Sources)
	assert.Equal(t, []string{"climate", "ZeroWaste"}, cfg.Reddit.Subreddits)
	assert.Equal(t, "plastic ban", cfg.News.Query)
	assert.Equal(t, "solar", cfg.Bluesky.Query)
	assert.Equal(t, 40, cfg.Dashboard.PostLimit)
	assert.Equal(t, 200, cfg.Dashboard.MaxLimit)
	assert.Equal(t, 5, cfg.Dashboard.NewsLimit)
	assert.Equal(t, 8, cfg.Dashboard.SampleSize)
	assert.Equal(t, BackendGemini, cfg.Narrative.Backend)
}

func TestLoad_EnvSlicesAreTrimmed(t *testing.T) {
	t.Setenv("DASHBOARD_SOURCES", "reddit, twitter ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"reddit", "twitter"}, cfg.Dashboard.Sources)
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfigFile(t, "sources: [reddit"))
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:    ServerConfig{WSPushInterval: time.Second},
			Narrative: NarrativeConfig{Backend: BackendTemplate, FailureThreshold: 3, FailureWindow: 5},
			Dashboard: DashboardConfig{Sources: []string{SourceReddit}, PostLimit: 50, MaxLimit: 500, NewsLimit: 20, SampleSize: 8, StatsLimit: 10},
		}
	}

	require.NoError(t, validate(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Dashboard.Sources = []string{"mastodon"} }},
		{"archive without db", func(c *Config) { c.Dashboard.Sources = []string{SourceArchive} }},
		{"unknown backend", func(c *Config) { c.Narrative.Backend = "openai" }},
		{"zero post limit", func(c *Config) { c.Dashboard.PostLimit = 0 }},
		{"max limit below post limit", func(c *Config) { c.Dashboard.MaxLimit = 49 }},
		{"negative sample size", func(c *Config) { c.Dashboard.SampleSize = -1 }},
		{"threshold above window", func(c *Config) { c.Narrative.FailureThreshold = 6 }},
		{"zero push interval", func(c *Config) { c.Server.WSPushInterval = 0 }},
		{"db without host", func(c *Config) { c.Database.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, validate(cfg))
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "ecodash", SSLMode: "disable", MaxConns: 4}
	assert.Equal(t, "postgres://u:p@db:5432/ecodash?sslmode=disable&pool_max_conns=4", db.DSN())
}

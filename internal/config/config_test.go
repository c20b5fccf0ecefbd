package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultHost, cfg.HTTP.Host)
	assert.Equal(t, defaultPort, cfg.HTTP.Port)
	assert.Equal(t, defaultReadTimeout, cfg.HTTP.ReadTimeout)
	assert.Equal(t, defaultShutdownTimeout, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, defaultGraphMaxSessions, cfg.Graph.MaxConnections)
	assert.Equal(t, SourceNeo4j, cfg.Network.Source)
	assert.Equal(t, defaultMaxHops, cfg.Network.MaxHops)
	assert.Equal(t, defaultCacheTTL, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("SERVER_METRICS_ENABLED", "true")
	t.Setenv("NETWORK_SOURCE", "Supabase")
	t.Setenv("NETWORK_MAX_HOPS", "3")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SNAPSHOT_CACHE_TTL", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.True(t, cfg.HTTP.MetricsEnabled)
	assert.Equal(t, SourceSupabase, cfg.Network.Source)
	assert.Equal(t, 3, cfg.Network.MaxHops)
	assert.Equal(t, "https://example.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, 45*time.Second, cfg.Cache.TTL)
}

func TestLoadConfigFileIsOverriddenByEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netconf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: 7070\nlog_format: json\nnetwork_max_nodes: 50\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("NETWORK_MAX_NODES", "75")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 75, cfg.Network.MaxNodes)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SERVER_PORT", "http"},
		{"SERVER_PORT", "70000"},
		{"SERVER_WRITE_TIMEOUT", "soon"},
		{"SNAPSHOT_CACHE_TTL", "5"},
		{"NETWORK_SOURCE", "sqlite"},
		{"NETWORK_MAX_HOPS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

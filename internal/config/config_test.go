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
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, "relief-cache.db", cfg.Cache.Path)
	assert.False(t, cfg.MQTT.Enabled)
	assert.True(t, cfg.Jobs.Enabled)
	assert.Equal(t, 8*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("REMOTE_BASE_URL", "https://relief.example.org")
	t.Setenv("REMOTE_TIMEOUT", "3s")
	t.Setenv("CACHE_BACKEND", "redis")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "https://relief.example.org", cfg.Remote.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "redis", cfg.Cache.Backend)
}

func TestLoad_YamlOverlayWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"http:\n  addr: \":7070\"\nremote:\n  base_url: \"https://backend.relief.local\"\n  token: \"abc\"\n",
	), 0o644))
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "https://backend.relief.local", cfg.Remote.BaseURL)
	assert.Equal(t, "abc", cfg.Remote.Token)
	// yaml 未提及的字段保持 env/默认值
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
}

func TestRemoteConfigured_PlaceholderRejected(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"https://YOUR-BACKEND.example.com", false},
		{"https://your-project.supabase.co", false},
		{"https://backend.relief.local", true},
	}
	for _, tc := range cases {
		r := RemoteConfig{BaseURL: tc.url}
		assert.Equal(t, tc.want, r.Configured(), tc.url)
	}
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: 5433, User: "relief", Password: "secret",
		Database: "relief", SSLMode: "require",
	}
	assert.Equal(t,
		"host=db port=5433 user=relief password=secret dbname=relief sslmode=require",
		db.GetDSN())
}

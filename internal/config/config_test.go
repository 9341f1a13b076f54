package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.True(t, cfg.Auth.Enabled)

	g, err := cfg.BuildGrid()
	require.NoError(t, err)
	require.Equal(t, 46, g.SlotsPerDay)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	require.Equal(t, availability.PolicyRecoverSparse, policy)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groupmeet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
db:
  path: /tmp/file.db
grid:
  start: "08:00"
  end: "12:00"
legacy:
  policy: reset
`), 0o644))

	t.Setenv("GROUPMEET_CONFIG_PATH", path)
	t.Setenv("GROUPMEET_DB_PATH", "/tmp/env.db")
	t.Setenv("GROUPMEET_TRANSPORT_MODE", "STDIO")
	t.Setenv("GROUPMEET_AUTH_ENABLED", "false")
	t.Setenv("GROUPMEET_METRICS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "/tmp/env.db", cfg.DB.Path)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.False(t, cfg.Auth.Enabled)
	require.True(t, cfg.Metrics.Enabled)

	g, err := cfg.BuildGrid()
	require.NoError(t, err)
	require.Equal(t, 17, g.SlotsPerDay)
	require.Equal(t, "8:00am", g.Labels[0])

	policy, err := cfg.Policy()
	require.NoError(t, err)
	require.Equal(t, availability.PolicyReset, policy)
}

func TestLoad_FixedGrid(t *testing.T) {
	t.Setenv("GROUPMEET_GRID_SLOTS_PER_DAY", "30")

	cfg, err := Load()
	require.NoError(t, err)
	g, err := cfg.BuildGrid()
	require.NoError(t, err)
	require.Equal(t, 30, g.SlotsPerDay)
	require.Empty(t, g.Labels)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"GROUPMEET_SERVER_PORT":        "eighty",
		"GROUPMEET_AUTH_ENABLED":       "maybe",
		"GROUPMEET_TRANSPORT_MODE":     "carrier-pigeon",
		"GROUPMEET_LEGACY_POLICY":      "guess",
		"GROUPMEET_GRID_START":         "09:10",
		"GROUPMEET_GRID_SLOTS_PER_DAY": "x",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := Load()
			require.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("GROUPMEET_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		require.Error(t, err)
	})
}

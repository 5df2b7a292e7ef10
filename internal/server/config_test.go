package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokeronline/internal/auth"
	"github.com/lox/pokeronline/internal/lobby"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTLDuration())
	assert.Equal(t, auth.DriverMemory, cfg.AuthStoreConfig().Driver)

	require.Len(t, cfg.Tables, 1)
	tmpl, err := cfg.Tables[0].Template()
	require.NoError(t, err)
	assert.Equal(t, "main", tmpl.Name)
	assert.Equal(t, 200, tmpl.StartingChips)
	assert.Equal(t, 2, tmpl.Config.StreetBet)
	assert.Equal(t, 30*time.Second, tmpl.ActionTimeout)

	_, _, ok, err := cfg.MatchmakerSettings()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadConfigFromHCL(t *testing.T) {
	path := writeConfig(t, `
server {
  address     = "0.0.0.0"
  port        = 9090
  log_level   = "debug"
  session_ttl = "2h"
}

auth {
  driver = "sqlite"
  dsn    = "accounts.db"
}

table "micro" {
  small_blind    = 5
  big_blind      = 10
  street_bet     = 0
  max_seats      = 9
  action_timeout = "off"
}

table "high" {
  small_blind    = 50
  big_blind      = 100
  starting_chips = 5000
}

matchmaker {
  table    = "high"
  max_wait = "90s"
  interval = "500ms"
}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTLDuration())
	assert.Equal(t, auth.Config{Driver: "sqlite", DSN: "accounts.db"}, cfg.AuthStoreConfig())

	micro, err := cfg.TableByName("micro").Template()
	require.NoError(t, err)
	assert.Equal(t, 9, micro.Config.MaxSeats)
	assert.Zero(t, micro.Config.StreetBet, "an explicit zero street bet is kept")
	assert.Zero(t, micro.ActionTimeout)
	assert.Equal(t, 1000, micro.StartingChips)

	mm, interval, ok, err := cfg.MatchmakerSettings()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "high", mm.Template.Name)
	assert.Equal(t, 5000, mm.Template.StartingChips)
	assert.Equal(t, 90*time.Second, mm.MaxWait)
	assert.Equal(t, 2, mm.MinPlayers)
	assert.Equal(t, 500*time.Millisecond, interval)
	assert.Equal(t, lobby.DefaultMaxTables, cfg.Matchmaker.MaxTables)
}

func TestLoadConfigMatchmakerDefaultsToFirstTable(t *testing.T) {
	path := writeConfig(t, `
table "first" {
  small_blind = 1
  big_blind   = 2
}

matchmaker {}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	mm, interval, ok, err := cfg.MatchmakerSettings()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", mm.Template.Name)
	assert.Equal(t, lobby.DefaultMaxWait, mm.MaxWait)
	assert.Equal(t, time.Second, interval)
}

func TestLoadConfigRejectsMalformedHCL(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `table "x" {`))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, `table "x" { small_blind = 1 }`))
	assert.Error(t, err, "big_blind is required")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad session ttl", func(c *Config) { c.Server.SessionTTL = "soon" }},
		{"no tables", func(c *Config) { c.Tables = nil }},
		{"duplicate table", func(c *Config) { c.Tables = append(c.Tables, c.Tables[0]) }},
		{"bad blinds", func(c *Config) { c.Tables[0].BigBlind = c.Tables[0].SmallBlind }},
		{"bad chips", func(c *Config) { c.Tables[0].StartingChips = -1 }},
		{"negative timeout", func(c *Config) { c.Tables[0].ActionTimeout = "-1s" }},
		{"unknown matchmaker table", func(c *Config) {
			c.Matchmaker = &MatchmakerConfig{Table: "nope", MaxTables: 1, MinPlayers: 2}
		}},
		{"matchmaker min players", func(c *Config) {
			c.Matchmaker = &MatchmakerConfig{Table: "main", MaxTables: 1, MinPlayers: 7}
		}},
		{"matchmaker max tables", func(c *Config) {
			c.Matchmaker = &MatchmakerConfig{Table: "main", MinPlayers: 2}
		}},
		{"matchmaker interval", func(c *Config) {
			c.Matchmaker = &MatchmakerConfig{Table: "main", MaxTables: 1, MinPlayers: 2, Interval: "fast"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExampleConfigIsValid(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "examples", "pokeronline.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, auth.DriverSQLite, cfg.AuthStoreConfig().Driver)
	require.Len(t, cfg.Tables, 2)

	deep, err := cfg.TableByName("deep").Template()
	require.NoError(t, err)
	assert.Equal(t, 3, deep.Config.MinPlayers)
	assert.Zero(t, deep.ActionTimeout)

	mm, interval, ok, err := cfg.MatchmakerSettings()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4*time.Minute, mm.MaxWait)
	assert.Equal(t, time.Second, interval)
}

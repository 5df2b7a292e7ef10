package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokeronline/internal/auth"
	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/lobby"
)

// Config represents the complete server configuration
type Config struct {
	Server     *Settings         `hcl:"server,block"`
	Auth       *AuthConfig       `hcl:"auth,block"`
	Tables     []TableConfig     `hcl:"table,block"`
	Matchmaker *MatchmakerConfig `hcl:"matchmaker,block"`
}

// Settings contains listener and logging configuration
type Settings struct {
	Address    string `hcl:"address,optional"`
	Port       int    `hcl:"port,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	SessionTTL string `hcl:"session_ttl,optional"`
}

// AuthConfig selects the account store.
type AuthConfig struct {
	Driver string `hcl:"driver,optional"`
	DSN    string `hcl:"dsn,optional"`
	Secret string `hcl:"secret,optional"`
}

// TableConfig is a named table template.
type TableConfig struct {
	Name          string `hcl:"name,label"`
	MaxSeats      int    `hcl:"max_seats,optional"`
	MinPlayers    int    `hcl:"min_players,optional"`
	SmallBlind    int    `hcl:"small_blind"`
	BigBlind      int    `hcl:"big_blind"`
	StreetBet     *int   `hcl:"street_bet,optional"`
	StartingChips int    `hcl:"starting_chips,optional"`
	ActionTimeout string `hcl:"action_timeout,optional"`
}

// MatchmakerConfig controls the matchmaking queue.
type MatchmakerConfig struct {
	Table      string `hcl:"table,optional"`
	MaxTables  int    `hcl:"max_tables,optional"`
	MaxWait    string `hcl:"max_wait,optional"`
	MinPlayers int    `hcl:"min_players,optional"`
	Interval   string `hcl:"interval,optional"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	cfg := &Config{
		Server: &Settings{Address: "localhost", Port: 8080, LogLevel: "info"},
		Tables: []TableConfig{{Name: "main", SmallBlind: 1, BigBlind: 2}},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads the configuration from an HCL file. A missing file yields
// DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &Settings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = "24h"
	}
	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	if c.Auth.Driver == "" {
		c.Auth.Driver = auth.DriverMemory
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxSeats == 0 {
			t.MaxSeats = 6
		}
		if t.MinPlayers == 0 {
			t.MinPlayers = 2
		}
		if t.StreetBet == nil {
			bb := t.BigBlind
			t.StreetBet = &bb
		}
		if t.StartingChips == 0 {
			t.StartingChips = t.BigBlind * 100 // 100 big blinds
		}
		if t.ActionTimeout == "" {
			t.ActionTimeout = "30s"
		}
	}

	if c.Matchmaker != nil {
		m := c.Matchmaker
		if m.Table == "" && len(c.Tables) > 0 {
			m.Table = c.Tables[0].Name
		}
		if m.MaxTables == 0 {
			m.MaxTables = lobby.DefaultMaxTables
		}
		if m.MaxWait == "" {
			m.MaxWait = lobby.DefaultMaxWait.String()
		}
		if m.MinPlayers == 0 {
			m.MinPlayers = 2
		}
		if m.Interval == "" {
			m.Interval = "1s"
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := parseDuration("session_ttl", c.Server.SessionTTL); err != nil {
		return err
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("table %s: defined more than once", t.Name)
		}
		seen[t.Name] = true
		if _, err := t.Template(); err != nil {
			return err
		}
	}

	if m := c.Matchmaker; m != nil {
		tmpl := c.TableByName(m.Table)
		if tmpl == nil {
			return fmt.Errorf("matchmaker: unknown table %q", m.Table)
		}
		if m.MaxTables < 1 {
			return fmt.Errorf("matchmaker: max tables must be positive, got %d", m.MaxTables)
		}
		if m.MinPlayers < 2 || m.MinPlayers > tmpl.MaxSeats {
			return fmt.Errorf("matchmaker: min players must be between 2 and %d", tmpl.MaxSeats)
		}
		if _, err := parseDuration("matchmaker max_wait", m.MaxWait); err != nil {
			return err
		}
		if _, err := parseDuration("matchmaker interval", m.Interval); err != nil {
			return err
		}
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TableByName returns a table configuration by name
func (c *Config) TableByName(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// AuthStoreConfig converts the auth block for auth.Open.
func (c *Config) AuthStoreConfig() auth.Config {
	return auth.Config{Driver: c.Auth.Driver, DSN: c.Auth.DSN, Secret: c.Auth.Secret}
}

// SessionTTLDuration returns the parsed session lifetime.
func (c *Config) SessionTTLDuration() time.Duration {
	d, _ := parseDuration("session_ttl", c.Server.SessionTTL)
	return d
}

// MatchmakerSettings converts the matchmaker block. ok is false when
// matchmaking is not configured.
func (c *Config) MatchmakerSettings() (cfg lobby.MatchmakerConfig, interval time.Duration, ok bool, err error) {
	m := c.Matchmaker
	if m == nil {
		return lobby.MatchmakerConfig{}, 0, false, nil
	}
	tc := c.TableByName(m.Table)
	if tc == nil {
		return lobby.MatchmakerConfig{}, 0, false, fmt.Errorf("matchmaker: unknown table %q", m.Table)
	}
	tmpl, err := tc.Template()
	if err != nil {
		return lobby.MatchmakerConfig{}, 0, false, err
	}
	maxWait, err := parseDuration("matchmaker max_wait", m.MaxWait)
	if err != nil {
		return lobby.MatchmakerConfig{}, 0, false, err
	}
	interval, err = parseDuration("matchmaker interval", m.Interval)
	if err != nil {
		return lobby.MatchmakerConfig{}, 0, false, err
	}
	return lobby.MatchmakerConfig{Template: tmpl, MaxWait: maxWait, MinPlayers: m.MinPlayers}, interval, true, nil
}

// Template converts the table block into a lobby template.
func (t TableConfig) Template() (lobby.Template, error) {
	cfg := game.Config{
		MaxSeats:   t.MaxSeats,
		MinPlayers: t.MinPlayers,
		SmallBlind: t.SmallBlind,
		BigBlind:   t.BigBlind,
	}
	if t.StreetBet != nil {
		cfg.StreetBet = *t.StreetBet
	}
	if err := cfg.Validate(); err != nil {
		return lobby.Template{}, fmt.Errorf("table %s: %w", t.Name, err)
	}
	if t.StartingChips <= 0 {
		return lobby.Template{}, fmt.Errorf("table %s: starting chips must be positive", t.Name)
	}

	timeout, err := parseDuration("table "+t.Name+" action_timeout", t.ActionTimeout)
	if err != nil {
		return lobby.Template{}, err
	}
	return lobby.Template{
		Name:          t.Name,
		Config:        cfg,
		StartingChips: t.StartingChips,
		ActionTimeout: timeout,
	}, nil
}

// parseDuration accepts Go duration strings; "0" and "off" disable.
func parseDuration(field, value string) (time.Duration, error) {
	if value == "" || value == "0" || value == "off" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}

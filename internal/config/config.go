package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/rpggio/groupmeet/internal/domain/grid"
)

const envPrefix = "GROUPMEET_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Grid      GridConfig      `yaml:"grid"`
	Legacy    LegacyConfig    `yaml:"legacy"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

type AuthConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DefaultUser string `yaml:"default_user"`
}

// GridConfig picks the daily time range. Start and End ("HH:MM") take
// precedence; SlotsPerDay gives an unlabeled fixed-height grid.
type GridConfig struct {
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	SlotsPerDay int    `yaml:"slots_per_day"`
}

type LegacyConfig struct {
	Policy string `yaml:"policy"` // "recover" or "reset"
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "groupmeet.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Auth: AuthConfig{
			Enabled:     true,
			DefaultUser: "local",
		},
		Grid: GridConfig{
			Start: "09:30",
			End:   "20:45",
		},
		Legacy: LegacyConfig{
			Policy: "recover",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at first use.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := c.BuildGrid(); err != nil {
		return err
	}
	return nil
}

// BuildGrid returns the grid every calendar uses.
func (c Config) BuildGrid() (grid.Grid, error) {
	if c.Grid.Start != "" || c.Grid.End != "" {
		start, err := grid.ParseClock(c.Grid.Start)
		if err != nil {
			return grid.Grid{}, fmt.Errorf("grid start: %w", err)
		}
		end, err := grid.ParseClock(c.Grid.End)
		if err != nil {
			return grid.Grid{}, fmt.Errorf("grid end: %w", err)
		}
		return grid.NewGrid(start, end)
	}
	return grid.NewFixedGrid(c.Grid.SlotsPerDay)
}

// Policy returns the normalization policy for legacy records.
func (c Config) Policy() (availability.Policy, error) {
	return availability.ParsePolicy(c.Legacy.Policy)
}

func applyEnv(cfg *Config) error {
	if host := getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if err := envInt("SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if dbPath := getenv("DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := getenv("LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := getenv("TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = strings.ToLower(mode)
	}
	if err := envBool("AUTH_ENABLED", &cfg.Auth.Enabled); err != nil {
		return err
	}
	if user := getenv("DEFAULT_USER"); user != "" {
		cfg.Auth.DefaultUser = user
	}
	if start := getenv("GRID_START"); start != "" {
		cfg.Grid.Start = start
	}
	if end := getenv("GRID_END"); end != "" {
		cfg.Grid.End = end
	}
	if getenv("GRID_SLOTS_PER_DAY") != "" {
		if err := envInt("GRID_SLOTS_PER_DAY", &cfg.Grid.SlotsPerDay); err != nil {
			return err
		}
		// a fixed height replaces the default time range unless one is also set
		if getenv("GRID_START") == "" && getenv("GRID_END") == "" {
			cfg.Grid.Start, cfg.Grid.End = "", ""
		}
	}
	if policy := getenv("LEGACY_POLICY"); policy != "" {
		cfg.Legacy.Policy = policy
	}
	if err := envBool("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	return nil
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

func envInt(name string, out *int) error {
	raw := getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	*out = v
	return nil
}

func envBool(name string, out *bool) error {
	raw := getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	*out = v
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

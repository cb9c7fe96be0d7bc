package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Lock     LockConfig     `toml:"lock"`
	Device   DeviceConfig   `toml:"device"`
	Weather  WeatherConfig  `toml:"weather"`
	Refresh  RefreshConfig  `toml:"refresh"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LockConfig contains password hashing parameters and unlock throttling.
type LockConfig struct {
	TimeCost      uint32   `toml:"time_cost"`
	MemoryKiB     uint32   `toml:"memory_kib"`
	Threads       uint8    `toml:"threads"`
	KeyLen        uint32   `toml:"key_len"`
	MaxAttempts   int      `toml:"max_attempts"`
	AttemptWindow Duration `toml:"attempt_window"`
}

// DeviceConfig points the file-backed device adapters at their data.
type DeviceConfig struct {
	ManifestPath      string `toml:"manifest_path"`
	NotificationsPath string `toml:"notifications_path"`
	StateDir          string `toml:"state_dir"`
}

// WeatherConfig contains the coordinates and endpoint for the weather widget.
type WeatherConfig struct {
	Latitude  float64  `toml:"latitude"`
	Longitude float64  `toml:"longitude"`
	BaseURL   string   `toml:"base_url"`
	Timeout   Duration `toml:"timeout"`
}

// RefreshConfig controls the periodic app list reload.
type RefreshConfig struct {
	Interval Duration `toml:"interval"`
	Prune    bool     `toml:"prune"`
}

// ServerConfig contains the listen address for "zl serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LoggingConfig contains the log level name (debug, info, warn, error).
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Duration is a [time.Duration] decoded from strings such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: bad duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

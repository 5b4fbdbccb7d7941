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
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Output   OutputConfig   `toml:"output"`
	Analysis AnalysisConfig `toml:"analysis"`
	Report   ReportConfig   `toml:"report"`
}

// ServerConfig describes how to reach the analysis server.
type ServerConfig struct {
	BaseURL           string  `toml:"base_url"`
	PollIntervalMS    int     `toml:"poll_interval_ms"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	DisablePush       bool    `toml:"disable_push"`
}

// PollInterval returns the pull channel interval, defaulting to one second.
func (s ServerConfig) PollInterval() time.Duration {
	if s.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// DatabaseConfig contains local history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// OutputConfig controls where rendered reports are written.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// AnalysisConfig holds defaults for analysis submissions. Passwords and API keys are never read from the file.
type AnalysisConfig struct {
	DBType     string `toml:"db_type"`
	Host       string `toml:"host"`
	Port       string `toml:"port"`
	Username   string `toml:"username"`
	Database   string `toml:"database"`
	Schema     string `toml:"schema"`
	SampleSize int    `toml:"sample_size"`
	EnableAI   bool   `toml:"enable_ai"`
}

// ReportConfig contains settings for the local report preview server.
type ReportConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address of the report server.
func (r ReportConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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

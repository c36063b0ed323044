package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds configuration for the local daemon and CLI
type LocalConfig struct {
	Daemon   DaemonConfig   `yaml:"daemon"`
	Learning LearningConfig `yaml:"learning"`
	Storage  StorageConfig  `yaml:"storage"`
	Events   EventsConfig   `yaml:"events"`
}

// DaemonConfig holds daemon server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`

	// RatePerSecond limits mutating requests per client. Zero disables it.
	RatePerSecond int `yaml:"rate_per_second"`
	RateBurst     int `yaml:"rate_burst"`
}

// LearningConfig holds learner-facing settings
type LearningConfig struct {
	Locale          string `yaml:"locale"`
	ThinkingDelayMS int    `yaml:"thinking_delay_ms"`
	LessonsPath     string `yaml:"lessons_path"` // extra lesson files, optional
	LearnerID       string `yaml:"learner_id"`
}

// Storage drivers.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StorageConfig selects where progress is kept
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`      // json directory or sqlite file
	PostgresURL string `yaml:"-"`         // loaded from secrets.yaml or env
	Analytics   bool   `yaml:"analytics"` // record events in sqlite
}

// EventsConfig holds event publishing settings
type EventsConfig struct {
	AMQPURL string `yaml:"-"` // loaded from secrets.yaml or env
}

// SecretsConfig holds connection strings loaded from secrets.yaml
type SecretsConfig struct {
	PostgresURL string `yaml:"postgres_url,omitempty"`
	AMQPURL     string `yaml:"amqp_url,omitempty"`
}

// ErrInvalidConfig is returned when configuration values are out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Dir returns the path to ~/.pymastery
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".pymastery"), nil
}

// EnsureDir creates ~/.pymastery and subdirectories if they don't exist
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"logs",
		"progress",
		"lessons",
	}

	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for local mode
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:          7433,
			Bind:          "127.0.0.1",
			LogLevel:      "info",
			RatePerSecond: 10,
			RateBurst:     20,
		},
		Learning: LearningConfig{
			Locale:          "pt-BR",
			ThinkingDelayMS: 500,
			LearnerID:       "default",
		},
		Storage: StorageConfig{
			Driver:    DriverJSON,
			Analytics: false,
		},
	}
}

// LoadLocalConfig loads configuration from ~/.pymastery/config.yaml and
// applies PYMASTERY_* environment overrides.
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadLocalConfigFrom(dir)
}

// LoadLocalConfigFrom loads config.yaml and secrets.yaml from dir.
func LoadLocalConfigFrom(dir string) (*LocalConfig, error) {
	cfg := DefaultLocalConfig()
	configPath := filepath.Join(dir, "config.yaml")

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	applyEnv(cfg)
	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSecrets loads connection strings from secrets.yaml
func loadSecrets(dir string, cfg *LocalConfig) error {
	secretsPath := filepath.Join(dir, "secrets.yaml")

	// If secrets file doesn't exist, skip
	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(secretsPath)
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	cfg.Storage.PostgresURL = secrets.PostgresURL
	cfg.Events.AMQPURL = secrets.AMQPURL
	return nil
}

func (c *LocalConfig) resolvePaths(dir string) {
	if c.Storage.Path != "" {
		return
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		c.Storage.Path = filepath.Join(dir, "pymastery.db")
	default:
		c.Storage.Path = filepath.Join(dir, "progress")
	}
}

// Validate checks that the configuration is usable.
func (c *LocalConfig) Validate() error {
	if c.Daemon.Port <= 0 || c.Daemon.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Daemon.Port)
	}
	switch strings.ToLower(c.Daemon.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Daemon.LogLevel)
	}
	if c.Daemon.RatePerSecond < 0 || c.Learning.ThinkingDelayMS < 0 {
		return fmt.Errorf("%w: negative rate or delay", ErrInvalidConfig)
	}
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("%w: postgres driver needs a postgres_url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	return nil
}

// Address returns the daemon listen address.
func (c *LocalConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Daemon.Bind, c.Daemon.Port)
}

// SaveLocalConfig saves configuration to ~/.pymastery/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(dir, "config.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// SaveSecrets saves connection strings to ~/.pymastery/secrets.yaml
func SaveSecrets(secrets SecretsConfig) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}

	return nil
}

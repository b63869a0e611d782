// Package config loads dashboard settings from a YAML file, a .env file and
// DASHBOARD_* environment variables, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	dirName        = ".dashboard"
	configFileName = "config.yaml"
)

// Config holds every dashboard setting.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Form    FormConfig    `yaml:"form"`

	// SeedOnFirstRun fills an empty store with sample records.
	SeedOnFirstRun bool `yaml:"seed_on_first_run"`

	// Theme is one of classic, neon, mono.
	Theme string `yaml:"theme"`

	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // json, sqlite, memory

	// Path is the data file or database. Empty means the backend's default
	// location under Dir, see ResolveStoragePath.
	Path string `yaml:"path,omitempty"`
	Key     string `yaml:"key"`
}

type FormConfig struct {
	RequirePhone bool `yaml:"require_phone"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error, off
	File  string `yaml:"file"`
}

// Dir returns ~/.dashboard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// DefaultPath returns the config file location, ~/.dashboard/config.yaml.
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(dir, configFileName)
}

// homeDir is Dir, or the working directory when the home directory is
// unknown.
func homeDir() string {
	dir, err := Dir()
	if err != nil {
		return "."
	}
	return dir
}

// DefaultDataPath returns where backend keeps its data when no path is
// configured: data.json for json, data.db for sqlite, nothing for memory.
func DefaultDataPath(backend string) string {
	switch strings.ToLower(backend) {
	case "json":
		return filepath.Join(homeDir(), "data.json")
	case "sqlite":
		return filepath.Join(homeDir(), "data.db")
	default:
		return ""
	}
}

// Default returns the built-in settings. The storage path is left empty so
// it follows whichever backend ends up selected.
func Default() *Config {
	dir := homeDir()
	return &Config{
		Storage: StorageConfig{
			Backend: "json",
			Key:     "dashboardItems",
		},
		Form:           FormConfig{RequirePhone: true},
		SeedOnFirstRun: true,
		Theme:          "classic",
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dir, "dashboard.log"),
		},
	}
}

// Load reads path on top of Default. A missing file is not an error.
// Environment overrides are applied last. Callers run Validate once their own
// overrides (flags) are in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	cfg.expandPaths()
	return cfg, nil
}

// ResolveStoragePath fills an empty storage path with the default for the
// selected backend. Call it after every override is applied.
func (c *Config) ResolveStoragePath() {
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultDataPath(c.Storage.Backend)
	}
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// loadDotEnv sets variables from a .env file without clobbering ones already
// present in the environment.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_STORAGE")); v != "" {
		c.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_DATA")); v != "" {
		c.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_KEY")); v != "" {
		c.Storage.Key = v
	}
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) expandPaths() {
	c.Storage.Path = expandHome(c.Storage.Path)
	c.Logging.File = expandHome(c.Logging.File)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "json", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid storage backend %q: must be json, sqlite or memory", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key must not be empty")
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("invalid theme %q: must be classic, neon or mono", c.Theme)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"

	RunnerExec = "exec"
	RunnerGosh = "gosh"

	ModeTUI  = "tui"
	ModeLine = "line"
)

// Config describes how the shell is launched: where state lives, which
// storage backend and process runner to use, and which front-end to start.
type Config struct {
	ConfigDir string `yaml:"configDir,omitempty"`
	Store     string `yaml:"store,omitempty"`
	Runner    string `yaml:"runner,omitempty"`
	Mode      string `yaml:"mode,omitempty"`
	Shell     string `yaml:"shell,omitempty"`
	TimeoutMs int    `yaml:"timeoutMs,omitempty"`
	LogLevel  string `yaml:"logLevel,omitempty"`
}

// DefaultConfigDir is ~/.terminal_config.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".terminal_config")
}

// DefaultConfig returns the launcher defaults.
func DefaultConfig() *Config {
	return &Config{
		ConfigDir: DefaultConfigDir(),
		Store:     StoreFile,
		Runner:    RunnerExec,
		Mode:      ModeTUI,
		LogLevel:  "info",
	}
}

// LoadConfig reads a YAML launcher file over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated options.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unsupported store: %q", c.Store)
	}
	switch c.Runner {
	case RunnerExec, RunnerGosh:
	default:
		return fmt.Errorf("unsupported runner: %q", c.Runner)
	}
	switch c.Mode {
	case ModeTUI, ModeLine:
	default:
		return fmt.Errorf("unsupported mode: %q", c.Mode)
	}
	if c.TimeoutMs < 0 {
		return fmt.Errorf("timeoutMs must not be negative")
	}
	return nil
}

/*
Package config loads server and engine configuration from a YAML file.

PURPOSE:
  Optional tuning beyond the command-line flags: log level and the
  rollover sweep pass limit. Flags win over file values for the settings
  both cover, so a config file is never required.

FORMAT:
  port: 8080
  db_path: budget.db
  log_level: info
  sweep_pass_limit: 10
  demo_scenarios: false
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all server and engine settings.
type Config struct {
	Port           int    `yaml:"port"`
	DBPath         string `yaml:"db_path"`
	LogLevel       string `yaml:"log_level"`
	SweepPassLimit int    `yaml:"sweep_pass_limit"`

	// DemoScenarios enables the destructive scenario-loading endpoints.
	DemoScenarios bool `yaml:"demo_scenarios"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "budget.db",
		LogLevel:       "info",
		SweepPassLimit: 10,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SweepPassLimit <= 0 {
		return fmt.Errorf("sweep_pass_limit must be positive, got %d", c.SweepPassLimit)
	}
	return nil
}

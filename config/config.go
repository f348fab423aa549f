// Package config loads daemon configuration from a YAML file with
// environment-variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration.
type Config struct {
	Listen       string         `yaml:"listen"`
	DatabasePath string         `yaml:"database_path"`
	Provider     ProviderConfig `yaml:"provider"`
	Telemetry    Telemetry      `yaml:"telemetry"`
	Retention    Retention      `yaml:"retention"`
}

// ProviderConfig selects and configures the text-generation provider.
type ProviderConfig struct {
	Name           string `yaml:"name"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the provider call timeout.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Telemetry configures the OpenTelemetry exporter.
type Telemetry struct {
	Exporter    string `yaml:"exporter"` // otlp, stdout, none
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	Environment string `yaml:"environment"`
}

// Retention bounds per-session history.
type Retention struct {
	MaxTurns int `yaml:"max_turns"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Listen:       ":8087",
		DatabasePath: "careerframe.db",
		Provider:     ProviderConfig{Name: "scripted"},
		Telemetry:    Telemetry{Exporter: "none"},
	}
}

// Load reads the YAML file at path, then applies environment overrides. A
// missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CAREERFRAME_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("CAREERFRAME_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("CAREERFRAME_PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("CAREERFRAME_PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("CAREERFRAME_PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.Endpoint = v
		if cfg.Telemetry.Exporter == "" || cfg.Telemetry.Exporter == "none" {
			cfg.Telemetry.Exporter = "otlp"
		}
	}
}

// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "LFP_CONFIG"

// Load builds the configuration from layered sources:
//  1. Built-in defaults
//  2. YAML file (explicit path, else LFP_CONFIG; none is fine)
//  3. LFP_* environment overrides
//  4. Validation
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadYAMLFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// loadYAMLFile parses path into cfg. Fields absent from the file keep their
// current values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps LFP_* variables onto cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LFP_EXPOSURE_TYPE"); v != "" {
		cfg.ExposureType = v
	}
	if v := os.Getenv("LFP_PARALLELISM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LFP_PARALLELISM: %w", err)
		}
		cfg.Parallelism = n
	}
	if v := os.Getenv("LFP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LFP_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("LFP_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("LFP_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	return nil
}

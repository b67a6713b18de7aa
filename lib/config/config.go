// Copyright 2026 The QIIME 2 Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the artifact tooling.
type Config struct {
	// Cache configures the on-disk artifact cache.
	Cache CacheConfig `yaml:"cache"`

	// Logging configures diagnostic output.
	Logging LoggingConfig `yaml:"logging"`
}

// CacheConfig configures the on-disk artifact cache.
type CacheConfig struct {
	// Root is the cache root directory. Every artifact loaded or
	// created by this installation is materialized under it.
	// Default: <tmp>/qiime2/<user>
	Root string `yaml:"root"`
}

// LoggingConfig configures diagnostic output of the CLI.
type LoggingConfig struct {
	// Level is the minimum level emitted: debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`

	// Format selects the log encoding: text, json, or auto. Auto uses
	// text when stderr is a terminal and json otherwise.
	// Default: auto
	Format string `yaml:"format"`
}

// Default returns the default configuration. These defaults are a
// complete working configuration; a config file is optional and
// overrides individual fields.
func Default() *Config {
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}

	return &Config{
		Cache: CacheConfig{
			Root: filepath.Join(os.TempDir(), "qiime2", user),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by the Q2_CONFIG
// environment variable. When Q2_CONFIG is unset the defaults are
// returned unchanged, since the tool must work out of the box on a
// machine that has never been configured.
func Load() (*Config, error) {
	configPath := os.Getenv("Q2_CONFIG")
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging over
// the defaults. Environment variables do not override config values;
// the only expansion performed is ${VAR} and ${VAR:-default} patterns
// inside path fields, for portability of shared config files.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.expandVariables()

	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":   os.Getenv("HOME"),
		"USER":   os.Getenv("USER"),
		"TMPDIR": os.TempDir(),
	}

	c.Cache.Root = expandVars(c.Cache.Root, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Cache.Root == "" {
		errs = append(errs, fmt.Errorf("cache.root is required"))
	} else if !filepath.IsAbs(c.Cache.Root) {
		errs = append(errs, fmt.Errorf("cache.root must be an absolute path, got %q", c.Cache.Root))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !contains(levels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", levels))
	}
	formats := []string{"text", "json", "auto"}
	if !contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// Package cliconfig loads the warden CLI configuration from its TOML file,
// WARDEN_* environment variables and command-line flags, in increasing
// order of precedence.
package cliconfig

import (
	"fmt"
	"os"
	"time"
)

// Config holds CLI configuration for warden.
type Config struct {
	LogLevel  string
	LogFormat string
	LogFile   string

	Debug       bool
	ConsoleAddr string

	StatsInterval time.Duration
	GracePeriod   time.Duration
	WatchConfig   bool

	Services []ServiceConfig
}

// ServiceConfig declares one supervised child process.
type ServiceConfig struct {
	Name    string
	Command string
	Args    []string
	Dir     string
	Env     []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     "console",
		ConsoleAddr:   "localhost:6067",
		StatsInterval: 5 * time.Second,
		GracePeriod:   10 * time.Second,
		WatchConfig:   true,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("no services configured")
	}

	seen := make(map[string]bool, len(c.Services))
	for i, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("service %d: name is required", i)
		}
		if svc.Command == "" {
			return fmt.Errorf("service %q: command is required", svc.Name)
		}
		if seen[svc.Name] {
			return fmt.Errorf("service %q: duplicate name", svc.Name)
		}
		seen[svc.Name] = true
	}

	if c.StatsInterval <= 0 {
		return fmt.Errorf("stats interval must be positive")
	}
	if c.GracePeriod <= 0 {
		return fmt.Errorf("grace period must be positive")
	}

	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

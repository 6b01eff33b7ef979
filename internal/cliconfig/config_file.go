package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	Debug       *bool  `toml:"debug"`
	ConsoleAddr string `toml:"console_addr"`

	StatsInterval string `toml:"stats_interval"`
	GracePeriod   string `toml:"grace_period"`
	WatchConfig   *bool  `toml:"watch_config"`

	Services []ServiceFileConfig `toml:"service"`
}

// ServiceFileConfig declares one supervised process in the TOML file.
type ServiceFileConfig struct {
	Name    string   `toml:"name"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Dir     string   `toml:"dir"`
	Env     []string `toml:"env"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.warden/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".warden", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
// Service declarations always come from the file.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)
	s.setString("console-addr", fc.ConsoleAddr, &cfg.ConsoleAddr)

	s.setBool("debug", fc.Debug, &cfg.Debug)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	if err := s.setDuration("stats-interval", fc.StatsInterval, &cfg.StatsInterval); err != nil {
		return err
	}
	if err := s.setDuration("grace-period", fc.GracePeriod, &cfg.GracePeriod); err != nil {
		return err
	}

	for _, svc := range fc.Services {
		cfg.Services = append(cfg.Services, ServiceConfig{
			Name:    svc.Name,
			Command: svc.Command,
			Args:    svc.Args,
			Dir:     svc.Dir,
			Env:     svc.Env,
		})
	}

	return nil
}

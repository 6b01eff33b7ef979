package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (WARDEN_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", os.Getenv("WARDEN_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("WARDEN_LOG_FORMAT"), &cfg.LogFormat)
	s.setString("log-file", os.Getenv("WARDEN_LOG_FILE"), &cfg.LogFile)
	s.setString("console-addr", os.Getenv("WARDEN_CONSOLE_ADDR"), &cfg.ConsoleAddr)

	if err := s.setDuration("stats-interval", os.Getenv("WARDEN_STATS_INTERVAL"), &cfg.StatsInterval); err != nil {
		return err
	}
	if err := s.setDuration("grace-period", os.Getenv("WARDEN_GRACE_PERIOD"), &cfg.GracePeriod); err != nil {
		return err
	}

	s.setBoolFromString("debug", os.Getenv("WARDEN_DEBUG"), &cfg.Debug)
	s.setBoolFromString("watch-config", os.Getenv("WARDEN_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/warden/internal/cliconfig"
	"github.com/bft-labs/warden/pkg/console"
	"github.com/bft-labs/warden/pkg/execservice"
	wardenlog "github.com/bft-labs/warden/pkg/log"
	"github.com/bft-labs/warden/pkg/proctitle"
	"github.com/bft-labs/warden/pkg/worker"
	"github.com/bft-labs/warden/plugins/configwatcher"
	"github.com/bft-labs/warden/plugins/metrics"
)

const helpDescription = `
Supervise an ordered group of long-running processes under one lifecycle.

Highlights:
  - Services start in declaration order and stop in exactly the reverse.
  - SIGINT/SIGTERM trigger one orderly shutdown; repeat signals are ignored.
  - Sensors observe the group: Prometheus metrics, config-file watching.
  - Optional debug console with pprof profiles and /metrics.

Declare services in ~/.warden/config.toml:

  [[service]]
  name = "db"
  command = "/usr/local/bin/postgres"
  args = ["-D", "/var/lib/pg"]

  [[service]]
  name = "api"
  command = "/usr/local/bin/api"
`

var exampleUsage = strings.TrimSpace(`
  warden
  warden --config /etc/warden/config.toml --log-level debug
  warden --debug --console-addr localhost:6067
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	bootLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "warden",
		Short:   "Supervise an ordered group of long-running processes under one lifecycle",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default ~/.warden/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (WARDEN_*)
			// These override file config but are overridden by flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			bootLog.Info().Interface("config", cfg).Msg("configuration")

			logger := wardenlog.NewZerologAdapterWithLogger(bootLog)

			var logOutput io.Writer
			if cfg.LogFile != "" {
				f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logOutput = f
			}

			// Supervised services, started in declaration order.
			services := make([]worker.Service, 0, len(cfg.Services))
			for _, svc := range cfg.Services {
				services = append(services, execservice.New(svc.Name, svc.Command, svc.Args,
					execservice.WithDir(svc.Dir),
					execservice.WithEnv(svc.Env),
					execservice.WithGracePeriod(cfg.GracePeriod),
					execservice.WithLogger(logger),
				))
			}

			metricsSensor := metrics.New()
			sensors := []worker.Sensor{metricsSensor}
			if cfg.WatchConfig && cfgFile != "" && cliconfig.FileExists(cfgFile) {
				sensors = append(sensors, configwatcher.New(cfgFile, applyLogLevel(logger),
					configwatcher.WithLogger(logger)))
			}

			w := worker.New(services,
				worker.WithSensors(sensors...),
				worker.WithEventEmitter(metricsSensor),
				worker.WithLogger(logger),
				worker.WithLogLevel(cfg.LogLevel),
				worker.WithLogFormat(cfg.LogFormat),
				worker.WithLogOutput(logOutput),
				worker.WithDebug(cfg.Debug),
				worker.WithConsole(console.New(cfg.ConsoleAddr, logger)),
				worker.WithStatsInterval(cfg.StatsInterval),
				worker.WithProcessTitle(proctitle.New()),
			)

			return w.Run(context.Background())
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: ~/.warden/config.toml)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	root.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log destination file (defaults to stderr)")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable the interactive debug console")
	root.Flags().StringVar(&cfg.ConsoleAddr, "console-addr", cfg.ConsoleAddr, "debug console listen address")
	root.Flags().DurationVar(&cfg.StatsInterval, "stats-interval", cfg.StatsInterval, "period of the status report")
	root.Flags().DurationVar(&cfg.GracePeriod, "grace-period", cfg.GracePeriod, "SIGTERM grace period before SIGKILL on shutdown")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "watch the config file for log-level changes")

	if err := root.Execute(); err != nil {
		bootLog.Error().Err(err).Msg("warden")
		os.Exit(1)
	}
}

// applyLogLevel returns a config-change callback that re-reads the file and
// applies its log level globally without a restart.
func applyLogLevel(logger wardenlog.Logger) configwatcher.ChangeFunc {
	return func(path string) {
		fc, err := cliconfig.LoadFileConfig(path)
		if err != nil {
			logger.Error("config reload failed", wardenlog.Err(err))
			return
		}
		if fc.LogLevel == "" {
			return
		}
		level, err := zerolog.ParseLevel(fc.LogLevel)
		if err != nil {
			logger.Error("invalid log level in config", wardenlog.String("level", fc.LogLevel))
			return
		}
		zerolog.SetGlobalLevel(level)
		logger.Info("log level updated", wardenlog.String("level", fc.LogLevel))
	}
}

// Package config loads admit settings from a YAML file and the environment
// and builds the loggers, metrics and limiters they describe.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	gferrors "github.com/vnykmshr/admit/pkg/common/errors"
	"github.com/vnykmshr/admit/pkg/common/validation"
	"github.com/vnykmshr/admit/pkg/metrics"
	"github.com/vnykmshr/admit/pkg/ratelimit/limiter"
)

const module = "config"

// EnvPrefix prefixes environment overrides, e.g. ADMIT_LOG_LEVEL=debug.
const EnvPrefix = "ADMIT"

// Config is the root of the configuration tree.
type Config struct {
	Log     LogConfig        `mapstructure:"log"`
	Metrics MetricsConfig    `mapstructure:"metrics"`
	Report  ReportConfig     `mapstructure:"report"`
	Limits  map[string]Limit `mapstructure:"limits"`
}

// LogConfig selects the root logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format string `mapstructure:"format"` // "json" or "console"
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ReportConfig controls the periodic status reporter.
type ReportConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // cron expression or "@every 30s"
}

// Limit is the quota of one named resource.
type Limit struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// Load reads configuration from path, or from admit.yaml in the working
// directory when path is empty, and applies ADMIT_* environment overrides.
// A missing default file is not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("admit")
		v.SetConfigType("yaml")
	}

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", metrics.DefaultNamespace)
	v.SetDefault("report.enabled", false)
	v.SetDefault("report.schedule", "@every 30s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, gferrors.NewOperationError(module, "Load", err).WithContext(path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, gferrors.NewOperationError(module, "Load", fmt.Errorf("decode: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section. Limits are checked in name order so the
// first reported error is stable.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return gferrors.NewValidationError(module, "log.level", c.Log.Level, "unknown level").
			WithHint("use trace, debug, info, warn or error")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return gferrors.NewValidationError(module, "log.format", c.Log.Format, "unknown format").
			WithHint(`use "json" or "console"`)
	}
	if c.Report.Enabled {
		if err := validation.ValidateNotEmpty(module, "report.schedule", c.Report.Schedule); err != nil {
			return err
		}
	}

	for _, name := range c.limitNames() {
		l := c.Limits[name]
		if err := validation.ValidatePositive(module, "limits."+name+".max_requests", l.MaxRequests); err != nil {
			return err
		}
		if err := validation.ValidatePositiveDuration(module, "limits."+name+".window", l.Window); err != nil {
			return err
		}
	}
	return nil
}

// NewLogger builds the root logger writing to w (os.Stderr if nil).
func (c *Config) NewLogger(w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.Nop(), gferrors.NewValidationError(module, "log.level", c.Log.Level, "unknown level")
	}

	if c.Log.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// NewMetrics returns a metrics registry registered on reg, or nil when
// metrics are disabled.
func (c *Config) NewMetrics(reg prometheus.Registerer) *metrics.Registry {
	return metrics.New(metrics.Config{
		Enabled:   c.Metrics.Enabled,
		Registry:  reg,
		Namespace: c.Metrics.Namespace,
	})
}

// BuildSet creates one limiter per configured limit.
func (c *Config) BuildSet(logger zerolog.Logger, reg *metrics.Registry) (*limiter.Set, error) {
	set := limiter.NewSet()
	for _, name := range c.limitNames() {
		l := c.Limits[name]
		rl, err := limiter.New(l.MaxRequests, l.Window, name,
			limiter.WithLogger(logger),
			limiter.WithMetrics(reg),
		)
		if err != nil {
			return nil, err
		}
		if err := set.Add(rl); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (c *Config) limitNames() []string {
	names := make([]string, 0, len(c.Limits))
	for name := range c.Limits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package config loads the board configuration from defaults, an optional
// YAML file, TUBEBOARD_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/mobil-koeln/tubeboard/internal/api"
	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/scheduler"
)

// EnvPrefix prefixes every environment override, e.g. TUBEBOARD_STATION_NAME
const EnvPrefix = "TUBEBOARD"

type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Station StationConfig `mapstructure:"station" yaml:"station"`
	Refresh RefreshConfig `mapstructure:"refresh" yaml:"refresh"`
	Probe   ProbeConfig   `mapstructure:"probe" yaml:"probe"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	AppID    string        `mapstructure:"app_id" yaml:"app_id"`
	AppKey   string        `mapstructure:"app_key" yaml:"app_key"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Attempts int           `mapstructure:"attempts" yaml:"attempts"`
}

// StationConfig selects the station. When SourceURL is set the station is
// read from that service and Name/Direction are ignored.
type StationConfig struct {
	Name      string `mapstructure:"name" yaml:"name"`
	Direction string `mapstructure:"direction" yaml:"direction"`
	Mode      string `mapstructure:"mode" yaml:"mode"`
	SourceURL string `mapstructure:"source_url" yaml:"source_url"`
}

type RefreshConfig struct {
	Tick          time.Duration `mapstructure:"tick" yaml:"tick"`
	StationTTL    time.Duration `mapstructure:"station_ttl" yaml:"station_ttl"`
	ArrivalTTL    time.Duration `mapstructure:"arrival_ttl" yaml:"arrival_ttl"`
	ProbeInterval time.Duration `mapstructure:"probe_interval" yaml:"probe_interval"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

type ProbeConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type DisplayConfig struct {
	Width    int    `mapstructure:"width" yaml:"width"`
	Rows     int    `mapstructure:"rows" yaml:"rows"`
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

// CacheConfig controls the on-disk stop point cache. An empty Dir means the
// user cache directory.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Dir     string        `mapstructure:"dir" yaml:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	sched := scheduler.DefaultConfig()

	v.SetDefault("api.base_url", api.BaseURL)
	v.SetDefault("api.app_id", "")
	v.SetDefault("api.app_key", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.attempts", 2)

	v.SetDefault("station.name", "")
	v.SetDefault("station.direction", string(models.DirectionInbound))
	v.SetDefault("station.mode", api.DefaultMode)
	v.SetDefault("station.source_url", "")

	v.SetDefault("refresh.tick", sched.Tick)
	v.SetDefault("refresh.station_ttl", sched.StationTTL)
	v.SetDefault("refresh.arrival_ttl", sched.ArrivalTTL)
	v.SetDefault("refresh.probe_interval", sched.ProbeInterval)
	v.SetDefault("refresh.retry_delay", sched.RetryDelay)

	v.SetDefault("probe.url", api.DefaultProbeURL)
	v.SetDefault("probe.timeout", time.Second)

	v.SetDefault("display.width", 56)
	v.SetDefault("display.rows", models.DisplayRows)
	v.SetDefault("display.timezone", "Europe/London")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.dir", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// New returns a viper instance with defaults and environment overrides
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath returns $XDG_CONFIG_HOME/tubeboard/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "tubeboard", "config.yaml")
}

// ReadFile merges the YAML file at path into v. An explicit path must exist;
// with an empty path the default location is used if present.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Decode decodes v into a Config without validating it. An unrecognised
// direction becomes inbound.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Station.Name = strings.TrimSpace(cfg.Station.Name)
	cfg.Station.Direction = string(models.ParseDirection(cfg.Station.Direction))
	return &cfg, nil
}

// Load decodes v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside the board
func (c *Config) Validate() error {
	var errs []error

	if c.Station.Name == "" && c.Station.SourceURL == "" {
		errs = append(errs, api.NewValidationError("station.name", "set a station name or station.source_url"))
	}
	if c.API.Attempts < 1 {
		errs = append(errs, invalid("api.attempts", c.API.Attempts, "must be at least 1"))
	}

	for _, d := range []struct {
		key   string
		value time.Duration
	}{
		{"api.timeout", c.API.Timeout},
		{"refresh.tick", c.Refresh.Tick},
		{"refresh.station_ttl", c.Refresh.StationTTL},
		{"refresh.arrival_ttl", c.Refresh.ArrivalTTL},
		{"refresh.probe_interval", c.Refresh.ProbeInterval},
		{"probe.timeout", c.Probe.Timeout},
	} {
		if d.value <= 0 {
			errs = append(errs, invalid(d.key, d.value, "must be positive"))
		}
	}
	if c.Refresh.RetryDelay < 0 {
		errs = append(errs, invalid("refresh.retry_delay", c.Refresh.RetryDelay, "must not be negative"))
	}

	if c.Display.Rows < 1 || c.Display.Rows > models.DisplayRows {
		errs = append(errs, invalid("display.rows", c.Display.Rows, fmt.Sprintf("must be between 1 and %d", models.DisplayRows)))
	}
	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		errs = append(errs, invalid("display.timezone", c.Display.Timezone, "unknown time zone"))
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, invalid("log.level", c.Log.Level, "unknown level"))
	}

	return errors.Join(errs...)
}

func invalid(field string, value any, reason string) error {
	return fmt.Errorf("%w: %s", api.ErrInvalidValue(field, value), reason)
}

// Scheduler returns the refresh intervals
func (c *Config) Scheduler() scheduler.Config {
	return scheduler.Config{
		Tick:          c.Refresh.Tick,
		StationTTL:    c.Refresh.StationTTL,
		ArrivalTTL:    c.Refresh.ArrivalTTL,
		ProbeInterval: c.Refresh.ProbeInterval,
		RetryDelay:    c.Refresh.RetryDelay,
	}
}

// Location returns the display time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// YAML renders the configuration with the API key masked
func (c *Config) YAML() ([]byte, error) {
	redacted := *c
	if redacted.API.AppKey != "" {
		redacted.API.AppKey = "****"
	}
	return yaml.Marshal(redacted)
}

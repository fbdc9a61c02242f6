package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mobil-koeln/tubeboard/internal/api"
	"github.com/mobil-koeln/tubeboard/internal/cache"
	"github.com/mobil-koeln/tubeboard/internal/config"
	"github.com/mobil-koeln/tubeboard/internal/logger"
	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/output"
	"github.com/mobil-koeln/tubeboard/internal/scheduler"
	"github.com/mobil-koeln/tubeboard/internal/station"
)

// flagKeys maps persistent flags to config keys
var flagKeys = map[string]string{
	"station":    "station.name",
	"direction":  "station.direction",
	"mode":       "station.mode",
	"source-url": "station.source_url",
	"base-url":   "api.base_url",
	"app-id":     "api.app_id",
	"app-key":    "api.app_key",
	"log-level":  "log.level",
	"log-file":   "log.file",
}

// app holds the state shared by all commands of one invocation
type app struct {
	v *viper.Viper

	configPath string
	color      string
	noCache    bool

	plain   bool
	watch   bool
	jsonOut bool
}

func newApp() *app {
	return &app{v: config.New()}
}

func (a *app) bindFlags(fs *pflag.FlagSet) {
	for name, key := range flagKeys {
		_ = a.v.BindPFlag(key, fs.Lookup(name))
	}
}

// setup reads the config file before any command runs
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.ReadFile(a.v, a.configPath); err != nil {
		return err
	}
	if a.noCache {
		a.v.Set("cache.enabled", false)
	}
	return nil
}

// load returns the effective configuration. A positional station argument
// overrides every other source.
func (a *app) load(args []string, validate bool) (*config.Config, error) {
	if len(args) > 0 {
		a.v.Set("station.name", args[0])
	}
	if !validate {
		return config.Decode(a.v)
	}
	return config.Load(a.v)
}

// newLogger returns the configured logger. When the terminal is owned by the
// board and no log file is set, logging is discarded.
func (a *app) newLogger(cfg *config.Config, ownsTerminal bool) (*zap.Logger, error) {
	if ownsTerminal && cfg.Log.File == "" {
		return zap.NewNop(), nil
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func (a *app) fileCache(cfg *config.Config) (*cache.FileCache, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		dir = cache.DefaultCacheDir()
	}
	return cache.NewFileCache(dir, cfg.Cache.TTL)
}

// newClient creates an API client with common options
func (a *app) newClient(cfg *config.Config, log *zap.Logger) (*api.Client, error) {
	opts := []api.ClientOption{
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.API.Timeout),
		api.WithAttempts(cfg.API.Attempts),
		api.WithCredentials(cfg.API.AppID, cfg.API.AppKey),
		api.WithProbeURL(cfg.Probe.URL),
		api.WithProbeTimeout(cfg.Probe.Timeout),
		api.WithLogger(log),
	}

	if cfg.Cache.Enabled {
		fc, err := a.fileCache(cfg)
		if err != nil {
			log.Warn("stop point cache disabled", zap.Error(err))
		} else {
			opts = append(opts, api.WithCache(fc))
		}
	}

	client, err := api.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

func (a *app) newSource(cfg *config.Config, client *api.Client) scheduler.RequestSource {
	if cfg.Station.SourceURL != "" {
		return station.NewHTTPSource(client, cfg.Station.SourceURL)
	}
	return station.NewStaticSource(cfg.Station.Name, cfg.Station.Direction)
}

func (a *app) newResolver(cfg *config.Config, client *api.Client, log *zap.Logger) *station.Resolver {
	return station.NewResolver(client, station.WithMode(cfg.Station.Mode), station.WithLogger(log))
}

// resolve reads the requested station once and resolves it
func (a *app) resolve(ctx context.Context, cfg *config.Config, client *api.Client, log *zap.Logger) (models.Station, error) {
	q, err := a.newSource(cfg, client).Current(ctx)
	if err != nil {
		return models.Station{}, fmt.Errorf("failed to read station request: %w", err)
	}
	return a.newResolver(cfg, client, log).Resolve(ctx, q)
}

func (a *app) colors() *output.Colors {
	return output.NewColors(output.ParseColorMode(a.color))
}

func (a *app) boardOptions(cfg *config.Config) output.BoardOptions {
	return output.BoardOptions{
		Colors:   a.colors(),
		Width:    cfg.Display.Width,
		Rows:     cfg.Display.Rows,
		Location: cfg.Location(),
	}
}

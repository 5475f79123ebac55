// Package config loads the demo settings from config.yaml and TILEMAP_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"chosenoffset.com/tilemap/internal/logging"
	"chosenoffset.com/tilemap/internal/tilemap"
	"chosenoffset.com/tilemap/internal/tileset"
)

// EnvPrefix prefixes every environment override, e.g. TILEMAP_WINDOW_WIDTH.
const EnvPrefix = "TILEMAP"

// WindowConfig sizes the host window.
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// AtlasConfig points at a texture atlas searched before the built-in
// placeholder textures. An empty path uses the placeholders only.
type AtlasConfig struct {
	Path string `mapstructure:"path"`
}

// Config is the full demo configuration.
type Config struct {
	Window  WindowConfig         `mapstructure:"window"`
	Tilemap tilemap.Config       `mapstructure:"tilemap"`
	Source  tileset.SourceConfig `mapstructure:"source"`
	Atlas   AtlasConfig          `mapstructure:"atlas"`
	Log     logging.Config       `mapstructure:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Tile Map",
		},
		Tilemap: tilemap.DefaultConfig(),
		Source:  tileset.DefaultSourceConfig(),
		Log:     logging.DefaultConfig(),
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("window.width", def.Window.Width)
	v.SetDefault("window.height", def.Window.Height)
	v.SetDefault("window.title", def.Window.Title)

	v.SetDefault("tilemap.tile_size", def.Tilemap.TileSize)
	v.SetDefault("tilemap.zoom", def.Tilemap.Zoom)
	v.SetDefault("tilemap.zoom_rate", def.Tilemap.ZoomRate)
	v.SetDefault("tilemap.zoom_min", def.Tilemap.ZoomMin)
	v.SetDefault("tilemap.zoom_max", def.Tilemap.ZoomMax)
	v.SetDefault("tilemap.max_age", def.Tilemap.MaxAge)
	v.SetDefault("tilemap.clamp_origin", *def.Tilemap.ClampOrigin)

	v.SetDefault("source.seed", def.Source.Seed)
	v.SetDefault("source.latency", def.Source.Latency)
	v.SetDefault("source.num_counters", def.Source.NumCounters)
	v.SetDefault("source.max_cost", def.Source.MaxCost)

	v.SetDefault("atlas.path", def.Atlas.Path)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("log.max_age_days", def.Log.MaxAgeDays)
}

// Load reads the configuration. With an empty path, config.yaml in the
// working directory is used when present; an explicit path must exist.
// Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	return &cfg, nil
}

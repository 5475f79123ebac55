package tilemap

// Config holds the tunables of a Manager.
//
// A zero field means "unset" and takes the value from DefaultConfig, so zero
// itself is never a configurable value: a zero zoom or tile size cannot draw
// anything, and a MaxAge of 0 would evict every tile that scrolls out of view
// on the same tick. Negative values are rejected.
type Config struct {
	TileSize int     `mapstructure:"tile_size"` // Edge length of a tile in logical units; 0 means 16
	Zoom     float64 `mapstructure:"zoom"`      // Initial scale; 0 means 1.123142
	ZoomRate float64 `mapstructure:"zoom_rate"` // Multiplier per zoom step; 0 means 1.5
	ZoomMin  float64 `mapstructure:"zoom_min"`  // 0 means 1.0123
	ZoomMax  float64 `mapstructure:"zoom_max"`  // 0 means 50
	MaxAge   int     `mapstructure:"max_age"`   // Ticks off-screen before a tile is evicted; 0 means 100

	// ClampOrigin keeps the camera offset at or below zero on both axes, so
	// the view never scrolls past the top-left edge of the grid. nil means
	// true.
	ClampOrigin *bool `mapstructure:"clamp_origin"`
}

// DefaultConfig returns the stock tile map settings.
func DefaultConfig() Config {
	clamp := true
	return Config{
		TileSize:    16,
		Zoom:        1.123142,
		ZoomRate:    1.5,
		ZoomMin:     1.0123,
		ZoomMax:     50,
		MaxAge:      100,
		ClampOrigin: &clamp,
	}
}

// normalize fills zero values from DefaultConfig and rejects settings that
// cannot describe a tile map.
func (c Config) normalize() (Config, error) {
	def := DefaultConfig()

	if c.TileSize < 0 {
		return c, &ConfigurationError{Option: "tile_size", Reason: "must be positive"}
	}
	if c.TileSize == 0 {
		c.TileSize = def.TileSize
	}
	if c.MaxAge < 0 {
		return c, &ConfigurationError{Option: "max_age", Reason: "must not be negative"}
	}
	if c.MaxAge == 0 {
		c.MaxAge = def.MaxAge
	}
	if c.ZoomRate == 0 {
		c.ZoomRate = def.ZoomRate
	}
	if c.ZoomRate <= 1 {
		return c, &ConfigurationError{Option: "zoom_rate", Reason: "must be greater than 1"}
	}
	if c.ZoomMin == 0 {
		c.ZoomMin = def.ZoomMin
	}
	if c.ZoomMax == 0 {
		c.ZoomMax = def.ZoomMax
	}
	if c.ZoomMin < 0 || c.ZoomMax < 0 {
		return c, &ConfigurationError{Option: "zoom_min", Reason: "zoom bounds must be positive"}
	}
	if c.ZoomMin > c.ZoomMax {
		return c, &ConfigurationError{Option: "zoom_min", Reason: "must not exceed zoom_max"}
	}
	if c.Zoom < 0 {
		return c, &ConfigurationError{Option: "zoom", Reason: "must be positive"}
	}
	if c.Zoom == 0 {
		c.Zoom = def.Zoom
	}
	c.Zoom = clamp(c.Zoom, c.ZoomMin, c.ZoomMax)
	if c.ClampOrigin == nil {
		c.ClampOrigin = def.ClampOrigin
	}
	return c, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package atlas

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"chosenoffset.com/tilemap/internal/render"
)

// TileDefinition defines a single texture within an atlas
type TileDefinition struct {
	Name       string                 `json:"name"`       // Content name used by the tile map (e.g., "grass")
	AtlasX     int                    `json:"atlas_x"`    // X position in atlas (in tiles)
	AtlasY     int                    `json:"atlas_y"`    // Y position in atlas (in tiles)
	Properties map[string]interface{} `json:"properties"` // Custom properties (walkable, elevation, etc.)
}

// AtlasConfig defines the JSON configuration for a texture atlas
type AtlasConfig struct {
	Name       string           `json:"name"`
	ImagePath  string           `json:"image_path"` // Relative to the config file
	TileWidth  int              `json:"tile_width"` // Width of each texture in pixels
	TileHeight int              `json:"tile_height"`
	Tiles      []TileDefinition `json:"tiles"`
}

// Atlas is a loaded texture atlas. It implements render.TextureSource.
type Atlas struct {
	Config      *AtlasConfig
	Image       render.Image
	TilesByName map[string]*TileDefinition // Quick lookup by name

	subImages map[string]render.Image
}

// ParseConfig decodes and validates an atlas configuration.
func ParseConfig(data []byte) (*AtlasConfig, error) {
	var config AtlasConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse atlas config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *AtlasConfig) validate() error {
	if c.TileWidth <= 0 || c.TileHeight <= 0 {
		return fmt.Errorf("invalid tile dimensions: %dx%d", c.TileWidth, c.TileHeight)
	}
	seen := make(map[string]bool, len(c.Tiles))
	for i, tile := range c.Tiles {
		if tile.Name == "" {
			return fmt.Errorf("tile %d has no name", i)
		}
		if seen[tile.Name] {
			return fmt.Errorf("duplicate tile name: %s", tile.Name)
		}
		seen[tile.Name] = true
	}
	return nil
}

// LoadAtlas loads an atlas from a JSON configuration file
func LoadAtlas(configPath string, loader render.ResourceLoader) (*Atlas, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read atlas config %s: %w", configPath, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	if config.ImagePath == "" {
		return nil, fmt.Errorf("image_path is required in atlas config")
	}

	imagePath := config.ImagePath
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(configPath), imagePath)
	}
	img, err := loader.LoadImage(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load atlas image %s: %w", imagePath, err)
	}

	return New(config, img)
}

// New builds an atlas from an already loaded image.
func New(config *AtlasConfig, img render.Image) (*Atlas, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	tilesByName := make(map[string]*TileDefinition, len(config.Tiles))
	for i := range config.Tiles {
		tile := &config.Tiles[i]
		tilesByName[tile.Name] = tile
	}

	return &Atlas{
		Config:      config,
		Image:       img,
		TilesByName: tilesByName,
		subImages:   make(map[string]render.Image, len(config.Tiles)),
	}, nil
}

// GetTile returns a tile definition by name
func (a *Atlas) GetTile(name string) (*TileDefinition, bool) {
	tile, ok := a.TilesByName[name]
	return tile, ok
}

// GetTileSubImage returns the sub-image for a specific tile
func (a *Atlas) GetTileSubImage(tile *TileDefinition) render.Image {
	x := tile.AtlasX * a.Config.TileWidth
	y := tile.AtlasY * a.Config.TileHeight
	w := a.Config.TileWidth
	h := a.Config.TileHeight

	rect := image.Rect(x, y, x+w, y+h)
	return a.Image.SubImage(rect)
}

// Texture returns the sub-image for name, cutting it from the atlas once.
func (a *Atlas) Texture(name string) (render.Image, bool) {
	if img, ok := a.subImages[name]; ok {
		return img, true
	}
	tile, ok := a.GetTile(name)
	if !ok {
		return nil, false
	}
	img := a.GetTileSubImage(tile)
	a.subImages[name] = img
	return img, true
}

// Names returns the tile names in definition order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.Config.Tiles))
	for _, tile := range a.Config.Tiles {
		names = append(names, tile.Name)
	}
	return names
}

// GetTileProperty retrieves a property from a tile definition
func (td *TileDefinition) GetTileProperty(key string) (interface{}, bool) {
	if td.Properties == nil {
		return nil, false
	}
	val, ok := td.Properties[key]
	return val, ok
}

// GetTilePropertyBool retrieves a boolean property
func (td *TileDefinition) GetTilePropertyBool(key string, defaultVal bool) bool {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	if boolVal, ok := val.(bool); ok {
		return boolVal
	}
	return defaultVal
}

// GetTilePropertyString retrieves a string property
func (td *TileDefinition) GetTilePropertyString(key string, defaultVal string) string {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	if strVal, ok := val.(string); ok {
		return strVal
	}
	return defaultVal
}

// GetTilePropertyInt retrieves an integer property
func (td *TileDefinition) GetTilePropertyInt(key string, defaultVal int) int {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64: // JSON numbers are float64
		return int(v)
	case int:
		return v
	}
	return defaultVal
}

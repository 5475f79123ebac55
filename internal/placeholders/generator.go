package placeholders

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"chosenoffset.com/tilemap/internal/atlas"
)

// TileSize is the pixel size of a placeholder texture
const TileSize = 16

// Terrain describes how one content name is painted and tagged.
type Terrain struct {
	Name     string
	Base     color.RGBA
	Accent   color.RGBA
	Pattern  string // "", "grid", "dots", "cross", "diagonal" or "border"
	Kind     string
	Walkable bool
	MoveCost int
}

// Terrains is the placeholder palette, one texture per content name the
// demo tile source can produce.
var Terrains = []Terrain{
	{Name: "water", Base: color.RGBA{40, 80, 160, 255}, Accent: color.RGBA{70, 120, 200, 255}, Pattern: "diagonal", Kind: "liquid"},
	{Name: "sand", Base: color.RGBA{220, 200, 140, 255}, Accent: color.RGBA{200, 180, 120, 255}, Pattern: "dots", Kind: "ground", Walkable: true, MoveCost: 2},
	{Name: "grass", Base: color.RGBA{70, 150, 60, 255}, Accent: color.RGBA{90, 175, 75, 255}, Pattern: "dots", Kind: "ground", Walkable: true, MoveCost: 1},
	{Name: "forest", Base: color.RGBA{30, 95, 40, 255}, Accent: color.RGBA{20, 70, 30, 255}, Pattern: "cross", Kind: "vegetation", Walkable: true, MoveCost: 3},
	{Name: "rock", Base: color.RGBA{120, 115, 110, 255}, Accent: color.RGBA{95, 90, 85, 255}, Pattern: "grid", Kind: "mountain"},
	{Name: "snow", Base: color.RGBA{235, 240, 245, 255}, Accent: color.RGBA{210, 220, 230, 255}, Pattern: "border", Kind: "mountain", Walkable: true, MoveCost: 4},
	{Name: "void", Base: color.RGBA{15, 12, 20, 255}, Kind: "void"},
}

// CreateSolidTile creates a simple solid-colored tile
func CreateSolidTile(col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
	return img
}

// CreateBorderedTile creates a tile with a border
func CreateBorderedTile(fillColor, borderColor color.RGBA, borderWidth int) *image.RGBA {
	img := CreateSolidTile(fillColor)

	for i := 0; i < borderWidth; i++ {
		for x := 0; x < TileSize; x++ {
			img.Set(x, i, borderColor)
			img.Set(x, TileSize-1-i, borderColor)
		}
		for y := 0; y < TileSize; y++ {
			img.Set(i, y, borderColor)
			img.Set(TileSize-1-i, y, borderColor)
		}
	}

	return img
}

// CreatePatternedTile creates a tile with a simple pattern
func CreatePatternedTile(baseColor, patternColor color.RGBA, pattern string) *image.RGBA {
	img := CreateSolidTile(baseColor)

	switch pattern {
	case "grid":
		for i := 0; i < TileSize; i += 4 {
			for x := 0; x < TileSize; x++ {
				img.Set(x, i, patternColor)
				img.Set(i, x, patternColor)
			}
		}
	case "dots":
		quarter := TileSize / 4
		threeQuarter := 3 * TileSize / 4
		for _, p := range []image.Point{{quarter, quarter}, {threeQuarter, quarter}, {quarter, threeQuarter}, {threeQuarter, threeQuarter}} {
			img.Set(p.X, p.Y, patternColor)
		}
	case "cross":
		mid := TileSize / 2
		for i := 2; i < TileSize-2; i++ {
			img.Set(mid, i, patternColor)
			img.Set(i, mid, patternColor)
		}
	case "diagonal":
		for i := 0; i < TileSize; i++ {
			img.Set(i, i, patternColor)
			img.Set(i, TileSize-1-i, patternColor)
		}
	case "border":
		return CreateBorderedTile(baseColor, patternColor, 1)
	}

	return img
}

// CreateAtlas lays tiles out left to right, top to bottom.
func CreateAtlas(tiles []*image.RGBA, columns int) *image.RGBA {
	rows := (len(tiles) + columns - 1) / columns
	sheet := image.NewRGBA(image.Rect(0, 0, columns*TileSize, rows*TileSize))

	for i, tile := range tiles {
		if tile == nil {
			continue
		}
		x := (i % columns) * TileSize
		y := (i / columns) * TileSize
		draw.Draw(sheet, image.Rect(x, y, x+TileSize, y+TileSize), tile, image.Point{}, draw.Src)
	}

	return sheet
}

// BuildAtlas paints every terrain into one sheet and returns it with the
// matching atlas configuration. The image path is left for the caller.
func BuildAtlas(columns int) (*image.RGBA, *atlas.AtlasConfig) {
	if columns <= 0 {
		columns = len(Terrains)
	}

	tiles := make([]*image.RGBA, 0, len(Terrains))
	config := &atlas.AtlasConfig{
		Name:       "terrain",
		TileWidth:  TileSize,
		TileHeight: TileSize,
	}
	for i, terrain := range Terrains {
		tiles = append(tiles, CreatePatternedTile(terrain.Base, terrain.Accent, terrain.Pattern))
		config.Tiles = append(config.Tiles, atlas.TileDefinition{
			Name:   terrain.Name,
			AtlasX: i % columns,
			AtlasY: i / columns,
			Properties: map[string]interface{}{
				"kind":      terrain.Kind,
				"walkable":  terrain.Walkable,
				"move_cost": terrain.MoveCost,
			},
		})
	}

	return CreateAtlas(tiles, columns), config
}

// GenerateAndSave writes terrain.png and terrain.json into dir.
func GenerateAndSave(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	sheet, config := BuildAtlas(4)
	config.ImagePath = "terrain.png"

	if err := SavePNG(sheet, filepath.Join(dir, config.ImagePath)); err != nil {
		return fmt.Errorf("failed to save atlas image: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode atlas config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "terrain.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to save atlas config: %w", err)
	}
	return nil
}

// SavePNG saves an image to a PNG file
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

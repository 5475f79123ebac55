package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"chosenoffset.com/tilemap/internal/atlas"
	"chosenoffset.com/tilemap/internal/config"
	"chosenoffset.com/tilemap/internal/game"
	"chosenoffset.com/tilemap/internal/logging"
	"chosenoffset.com/tilemap/internal/placeholders"
	"chosenoffset.com/tilemap/internal/render"
	ebitenrender "chosenoffset.com/tilemap/internal/render/ebiten"
	"chosenoffset.com/tilemap/internal/tilemap"
	"chosenoffset.com/tilemap/internal/tileset"
)

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

// run wires the tile map together and blocks until the window closes. Every
// deferred cleanup has run by the time it returns.
func run() error {
	configPath := pflag.StringP("config", "c", "", "path to config file (default: ./config.yaml if present)")
	atlasPaths := pflag.StringSlice("atlas", nil, "atlas JSON files to load, searched before the built-in placeholders")
	seed := pflag.Uint32("seed", 0, "terrain seed (overrides config)")
	pflag.Parse()

	// A missing .env is fine; real environment variables still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if pflag.CommandLine.Changed("seed") {
		cfg.Source.Seed = *seed
	}

	log, logFile, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logFile.Close()

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	loader := ebitenrender.NewResourceLoader()
	engine := ebitenrender.NewEngine()

	textures, err := loadTextures(append([]string{cfg.Atlas.Path}, *atlasPaths...), loader)
	if err != nil {
		return fmt.Errorf("failed to load atlas: %w", err)
	}
	log.WithFields(logrus.Fields{
		"atlases":  textures.Len(),
		"textures": len(textures.Names()),
	}).Info("atlas ready")

	g := game.New(renderer, inputMgr, textures, cfg.Window.Width, cfg.Window.Height, log)
	g.Tiles = textures

	m, err := tilemap.New(g, g.Layer, cfg.Tilemap, tilemap.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create tile map: %w", err)
	}

	source, err := tileset.NewSource(m, cfg.Source, log)
	if err != nil {
		return fmt.Errorf("failed to create tile source: %w", err)
	}
	defer source.Close()
	m.SetMissingTileHandler(source.Request)

	g.StartX, g.StartY = tileset.Side/2, tileset.Side/2
	g.Attach(m)

	// Set up the window
	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle(cfg.Window.Title)
	engine.SetWindowResizable(true)

	log.WithFields(logrus.Fields{
		"seed":  cfg.Source.Seed,
		"start": []int{g.StartX, g.StartY},
	}).Info("Starting tile map...")
	if err := engine.RunGame(g); err != nil && !errors.Is(err, game.ErrQuit) {
		log.WithError(err).Error("frame loop stopped")
		return err
	}
	log.Info("tile map closed")
	return nil
}

// loadTextures loads the atlases at paths and adds the placeholder atlas
// below them, so every terrain has a texture.
func loadTextures(paths []string, loader render.ResourceLoader) (*atlas.Manager, error) {
	textures := atlas.NewManager()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := textures.LoadAtlasConfig(path, loader); err != nil {
			return nil, err
		}
	}

	sheet, atlasConfig := placeholders.BuildAtlas(4)
	if _, exists := textures.GetAtlasByName(atlasConfig.Name); exists {
		return textures, nil
	}
	fallback, err := atlas.New(atlasConfig, loader.NewImageFromImage(sheet))
	if err != nil {
		return nil, err
	}
	if err := textures.RegisterAtlas(fallback); err != nil {
		return nil, err
	}
	return textures, nil
}

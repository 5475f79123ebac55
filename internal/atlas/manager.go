package atlas

import (
	"fmt"

	"chosenoffset.com/tilemap/internal/render"
)

// Manager stacks several atlases into one texture source. Earlier atlases
// win when two define the same tile name.
type Manager struct {
	atlases       []*Atlas
	atlasesByName map[string]*Atlas // Atlases organized by atlas name
}

// NewManager creates a new atlas manager
func NewManager() *Manager {
	return &Manager{
		atlasesByName: make(map[string]*Atlas),
	}
}

// LoadAtlasConfig loads an atlas from a config file and registers it
func (m *Manager) LoadAtlasConfig(configPath string, loader render.ResourceLoader) error {
	atlas, err := LoadAtlas(configPath, loader)
	if err != nil {
		return err
	}

	return m.RegisterAtlas(atlas)
}

// RegisterAtlas adds a loaded atlas below the ones already registered.
func (m *Manager) RegisterAtlas(atlas *Atlas) error {
	if atlas.Config.Name == "" {
		return fmt.Errorf("atlas name cannot be empty")
	}
	if existing, exists := m.atlasesByName[atlas.Config.Name]; exists {
		return fmt.Errorf("atlas %s already registered from %s", atlas.Config.Name, existing.Config.ImagePath)
	}

	m.atlases = append(m.atlases, atlas)
	m.atlasesByName[atlas.Config.Name] = atlas
	return nil
}

// GetAtlasByName returns an atlas by its name
func (m *Manager) GetAtlasByName(name string) (*Atlas, bool) {
	atlas, ok := m.atlasesByName[name]
	return atlas, ok
}

// GetTile retrieves a tile definition from the first atlas defining it.
func (m *Manager) GetTile(tileName string) (*TileDefinition, error) {
	for _, atlas := range m.atlases {
		if tile, ok := atlas.GetTile(tileName); ok {
			return tile, nil
		}
	}
	return nil, fmt.Errorf("tile %s not found in any atlas", tileName)
}

// Texture implements render.TextureSource.
func (m *Manager) Texture(name string) (render.Image, bool) {
	for _, atlas := range m.atlases {
		if img, ok := atlas.Texture(name); ok {
			return img, true
		}
	}
	return nil, false
}

// Names returns every tile name once, in lookup order.
func (m *Manager) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, atlas := range m.atlases {
		for _, name := range atlas.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Len returns the number of registered atlases.
func (m *Manager) Len() int {
	return len(m.atlases)
}

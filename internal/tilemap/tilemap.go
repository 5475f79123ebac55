// Package tilemap renders an unbounded grid of fixed-size tiles through a
// viewport. Only tiles inside the viewport are materialised; tiles that stay
// off-screen for too long are evicted, and tiles without data are reported to
// a host callback so their content can be supplied later with SetTile.
package tilemap

import (
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/tilemap/internal/render"
)

// centerBias nudges CenterTile off the exact half-tile boundary where
// GoToTile leaves the viewport center, so float noise cannot round it down.
const centerBias = 1e-9

// Screen reports the pixel size of the area the map is drawn into.
type Screen interface {
	ViewportSize() (width, height int)
}

// MissingTileFunc is called for every tile inside the viewport that has no
// content, once per tick, for as long as the content stays missing.
type MissingTileFunc func(x, y int)

// Option customises a Manager at construction.
type Option func(*Manager)

// WithMissingTileHandler installs the callback for tiles lacking content.
func WithMissingTileHandler(fn MissingTileFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onMissing = fn
		}
	}
}

// WithLogger sets the logger used by the manager and its default handler.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// Manager owns the coordinate to tile mapping, the camera and the tile
// lifecycle. All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	screen Screen
	layer  render.Container
	log    logrus.FieldLogger

	tileSize    int
	zoom        float64
	zoomRate    float64
	zoomMin     float64
	zoomMax     float64
	maxAge      int
	clampOrigin bool

	offsetX, offsetY float64
	tiles            map[Coord]*Tile
	onMissing        MissingTileFunc
}

// New builds a manager drawing into layer and sized by screen.
func New(screen Screen, layer render.Container, cfg Config, opts ...Option) (*Manager, error) {
	if screen == nil {
		return nil, &ConfigurationError{Option: "renderer", Reason: "a screen reporting the viewport size is required"}
	}
	if layer == nil {
		return nil, &ConfigurationError{Option: "layer", Reason: "a sprite container is required"}
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		screen:      screen,
		layer:       layer,
		log:         logrus.StandardLogger(),
		tileSize:    cfg.TileSize,
		zoom:        cfg.Zoom,
		zoomRate:    cfg.ZoomRate,
		zoomMin:     cfg.ZoomMin,
		zoomMax:     cfg.ZoomMax,
		maxAge:      cfg.MaxAge,
		clampOrigin: *cfg.ClampOrigin,
		tiles:       make(map[Coord]*Tile),
	}
	m.onMissing = m.logMissing
	for _, opt := range opts {
		opt(m)
	}

	m.layer.SetScale(m.zoom)
	m.layer.SetPosition(m.offsetX, m.offsetY)

	m.log.WithFields(logrus.Fields{
		"tile_size": m.tileSize,
		"zoom":      m.zoom,
		"max_age":   m.maxAge,
	}).Debug("tile map created")
	return m, nil
}

// SetMissingTileHandler replaces the missing tile callback. A nil handler
// restores the default, which only logs.
func (m *Manager) SetMissingTileHandler(fn MissingTileFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		fn = m.logMissing
	}
	m.onMissing = fn
}

func (m *Manager) logMissing(x, y int) {
	m.log.WithFields(logrus.Fields{"x": x, "y": y}).Debug("tile data missing")
}

// GetTile returns the tile at (x, y), creating and registering it if needed.
func (m *Manager) GetTile(x, y int) *Tile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getTileLocked(x, y)
}

// Lookup returns the tile at (x, y) only if it is currently registered.
func (m *Manager) Lookup(x, y int) (*Tile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tiles[Coord{x, y}]
	return t, ok
}

// Content returns the content of the tile at (x, y) without registering it.
// ok is false for unregistered tiles and tiles still waiting for data.
func (m *Manager) Content(x, y int) (content string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, found := m.tiles[Coord{x, y}]; found && t.content != "" {
		return t.content, true
	}
	return "", false
}

// SetTile assigns content to the tile at (x, y). The sprite picks it up on
// the next tick that finds the tile inside the viewport.
func (m *Manager) SetTile(x, y int, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.getTileLocked(x, y)
	t.content = content
	t.dirty = true
}

func (m *Manager) getTileLocked(x, y int) *Tile {
	c := Coord{x, y}
	if t, ok := m.tiles[c]; ok {
		return t
	}

	size := float64(m.tileSize)
	sp := m.layer.NewSprite()
	sp.SetSize(size, size)
	sp.SetPosition(float64(x)*size, float64(y)*size)
	sp.SetVisible(false)

	t := &Tile{coord: c, dirty: true, sprite: sp}
	m.tiles[c] = t
	m.layer.AddChild(sp)
	return t
}

func (m *Manager) evictLocked(t *Tile) {
	delete(m.tiles, t.coord)
	m.layer.RemoveChild(t.sprite)
}

// Tick advances the tile lifecycle by one frame: every tile ages and is
// hidden, stale tiles are evicted, then the tiles covering the viewport are
// spawned, reset and shown. Tiles without content are reported to the
// missing tile handler after the manager lock is released, so the handler
// may call back into the manager.
func (m *Manager) Tick() {
	m.mu.Lock()

	evicted := 0
	for _, t := range m.tiles {
		t.visible = false
		t.sprite.SetVisible(false)
		t.age++
		if t.age > m.maxAge {
			m.evictLocked(t)
			evicted++
		}
	}

	var missing []Coord
	for _, t := range m.tilesInViewportLocked() {
		t.age = 0
		if t.content == "" {
			missing = append(missing, t.coord)
			continue
		}
		t.visible = true
		t.sprite.SetVisible(true)
		if t.dirty {
			t.sprite.SetTexture(t.content)
			t.dirty = false
		}
	}

	handler := m.onMissing
	if evicted > 0 {
		m.log.WithFields(logrus.Fields{"evicted": evicted, "tiles": len(m.tiles)}).Trace("tiles evicted")
	}
	m.mu.Unlock()

	for _, c := range missing {
		handler(c.X, c.Y)
	}
}

// TilesInViewport returns the tiles covering the viewport, creating any that
// are not registered yet. The set is a rectangle one tile wider and taller
// than the viewport needs, ordered column by column.
func (m *Manager) TilesInViewport() []*Tile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tilesInViewportLocked()
}

func (m *Manager) tilesInViewportLocked() []*Tile {
	s := m.tilePx()
	w, h := m.viewportSize()

	horiz := int(math.Ceil(w/s)) + 1
	verti := int(math.Ceil(h/s)) + 1
	startX := int(math.Floor(-m.offsetX / s))
	startY := int(math.Floor(-m.offsetY / s))

	tiles := make([]*Tile, 0, horiz*verti)
	for i := 0; i < horiz; i++ {
		for j := 0; j < verti; j++ {
			tiles = append(tiles, m.getTileLocked(startX+i, startY+j))
		}
	}
	return tiles
}

// ZoomIn scales the map up by one step, keeping the center tile in place.
func (m *Manager) ZoomIn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setZoomLocked(m.zoom * m.zoomRate)
}

// ZoomOut scales the map down by one step, keeping the center tile in place.
func (m *Manager) ZoomOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setZoomLocked(m.zoom / m.zoomRate)
}

func (m *Manager) setZoomLocked(zoom float64) {
	cx, cy := m.centerTileLocked()
	m.zoom = clamp(zoom, m.zoomMin, m.zoomMax)
	m.layer.SetScale(m.zoom)
	m.goToTileLocked(cx, cy)
}

// CenterTile returns the grid coordinate at the center of the viewport.
func (m *Manager) CenterTile() (x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.centerTileLocked()
}

func (m *Manager) centerTileLocked() (x, y int) {
	s := m.tilePx()
	w, h := m.viewportSize()
	x = int(math.Round(-m.offsetX/s + (w/2)/s + centerBias))
	y = int(math.Round(-m.offsetY/s + (h/2)/s + centerBias))
	return x, y
}

// GoToTile moves the camera so that tile (x, y) sits at the viewport center.
func (m *Manager) GoToTile(x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goToTileLocked(x, y)
}

func (m *Manager) goToTileLocked(x, y int) {
	s := m.tilePx()
	w, h := m.viewportSize()
	m.offsetX = w/2 - (float64(x)*s - s/2)
	m.offsetY = h/2 - (float64(y)*s - s/2)
	m.applyOffsetLocked()
}

// Pan moves the camera by (dx, dy) screen pixels. Positive values move the
// grid right and down.
func (m *Manager) Pan(dx, dy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsetX += dx
	m.offsetY += dy
	m.applyOffsetLocked()
}

// SetOffset places the grid origin at screen pixel (x, y).
func (m *Manager) SetOffset(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsetX, m.offsetY = x, y
	m.applyOffsetLocked()
}

// Offset returns the screen position of the grid origin.
func (m *Manager) Offset() (x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offsetX, m.offsetY
}

func (m *Manager) applyOffsetLocked() {
	if m.clampOrigin {
		m.offsetX = math.Min(m.offsetX, 0)
		m.offsetY = math.Min(m.offsetY, 0)
	}
	m.layer.SetPosition(m.offsetX, m.offsetY)
}

// Zoom returns the current scale.
func (m *Manager) Zoom() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom
}

// TileSize returns the tile edge length in logical units.
func (m *Manager) TileSize() int {
	return m.tileSize
}

// Len returns the number of registered tiles.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tiles)
}

func (m *Manager) tilePx() float64 {
	return float64(m.tileSize) * m.zoom
}

func (m *Manager) viewportSize() (w, h float64) {
	iw, ih := m.screen.ViewportSize()
	return math.Max(float64(iw), 0), math.Max(float64(ih), 0)
}

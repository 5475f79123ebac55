package tilemap

import (
	"errors"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"chosenoffset.com/tilemap/internal/render"
)

type fakeScreen struct {
	w, h int
}

func (s fakeScreen) ViewportSize() (int, int) { return s.w, s.h }

func boolPtr(b bool) *bool { return &b }

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestManager(t *testing.T, w, h int, cfg Config, opts ...Option) (*Manager, *render.Layer) {
	t.Helper()
	layer := render.NewLayer()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	m, err := New(fakeScreen{w, h}, layer, cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m, layer
}

// unitConfig is a 16 unit tile at zoom 1 with bounds wide enough for tests.
func unitConfig() Config {
	return Config{TileSize: 16, Zoom: 1, ZoomMin: 0.5, ZoomMax: 50}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, render.NewLayer(), Config{})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError for missing screen, got %v", err)
	}
	if cfgErr.Option != "renderer" {
		t.Errorf("Expected option 'renderer', got '%s'", cfgErr.Option)
	}

	_, err = New(fakeScreen{400, 300}, nil, Config{})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError for missing layer, got %v", err)
	}
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "zero value takes defaults", cfg: Config{}},
		{name: "negative tile size", cfg: Config{TileSize: -1}, wantErr: "tile_size"},
		{name: "negative max age", cfg: Config{MaxAge: -5}, wantErr: "max_age"},
		{name: "rate not growing", cfg: Config{ZoomRate: 0.5}, wantErr: "zoom_rate"},
		{name: "inverted bounds", cfg: Config{ZoomMin: 10, ZoomMax: 2}, wantErr: "zoom_min"},
		{name: "negative zoom", cfg: Config{Zoom: -1}, wantErr: "zoom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.normalize()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigurationError, got %v", err)
			}
			if cfgErr.Option != tt.wantErr {
				t.Errorf("Expected option '%s', got '%s'", tt.wantErr, cfgErr.Option)
			}
		})
	}

	got, err := Config{}.normalize()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), got); diff != "" {
		t.Errorf("zero config mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroFieldsTakeDefaults(t *testing.T) {
	off := false
	got, err := Config{TileSize: 32, ZoomMax: 4, ClampOrigin: &off}.normalize()
	if err != nil {
		t.Fatal(err)
	}

	def := DefaultConfig()
	want := Config{
		TileSize:    32,
		Zoom:        def.Zoom,
		ZoomRate:    def.ZoomRate,
		ZoomMin:     def.ZoomMin,
		ZoomMax:     4,
		MaxAge:      def.MaxAge,
		ClampOrigin: &off,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalized config mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialZoomIsClamped(t *testing.T) {
	m, layer := newTestManager(t, 400, 300, Config{Zoom: 200, ZoomMin: 1, ZoomMax: 8})
	if m.Zoom() != 8 {
		t.Errorf("Expected zoom clamped to 8, got %v", m.Zoom())
	}
	if layer.Scale() != 8 {
		t.Errorf("Expected layer scale 8, got %v", layer.Scale())
	}
}

func TestGetTileIsStable(t *testing.T) {
	m, layer := newTestManager(t, 400, 300, unitConfig())

	first := m.GetTile(3, 4)
	second := m.GetTile(3, 4)
	if first != second {
		t.Fatal("GetTile returned a different tile for the same coordinate")
	}
	if m.Len() != 1 || layer.Len() != 1 {
		t.Errorf("Expected one registered tile, got map=%d layer=%d", m.Len(), layer.Len())
	}

	x, y := first.Sprite().Position()
	if x != 48 || y != 64 {
		t.Errorf("Expected sprite at (48, 64), got (%v, %v)", x, y)
	}
	if first.Age() != 0 || first.Content() != "" || !first.Dirty() || first.Visible() {
		t.Errorf("Unexpected fresh tile state: age=%d content=%q dirty=%v visible=%v",
			first.Age(), first.Content(), first.Dirty(), first.Visible())
	}
	if _, ok := m.Lookup(9, 9); ok {
		t.Error("Lookup must not create tiles")
	}
}

func TestContentDoesNotRegister(t *testing.T) {
	m, _ := newTestManager(t, 400, 300, unitConfig())

	if _, ok := m.Content(5, 5); ok {
		t.Error("Expected no content for an unknown tile")
	}
	if m.Len() != 0 {
		t.Errorf("Content must not register tiles, got %d", m.Len())
	}

	m.GetTile(6, 6)
	if _, ok := m.Content(6, 6); ok {
		t.Error("Expected no content for a tile waiting for data")
	}

	m.SetTile(6, 6, "sand")
	if got, ok := m.Content(6, 6); !ok || got != "sand" {
		t.Errorf("Expected content 'sand', got %q (ok=%v)", got, ok)
	}
}

func TestTilesInViewportCoversScreen(t *testing.T) {
	m, _ := newTestManager(t, 400, 300, unitConfig())

	tiles := m.TilesInViewport()
	if len(tiles) != 26*20 {
		t.Fatalf("Expected 520 tiles, got %d", len(tiles))
	}

	var want, got []Coord
	for x := 0; x < 26; x++ {
		for y := 0; y < 20; y++ {
			want = append(want, Coord{x, y})
		}
	}
	for _, tile := range tiles {
		got = append(got, tile.Coord())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("covering set mismatch (-want +got):\n%s", diff)
	}
}

func TestTilesInViewportOrigin(t *testing.T) {
	tests := []struct {
		name         string
		clamp        bool
		offX, offY   float64
		wantX, wantY int
	}{
		{name: "origin", clamp: true, wantX: 0, wantY: 0},
		{name: "partial scroll", clamp: true, offX: -40, offY: -33, wantX: 2, wantY: 2},
		{name: "exact tile boundary", clamp: true, offX: -32, offY: -160, wantX: 2, wantY: 10},
		{name: "clamped positive offset", clamp: true, offX: 20, offY: 50, wantX: 0, wantY: 0},
		{name: "unclamped positive offset", clamp: false, offX: 20, offY: 50, wantX: -2, wantY: -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := unitConfig()
			cfg.ClampOrigin = boolPtr(tt.clamp)
			m, _ := newTestManager(t, 64, 64, cfg)
			m.SetOffset(tt.offX, tt.offY)

			tiles := m.TilesInViewport()
			if len(tiles) != 25 {
				t.Fatalf("Expected 5x5 tiles, got %d", len(tiles))
			}
			want := Coord{tt.wantX, tt.wantY}
			if got := tiles[0].Coord(); got != want {
				t.Errorf("Expected first tile %v, got %v", want, got)
			}
			if got := tiles[len(tiles)-1].Coord(); got != (Coord{want.X + 4, want.Y + 4}) {
				t.Errorf("Expected last tile %v, got %v", Coord{want.X + 4, want.Y + 4}, got)
			}
		})
	}
}

func TestSetTileAppliedOnNextVisibleTick(t *testing.T) {
	m, _ := newTestManager(t, 400, 300, unitConfig())

	m.SetTile(3, 3, "grass")
	m.SetTile(100, 100, "rock")

	grass, _ := m.Lookup(3, 3)
	if grass.Sprite().Texture() != "" {
		t.Fatal("Content must not be applied before a tick")
	}

	m.Tick()

	if grass.Dirty() {
		t.Error("Expected dirty flag cleared after a visible tick")
	}
	if !grass.Visible() || !grass.Sprite().Visible() {
		t.Error("Expected tile with content to be visible")
	}
	if grass.Sprite().Texture() != "grass" {
		t.Errorf("Expected texture 'grass', got '%s'", grass.Sprite().Texture())
	}

	rock, ok := m.Lookup(100, 100)
	if !ok {
		t.Fatal("Off-screen tile should still be registered")
	}
	if !rock.Dirty() || rock.Visible() || rock.Sprite().Texture() != "" {
		t.Error("Off-screen tile must keep its pending content")
	}

	m.SetTile(3, 3, "sand")
	m.Tick()
	if grass.Sprite().Texture() != "sand" {
		t.Errorf("Expected texture 'sand' after update, got '%s'", grass.Sprite().Texture())
	}
}

func TestTickResetsAgeOfViewportTiles(t *testing.T) {
	m, _ := newTestManager(t, 400, 300, unitConfig())
	off := m.GetTile(500, 500)

	for i := 0; i < 4; i++ {
		m.Tick()
	}

	for _, tile := range m.TilesInViewport() {
		if tile.Age() != 0 {
			t.Fatalf("Tile %v has age %d after tick", tile.Coord(), tile.Age())
		}
	}
	if off.Age() != 4 {
		t.Errorf("Expected off-screen tile age 4, got %d", off.Age())
	}
}

func TestTickEvictsStaleTiles(t *testing.T) {
	cfg := unitConfig()
	cfg.MaxAge = 5
	m, layer := newTestManager(t, 32, 32, cfg)

	stale := m.GetTile(10, 10)
	for i := 0; i < cfg.MaxAge; i++ {
		m.Tick()
	}
	if _, ok := m.Lookup(10, 10); !ok {
		t.Fatalf("Tile evicted after only %d ticks", cfg.MaxAge)
	}

	m.Tick()
	if _, ok := m.Lookup(10, 10); ok {
		t.Fatalf("Tile still registered after %d ticks", cfg.MaxAge+1)
	}
	if layer.Contains(stale.Sprite()) {
		t.Error("Evicted tile sprite still in layer")
	}
	if m.Len() != layer.Len() {
		t.Errorf("Map and layer out of step: map=%d layer=%d", m.Len(), layer.Len())
	}

	fresh := m.GetTile(10, 10)
	if fresh == stale {
		t.Error("Expected a new tile after eviction")
	}
	if fresh.Age() != 0 {
		t.Errorf("Expected fresh tile age 0, got %d", fresh.Age())
	}
}

func TestEvictedTileRespawnsInSameTick(t *testing.T) {
	cfg := unitConfig()
	cfg.MaxAge = 3
	var missing []Coord
	m, layer := newTestManager(t, 32, 32, cfg, WithMissingTileHandler(func(x, y int) {
		missing = append(missing, Coord{x, y})
	}))

	m.SetTile(0, 0, "grass")
	m.Tick()
	old, _ := m.Lookup(0, 0)

	m.SetOffset(-1600, -1600)
	for i := 0; i < cfg.MaxAge; i++ {
		m.Tick()
	}
	if old.Age() != cfg.MaxAge {
		t.Fatalf("Expected age %d before return, got %d", cfg.MaxAge, old.Age())
	}

	m.SetOffset(0, 0)
	missing = nil
	m.Tick()

	respawned, ok := m.Lookup(0, 0)
	if !ok {
		t.Fatal("Expected tile to be re-created in the same tick")
	}
	if respawned == old {
		t.Fatal("Expected a new tile, got the evicted one")
	}
	if respawned.Age() != 0 || respawned.Content() != "" {
		t.Errorf("Respawned tile not reset: age=%d content=%q", respawned.Age(), respawned.Content())
	}
	if len(missing) == 0 || missing[0] != (Coord{0, 0}) {
		t.Errorf("Expected (0,0) reported missing first, got %v", missing)
	}
	if layer.Contains(old.Sprite()) {
		t.Error("Old sprite still in layer")
	}
	if m.Len() != layer.Len() {
		t.Errorf("Map and layer out of step: map=%d layer=%d", m.Len(), layer.Len())
	}
}

func TestMissingTileReportedEveryTick(t *testing.T) {
	counts := make(map[Coord]int)
	m, _ := newTestManager(t, 32, 32, unitConfig(), WithMissingTileHandler(func(x, y int) {
		counts[Coord{x, y}]++
	}))

	for i := 0; i < 3; i++ {
		m.Tick()
	}

	if len(counts) != 9 {
		t.Fatalf("Expected 9 distinct missing tiles, got %d", len(counts))
	}
	for c, n := range counts {
		if n != 3 {
			t.Errorf("Expected %v reported 3 times, got %d", c, n)
		}
	}

	m.SetTile(1, 1, "grass")
	m.Tick()
	if counts[Coord{1, 1}] != 3 {
		t.Errorf("Tile with content must not be reported, count=%d", counts[Coord{1, 1}])
	}
}

func TestHandlerMayCallSetTile(t *testing.T) {
	var m *Manager
	calls := 0
	m, _ = newTestManager(t, 32, 32, unitConfig(), WithMissingTileHandler(func(x, y int) {
		calls++
		m.SetTile(x, y, "sand")
	}))

	m.Tick()
	if calls != 9 {
		t.Fatalf("Expected 9 handler calls, got %d", calls)
	}

	m.Tick()
	if calls != 9 {
		t.Errorf("Expected no further calls once content arrived, got %d", calls)
	}
	tile, _ := m.Lookup(2, 2)
	if tile.Sprite().Texture() != "sand" || !tile.Visible() {
		t.Error("Expected content supplied by handler to be shown")
	}
}

func TestSetMissingTileHandler(t *testing.T) {
	m, _ := newTestManager(t, 16, 16, unitConfig())
	calls := 0
	m.SetMissingTileHandler(func(x, y int) { calls++ })
	m.Tick()
	if calls != 4 {
		t.Errorf("Expected 4 calls, got %d", calls)
	}

	m.SetMissingTileHandler(nil)
	m.Tick()
	if calls != 4 {
		t.Errorf("Default handler should replace the custom one, got %d calls", calls)
	}
}

func TestZoomRoundTrip(t *testing.T) {
	cfg := unitConfig()
	cfg.Zoom = 2
	m, layer := newTestManager(t, 400, 300, cfg)
	m.GoToTile(40, 40)

	m.ZoomIn()
	if math.Abs(m.Zoom()-3) > 1e-9 {
		t.Errorf("Expected zoom 3 after zoom in, got %v", m.Zoom())
	}
	if layer.Scale() != m.Zoom() {
		t.Errorf("Layer scale %v does not follow zoom %v", layer.Scale(), m.Zoom())
	}

	m.ZoomOut()
	if math.Abs(m.Zoom()-2) > 1e-9 {
		t.Errorf("Expected zoom back at 2, got %v", m.Zoom())
	}
}

func TestZoomIsClamped(t *testing.T) {
	cfg := unitConfig()
	cfg.ZoomMin = 0.75
	cfg.ZoomMax = 20
	m, _ := newTestManager(t, 400, 300, cfg)

	for i := 0; i < 30; i++ {
		m.ZoomIn()
		if m.Zoom() > cfg.ZoomMax {
			t.Fatalf("Zoom %v exceeded max %v", m.Zoom(), cfg.ZoomMax)
		}
	}
	if m.Zoom() != cfg.ZoomMax {
		t.Errorf("Expected zoom to settle at %v, got %v", cfg.ZoomMax, m.Zoom())
	}

	for i := 0; i < 30; i++ {
		m.ZoomOut()
		if m.Zoom() < cfg.ZoomMin {
			t.Fatalf("Zoom %v fell below min %v", m.Zoom(), cfg.ZoomMin)
		}
	}
	if m.Zoom() != cfg.ZoomMin {
		t.Errorf("Expected zoom to settle at %v, got %v", cfg.ZoomMin, m.Zoom())
	}
}

func TestGoToTileCenters(t *testing.T) {
	tests := []struct {
		name  string
		zoom  float64
		clamp bool
		x, y  int
	}{
		{name: "far from origin", zoom: 1, clamp: true, x: 50, y: 40},
		{name: "fractional zoom", zoom: 1.123142, clamp: true, x: 73, y: 19},
		{name: "large zoom", zoom: 13.5, clamp: true, x: 7, y: 300},
		{name: "origin unclamped", zoom: 1, clamp: false, x: 0, y: 0},
		{name: "negative unclamped", zoom: 2.25, clamp: false, x: -3, y: -9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := unitConfig()
			cfg.Zoom = tt.zoom
			cfg.ClampOrigin = boolPtr(tt.clamp)
			m, _ := newTestManager(t, 400, 300, cfg)

			m.GoToTile(tt.x, tt.y)
			x, y := m.CenterTile()
			if x != tt.x || y != tt.y {
				t.Errorf("GoToTile(%d, %d) then CenterTile() = (%d, %d)", tt.x, tt.y, x, y)
			}
		})
	}
}

func TestGoToTileClampsAtOrigin(t *testing.T) {
	m, layer := newTestManager(t, 400, 300, unitConfig())
	m.GoToTile(1, 1)

	x, y := m.Offset()
	if x != 0 || y != 0 {
		t.Errorf("Expected offset clamped to (0, 0), got (%v, %v)", x, y)
	}
	lx, ly := layer.Position()
	if lx != x || ly != y {
		t.Errorf("Layer position (%v, %v) does not follow offset", lx, ly)
	}
}

func TestZoomKeepsCenterTile(t *testing.T) {
	m, _ := newTestManager(t, 400, 300, unitConfig())
	m.GoToTile(120, 80)

	for _, step := range []func(){m.ZoomIn, m.ZoomIn, m.ZoomOut, m.ZoomIn, m.ZoomOut, m.ZoomOut} {
		step()
		x, y := m.CenterTile()
		if x != 120 || y != 80 {
			t.Fatalf("Center drifted to (%d, %d) at zoom %v", x, y, m.Zoom())
		}
	}
}

func TestPan(t *testing.T) {
	m, _ := newTestManager(t, 64, 64, unitConfig())

	m.Pan(-40, -20)
	x, y := m.Offset()
	if x != -40 || y != -20 {
		t.Errorf("Expected offset (-40, -20), got (%v, %v)", x, y)
	}

	m.Pan(100, 100)
	x, y = m.Offset()
	if x != 0 || y != 0 {
		t.Errorf("Expected pan past origin to clamp, got (%v, %v)", x, y)
	}
}

func TestConcurrentSetTile(t *testing.T) {
	m, layer := newTestManager(t, 128, 128, unitConfig())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				m.SetTile(i%8, w, "grass")
			}
		}(w)
	}
	for i := 0; i < 50; i++ {
		m.Tick()
	}
	wg.Wait()
	m.Tick()

	for x := 0; x < 8; x++ {
		for y := 0; y < 4; y++ {
			tile, ok := m.Lookup(x, y)
			if !ok || tile.Sprite().Texture() != "grass" {
				t.Fatalf("Tile (%d, %d) not filled", x, y)
			}
		}
	}
	if m.Len() != layer.Len() {
		t.Errorf("Map and layer out of step: map=%d layer=%d", m.Len(), layer.Len())
	}
}

// Package game hosts the tile map in a render loop: it turns input into
// camera moves, ticks the map once per frame and draws the result.
package game

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/tilemap/internal/atlas"
	"chosenoffset.com/tilemap/internal/render"
	"chosenoffset.com/tilemap/internal/tilemap"
)

// ErrQuit is returned from Update when the player asks to leave.
var ErrQuit = errors.New("game: quit")

// DefaultPanSpeed is the camera speed in screen pixels per frame.
const DefaultPanSpeed = 6.0

// TileInfo looks up the atlas definition of a content name.
// *atlas.Manager satisfies it.
type TileInfo interface {
	GetTile(name string) (*atlas.TileDefinition, error)
}

// Game holds the host state around a tile map. It implements render.Game
// and tilemap.Screen.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Layer        *render.Layer
	Textures     render.TextureSource
	Map          *tilemap.Manager
	Tiles        TileInfo // Optional; adds the center tile's properties to the HUD

	PanSpeed       float64
	StartX, StartY int // Tile the camera returns to on Home
	Background     color.Color
	ShowDebug      bool

	// UI state
	Messages []Message

	// Pointer drag
	dragging     bool
	dragX, dragY int

	log logrus.FieldLogger
}

// New creates a game drawing the returned layer. Attach a tile map built
// on that layer before running it.
func New(r render.Renderer, input render.InputManager, textures render.TextureSource, width, height int, log logrus.FieldLogger) *Game {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Game{
		ScreenWidth:  width,
		ScreenHeight: height,
		Renderer:     r,
		InputMgr:     input,
		Layer:        render.NewLayer(),
		Textures:     textures,
		PanSpeed:     DefaultPanSpeed,
		Background:   color.RGBA{20, 20, 28, 255},
		ShowDebug:    true,
		log:          log,
	}
}

// Attach sets the tile map and centers the camera on the start tile.
func (g *Game) Attach(m *tilemap.Manager) {
	g.Map = m
	m.GoToTile(g.StartX, g.StartY)
}

// ViewportSize reports the logical screen size to the tile map.
func (g *Game) ViewportSize() (width, height int) {
	return g.ScreenWidth, g.ScreenHeight
}

// Update handles input and advances the tile map by one tick.
func (g *Game) Update() error {
	// Delta time for timers (assuming 60 FPS)
	dt := 1.0 / 60.0
	g.updateMessages(dt)

	if g.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		return ErrQuit
	}
	if g.InputMgr.IsKeyJustPressed(render.KeySpace) {
		g.ShowDebug = !g.ShowDebug
	}
	if g.Map == nil {
		return nil
	}

	g.handleCamera()
	g.Map.Tick()
	return nil
}

func (g *Game) handleCamera() {
	// Moving the camera right slides the grid left.
	var dx, dy float64
	if g.InputMgr.IsKeyPressed(render.KeyA) || g.InputMgr.IsKeyPressed(render.KeyLeft) {
		dx += g.PanSpeed
	}
	if g.InputMgr.IsKeyPressed(render.KeyD) || g.InputMgr.IsKeyPressed(render.KeyRight) {
		dx -= g.PanSpeed
	}
	if g.InputMgr.IsKeyPressed(render.KeyW) || g.InputMgr.IsKeyPressed(render.KeyUp) {
		dy += g.PanSpeed
	}
	if g.InputMgr.IsKeyPressed(render.KeyS) || g.InputMgr.IsKeyPressed(render.KeyDown) {
		dy -= g.PanSpeed
	}
	// Dragging moves the grid with the cursor.
	if g.InputMgr.IsMouseButtonPressed(render.MouseButtonLeft) || g.InputMgr.IsMouseButtonPressed(render.MouseButtonMiddle) {
		x, y := g.InputMgr.CursorPosition()
		if g.dragging {
			dx += float64(x - g.dragX)
			dy += float64(y - g.dragY)
		}
		g.dragging, g.dragX, g.dragY = true, x, y
	} else {
		g.dragging = false
	}

	if dx != 0 || dy != 0 {
		g.Map.Pan(dx, dy)
	}

	_, wheel := g.InputMgr.Wheel()
	switch {
	case g.InputMgr.IsKeyJustPressed(render.KeyEqual) || wheel > 0:
		g.Map.ZoomIn()
		g.log.WithField("zoom", g.Map.Zoom()).Debug("zoom in")
	case g.InputMgr.IsKeyJustPressed(render.KeyMinus) || wheel < 0:
		g.Map.ZoomOut()
		g.log.WithField("zoom", g.Map.Zoom()).Debug("zoom out")
	}

	if g.InputMgr.IsKeyJustPressed(render.KeyHome) {
		g.Map.GoToTile(g.StartX, g.StartY)
		g.ShowMessage(fmt.Sprintf("Back to tile (%d, %d)", g.StartX, g.StartY))
	}
}

// Layout tracks the window size so the viewport follows resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.ScreenWidth, g.ScreenHeight = outsideWidth, outsideHeight
	}
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})
	g.log.WithField("message", text).Info("message shown")
}

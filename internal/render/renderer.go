// Package render is the backend-neutral drawing surface used by the tile map
// and its host. A backend (see render/ebiten) provides the implementations.
package render

import (
	"image"
	"image/color"
)

// Renderer draws overlays that are not sprites: markers and text.
type Renderer interface {
	StrokeCircle(dst Image, x, y, radius float32, strokeWidth float32, clr color.Color)

	// Text operations
	DrawText(dst Image, text string, x, y int, clr color.Color, scale float64)
	MeasureText(text string, scale float64) (width, height int)
}

// Image is a drawable surface or a texture.
type Image interface {
	Size() (width, height int)

	// SubImage shares pixels with the parent; atlases cut textures with it.
	SubImage(r image.Rectangle) Image

	Fill(clr color.Color)
	DrawImage(src Image, opts *DrawImageOptions)
}

// DrawImageOptions contains options for drawing an image.
type DrawImageOptions struct {
	GeoM GeoM
}

// GeoM is an affine transform built up by successive operations.
type GeoM interface {
	Translate(tx, ty float64)
	Scale(sx, sy float64)
}

// NewGeoM creates an identity transform. The backend sets it.
var NewGeoM func() GeoM

// InputManager reports keyboard and pointer state for the current frame.
type InputManager interface {
	IsKeyPressed(key Key) bool
	IsKeyJustPressed(key Key) bool
	CursorPosition() (x, y int)
	IsMouseButtonPressed(button MouseButton) bool
	// Wheel returns the mouse wheel movement since the last frame.
	Wheel() (x, y float64)
}

// Key represents a keyboard key.
type Key int

// Keys the host reacts to.
const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEqual // Zoom in
	KeyMinus // Zoom out
	KeyHome  // Back to the start tile
	KeySpace
	KeyEscape
)

// MouseButton represents a mouse button.
type MouseButton int

// Buttons that drag the map.
const (
	MouseButtonLeft MouseButton = iota
	MouseButtonMiddle
)

// ResourceLoader turns files or in-memory pictures into textures.
type ResourceLoader interface {
	LoadImage(path string) (Image, error)
	// NewImageFromImage uploads an in-memory image, e.g. generated placeholders.
	NewImageFromImage(img image.Image) Image
}

// Game is driven by an Engine once per frame.
type Game interface {
	// Update updates the game logic. It is called every tick (typically 60 times per second).
	Update() error

	// Draw draws the game screen. It is called every frame.
	Draw(screen Image)

	// Layout accepts the outside size (e.g., window size) and returns the logical screen size.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine owns the window and the frame loop.
type Engine interface {
	SetWindowSize(width, height int)
	SetWindowTitle(title string)
	SetWindowResizable(resizable bool)

	// RunGame blocks until the game returns an error from Update or the
	// window closes.
	RunGame(game Game) error
}

// Sprite is a single display object: a textured rectangle placed in the
// coordinate space of its parent container.
type Sprite interface {
	SetPosition(x, y float64)
	Position() (x, y float64)
	SetSize(w, h float64)
	Size() (w, h float64)
	SetVisible(visible bool)
	Visible() bool
	// SetTexture assigns the texture by name. The name is resolved against a
	// TextureSource at draw time.
	SetTexture(name string)
	Texture() string
}

// Container owns a set of sprites and places them on screen with a shared
// translation and uniform scale.
type Container interface {
	NewSprite() Sprite
	AddChild(s Sprite)
	RemoveChild(s Sprite)
	SetPosition(x, y float64)
	SetScale(scale float64)
	Len() int
}

// TextureSource resolves texture names to images.
type TextureSource interface {
	Texture(name string) (Image, bool)
}

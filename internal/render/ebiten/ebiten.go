// Package ebiten backs the render interfaces with Ebitengine.
package ebiten

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"chosenoffset.com/tilemap/internal/render"
)

// Debug font cell, used to measure text.
const (
	glyphWidth  = 6
	glyphHeight = 13
)

func init() {
	render.NewGeoM = func() render.GeoM { return &GeoM{} }
}

// unwrap returns the ebiten image behind img. Images always come from this
// package, so any other type is a programming error.
func unwrap(img render.Image) *ebiten.Image {
	return img.(*Image).img
}

// Renderer draws overlays with ebiten's vector and debug text helpers.
type Renderer struct{}

// NewRenderer returns the ebiten overlay renderer.
func NewRenderer() render.Renderer {
	return Renderer{}
}

// StrokeCircle outlines a circle, anti-aliased.
func (Renderer) StrokeCircle(dst render.Image, x, y, radius float32, strokeWidth float32, clr color.Color) {
	vector.StrokeCircle(unwrap(dst), x, y, radius, strokeWidth, clr, true)
}

// DrawText prints with the debug font, which is white and fixed size, so
// clr and scale are ignored.
func (Renderer) DrawText(dst render.Image, str string, x, y int, clr color.Color, scale float64) {
	ebitenutil.DebugPrintAt(unwrap(dst), str, x, y)
}

// MeasureText approximates the size of str in the debug font.
func (Renderer) MeasureText(str string, scale float64) (width, height int) {
	return int(float64(len(str)*glyphWidth) * scale), int(glyphHeight * scale)
}

// Image is a render.Image over an *ebiten.Image.
type Image struct {
	img *ebiten.Image
}

// Size returns the width and height of the image.
func (i *Image) Size() (width, height int) {
	b := i.img.Bounds()
	return b.Dx(), b.Dy()
}

// SubImage returns a view sharing pixels with i.
func (i *Image) SubImage(r image.Rectangle) render.Image {
	return &Image{img: i.img.SubImage(r).(*ebiten.Image)}
}

// Fill fills the entire image with clr.
func (i *Image) Fill(clr color.Color) {
	i.img.Fill(clr)
}

// DrawImage draws src onto i. Tiles are scaled up a lot when zoomed in, so
// sampling is always nearest.
func (i *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterNearest}
	if opts != nil && opts.GeoM != nil {
		op.GeoM = opts.GeoM.(*GeoM).m
	}
	i.img.DrawImage(unwrap(src), op)
}

// GeoM is a render.GeoM over ebiten.GeoM.
type GeoM struct {
	m ebiten.GeoM
}

// Translate shifts the image by (tx, ty).
func (g *GeoM) Translate(tx, ty float64) { g.m.Translate(tx, ty) }

// Scale scales the image by (sx, sy).
func (g *GeoM) Scale(sx, sy float64) { g.m.Scale(sx, sy) }

var keys = map[render.Key]ebiten.Key{
	render.KeyW:      ebiten.KeyW,
	render.KeyA:      ebiten.KeyA,
	render.KeyS:      ebiten.KeyS,
	render.KeyD:      ebiten.KeyD,
	render.KeyUp:     ebiten.KeyArrowUp,
	render.KeyDown:   ebiten.KeyArrowDown,
	render.KeyLeft:   ebiten.KeyArrowLeft,
	render.KeyRight:  ebiten.KeyArrowRight,
	render.KeyEqual:  ebiten.KeyEqual,
	render.KeyMinus:  ebiten.KeyMinus,
	render.KeyHome:   ebiten.KeyHome,
	render.KeySpace:  ebiten.KeySpace,
	render.KeyEscape: ebiten.KeyEscape,
}

var buttons = map[render.MouseButton]ebiten.MouseButton{
	render.MouseButtonLeft:   ebiten.MouseButtonLeft,
	render.MouseButtonMiddle: ebiten.MouseButtonMiddle,
}

// Input polls ebiten's global input state.
type Input struct{}

// NewInputManager returns the ebiten input source.
func NewInputManager() render.InputManager {
	return Input{}
}

// IsKeyPressed reports whether key is held down.
func (Input) IsKeyPressed(key render.Key) bool {
	k, ok := keys[key]
	return ok && ebiten.IsKeyPressed(k)
}

// IsKeyJustPressed reports whether key went down this frame.
func (Input) IsKeyJustPressed(key render.Key) bool {
	k, ok := keys[key]
	return ok && inpututil.IsKeyJustPressed(k)
}

// CursorPosition returns the cursor in screen pixels.
func (Input) CursorPosition() (x, y int) {
	return ebiten.CursorPosition()
}

// IsMouseButtonPressed reports whether button is held down.
func (Input) IsMouseButtonPressed(button render.MouseButton) bool {
	b, ok := buttons[button]
	return ok && ebiten.IsMouseButtonPressed(b)
}

// Wheel returns the wheel offsets since the last frame.
func (Input) Wheel() (x, y float64) {
	return ebiten.Wheel()
}

// Loader creates GPU images from files and in-memory pictures.
type Loader struct{}

// NewResourceLoader returns the ebiten image loader.
func NewResourceLoader() render.ResourceLoader {
	return Loader{}
}

// LoadImage decodes the image file at path.
func (Loader) LoadImage(path string) (render.Image, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, err
	}
	return &Image{img: img}, nil
}

// NewImageFromImage uploads img to the GPU.
func (Loader) NewImageFromImage(img image.Image) render.Image {
	return &Image{img: ebiten.NewImageFromImage(img)}
}

// Engine runs a render.Game in an ebiten window.
type Engine struct{}

// NewEngine returns the ebiten engine.
func NewEngine() render.Engine {
	return Engine{}
}

// SetWindowSize sets the window size in pixels.
func (Engine) SetWindowSize(width, height int) {
	ebiten.SetWindowSize(width, height)
}

// SetWindowTitle sets the window title.
func (Engine) SetWindowTitle(title string) {
	ebiten.SetWindowTitle(title)
}

// SetWindowResizable enables or disables window resizing.
func (Engine) SetWindowResizable(resizable bool) {
	mode := ebiten.WindowResizingModeDisabled
	if resizable {
		mode = ebiten.WindowResizingModeEnabled
	}
	ebiten.SetWindowResizingMode(mode)
}

// RunGame runs the frame loop until game stops it.
func (Engine) RunGame(game render.Game) error {
	return ebiten.RunGame(adapter{game: game})
}

// adapter presents a render.Game as an ebiten.Game.
type adapter struct {
	game render.Game
}

func (a adapter) Update() error { return a.game.Update() }

func (a adapter) Draw(screen *ebiten.Image) { a.game.Draw(&Image{img: screen}) }

func (a adapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.game.Layout(outsideWidth, outsideHeight)
}

package tilemap

import "chosenoffset.com/tilemap/internal/render"

// Coord identifies a grid cell.
type Coord struct{ X, Y int }

// Tile is the on-screen presence of one grid cell. Tiles are owned by their
// Manager; the accessors read without locking and are meant for the
// goroutine that drives Tick.
type Tile struct {
	coord   Coord
	age     int
	content string
	dirty   bool
	visible bool
	sprite  render.Sprite
}

// Coord returns the grid coordinate of the tile.
func (t *Tile) Coord() Coord { return t.coord }

// Age returns the number of ticks since the tile was last inside the viewport.
func (t *Tile) Age() int { return t.age }

// Content returns the content name, or "" when no data has arrived yet.
func (t *Tile) Content() string { return t.content }

// Dirty reports whether the content has changed since it was last applied
// to the sprite.
func (t *Tile) Dirty() bool { return t.dirty }

// Visible reports whether the tile was drawn on the last tick.
func (t *Tile) Visible() bool { return t.visible }

// Sprite returns the display object backing the tile.
func (t *Tile) Sprite() render.Sprite { return t.sprite }

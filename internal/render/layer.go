package render

import "sync"

// Layer is the backend-neutral Container. Children keep their insertion
// order until one is removed; removal swaps the last child into the hole.
//
// Layer methods are safe for concurrent use. Sprites are not: a sprite is
// configured by its owner before AddChild and afterwards only touched on the
// render goroutine.
type Layer struct {
	mu       sync.Mutex
	children []*sprite
	index    map[*sprite]int
	x, y     float64
	scale    float64
}

// NewLayer creates an empty layer at the origin with scale 1.
func NewLayer() *Layer {
	return &Layer{
		index: make(map[*sprite]int),
		scale: 1,
	}
}

// NewSprite creates a hidden, untextured sprite. It is not a child until
// AddChild is called.
func (l *Layer) NewSprite() Sprite {
	return &sprite{}
}

// AddChild appends s to the layer. Adding a child twice is a no-op.
func (l *Layer) AddChild(s Sprite) {
	sp := s.(*sprite)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.index[sp]; ok {
		return
	}
	l.index[sp] = len(l.children)
	l.children = append(l.children, sp)
}

// RemoveChild detaches s from the layer.
func (l *Layer) RemoveChild(s Sprite) {
	sp := s.(*sprite)
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[sp]
	if !ok {
		return
	}
	last := len(l.children) - 1
	if i != last {
		moved := l.children[last]
		l.children[i] = moved
		l.index[moved] = i
	}
	l.children[last] = nil
	l.children = l.children[:last]
	delete(l.index, sp)
}

// Contains reports whether s is currently a child of the layer.
func (l *Layer) Contains(s Sprite) bool {
	sp, ok := s.(*sprite)
	if !ok {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok = l.index[sp]
	return ok
}

// SetPosition sets the screen-space translation of the layer origin.
func (l *Layer) SetPosition(x, y float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.x, l.y = x, y
}

// Position returns the screen-space translation of the layer origin.
func (l *Layer) Position() (x, y float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.x, l.y
}

// SetScale sets the uniform scale applied to every child.
func (l *Layer) SetScale(scale float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scale = scale
}

// Scale returns the uniform scale applied to every child.
func (l *Layer) Scale() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scale
}

// Len returns the number of children.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.children)
}

// Draw renders every visible child with a known texture onto dst.
// Children are stretched to their size, placed at their position and then
// transformed by the layer scale and translation.
func (l *Layer) Draw(dst Image, textures TextureSource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, sp := range l.children {
		if !sp.visible || sp.texture == "" {
			continue
		}
		img, ok := textures.Texture(sp.texture)
		if !ok {
			continue
		}
		iw, ih := img.Size()
		if iw == 0 || ih == 0 {
			continue
		}

		opts := &DrawImageOptions{}
		opts.GeoM = NewGeoM()
		opts.GeoM.Scale(sp.w/float64(iw), sp.h/float64(ih))
		opts.GeoM.Translate(sp.x, sp.y)
		opts.GeoM.Scale(l.scale, l.scale)
		opts.GeoM.Translate(l.x, l.y)
		dst.DrawImage(img, opts)
	}
}

type sprite struct {
	x, y    float64
	w, h    float64
	visible bool
	texture string
}

func (s *sprite) SetPosition(x, y float64) { s.x, s.y = x, y }
func (s *sprite) Position() (x, y float64) { return s.x, s.y }
func (s *sprite) SetSize(w, h float64)     { s.w, s.h = w, h }
func (s *sprite) Size() (w, h float64)     { return s.w, s.h }
func (s *sprite) SetVisible(visible bool)  { s.visible = visible }
func (s *sprite) Visible() bool            { return s.visible }
func (s *sprite) SetTexture(name string)   { s.texture = name }
func (s *sprite) Texture() string          { return s.texture }

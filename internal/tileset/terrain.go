package tileset

import "math"

// Content names produced by the generator.
const (
	Water  = "water"
	Sand   = "sand"
	Grass  = "grass"
	Forest = "forest"
	Rock   = "rock"
	Snow   = "snow"
	Void   = "void"
)

// Names lists every content name a Source can deliver.
var Names = []string{Water, Sand, Grass, Forest, Rock, Snow, Void}

var bands = []struct {
	below float64
	name  string
}{
	{0.34, Water},
	{0.40, Sand},
	{0.60, Grass},
	{0.74, Forest},
	{0.88, Rock},
	{math.Inf(1), Snow},
}

// Terrain returns the terrain at (x, y) for seed. The result depends only on
// its arguments.
func Terrain(seed uint32, x, y int) string {
	e := Elevation(seed, x, y)
	for _, b := range bands {
		if e < b.below {
			return b.name
		}
	}
	return Snow
}

// Elevation is two octaves of value noise in [0, 1].
func Elevation(seed uint32, x, y int) float64 {
	return 0.7*valueNoise(seed, x, y, 24) + 0.3*valueNoise(seed^0x5bd1e995, x, y, 6)
}

func valueNoise(seed uint32, x, y, cell int) float64 {
	cx, fx := floorDiv(x, cell)
	cy, fy := floorDiv(y, cell)
	tx := smoothstep(float64(fx) / float64(cell))
	ty := smoothstep(float64(fy) / float64(cell))

	a := lattice(seed, cx, cy)
	b := lattice(seed, cx+1, cy)
	c := lattice(seed, cx, cy+1)
	d := lattice(seed, cx+1, cy+1)
	return lerp(lerp(a, b, tx), lerp(c, d, tx), ty)
}

func lattice(seed uint32, x, y int) float64 {
	return float64(hash2(seed, int32(x), int32(y))) / math.MaxUint32
}

// floorDiv splits v into a cell index and a non-negative remainder.
func floorDiv(v, cell int) (q, r int) {
	q, r = v/cell, v%cell
	if r < 0 {
		q--
		r += cell
	}
	return q, r
}

func smoothstep(t float64) float64 { return t * t * (3 - 2*t) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// hash32 is a murmur-style finalizer.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

func hash2(seed uint32, x, y int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(y) * 0x85ebca6b
	return hash32(h)
}

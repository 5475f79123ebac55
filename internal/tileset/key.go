package tileset

import (
	"errors"

	"github.com/google/hilbert"
)

// Side is the width of the square addressed by Key.
const Side = 1 << 16

// ErrOutOfRange is returned for coordinates outside [0, Side).
var ErrOutOfRange = errors.New("tileset: coordinate out of range")

var curve = mustCurve()

func mustCurve() *hilbert.Hilbert {
	h, err := hilbert.NewHilbert(Side)
	if err != nil {
		panic(err)
	}
	return h
}

// Key maps a tile coordinate to its index along a Hilbert curve, so tiles
// close on screen get close cache keys.
func Key(x, y int) (uint64, error) {
	if x < 0 || y < 0 || x >= Side || y >= Side {
		return 0, ErrOutOfRange
	}
	t, err := curve.MapInverse(x, y)
	if err != nil {
		return 0, err
	}
	return uint64(t), nil
}

// Coords is the inverse of Key.
func Coords(key uint64) (x, y int, err error) {
	if key >= Side*Side {
		return 0, 0, ErrOutOfRange
	}
	return curve.Map(int(key))
}

package debug

import (
	"github.com/Faultbox/anypose/pkg/math"
)

// Grid colors.
var (
	GridColor  = Color{0.3, 0.3, 0.35}
	AxisXColor = Color{0.8, 0.25, 0.25}
	AxisZColor = Color{0.25, 0.4, 0.8}
)

// Grid adds a square ground grid of half-size cells on each side of the
// origin at height y. The lines through the origin are tinted along X and Z.
func (l *Lines) Grid(cells int, cellSize, y float32) {
	if cells <= 0 || cellSize <= 0 {
		return
	}
	extent := float32(cells) * cellSize

	for i := -cells; i <= cells; i++ {
		d := float32(i) * cellSize

		xc, zc := GridColor, GridColor
		if i == 0 {
			xc, zc = AxisXColor, AxisZColor
		}
		// Line along X at z = d
		l.Line(math.Vec3{X: -extent, Y: y, Z: d}, math.Vec3{X: extent, Y: y, Z: d}, xc)
		// Line along Z at x = d
		l.Line(math.Vec3{X: d, Y: y, Z: -extent}, math.Vec3{X: d, Y: y, Z: extent}, zc)
	}
}

package math

import "math"

// Euler holds rotation angles in radians applied in XYZ order,
// so the rotation matrix is Rx * Ry * Rz.
type Euler struct {
	X, Y, Z float32
}

// Mat4 returns the rotation matrix for the angles.
func (e Euler) Mat4() Mat4 {
	return RotateX(e.X).Mul(RotateY(e.Y)).Mul(RotateZ(e.Z))
}

// Add returns the component-wise sum.
func (e Euler) Add(other Euler) Euler {
	return Euler{e.X + other.X, e.Y + other.Y, e.Z + other.Z}
}

// IsZero reports whether all angles are zero.
func (e Euler) IsZero() bool {
	return e.X == 0 && e.Y == 0 && e.Z == 0
}

// Degrees returns the angles converted to degrees.
func (e Euler) Degrees() [3]float32 {
	return [3]float32{Degrees(e.X), Degrees(e.Y), Degrees(e.Z)}
}

// Degrees converts radians to degrees.
func Degrees(radians float32) float32 {
	return radians * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float32) float32 {
	return degrees * math.Pi / 180
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package math

import "math"

// Spherical is a point in spherical coordinates around an origin.
// Phi is the polar angle measured from +Y, Theta the azimuth around Y
// measured from +Z towards +X.
type Spherical struct {
	Radius float32
	Phi    float32
	Theta  float32
}

// SphericalFromVec3 converts a cartesian offset to spherical coordinates.
func SphericalFromVec3(v Vec3) Spherical {
	r := v.Length()
	if r == 0 {
		return Spherical{}
	}
	cosPhi := Clamp(v.Y/r, -1, 1)
	return Spherical{
		Radius: r,
		Theta:  float32(math.Atan2(float64(v.X), float64(v.Z))),
		Phi:    float32(math.Acos(float64(cosPhi))),
	}
}

// Vec3 converts back to a cartesian offset.
func (s Spherical) Vec3() Vec3 {
	sinPhi := float32(math.Sin(float64(s.Phi)))
	return Vec3{
		X: s.Radius * sinPhi * float32(math.Sin(float64(s.Theta))),
		Y: s.Radius * float32(math.Cos(float64(s.Phi))),
		Z: s.Radius * sinPhi * float32(math.Cos(float64(s.Theta))),
	}
}

// ClampPhi restricts Phi to [eps, Pi-eps] so the offset never reaches a pole.
func (s Spherical) ClampPhi(eps float32) Spherical {
	s.Phi = Clamp(s.Phi, eps, math.Pi-eps)
	return s
}

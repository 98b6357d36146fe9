// Package debug provides debug visualization utilities.
package debug

import (
	gomath "math"

	"github.com/Faultbox/anypose/pkg/math"
)

// Color is an RGB color with components in [0, 1].
type Color struct {
	R, G, B float32
}

// Vertex is one line endpoint, laid out as [x, y, z, r, g, b].
type Vertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

// VertexSize is the byte size of a Vertex.
const VertexSize = 6 * 4

// Lines accumulates line segments for one frame.
type Lines struct {
	verts []Vertex
}

// Reset drops all segments, keeping the allocation.
func (l *Lines) Reset() {
	l.verts = l.verts[:0]
}

// Len returns the number of vertices (two per segment).
func (l *Lines) Len() int {
	return len(l.verts)
}

// Vertices returns the accumulated vertices.
func (l *Lines) Vertices() []Vertex {
	return l.verts
}

// Line adds one segment.
func (l *Lines) Line(a, b math.Vec3, c Color) {
	l.verts = append(l.verts,
		Vertex{a.X, a.Y, a.Z, c.R, c.G, c.B},
		Vertex{b.X, b.Y, b.Z, c.R, c.G, c.B},
	)
}

// boxEdges pairs corner indices of a box whose corner i has -X when bit 0 is
// set, -Y for bit 1 and -Z for bit 2.
var boxEdges = [12][2]int{
	// X edges
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	// Y edges
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	// Z edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Box adds the 12 edges of a possibly rotated box given its 8 corners.
func (l *Lines) Box(corners [8]math.Vec3, c Color) {
	for _, e := range boxEdges {
		l.Line(corners[e[0]], corners[e[1]], c)
	}
}

// Circle adds a polyline circle around center in the plane spanned by the
// unit vectors u and v.
func (l *Lines) Circle(center, u, v math.Vec3, radius float32, segments int, c Color) {
	if segments < 3 {
		segments = 3
	}
	point := func(i int) math.Vec3 {
		a := 2 * gomath.Pi * float64(i) / float64(segments)
		cu := float32(gomath.Cos(a)) * radius
		sv := float32(gomath.Sin(a)) * radius
		return center.Add(u.Scale(cu)).Add(v.Scale(sv))
	}
	prev := point(0)
	for i := 1; i <= segments; i++ {
		next := point(i)
		l.Line(prev, next, c)
		prev = next
	}
}

// Sphere adds three axis-aligned great circles.
func (l *Lines) Sphere(center math.Vec3, radius float32, segments int, c Color) {
	x := math.Vec3{X: 1}
	y := math.Vec3{Y: 1}
	z := math.Vec3{Z: 1}
	l.Circle(center, x, y, radius, segments, c)
	l.Circle(center, y, z, radius, segments, c)
	l.Circle(center, z, x, radius, segments, c)
}

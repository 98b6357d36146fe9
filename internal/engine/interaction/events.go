// Package interaction turns the pointer stream into joint hover, selection
// and gizmo drags, and decides when the camera may consume pointer input.
package interaction

import (
	"github.com/Faultbox/anypose/internal/engine/picking"
	"github.com/Faultbox/anypose/pkg/math"
)

// Button identifies a pointer button. Values match SDL's button indices.
type Button uint8

const (
	ButtonNone   Button = 0
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Pointer is a pointer event in window pixels.
type Pointer struct {
	X, Y   float32
	Button Button // set on down/up events
	Shift  bool
}

// Pos returns the pointer position.
func (p Pointer) Pos() math.Vec2 {
	return math.Vec2{X: p.X, Y: p.Y}
}

// PointerConsumer receives the pointer stream the controller does not use.
type PointerConsumer interface {
	PointerDown(p Pointer)
	PointerMove(p Pointer)
	PointerUp(p Pointer)
	Wheel(delta float32)
}

// RayCaster turns window coordinates into a world-space pick ray.
type RayCaster interface {
	ScreenToRay(x, y float32) picking.Ray
}

// Style is the highlight applied to a joint proxy.
type Style int

const (
	StyleNormal Style = iota
	StyleHover
	StyleSelected
)

func (s Style) String() string {
	switch s {
	case StyleHover:
		return "hover"
	case StyleSelected:
		return "selected"
	default:
		return "normal"
	}
}

// Highlighter applies joint styles; usually the renderer.
type Highlighter interface {
	SetJointStyle(joint string, s Style)
}

// Gizmo is the rotation widget shown on the selected joint.
type Gizmo interface {
	Attach(joint string)
	Detach()
	Attached() (string, bool)
	HitHandle(r picking.Ray) bool
	BeginDrag()
	// Drag applies pointer motion in pixels. lock restricts the rotation to
	// the joint's Z axis.
	Drag(dx, dy float32, lock bool)
	EndDrag()
}

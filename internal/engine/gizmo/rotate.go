// Package gizmo implements the on-joint rotation widget.
package gizmo

import (
	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/engine/picking"
	"github.com/Faultbox/anypose/internal/engine/skeleton"
	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/pkg/math"
)

const (
	// DefaultHandleRadius is the radius of the rotation rings around the
	// attached joint.
	DefaultHandleRadius = 0.5

	// DefaultSensitivity converts pointer pixels into radians.
	DefaultSensitivity = 0.01
)

// ChangeFunc receives the rotation delta produced by one drag step.
type ChangeFunc func(joint string, delta math.Euler)

// Rotate is a three-ring rotation gizmo. Horizontal pointer motion turns the
// joint about Y and vertical motion about X. With the axis lock held,
// horizontal motion turns it about Z instead.
type Rotate struct {
	HandleRadius float32
	Sensitivity  float32

	h        *skeleton.Hierarchy
	joint    string
	dragging bool
	onChange []ChangeFunc
}

// NewRotate creates a detached gizmo for the joints of h.
func NewRotate(h *skeleton.Hierarchy) *Rotate {
	return &Rotate{
		HandleRadius: DefaultHandleRadius,
		Sensitivity:  DefaultSensitivity,
		h:            h,
	}
}

// SetHierarchy points the gizmo at another joint tree and detaches it.
func (g *Rotate) SetHierarchy(h *skeleton.Hierarchy) {
	g.Detach()
	g.h = h
}

// OnChange registers a listener for drag deltas.
func (g *Rotate) OnChange(fn ChangeFunc) {
	g.onChange = append(g.onChange, fn)
}

// Attach shows the gizmo on a joint.
func (g *Rotate) Attach(joint string) {
	g.joint = joint
	g.dragging = false
}

// Detach hides the gizmo.
func (g *Rotate) Detach() {
	g.joint = ""
	g.dragging = false
}

// Attached returns the joint the gizmo is on.
func (g *Rotate) Attached() (string, bool) {
	return g.joint, g.joint != ""
}

// Dragging reports whether a drag is in progress.
func (g *Rotate) Dragging() bool {
	return g.dragging
}

// Center returns the world position of the attached joint.
func (g *Rotate) Center() (math.Vec3, bool) {
	if g.joint == "" || g.h == nil {
		return math.Vec3{}, false
	}
	return g.h.WorldPosition(g.joint)
}

// HitHandle reports whether r meets the handle sphere around the joint.
func (g *Rotate) HitHandle(r picking.Ray) bool {
	c, ok := g.Center()
	if !ok {
		return false
	}
	_, hit := r.IntersectSphere(c, g.HandleRadius)
	return hit
}

// BeginDrag starts a drag on the attached joint.
func (g *Rotate) BeginDrag() {
	if g.joint == "" {
		return
	}
	g.dragging = true
}

// Drag turns pointer motion into a rotation delta and notifies listeners.
func (g *Rotate) Drag(dx, dy float32, lock bool) {
	if !g.dragging || (dx == 0 && dy == 0) {
		return
	}
	var d math.Euler
	if lock {
		d.Z = dx * g.Sensitivity
	} else {
		d.Y = dx * g.Sensitivity
		d.X = dy * g.Sensitivity
	}
	if d.IsZero() {
		return
	}
	for _, fn := range g.onChange {
		fn(g.joint, d)
	}
}

// EndDrag finishes the drag.
func (g *Rotate) EndDrag() {
	if g.dragging {
		logger.Debug("rotation drag finished", zap.String("joint", g.joint))
	}
	g.dragging = false
}

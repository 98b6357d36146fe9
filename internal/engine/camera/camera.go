// Package camera provides the orbit camera used by the posing viewport.
package camera

import (
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/engine/interaction"
	"github.com/Faultbox/anypose/internal/engine/picking"
	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/pkg/math"
)

type action int

const (
	actionNone action = iota
	actionRotate
	actionPan
)

// Orbit orbits a target point in spherical coordinates. Pointer input is
// accumulated into pending deltas that Update integrates once per frame.
type Orbit struct {
	// Constraints
	MinDistance float32
	MaxDistance float32
	PhiEpsilon  float32 // polar angle is kept inside [eps, pi-eps]

	// Damping
	EnableDamping bool
	DampingFactor float32

	// Sensitivity
	RotateSpeed float32 // fraction of pi per viewport height
	PanSpeed    float32
	ZoomIn      float32 // radius multiplier per wheel step towards the target
	ZoomOut     float32

	// Projection
	FovY      float32 // degrees
	Near, Far float32

	TransitionDuration time.Duration

	target    math.Vec3
	position  math.Vec3
	spherical math.Spherical

	deltaTheta, deltaPhi float32
	panOffset            math.Vec3
	scale                float32
	zoomPending          bool

	width, height float32

	inputEnabled bool
	action       action
	last         math.Vec2

	transition transition
	log        *zap.Logger
}

var (
	_ interaction.PointerConsumer = (*Orbit)(nil)
	_ interaction.FocusTarget     = (*Orbit)(nil)
	_ interaction.RayCaster       = (*Orbit)(nil)
)

// NewOrbit creates an orbit camera at (5, 5, 5) looking at the origin.
func NewOrbit(width, height int) *Orbit {
	o := &Orbit{
		MinDistance:        2,
		MaxDistance:        50,
		PhiEpsilon:         0.1,
		EnableDamping:      true,
		DampingFactor:      0.05,
		RotateSpeed:        0.8,
		PanSpeed:           0.8,
		ZoomIn:             0.95,
		ZoomOut:            1.05,
		FovY:               75,
		Near:               0.1,
		Far:                1000,
		TransitionDuration: time.Second,
		scale:              1,
		inputEnabled:       true,
		log:                logger.Named("camera"),
	}
	o.SetViewport(width, height)
	o.place(math.Vec3{X: 5, Y: 5, Z: 5}, math.Vec3{})
	return o
}

// place moves the camera and re-derives the spherical state from it. A
// position on or past a pole is pulled back to the phi limit.
func (o *Orbit) place(position, target math.Vec3) {
	o.target = target
	o.spherical = math.SphericalFromVec3(position.Sub(target))
	if clamped := o.spherical.ClampPhi(o.PhiEpsilon); clamped != o.spherical && o.spherical.Radius > 0 {
		o.spherical = clamped
		position = target.Add(clamped.Vec3())
	}
	o.position = position
}

// Position returns the camera position in world space.
func (o *Orbit) Position() math.Vec3 {
	return o.position
}

// Target returns the orbit centre.
func (o *Orbit) Target() math.Vec3 {
	return o.target
}

// Spherical returns the camera offset from the target in spherical form.
func (o *Orbit) Spherical() math.Spherical {
	return o.spherical
}

// SetViewport updates the viewport size used for projection and input
// scaling. Non-positive sizes are ignored.
func (o *Orbit) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	o.width = float32(width)
	o.height = float32(height)
}

// Viewport returns the viewport size in pixels.
func (o *Orbit) Viewport() (width, height float32) {
	return o.width, o.height
}

// SetInputEnabled switches pointer handling on or off. Only the focus
// arbiter calls it.
func (o *Orbit) SetInputEnabled(enabled bool) {
	o.inputEnabled = enabled
	if !enabled {
		o.action = actionNone
	}
}

// InputEnabled reports whether pointer input is handled.
func (o *Orbit) InputEnabled() bool {
	return o.inputEnabled
}

// Update advances a running transition, or integrates pending orbit, pan and
// zoom input. While input is disabled the orbit state is left untouched.
func (o *Orbit) Update(dt time.Duration) {
	if o.transition.active {
		o.stepTransition(dt)
		return
	}
	if !o.inputEnabled {
		return
	}

	o.spherical.Theta += o.deltaTheta
	o.spherical.Phi += o.deltaPhi
	o.spherical = o.spherical.ClampPhi(o.PhiEpsilon)

	if o.zoomPending {
		o.spherical.Radius = math.Clamp(o.spherical.Radius*o.scale, o.MinDistance, o.MaxDistance)
		o.scale = 1
		o.zoomPending = false
	}

	o.target = o.target.Add(o.panOffset)
	o.position = o.target.Add(o.spherical.Vec3())

	if o.EnableDamping {
		k := 1 - o.DampingFactor
		o.deltaTheta *= k
		o.deltaPhi *= k
		o.panOffset = o.panOffset.Scale(k)
	} else {
		o.clearDeltas()
	}
}

func (o *Orbit) clearDeltas() {
	o.deltaTheta = 0
	o.deltaPhi = 0
	o.panOffset = math.Vec3{}
	o.scale = 1
	o.zoomPending = false
}

// up returns a world up vector that is not parallel to the view direction.
func (o *Orbit) up() math.Vec3 {
	dir := o.target.Sub(o.position).Normalize()
	if gomath.Abs(float64(dir.Y)) > 0.9999 {
		if dir.Y < 0 {
			return math.Vec3{Z: -1}
		}
		return math.Vec3{Z: 1}
	}
	return math.Vec3{Y: 1}
}

// ViewMatrix returns the view matrix for this camera.
func (o *Orbit) ViewMatrix() math.Mat4 {
	return math.LookAt(o.position, o.target, o.up())
}

// ProjectionMatrix returns the perspective projection for the viewport.
func (o *Orbit) ProjectionMatrix() math.Mat4 {
	return math.Perspective(math.Radians(o.FovY), o.width/o.height, o.Near, o.Far)
}

// ViewProjection returns projection * view.
func (o *Orbit) ViewProjection() math.Mat4 {
	return o.ProjectionMatrix().Mul(o.ViewMatrix())
}

// ScreenToRay converts window pixels to a world-space pick ray.
func (o *Orbit) ScreenToRay(x, y float32) picking.Ray {
	return picking.ScreenToRay(x, y, o.width, o.height, o.ViewProjection().Inverse())
}

// WorldToScreen projects a world point to window pixels. ok is false when the
// point is behind the camera.
func (o *Orbit) WorldToScreen(p math.Vec3) (x, y float32, ok bool) {
	clip := o.ViewProjection().MulVec4(math.Vec4{p.X, p.Y, p.Z, 1})
	if clip[3] <= 0 {
		return 0, 0, false
	}
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	return (ndcX + 1) / 2 * o.width, (1 - ndcY) / 2 * o.height, true
}

// PointerDown starts an orbit (left button) or pan (right button).
func (o *Orbit) PointerDown(p interaction.Pointer) {
	if !o.inputEnabled {
		return
	}
	o.last = p.Pos()
	switch p.Button {
	case interaction.ButtonLeft:
		o.action = actionRotate
	case interaction.ButtonRight:
		o.action = actionPan
	default:
		o.action = actionNone
	}
}

// PointerMove accumulates orbit or pan deltas for the next Update.
func (o *Orbit) PointerMove(p interaction.Pointer) {
	if !o.inputEnabled || o.action == actionNone {
		return
	}
	d := p.Pos().Sub(o.last)
	o.last = p.Pos()

	switch o.action {
	case actionRotate:
		o.Rotate(d.X, d.Y)
	case actionPan:
		o.Pan(d.X, d.Y)
	}
}

// PointerUp ends the current orbit or pan.
func (o *Orbit) PointerUp(interaction.Pointer) {
	o.action = actionNone
}

// Wheel zooms out for positive deltas and in for negative ones.
func (o *Orbit) Wheel(delta float32) {
	if !o.inputEnabled || delta == 0 {
		return
	}
	if delta > 0 {
		o.Zoom(o.ZoomOut)
	} else {
		o.Zoom(o.ZoomIn)
	}
}

// Rotate queues an orbit by pointer motion in pixels.
func (o *Orbit) Rotate(dx, dy float32) {
	speed := o.RotateSpeed * gomath.Pi / o.height
	o.deltaTheta -= dx * speed
	o.deltaPhi -= dy * speed
}

// Pan queues a target shift along the camera's right and up axes.
func (o *Orbit) Pan(dx, dy float32) {
	fov := float64(math.Radians(o.FovY))
	speed := o.PanSpeed * o.spherical.Radius * float32(gomath.Tan(fov/2)) / o.height

	world := o.ViewMatrix().Inverse()
	left := world.Column(0).Scale(-dx * speed)
	up := world.Column(1).Scale(dy * speed)
	o.panOffset = o.panOffset.Add(left).Add(up)
}

// Zoom queues a radius multiplier.
func (o *Orbit) Zoom(factor float32) {
	o.scale *= factor
	o.zoomPending = true
}

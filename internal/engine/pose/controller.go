package pose

import (
	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/engine/skeleton"
	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/pkg/math"
)

// Partial is a rotation with optional axes. Nil axes are left untouched.
type Partial struct {
	X, Y, Z *float32
}

// Axis helpers for building partial rotations.
func AboutX(v float32) Partial { return Partial{X: &v} }
func AboutY(v float32) Partial { return Partial{Y: &v} }
func AboutZ(v float32) Partial { return Partial{Z: &v} }

// Full returns a partial rotation that sets all three axes.
func Full(e math.Euler) Partial {
	return Partial{X: &e.X, Y: &e.Y, Z: &e.Z}
}

// ChangeFunc is called after a joint's rotation changed.
type ChangeFunc func(joint string, rot math.Euler)

// Controller is the only writer of joint rotations. Every rotation it stores
// satisfies the active constraint table.
type Controller struct {
	h        *skeleton.Hierarchy
	limits   Table
	onChange []ChangeFunc
	log      *zap.Logger
}

// NewController creates a controller over h. A nil table means no limits.
func NewController(h *skeleton.Hierarchy, limits Table) *Controller {
	if limits == nil {
		limits = Table{}
	}
	return &Controller{
		h:      h,
		limits: limits,
		log:    logger.Named("pose"),
	}
}

// Hierarchy returns the controlled joint tree.
func (c *Controller) Hierarchy() *skeleton.Hierarchy {
	return c.h
}

// Constraints returns the active constraint table.
func (c *Controller) Constraints() Table {
	return c.limits
}

// OnChange registers a listener for rotation changes.
func (c *Controller) OnChange(fn ChangeFunc) {
	c.onChange = append(c.onChange, fn)
}

// Rotation returns a joint's current rotation.
func (c *Controller) Rotation(name string) (math.Euler, bool) {
	j, ok := c.h.Joint(name)
	if !ok {
		c.log.Warn("rotation requested for unknown joint", zap.String("joint", name))
		return math.Euler{}, false
	}
	return j.Rotation(), true
}

// SetRotation sets the provided axes of a joint's rotation, clamped into the
// joint's limits. Out-of-range values are clamped silently. It reports false
// for an unknown joint.
func (c *Controller) SetRotation(name string, p Partial) bool {
	j, ok := c.h.Joint(name)
	if !ok {
		c.log.Warn("cannot rotate unknown joint", zap.String("joint", name))
		return false
	}
	rot := j.Rotation()
	if p.X != nil {
		rot.X = *p.X
	}
	if p.Y != nil {
		rot.Y = *p.Y
	}
	if p.Z != nil {
		rot.Z = *p.Z
	}
	c.apply(name, j.Rotation(), rot)
	return true
}

// AddRotation adds a delta to the provided axes, then clamps.
func (c *Controller) AddRotation(name string, delta Partial) bool {
	j, ok := c.h.Joint(name)
	if !ok {
		c.log.Warn("cannot rotate unknown joint", zap.String("joint", name))
		return false
	}
	rot := j.Rotation()
	if delta.X != nil {
		rot.X += *delta.X
	}
	if delta.Y != nil {
		rot.Y += *delta.Y
	}
	if delta.Z != nil {
		rot.Z += *delta.Z
	}
	c.apply(name, j.Rotation(), rot)
	return true
}

// ResetJoint returns one joint to its rest rotation.
func (c *Controller) ResetJoint(name string) bool {
	j, ok := c.h.Joint(name)
	if !ok {
		c.log.Warn("cannot reset unknown joint", zap.String("joint", name))
		return false
	}
	c.apply(name, j.Rotation(), math.Euler{})
	return true
}

// ResetAll returns every joint to its rest rotation.
func (c *Controller) ResetAll() {
	for _, name := range c.h.Names() {
		j, _ := c.h.Joint(name)
		c.apply(name, j.Rotation(), math.Euler{})
	}
	c.log.Info("pose reset")
}

// SetConstraints swaps the constraint table and re-clamps every joint so the
// stored pose stays valid under the new limits.
func (c *Controller) SetConstraints(t Table) {
	if t == nil {
		t = Table{}
	}
	c.limits = t
	clamped := 0
	for _, name := range c.h.Names() {
		j, _ := c.h.Joint(name)
		before := j.Rotation()
		if c.apply(name, before, before) {
			clamped++
		}
	}
	c.log.Info("constraints updated",
		zap.Int("entries", len(t)),
		zap.Int("reclamped", clamped),
	)
}

// apply clamps rot, stores it and notifies listeners when it differs from
// before.
func (c *Controller) apply(name string, before, rot math.Euler) bool {
	rot = c.limits.Clamp(name, rot)
	if rot == before {
		return false
	}
	c.h.SetRotation(name, rot)
	for _, fn := range c.onChange {
		fn(name, rot)
	}
	return true
}

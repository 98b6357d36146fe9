package skeleton

import (
	"fmt"

	"github.com/Faultbox/anypose/pkg/math"
)

// BodyPart is a cosmetic box attached to one joint at a fixed offset.
// It follows the joint but is never picked as a joint.
type BodyPart struct {
	Name        string
	Joint       string
	Offset      math.Vec3 // box centre relative to the joint
	HalfExtents math.Vec3
}

// Model is a posable figure: the joint tree plus the meshes hanging off it.
type Model struct {
	Name      string
	Hierarchy *Hierarchy

	parts         []BodyPart
	jointsVisible bool
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		Name:          name,
		Hierarchy:     NewHierarchy(),
		jointsVisible: true,
	}
}

// AttachBodyPart hangs a body part off an existing joint.
func (m *Model) AttachBodyPart(part BodyPart) error {
	if !m.Hierarchy.Has(part.Joint) {
		return fmt.Errorf("body part %s: %w: %s", part.Name, ErrUnknownParent, part.Joint)
	}
	m.parts = append(m.parts, part)
	return nil
}

// BodyParts returns the attached body parts.
func (m *Model) BodyParts() []BodyPart {
	return m.parts
}

// SetJointsVisible toggles drawing and picking of the joint proxies.
func (m *Model) SetJointsVisible(visible bool) {
	m.jointsVisible = visible
}

// JointsVisible reports whether joint proxies are shown.
func (m *Model) JointsVisible() bool {
	return m.jointsVisible
}

// PartTransform returns the world matrix of a body part box centre.
func (f Frame) PartTransform(part BodyPart) (math.Mat4, bool) {
	jm, ok := f[part.Joint]
	if !ok {
		return math.Identity(), false
	}
	return jm.Mul(math.Translate(part.Offset.X, part.Offset.Y, part.Offset.Z)), true
}

// PartCorners returns the eight world-space corners of a body part box.
func (f Frame) PartCorners(part BodyPart) ([8]math.Vec3, bool) {
	var corners [8]math.Vec3
	m, ok := f.PartTransform(part)
	if !ok {
		return corners, false
	}
	e := part.HalfExtents
	for i := range corners {
		local := math.Vec3{X: e.X, Y: e.Y, Z: e.Z}
		if i&1 != 0 {
			local.X = -local.X
		}
		if i&2 != 0 {
			local.Y = -local.Y
		}
		if i&4 != 0 {
			local.Z = -local.Z
		}
		corners[i] = m.TransformVec3(local)
	}
	return corners, true
}

// PartBounds returns the world-space axis-aligned bounds of a body part.
func (f Frame) PartBounds(part BodyPart) (lo, hi math.Vec3, ok bool) {
	corners, ok := f.PartCorners(part)
	if !ok {
		return lo, hi, false
	}
	lo, hi = corners[0], corners[0]
	for _, c := range corners[1:] {
		lo = lo.Min(c)
		hi = hi.Max(c)
	}
	return lo, hi, true
}

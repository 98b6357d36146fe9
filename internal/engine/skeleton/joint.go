// Package skeleton holds the joint tree of a posable model.
//
// Joints are stored in a table keyed by name. Parent links are names, never
// pointers, so the tree cannot own a cycle and traversal is always explicit
// root-to-leaf. World transforms are recomputed on every query because any
// ancestor may have rotated since the last one.
package skeleton

import (
	"errors"

	"github.com/Faultbox/anypose/pkg/math"
)

// DefaultProxyRadius is the radius of the pick sphere placed on each joint of
// the built-in humanoid.
const DefaultProxyRadius = 0.1

// Construction errors. The hierarchy must be a single well-formed tree;
// builders are expected to treat these as programming errors.
var (
	ErrEmptyName      = errors.New("joint name is empty")
	ErrDuplicateJoint = errors.New("duplicate joint name")
	ErrSecondRoot     = errors.New("hierarchy already has a root")
	ErrUnknownParent  = errors.New("unknown parent joint")
)

// Joint is a named node of the skeleton.
type Joint struct {
	Name string

	// LocalPosition is the offset from the parent joint, or from the model
	// origin for the root.
	LocalPosition math.Vec3

	// Parent is the parent joint name, empty for the root.
	Parent string

	// ProxyRadius is the radius of the pickable sphere drawn at the joint.
	ProxyRadius float32

	rotation math.Euler
	children []string
}

// Rotation returns the joint's current Euler rotation.
func (j *Joint) Rotation() math.Euler {
	return j.rotation
}

// Children returns the ordered child joint names.
func (j *Joint) Children() []string {
	return j.children
}

// LocalTransform returns Translate(LocalPosition) * R(rotation).
func (j *Joint) LocalTransform() math.Mat4 {
	t := math.Translate(j.LocalPosition.X, j.LocalPosition.Y, j.LocalPosition.Z)
	if j.rotation.IsZero() {
		return t
	}
	return t.Mul(j.rotation.Mat4())
}

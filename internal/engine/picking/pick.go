package picking

import (
	"github.com/Faultbox/anypose/internal/engine/skeleton"
)

// HitKind classifies what a pick ray struck first.
type HitKind int

const (
	HitNone HitKind = iota
	HitJoint
	HitBodyPart
)

func (k HitKind) String() string {
	switch k {
	case HitJoint:
		return "joint"
	case HitBodyPart:
		return "body part"
	default:
		return "none"
	}
}

// Hit is the result of a pick.
type Hit struct {
	Kind HitKind
	Name string  // joint or body part name
	T    float32 // distance along the ray
}

// Pick casts r against a model's joint proxies and returns the nearest joint.
// Body parts are only tested when no joint proxy is hit, to tell a click on
// the figure apart from a click on empty space. Hidden joint proxies are not
// pickable. frame must be the model's snapshot for the current frame.
func Pick(r Ray, m *skeleton.Model, frame skeleton.Frame) Hit {
	if m == nil {
		return Hit{}
	}

	best := Hit{}
	if m.JointsVisible() {
		for _, name := range m.Hierarchy.Names() {
			j, _ := m.Hierarchy.Joint(name)
			if j.ProxyRadius <= 0 {
				continue
			}
			pos, ok := frame.Position(name)
			if !ok {
				continue
			}
			t, hit := r.IntersectSphere(pos, j.ProxyRadius)
			if hit && (best.Kind == HitNone || t < best.T) {
				best = Hit{Kind: HitJoint, Name: name, T: t}
			}
		}
	}
	if best.Kind == HitJoint {
		return best
	}

	for _, part := range m.BodyParts() {
		lo, hi, ok := frame.PartBounds(part)
		if !ok {
			continue
		}
		t, hit := r.IntersectAABB(NewAABB(lo, hi))
		if hit && (best.Kind == HitNone || t < best.T) {
			best = Hit{Kind: HitBodyPart, Name: part.Name, T: t}
		}
	}
	return best
}

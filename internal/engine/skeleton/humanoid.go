package skeleton

import (
	"fmt"

	"github.com/Faultbox/anypose/pkg/math"
)

// HumanoidName is the model name used by BuildHumanoid.
const HumanoidName = "HumanModel"

type jointSpec struct {
	name   string
	pos    math.Vec3 // model coordinates
	parent string
}

type side struct {
	prefix string  // "Left" or "Right"
	part   string  // body part prefix
	dir    float32 // -1 left, +1 right
}

var sides = []side{
	{prefix: "Left", part: "left", dir: -1},
	{prefix: "Right", part: "right", dir: 1},
}

func v3(x, y, z float32) math.Vec3 {
	return math.Vec3{X: x, Y: y, Z: z}
}

func humanoidJoints() []jointSpec {
	specs := []jointSpec{
		{"Hips", v3(0, 0, 0), ""},
		{"Spine", v3(0, 0.5, 0), "Hips"},
		{"Spine1", v3(0, 1.2, 0), "Spine"},
		{"Spine2", v3(0, 2, 0), "Spine1"},
		{"Neck", v3(0, 2.8, 0), "Spine2"},
		{"Head", v3(0, 3.2, 0), "Neck"},
		{"HeadTop_End", v3(0, 4, 0), "Head"},
	}

	for _, s := range sides {
		d := s.dir
		p := s.prefix
		specs = append(specs,
			jointSpec{p + "Shoulder", v3(d*1.0, 2.4, 0), "Spine2"},
			jointSpec{p + "Arm", v3(d*1.2, 2.1, 0), p + "Shoulder"},
			jointSpec{p + "ForeArm", v3(d*1.2, 1.05, 0), p + "Arm"},
			jointSpec{p + "Hand", v3(d*1.2, -0.25, 0), p + "ForeArm"},
			jointSpec{p + "HandThumb1", v3(d*1.35, -0.35, 0.1), p + "Hand"},
			jointSpec{p + "HandIndex1", v3(d*1.35, -0.45, 0.05), p + "Hand"},
			jointSpec{p + "HandMiddle1", v3(d*1.35, -0.45, 0), p + "Hand"},
			jointSpec{p + "HandRing1", v3(d*1.35, -0.45, -0.05), p + "Hand"},
			jointSpec{p + "HandPinky1", v3(d*1.35, -0.45, -0.1), p + "Hand"},
		)
	}

	for _, s := range sides {
		d := s.dir
		p := s.prefix
		specs = append(specs,
			jointSpec{p + "UpLeg", v3(d*0.4, -0.1, 0), "Hips"},
			jointSpec{p + "Leg", v3(d*0.4, -1.9, 0), p + "UpLeg"},
			jointSpec{p + "Foot", v3(d*0.4, -3.5, 0), p + "Leg"},
			jointSpec{p + "ToeBase", v3(d*0.4, -3.8, 0.3), p + "Foot"},
			jointSpec{p + "Toe_End", v3(d*0.4, -3.8, 0.5), p + "ToeBase"},
		)
	}
	return specs
}

func humanoidParts() []BodyPart {
	parts := []BodyPart{
		{Name: "waist", Joint: "Spine", HalfExtents: v3(0.8, 0.5, 0.8)},
		{Name: "chest", Joint: "Spine2", HalfExtents: v3(0.9, 0.75, 0.9)},
		{Name: "head", Joint: "Head", Offset: v3(0, 0.3, 0), HalfExtents: v3(0.5, 0.5, 0.5)},
	}
	for _, s := range sides {
		p := s.prefix
		parts = append(parts,
			BodyPart{Name: s.part + "_upper_arm", Joint: p + "Arm", Offset: v3(0, -0.5, 0), HalfExtents: v3(0.3, 0.6, 0.3)},
			BodyPart{Name: s.part + "_forearm", Joint: p + "ForeArm", Offset: v3(0, -0.5, 0), HalfExtents: v3(0.25, 0.5, 0.25)},
			BodyPart{Name: s.part + "_hand", Joint: p + "Hand", HalfExtents: v3(0.15, 0.15, 0.15)},
			BodyPart{Name: s.part + "_thigh", Joint: p + "UpLeg", Offset: v3(0, -0.9, 0), HalfExtents: v3(0.35, 0.9, 0.35)},
			BodyPart{Name: s.part + "_calf", Joint: p + "Leg", Offset: v3(0, -0.8, 0), HalfExtents: v3(0.25, 0.8, 0.25)},
			BodyPart{Name: s.part + "_foot", Joint: p + "Foot", Offset: v3(0, -0.1, 0.2), HalfExtents: v3(0.15, 0.1, 0.4)},
		)
	}
	return parts
}

// BuildHumanoid builds the placeholder humanoid: a Hips-rooted tree with a
// three-segment spine, neck and head, shoulder/arm/forearm/hand chains with
// five finger joints each, and upper-leg/leg/foot/toe chains, plus the body
// part boxes attached to them.
func BuildHumanoid() (*Model, error) {
	m := NewModel(HumanoidName)
	for _, s := range humanoidJoints() {
		if _, err := m.Hierarchy.CreateJoint(s.name, s.pos, s.parent); err != nil {
			return nil, fmt.Errorf("building humanoid: %w", err)
		}
	}
	for _, p := range humanoidParts() {
		if err := m.AttachBodyPart(p); err != nil {
			return nil, fmt.Errorf("building humanoid: %w", err)
		}
	}
	return m, nil
}

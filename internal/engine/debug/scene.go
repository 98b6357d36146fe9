package debug

import (
	"github.com/Faultbox/anypose/internal/engine/interaction"
	"github.com/Faultbox/anypose/internal/engine/skeleton"
	"github.com/Faultbox/anypose/pkg/math"
)

// Scene colors.
var (
	BoneColor     = Color{0.85, 0.85, 0.9}
	BodyColor     = Color{0.45, 0.55, 0.65}
	JointColor    = Color{0.2, 0.6, 0.9}
	HoverColor    = Color{1.0, 0.85, 0.2}
	SelectedColor = Color{1.0, 0.35, 0.1}
	RingX         = Color{0.9, 0.2, 0.2}
	RingY         = Color{0.2, 0.9, 0.2}
	RingZ         = Color{0.2, 0.3, 0.95}
)

// JointSegments is the polyline resolution of joint proxy circles.
const JointSegments = 12

// RingSegments is the polyline resolution of gizmo rings.
const RingSegments = 48

// StyleColor maps a joint style to its proxy color.
func StyleColor(s interaction.Style) Color {
	switch s {
	case interaction.StyleHover:
		return HoverColor
	case interaction.StyleSelected:
		return SelectedColor
	default:
		return JointColor
	}
}

// StyleFunc returns the current style of a joint.
type StyleFunc func(joint string) interaction.Style

// Model adds a model's body part boxes, bone segments and, when visible, its
// joint proxies. frame must be the model's snapshot for this frame.
func (l *Lines) Model(m *skeleton.Model, frame skeleton.Frame, style StyleFunc) {
	if m == nil {
		return
	}
	for _, part := range m.BodyParts() {
		if corners, ok := frame.PartCorners(part); ok {
			l.Box(corners, BodyColor)
		}
	}

	h := m.Hierarchy
	for _, name := range h.Names() {
		j, _ := h.Joint(name)
		pos, _ := frame.Position(name)
		if j.Parent != "" {
			if pp, ok := frame.Position(j.Parent); ok {
				l.Line(pp, pos, BoneColor)
			}
		}
		if !m.JointsVisible() || j.ProxyRadius <= 0 {
			continue
		}
		s := interaction.StyleNormal
		if style != nil {
			s = style(name)
		}
		l.Sphere(pos, j.ProxyRadius, JointSegments, StyleColor(s))
	}
}

// RotationRings adds the three rotation rings of a gizmo around a joint,
// oriented by the joint's world transform.
func (l *Lines) RotationRings(world math.Mat4, radius float32) {
	center := world.Translation()
	x := world.Column(0).Normalize()
	y := world.Column(1).Normalize()
	z := world.Column(2).Normalize()
	l.Circle(center, y, z, radius, RingSegments, RingX)
	l.Circle(center, z, x, radius, RingSegments, RingY)
	l.Circle(center, x, y, radius, RingSegments, RingZ)
}

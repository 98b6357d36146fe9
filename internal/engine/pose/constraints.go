// Package pose mutates joint rotations and keeps them inside the per-joint
// angular limits.
package pose

import (
	"fmt"
	gomath "math"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/anypose/pkg/math"
)

// Range is a closed interval of allowed angles in radians.
type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// Validate implements validation.Validatable.
func (r Range) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Max, validation.Min(r.Min).Error("must not be less than min")),
	)
}

// Clamp returns v limited to the range.
func (r Range) Clamp(v float32) float32 {
	return math.Clamp(v, r.Min, r.Max)
}

// AxisLimits holds optional per-axis ranges. A nil axis is unconstrained.
type AxisLimits struct {
	X *Range `yaml:"x,omitempty"`
	Y *Range `yaml:"y,omitempty"`
	Z *Range `yaml:"z,omitempty"`
}

// Validate implements validation.Validatable.
func (a AxisLimits) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.X),
		validation.Field(&a.Y),
		validation.Field(&a.Z),
	)
}

// Clamp limits every constrained axis of e.
func (a AxisLimits) Clamp(e math.Euler) math.Euler {
	if a.X != nil {
		e.X = a.X.Clamp(e.X)
	}
	if a.Y != nil {
		e.Y = a.Y.Clamp(e.Y)
	}
	if a.Z != nil {
		e.Z = a.Z.Clamp(e.Z)
	}
	return e
}

// Table maps joint names to their limits. Joints without an entry rotate
// freely.
type Table map[string]AxisLimits

// Validate implements validation.Validatable.
func (t Table) Validate() error {
	return validation.Validate(map[string]AxisLimits(t))
}

// Lookup returns the limits for a joint. Namespaced names such as
// "mixamorig:LeftForeArm" fall back to the part after the last colon.
func (t Table) Lookup(joint string) (AxisLimits, bool) {
	if l, ok := t[joint]; ok {
		return l, true
	}
	if i := strings.LastIndexByte(joint, ':'); i >= 0 {
		l, ok := t[joint[i+1:]]
		return l, ok
	}
	return AxisLimits{}, false
}

// Clamp applies the joint's limits to e. Unconstrained joints pass through.
func (t Table) Clamp(joint string, e math.Euler) math.Euler {
	l, ok := t.Lookup(joint)
	if !ok {
		return e
	}
	return l.Clamp(e)
}

func sym(a float32) *Range {
	return &Range{Min: -a, Max: a}
}

func span(lo, hi float32) *Range {
	return &Range{Min: lo, Max: hi}
}

// DefaultConstraints returns the built-in humanoid limits.
func DefaultConstraints() Table {
	const pi = float32(gomath.Pi)

	t := Table{
		"Hips":   {X: sym(pi / 4), Y: sym(pi / 4), Z: sym(pi / 4)},
		"Spine":  {X: sym(pi / 6), Y: sym(pi / 6), Z: sym(pi / 6)},
		"Spine1": {X: sym(pi / 6), Y: sym(pi / 6), Z: sym(pi / 6)},
		"Spine2": {X: sym(pi / 6), Y: sym(pi / 6), Z: sym(pi / 6)},
		"Neck":   {X: sym(pi / 4), Y: sym(pi / 3), Z: sym(pi / 4)},
		"Head":   {X: sym(pi / 6), Y: sym(pi / 4), Z: sym(pi / 6)},

		"LeftUpLeg":  {X: span(-pi/3, pi/2), Y: span(-pi/6, pi/3), Z: sym(pi / 6)},
		"RightUpLeg": {X: span(-pi/3, pi/2), Y: span(-pi/3, pi/6), Z: sym(pi / 6)},
	}

	for _, side := range []string{"Left", "Right"} {
		t[side+"Shoulder"] = AxisLimits{X: span(-pi/2, pi), Y: sym(pi / 2), Z: sym(pi / 3)}
		t[side+"Arm"] = AxisLimits{X: span(-pi/2, pi), Y: sym(pi / 2), Z: sym(pi / 3)}
		t[side+"ForeArm"] = AxisLimits{X: span(0, pi*0.8), Y: sym(pi / 12), Z: sym(pi / 12)}
		t[side+"Hand"] = AxisLimits{X: sym(pi / 4), Y: sym(pi / 6), Z: sym(pi / 6)}
		t[side+"Leg"] = AxisLimits{X: span(-pi*0.8, 0), Y: sym(pi / 24), Z: sym(pi / 24)}
		t[side+"Foot"] = AxisLimits{X: span(-pi/4, pi/6), Y: sym(pi / 12), Z: sym(pi / 12)}
	}
	return t
}

// ParseConstraints decodes and validates a YAML constraint table.
//
//	LeftForeArm:
//	  x: {min: 0, max: 2.513}
//	  y: {min: -0.26, max: 0.26}
func ParseConstraints(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing constraints: %w", err)
	}
	if t == nil {
		t = Table{}
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constraints: %w", err)
	}
	return t, nil
}

// LoadConstraints reads a constraint table from disk.
func LoadConstraints(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParseConstraints(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

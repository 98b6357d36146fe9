package camera

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/anypose/pkg/math"
)

// Preset is a named camera placement.
type Preset struct {
	Position math.Vec3
	Target   math.Vec3
}

// Preset names.
const (
	PresetFront     = "front"
	PresetBack      = "back"
	PresetLeft      = "left"
	PresetRight     = "right"
	PresetTop       = "top"
	PresetBottom    = "bottom"
	PresetIsometric = "isometric"
)

var presets = map[string]Preset{
	PresetFront:     {Position: math.Vec3{Z: 8}},
	PresetBack:      {Position: math.Vec3{Z: -8}},
	PresetLeft:      {Position: math.Vec3{X: -8}},
	PresetRight:     {Position: math.Vec3{X: 8}},
	PresetTop:       {Position: math.Vec3{Y: 8}},
	PresetBottom:    {Position: math.Vec3{Y: -8}},
	PresetIsometric: {Position: math.Vec3{X: 5, Y: 5, Z: 5}},
}

// LookupPreset returns a preset by name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames returns all preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// transition is an in-flight camera move.
type transition struct {
	active   bool
	elapsed  time.Duration
	duration time.Duration

	fromPos, toPos       math.Vec3
	fromTarget, toTarget math.Vec3
}

// easeInOutQuad maps linear progress in [0, 1] onto an ease-in-out curve.
func easeInOutQuad(p float32) float32 {
	if p < 0.5 {
		return 2 * p * p
	}
	q := -2*p + 2
	return 1 - q*q/2
}

// SetPreset moves the camera to a named preset, animated or immediately.
// Unknown names are logged and ignored. It reports whether the move started.
func (o *Orbit) SetPreset(name string, animate bool) bool {
	p, ok := presets[name]
	if !ok {
		o.log.Warn("camera preset not found", zap.String("preset", name))
		return false
	}
	if !animate {
		o.transition = transition{}
		o.clearDeltas()
		o.place(p.Position, p.Target)
		o.log.Debug("camera preset applied", zap.String("preset", name))
		return true
	}
	return o.AnimateTo(p.Position, p.Target)
}

// Reset animates back to the isometric view.
func (o *Orbit) Reset() bool {
	return o.SetPreset(PresetIsometric, true)
}

// AnimateTo starts a transition to a new position and target over
// TransitionDuration. A request made while a transition is running is
// ignored and reports false.
func (o *Orbit) AnimateTo(position, target math.Vec3) bool {
	if o.transition.active {
		o.log.Debug("camera transition already running, request ignored")
		return false
	}
	o.clearDeltas()
	o.transition = transition{
		active:     true,
		duration:   o.TransitionDuration,
		fromPos:    o.position,
		toPos:      position,
		fromTarget: o.target,
		toTarget:   target,
	}
	if o.transition.duration <= 0 {
		o.finishTransition()
	}
	return true
}

// Animating reports whether a transition is running.
func (o *Orbit) Animating() bool {
	return o.transition.active
}

func (o *Orbit) stepTransition(dt time.Duration) {
	tr := &o.transition
	tr.elapsed += dt
	if tr.elapsed >= tr.duration {
		o.finishTransition()
		return
	}
	o.clearDeltas()

	e := easeInOutQuad(float32(tr.elapsed) / float32(tr.duration))
	o.place(tr.fromPos.Lerp(tr.toPos, e), tr.fromTarget.Lerp(tr.toTarget, e))
}

func (o *Orbit) finishTransition() {
	o.clearDeltas()
	o.place(o.transition.toPos, o.transition.toTarget)
	o.transition = transition{}
}

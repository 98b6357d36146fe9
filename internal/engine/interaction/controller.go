package interaction

import (
	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/engine/picking"
	"github.com/Faultbox/anypose/internal/engine/skeleton"
	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/pkg/math"
)

// State is the interaction state.
type State int

const (
	Idle State = iota
	Hovering
	Selected
	Dragging
)

func (s State) String() string {
	switch s {
	case Hovering:
		return "hovering"
	case Selected:
		return "selected"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// DefaultClickSlop is the maximum pointer travel in pixels between down and
// up for the pair to count as a click.
const DefaultClickSlop = 4

// gizmoHolder is the focus lease taken while a gizmo drag is in progress.
const gizmoHolder = "gizmo"

// SelectFunc is called when the selection changes. joint is empty on
// deselection.
type SelectFunc func(joint string)

// Controller is the hover/select/drag state machine. It owns joint styles and
// gizmo attachment, and it is the only component that moves pointer focus
// between the gizmo and the camera.
type Controller struct {
	model   *skeleton.Model
	rays    RayCaster
	gizmo   Gizmo
	styles  Highlighter
	camera  PointerConsumer
	focus   *FocusArbiter
	enabled bool

	hovered  string
	selected string
	dragging bool

	down       bool
	downButton Button
	downAt     math.Vec2
	last       math.Vec2

	clickSlop float32
	onSelect  []SelectFunc
	log       *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClickSlop sets the click travel tolerance in pixels.
func WithClickSlop(px float32) Option {
	return func(c *Controller) {
		c.clickSlop = px
	}
}

// WithCamera forwards unused pointer events to consumer.
func WithCamera(consumer PointerConsumer) Option {
	return func(c *Controller) {
		c.camera = consumer
	}
}

// WithFocus routes pointer focus through arbiter.
func WithFocus(arbiter *FocusArbiter) Option {
	return func(c *Controller) {
		c.focus = arbiter
	}
}

// NewController creates an enabled controller for model. gizmo and styles
// may be nil.
func NewController(model *skeleton.Model, rays RayCaster, gizmo Gizmo, styles Highlighter, opts ...Option) *Controller {
	c := &Controller{
		model:     model,
		rays:      rays,
		gizmo:     gizmo,
		styles:    styles,
		enabled:   true,
		clickSlop: DefaultClickSlop,
		log:       logger.Named("interaction"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.focus == nil {
		c.focus = NewFocusArbiter(nil)
	}
	return c
}

// State returns the current state. A drag wins over a selection, and a
// selection wins over hover.
func (c *Controller) State() State {
	switch {
	case c.dragging:
		return Dragging
	case c.selected != "":
		return Selected
	case c.hovered != "":
		return Hovering
	default:
		return Idle
	}
}

// Selected returns the selected joint, if any.
func (c *Controller) Selected() (string, bool) {
	return c.selected, c.selected != ""
}

// Hovered returns the joint under the pointer, if any.
func (c *Controller) Hovered() (string, bool) {
	return c.hovered, c.hovered != ""
}

// Enabled reports whether joint interaction is on.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// OnSelect registers a selection listener.
func (c *Controller) OnSelect(fn SelectFunc) {
	c.onSelect = append(c.onSelect, fn)
}

// SetModel swaps the interactive model. Selection and hover are cleared.
func (c *Controller) SetModel(m *skeleton.Model) {
	c.Deselect()
	c.setHover("")
	c.model = m
}

// SetEnabled turns joint interaction on or off. Disabling clears the
// selection and hover; the camera keeps receiving pointer events.
func (c *Controller) SetEnabled(enabled bool) {
	if c.enabled == enabled {
		return
	}
	if !enabled {
		c.Deselect()
		c.setHover("")
	}
	c.enabled = enabled
	c.log.Info("joint interaction toggled", zap.Bool("enabled", enabled))
}

// Select selects a joint programmatically.
func (c *Controller) Select(joint string) bool {
	if c.model == nil || !c.model.Hierarchy.Has(joint) {
		c.log.Warn("cannot select unknown joint", zap.String("joint", joint))
		return false
	}
	if c.selected == joint {
		return true
	}
	c.Deselect()

	c.selected = joint
	c.style(joint, StyleSelected)
	if c.gizmo != nil {
		c.gizmo.Attach(joint)
	}
	c.log.Debug("joint selected", zap.String("joint", joint))
	c.notify(joint)
	return true
}

// Deselect clears the selection and detaches the gizmo.
func (c *Controller) Deselect() {
	if c.selected == "" {
		return
	}
	if c.dragging {
		c.endDrag()
	}
	prev := c.selected
	c.selected = ""
	if c.gizmo != nil {
		c.gizmo.Detach()
	}
	if c.hovered == prev {
		c.style(prev, StyleHover)
	} else {
		c.style(prev, StyleNormal)
	}
	c.log.Debug("joint deselected", zap.String("joint", prev))
	c.notify("")
}

// PointerDown starts a gizmo drag when the press lands on the gizmo handle of
// the selected joint. A press on another joint proxy inside the handle is left
// for the click that selects it. Otherwise the event goes to the camera.
func (c *Controller) PointerDown(p Pointer) {
	c.down = true
	c.downButton = p.Button
	c.downAt = p.Pos()
	c.last = p.Pos()

	if c.enabled && c.selected != "" && p.Button == ButtonLeft && c.gizmo != nil && c.rays != nil {
		if c.gizmo.HitHandle(c.rays.ScreenToRay(p.X, p.Y)) && !c.onOtherJoint(p) {
			c.dragging = true
			c.focus.Acquire(gizmoHolder)
			c.gizmo.BeginDrag()
			c.log.Debug("gizmo drag started", zap.String("joint", c.selected))
			return
		}
	}
	c.forwardDown(p)
}

// PointerMove drives an active drag, or updates hover and feeds the camera.
func (c *Controller) PointerMove(p Pointer) {
	d := p.Pos().Sub(c.last)
	c.last = p.Pos()

	if c.dragging {
		c.gizmo.Drag(d.X, d.Y, p.Shift)
		return
	}
	if c.camera != nil {
		c.camera.PointerMove(p)
	}
	if !c.enabled {
		return
	}

	hit := c.pick(p)
	if hit.Kind == picking.HitJoint {
		c.setHover(hit.Name)
	} else {
		c.setHover("")
	}
}

// PointerUp ends a drag, or synthesizes a click when the pointer barely moved
// since it went down.
func (c *Controller) PointerUp(p Pointer) {
	wasDown := c.down
	c.down = false

	if c.dragging {
		c.endDrag()
		return
	}
	if c.camera != nil {
		c.camera.PointerUp(p)
	}

	if !wasDown || !c.enabled || p.Button != ButtonLeft || c.downButton != ButtonLeft {
		return
	}
	if p.Pos().Distance(c.downAt) > c.clickSlop {
		return
	}
	c.click(p)
}

// Wheel is passed straight to the camera unless a drag holds the pointer.
func (c *Controller) Wheel(delta float32) {
	if c.dragging || c.camera == nil {
		return
	}
	c.camera.Wheel(delta)
}

func (c *Controller) forwardDown(p Pointer) {
	if c.camera != nil {
		c.camera.PointerDown(p)
	}
}

func (c *Controller) click(p Pointer) {
	hit := c.pick(p)
	switch hit.Kind {
	case picking.HitJoint:
		c.Select(hit.Name)
	case picking.HitBodyPart:
		c.log.Debug("click on body part", zap.String("part", hit.Name))
		c.Deselect()
	default:
		c.Deselect()
	}
}

// onOtherJoint reports whether p is over a joint proxy other than the
// selected one.
func (c *Controller) onOtherJoint(p Pointer) bool {
	hit := c.pick(p)
	return hit.Kind == picking.HitJoint && hit.Name != c.selected
}

func (c *Controller) endDrag() {
	c.dragging = false
	c.gizmo.EndDrag()
	c.focus.Release(gizmoHolder)
	c.log.Debug("gizmo drag ended", zap.String("joint", c.selected))
}

func (c *Controller) pick(p Pointer) picking.Hit {
	if c.model == nil || c.rays == nil {
		return picking.Hit{}
	}
	return picking.Pick(c.rays.ScreenToRay(p.X, p.Y), c.model, c.model.Hierarchy.Snapshot())
}

// setHover moves the hover highlight. The selected joint keeps its style.
func (c *Controller) setHover(joint string) {
	if c.hovered == joint {
		return
	}
	if c.hovered != "" && c.hovered != c.selected {
		c.style(c.hovered, StyleNormal)
	}
	c.hovered = joint
	if joint != "" && joint != c.selected {
		c.style(joint, StyleHover)
	}
}

func (c *Controller) style(joint string, s Style) {
	if c.styles != nil {
		c.styles.SetJointStyle(joint, s)
	}
}

func (c *Controller) notify(joint string) {
	for _, fn := range c.onSelect {
		fn(joint)
	}
}

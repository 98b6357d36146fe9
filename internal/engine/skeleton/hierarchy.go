package skeleton

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/pkg/math"
)

// Hierarchy is a single rooted tree of joints keyed by name.
type Hierarchy struct {
	joints map[string]*Joint
	order  []string // creation order; parents always precede children
	root   string

	stale map[string]struct{}
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		joints: make(map[string]*Joint),
		stale:  make(map[string]struct{}),
	}
}

// CreateJoint registers a joint.
//
// position is given in model coordinates. When parent is set, the joint is
// appended to the parent's children and its local position becomes the offset
// from the parent's world position at creation time. Without a parent the
// joint becomes the root; only one root is allowed.
func (h *Hierarchy) CreateJoint(name string, position math.Vec3, parent string) (*Joint, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, exists := h.joints[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJoint, name)
	}

	j := &Joint{
		Name:          name,
		LocalPosition: position,
		Parent:        parent,
		ProxyRadius:   DefaultProxyRadius,
	}

	if parent == "" {
		if h.root != "" {
			return nil, fmt.Errorf("%w: %s (root is %s)", ErrSecondRoot, name, h.root)
		}
		h.root = name
	} else {
		p, ok := h.joints[parent]
		if !ok {
			return nil, fmt.Errorf("%w: %s (joint %s)", ErrUnknownParent, parent, name)
		}
		parentWorld, _ := h.WorldPosition(parent)
		j.LocalPosition = position.Sub(parentWorld)
		p.children = append(p.children, name)
	}

	h.joints[name] = j
	h.order = append(h.order, name)

	logger.Debug("joint created",
		zap.String("joint", name),
		zap.String("parent", parent),
		logger.Vec3("local", j.LocalPosition),
	)
	return j, nil
}

// Len returns the number of joints.
func (h *Hierarchy) Len() int {
	return len(h.order)
}

// Root returns the root joint name, empty if no joint exists yet.
func (h *Hierarchy) Root() string {
	return h.root
}

// Names returns joint names in creation order, parents before children.
func (h *Hierarchy) Names() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Has reports whether a joint exists.
func (h *Hierarchy) Has(name string) bool {
	_, ok := h.joints[name]
	return ok
}

// Joint returns a joint by name.
func (h *Hierarchy) Joint(name string) (*Joint, bool) {
	j, ok := h.joints[name]
	return j, ok
}

// Children returns the ordered child names of a joint.
func (h *Hierarchy) Children(name string) []string {
	j, ok := h.joints[name]
	if !ok {
		return nil
	}
	return j.children
}

// Descendants returns every joint below name in pre-order, excluding name.
func (h *Hierarchy) Descendants(name string) []string {
	j, ok := h.joints[name]
	if !ok {
		return nil
	}
	var out []string
	stack := make([]string, 0, len(j.children))
	for i := len(j.children) - 1; i >= 0; i-- {
		stack = append(stack, j.children[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		c := h.joints[n].children
		for i := len(c) - 1; i >= 0; i-- {
			stack = append(stack, c[i])
		}
	}
	return out
}

// Depth returns the number of edges between the root and name, -1 if unknown.
func (h *Hierarchy) Depth(name string) int {
	j, ok := h.joints[name]
	if !ok {
		return -1
	}
	d := 0
	for j.Parent != "" {
		j = h.joints[j.Parent]
		d++
	}
	return d
}

// path returns the chain of joints from the root down to name.
func (h *Hierarchy) path(name string) []*Joint {
	var chain []*Joint
	for j, ok := h.joints[name]; ok; j, ok = h.joints[j.Parent] {
		chain = append(chain, j)
		if j.Parent == "" {
			break
		}
	}
	for i, k := 0, len(chain)-1; i < k; i, k = i+1, k-1 {
		chain[i], chain[k] = chain[k], chain[i]
	}
	return chain
}

// WorldTransform folds the local transforms from the root down to name.
// The result is never cached. An unknown name logs a warning and returns
// the identity.
func (h *Hierarchy) WorldTransform(name string) (math.Mat4, bool) {
	if !h.Has(name) {
		logger.Warn("world transform requested for unknown joint", zap.String("joint", name))
		return math.Identity(), false
	}
	world := math.Identity()
	for _, j := range h.path(name) {
		world = world.Mul(j.LocalTransform())
	}
	return world, true
}

// WorldPosition returns the joint origin in model coordinates.
func (h *Hierarchy) WorldPosition(name string) (math.Vec3, bool) {
	m, ok := h.WorldTransform(name)
	if !ok {
		return math.Vec3{}, false
	}
	return m.Translation(), true
}

// SetRotation replaces a joint's rotation and marks it and its descendants
// stale. Constraints are not applied here; pose.Controller is the intended
// caller.
func (h *Hierarchy) SetRotation(name string, rot math.Euler) bool {
	j, ok := h.joints[name]
	if !ok {
		logger.Warn("rotation set on unknown joint", zap.String("joint", name))
		return false
	}
	if j.rotation == rot {
		return true
	}
	j.rotation = rot
	h.markStale(name)
	return true
}

func (h *Hierarchy) markStale(name string) {
	h.stale[name] = struct{}{}
	for _, d := range h.Descendants(name) {
		h.stale[d] = struct{}{}
	}
}

// Stale returns the joints whose world transforms changed since the last
// ClearStale, in creation order.
func (h *Hierarchy) Stale() []string {
	if len(h.stale) == 0 {
		return nil
	}
	out := make([]string, 0, len(h.stale))
	for _, n := range h.order {
		if _, ok := h.stale[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ClearStale forgets all stale marks.
func (h *Hierarchy) ClearStale() {
	clear(h.stale)
}

// Frame holds world transforms for every joint, computed once.
// It is only valid for the frame it was taken in.
type Frame map[string]math.Mat4

// Snapshot computes all world transforms in a single root-to-leaf pass.
func (h *Hierarchy) Snapshot() Frame {
	f := make(Frame, len(h.order))
	for _, n := range h.order {
		j := h.joints[n]
		if j.Parent == "" {
			f[n] = j.LocalTransform()
			continue
		}
		f[n] = f[j.Parent].Mul(j.LocalTransform())
	}
	return f
}

// Position returns the world position of a joint in the frame.
func (f Frame) Position(name string) (math.Vec3, bool) {
	m, ok := f[name]
	if !ok {
		return math.Vec3{}, false
	}
	return m.Translation(), true
}

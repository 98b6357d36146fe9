// Package studio wires the posing core together: the model and its pose, the
// rotation gizmo, joint interaction and the orbit camera. It holds no GL or
// SDL state, so the viewer drives it with already-translated input.
package studio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/config"
	"github.com/Faultbox/anypose/internal/engine/camera"
	"github.com/Faultbox/anypose/internal/engine/gizmo"
	"github.com/Faultbox/anypose/internal/engine/interaction"
	"github.com/Faultbox/anypose/internal/engine/pose"
	"github.com/Faultbox/anypose/internal/engine/skeleton"
	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/pkg/math"
)

// Title is the base window title.
const Title = "AnyPose"

// ErrNoSkeleton is returned when a bone file holds no bones to pose.
var ErrNoSkeleton = errors.New("no skeleton in bone file")

// PresetKeys maps number keys 1..7 to camera presets.
var PresetKeys = []string{
	camera.PresetFront,
	camera.PresetBack,
	camera.PresetLeft,
	camera.PresetRight,
	camera.PresetTop,
	camera.PresetBottom,
	camera.PresetIsometric,
}

// Session is one posing session over a single model.
type Session struct {
	Camera      *camera.Orbit
	Gizmo       *gizmo.Rotate
	Interaction *interaction.Controller
	Focus       *interaction.FocusArbiter

	model       *skeleton.Model
	pose        *pose.Controller
	frame       skeleton.Frame
	proxyRadius float32
	log         *zap.Logger
}

// NewSession builds a session from cfg. styles receives joint highlights and
// may be nil. The humanoid is used unless cfg names a bone file.
func NewSession(cfg *config.Config, styles interaction.Highlighter) (*Session, error) {
	s := &Session{
		proxyRadius: cfg.Rig.ProxyRadius,
		log:         logger.Named("studio"),
	}
	if s.proxyRadius <= 0 {
		s.proxyRadius = skeleton.DefaultBoneProxyRadius
	}

	limits := pose.DefaultConstraints()
	if cfg.Rig.ConstraintsFile != "" {
		t, err := pose.LoadConstraints(cfg.Rig.ConstraintsFile)
		if err != nil {
			return nil, fmt.Errorf("loading constraints: %w", err)
		}
		limits = t
	}

	var err error
	if cfg.Rig.BoneFile != "" {
		s.model, err = s.buildFromBoneFile(cfg.Rig.BoneFile)
		if errors.Is(err, ErrNoSkeleton) {
			s.log.Warn("bone file has no skeleton, using the humanoid", zap.String("path", cfg.Rig.BoneFile))
			err = nil
		}
	}
	if s.model == nil && err == nil {
		s.model, err = skeleton.BuildHumanoid()
	}
	if err != nil {
		return nil, err
	}
	s.model.SetJointsVisible(cfg.Interaction.ShowJoints)
	s.pose = pose.NewController(s.model.Hierarchy, limits)

	s.Camera = camera.NewOrbit(cfg.Viewport.Width, cfg.Viewport.Height)
	cfg.Camera.Apply(s.Camera)
	s.Focus = interaction.NewFocusArbiter(s.Camera)

	s.Gizmo = gizmo.NewRotate(s.model.Hierarchy)
	s.Gizmo.HandleRadius = cfg.Interaction.GizmoRadius
	s.Gizmo.Sensitivity = cfg.Interaction.GizmoSensitivity
	s.Gizmo.OnChange(func(joint string, delta math.Euler) {
		s.pose.AddRotation(joint, pose.Full(delta))
	})

	s.Interaction = interaction.NewController(s.model, s.Camera, s.Gizmo, styles,
		interaction.WithClickSlop(cfg.Interaction.ClickSlop),
		interaction.WithCamera(s.Camera),
		interaction.WithFocus(s.Focus),
	)

	s.log.Info("session ready",
		zap.String("model", s.model.Name),
		zap.Int("joints", s.model.Hierarchy.Len()),
		zap.Int("constraints", len(limits)),
	)
	return s, nil
}

// Model returns the posed model.
func (s *Session) Model() *skeleton.Model {
	return s.model
}

// Pose returns the pose controller of the current model.
func (s *Session) Pose() *pose.Controller {
	return s.pose
}

func (s *Session) buildFromBoneFile(path string) (*skeleton.Model, error) {
	f, err := skeleton.LoadBoneFile(path)
	if err != nil {
		return nil, err
	}
	m, err := skeleton.BuildBoneProxies(f.Model.Name, f, f.Transform(), s.proxyRadius)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSkeleton)
	}
	return m, nil
}

// LoadBoneFile replaces the model with joint proxies for an imported rig.
// The active constraint table carries over. On error, including a file with
// no bones, the current model is kept.
func (s *Session) LoadBoneFile(path string) error {
	m, err := s.buildFromBoneFile(path)
	if err != nil {
		s.log.Warn("bone file rejected", zap.String("path", path), zap.Error(err))
		return err
	}
	s.SetModel(m)
	return nil
}

// SetModel swaps the posed model, dropping any selection on the old one.
func (s *Session) SetModel(m *skeleton.Model) {
	m.SetJointsVisible(s.model.JointsVisible())
	limits := s.pose.Constraints()

	s.Interaction.SetModel(m)
	s.Gizmo.SetHierarchy(m.Hierarchy)
	s.model = m
	s.pose = pose.NewController(m.Hierarchy, limits)
	s.frame = nil

	s.log.Info("model loaded",
		zap.String("model", m.Name),
		zap.Int("joints", m.Hierarchy.Len()),
	)
}

// SetConstraints replaces the constraint table, re-clamping the pose.
func (s *Session) SetConstraints(t pose.Table) {
	s.pose.SetConstraints(t)
}

// PresetKey applies the camera preset bound to number key n (1-based).
func (s *Session) PresetKey(n int) bool {
	if n < 1 || n > len(PresetKeys) {
		return false
	}
	return s.Camera.SetPreset(PresetKeys[n-1], true)
}

// ToggleJoints shows or hides the joint proxies. Hidden joints cannot be
// picked, so the selection is dropped with them.
func (s *Session) ToggleJoints() bool {
	visible := !s.model.JointsVisible()
	if !visible {
		s.Interaction.Deselect()
	}
	s.model.SetJointsVisible(visible)
	return visible
}

// ResetPose puts every joint back to its rest rotation.
func (s *Session) ResetPose() {
	s.pose.ResetAll()
}

// ResetSelected resets the selected joint, if any.
func (s *Session) ResetSelected() bool {
	joint, ok := s.Interaction.Selected()
	if !ok {
		return false
	}
	return s.pose.ResetJoint(joint)
}

// ResetView animates the camera back to the isometric view.
func (s *Session) ResetView() bool {
	return s.Camera.Reset()
}

// Resize updates the viewport size in window coordinates.
func (s *Session) Resize(width, height int) {
	s.Camera.SetViewport(width, height)
}

// Update advances the camera by one frame.
func (s *Session) Update(dt time.Duration) {
	s.Camera.Update(dt)
}

// Frame returns the current world transforms. They are recomputed only when
// a joint went stale since the last call. The result must not be modified.
func (s *Session) Frame() skeleton.Frame {
	h := s.model.Hierarchy
	if s.frame == nil || len(h.Stale()) > 0 {
		s.frame = h.Snapshot()
		h.ClearStale()
	}
	return s.frame
}

// GizmoTransform returns the world transform the gizmo rings follow.
func (s *Session) GizmoTransform(frame skeleton.Frame) (math.Mat4, bool) {
	joint, ok := s.Gizmo.Attached()
	if !ok {
		return math.Mat4{}, false
	}
	m, ok := frame[joint]
	return m, ok
}

// Title describes the session for the window title bar.
func (s *Session) Title() string {
	var b strings.Builder
	b.WriteString(Title)
	b.WriteString(" - ")
	b.WriteString(s.model.Name)

	joint, ok := s.Interaction.Selected()
	if !ok {
		return b.String()
	}
	rot, _ := s.pose.Rotation(joint)
	d := rot.Degrees()
	fmt.Fprintf(&b, " | %s  X %.1f°  Y %.1f°  Z %.1f°", joint, d[0], d[1], d[2])
	if s.Interaction.State() == interaction.Dragging {
		b.WriteString("  (rotating)")
	}
	return b.String()
}

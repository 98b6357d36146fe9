package skeleton

import (
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/anypose/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func nearVec(a, b math.Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestCreateJointRelativeToParent(t *testing.T) {
	h := NewHierarchy()
	if _, err := h.CreateJoint("Hips", math.Vec3{Y: 1}, ""); err != nil {
		t.Fatalf("root: %v", err)
	}
	j, err := h.CreateJoint("Spine", math.Vec3{X: 0.5, Y: 3}, "Hips")
	if err != nil {
		t.Fatalf("child: %v", err)
	}

	if j.LocalPosition != (math.Vec3{X: 0.5, Y: 2}) {
		t.Errorf("local position: got %v, want (0.5, 2, 0)", j.LocalPosition)
	}
	if got := h.Children("Hips"); len(got) != 1 || got[0] != "Spine" {
		t.Errorf("children of Hips: got %v", got)
	}
	pos, ok := h.WorldPosition("Spine")
	if !ok || !nearVec(pos, math.Vec3{X: 0.5, Y: 3}) {
		t.Errorf("world position: got %v (ok=%v)", pos, ok)
	}
}

func TestCreateJointErrors(t *testing.T) {
	h := NewHierarchy()
	if _, err := h.CreateJoint("Hips", math.Vec3{}, ""); err != nil {
		t.Fatalf("root: %v", err)
	}

	tests := []struct {
		name   string
		joint  string
		parent string
		want   error
	}{
		{"duplicate", "Hips", "", ErrDuplicateJoint},
		{"second root", "Other", "", ErrSecondRoot},
		{"unknown parent", "Spine", "Nope", ErrUnknownParent},
		{"empty name", "", "Hips", ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.CreateJoint(tt.joint, math.Vec3{}, tt.parent)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if h.Len() != 1 {
		t.Errorf("failed inserts must not register joints, have %d", h.Len())
	}
}

func TestWorldTransformOfRootIsLocal(t *testing.T) {
	h := NewHierarchy()
	root, _ := h.CreateJoint("Hips", math.Vec3{X: 1, Y: 2, Z: 3}, "")
	h.SetRotation("Hips", math.Euler{Y: 0.3})

	got, ok := h.WorldTransform("Hips")
	if !ok {
		t.Fatal("root lookup failed")
	}
	want := root.LocalTransform()
	for i := range got {
		if !near(got[i], want[i]) {
			t.Fatalf("element %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestWorldTransformUnknown(t *testing.T) {
	h := NewHierarchy()
	m, ok := h.WorldTransform("Ghost")
	if ok {
		t.Error("expected lookup of unknown joint to fail")
	}
	if m != math.Identity() {
		t.Error("expected identity for unknown joint")
	}
}

func TestAncestorRotationMovesDescendantsRigidly(t *testing.T) {
	m, err := BuildHumanoid()
	if err != nil {
		t.Fatalf("BuildHumanoid: %v", err)
	}
	h := m.Hierarchy

	pivot, _ := h.WorldPosition("Spine1")
	before, _ := h.WorldPosition("LeftShoulder")

	h.SetRotation("Spine1", math.Euler{Y: gomath.Pi / 2})

	after, _ := h.WorldPosition("LeftShoulder")

	// A quarter turn about +Y maps (x, z) offsets to (z, -x).
	off := before.Sub(pivot)
	want := pivot.Add(math.Vec3{X: off.Z, Y: off.Y, Z: -off.X})
	if !nearVec(after, want) {
		t.Errorf("LeftShoulder after spine twist: got %v, want %v", after, want)
	}

	// Joints on the vertical axis above the pivot stay put.
	neck, _ := h.WorldPosition("Neck")
	if !nearVec(neck, math.Vec3{Y: 2.8}) {
		t.Errorf("Neck should not move under a twist about its own axis, got %v", neck)
	}

	// Joints outside the subtree are unaffected.
	leg, _ := h.WorldPosition("LeftUpLeg")
	if !nearVec(leg, math.Vec3{X: -0.4, Y: -0.1}) {
		t.Errorf("LeftUpLeg moved: %v", leg)
	}
}

func TestStaleMarksDescendants(t *testing.T) {
	m, _ := BuildHumanoid()
	h := m.Hierarchy

	h.SetRotation("LeftForeArm", math.Euler{X: 0.5})
	stale := h.Stale()
	want := map[string]bool{
		"LeftForeArm": true, "LeftHand": true, "LeftHandThumb1": true,
		"LeftHandIndex1": true, "LeftHandMiddle1": true, "LeftHandRing1": true,
		"LeftHandPinky1": true,
	}
	if len(stale) != len(want) {
		t.Fatalf("stale: got %v", stale)
	}
	for _, n := range stale {
		if !want[n] {
			t.Errorf("unexpected stale joint %s", n)
		}
	}

	h.ClearStale()
	if len(h.Stale()) != 0 {
		t.Error("ClearStale left marks behind")
	}

	// Setting the same rotation again is not a change.
	h.SetRotation("LeftForeArm", math.Euler{X: 0.5})
	if len(h.Stale()) != 0 {
		t.Error("unchanged rotation marked joints stale")
	}
}

func TestSnapshotMatchesWorldTransform(t *testing.T) {
	m, _ := BuildHumanoid()
	h := m.Hierarchy
	h.SetRotation("Spine", math.Euler{X: 0.2, Z: -0.1})
	h.SetRotation("RightArm", math.Euler{Z: 0.7})

	frame := h.Snapshot()
	for _, n := range h.Names() {
		want, _ := h.WorldTransform(n)
		got := frame[n]
		for i := range got {
			if !near(got[i], want[i]) {
				t.Fatalf("%s element %d: got %f, want %f", n, i, got[i], want[i])
			}
		}
	}
}

func TestDescendantsPreOrder(t *testing.T) {
	m, _ := BuildHumanoid()
	got := m.Hierarchy.Descendants("LeftUpLeg")
	want := []string{"LeftLeg", "LeftFoot", "LeftToeBase", "LeftToe_End"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestHumanoidShape(t *testing.T) {
	m, err := BuildHumanoid()
	if err != nil {
		t.Fatalf("BuildHumanoid: %v", err)
	}
	h := m.Hierarchy

	if h.Root() != "Hips" {
		t.Errorf("root: got %s", h.Root())
	}
	// 7 trunk/head + 2*9 arm + 2*5 leg
	if h.Len() != 35 {
		t.Errorf("joint count: got %d, want 35", h.Len())
	}
	if d := h.Depth("LeftHandPinky1"); d != 8 {
		t.Errorf("finger depth: got %d, want 8", d)
	}
	if len(m.BodyParts()) != 15 {
		t.Errorf("body parts: got %d, want 15", len(m.BodyParts()))
	}

	for _, n := range h.Names() {
		pos, _ := h.WorldPosition(n)
		for _, s := range humanoidJoints() {
			if s.name == n && !nearVec(pos, s.pos) {
				t.Errorf("%s: world %v, authored %v", n, pos, s.pos)
			}
		}
	}
}

func TestPartBoundsFollowJoint(t *testing.T) {
	m, _ := BuildHumanoid()
	var forearm BodyPart
	for _, p := range m.BodyParts() {
		if p.Name == "left_forearm" {
			forearm = p
		}
	}

	lo, hi, ok := m.Hierarchy.Snapshot().PartBounds(forearm)
	if !ok {
		t.Fatal("bounds lookup failed")
	}
	// Joint at (-1.2, 1.05, 0), centre 0.5 below, half extents (0.25, 0.5, 0.25).
	if !nearVec(lo, math.Vec3{X: -1.45, Y: 0.05, Z: -0.25}) || !nearVec(hi, math.Vec3{X: -0.95, Y: 1.05, Z: 0.25}) {
		t.Errorf("bounds: got %v..%v", lo, hi)
	}

	// Bend the elbow a quarter turn about X: the box now points along -Z.
	m.Hierarchy.SetRotation("LeftForeArm", math.Euler{X: gomath.Pi / 2})
	lo, hi, _ = m.Hierarchy.Snapshot().PartBounds(forearm)
	if !nearVec(lo, math.Vec3{X: -1.45, Y: 0.8, Z: -1.0}) || !nearVec(hi, math.Vec3{X: -0.95, Y: 1.3, Z: 0}) {
		t.Errorf("bent bounds: got %v..%v", lo, hi)
	}
}

func TestAttachBodyPartUnknownJoint(t *testing.T) {
	m := NewModel("m")
	err := m.AttachBodyPart(BodyPart{Name: "tail", Joint: "Tail"})
	if !errors.Is(err, ErrUnknownParent) {
		t.Errorf("got %v, want ErrUnknownParent", err)
	}
}

type boneList []Bone

func (b boneList) Bones() []Bone { return b }

func TestBuildBoneProxies(t *testing.T) {
	provider := boneList{
		{Name: "mixamorig:Hips", WorldPosition: math.Vec3{X: 10, Y: 100, Z: 0}},
		{Name: "mixamorig:Spine", Parent: "mixamorig:Hips", WorldPosition: math.Vec3{X: 10, Y: 110, Z: 0}},
		{Name: "", WorldPosition: math.Vec3{X: 10, Y: 120, Z: 0}},
	}
	model := math.Translate(10, 0, 0)

	m, err := BuildBoneProxies("Fox", provider, model, 3)
	if err != nil {
		t.Fatalf("BuildBoneProxies: %v", err)
	}
	h := m.Hierarchy

	if h.Root() != "Fox" || h.Len() != 4 {
		t.Fatalf("root %s, len %d", h.Root(), h.Len())
	}
	spine, _ := h.Joint("mixamorig:Spine")
	if spine.Parent != "mixamorig:Hips" {
		t.Errorf("spine parent: got %s", spine.Parent)
	}
	if spine.ProxyRadius != 3 {
		t.Errorf("proxy radius: got %f", spine.ProxyRadius)
	}
	pos, _ := h.WorldPosition("mixamorig:Spine")
	if !nearVec(pos, math.Vec3{Y: 110}) {
		t.Errorf("spine model-local position: got %v, want (0, 110, 0)", pos)
	}
	if !h.Has("bone_2") {
		t.Errorf("unnamed bone should be bone_2, have %v", h.Names())
	}
}

func TestBuildBoneProxiesEmpty(t *testing.T) {
	m, err := BuildBoneProxies("Empty", boneList{}, math.Identity(), 3)
	if err != nil || m != nil {
		t.Errorf("empty skeleton: got model %v, err %v", m, err)
	}
	m, err = BuildBoneProxies("Nil", nil, math.Identity(), 3)
	if err != nil || m != nil {
		t.Errorf("nil provider: got model %v, err %v", m, err)
	}
}

func TestLoadBoneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bones.yaml")
	content := `
model:
  name: Robot
  translation: [0, 0, 5]
  scale: 0.5
bones:
  - name: Root
    position: [0, 1, 5]
  - name: Chest
    parent: Root
    position: [0, 1.5, 5]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := LoadBoneFile(path)
	if err != nil {
		t.Fatalf("LoadBoneFile: %v", err)
	}
	if f.Model.Name != "Robot" || len(f.Bones()) != 2 {
		t.Fatalf("unexpected file: %+v", f)
	}

	m, err := BuildBoneProxies(f.Model.Name, f, f.Transform(), DefaultBoneProxyRadius)
	if err != nil {
		t.Fatalf("BuildBoneProxies: %v", err)
	}
	pos, _ := m.Hierarchy.WorldPosition("Chest")
	if !nearVec(pos, math.Vec3{Y: 3}) {
		t.Errorf("chest in model space: got %v, want (0, 3, 0)", pos)
	}
}

func TestLoadBoneFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("bones: [oops"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadBoneFile(path); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadBoneFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected missing-file error")
	}
}

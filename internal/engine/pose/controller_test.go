package pose

import (
	"context"
	gomath "math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/anypose/internal/engine/skeleton"
	"github.com/Faultbox/anypose/pkg/math"
)

const pi = float32(gomath.Pi)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func newHumanoid(t *testing.T, limits Table) *Controller {
	t.Helper()
	m, err := skeleton.BuildHumanoid()
	if err != nil {
		t.Fatalf("BuildHumanoid: %v", err)
	}
	return NewController(m.Hierarchy, limits)
}

func TestSetRotationClamps(t *testing.T) {
	c := newHumanoid(t, DefaultConstraints())

	tests := []struct {
		name  string
		joint string
		set   Partial
		want  math.Euler
	}{
		{"forearm over max", "LeftForeArm", AboutX(pi), math.Euler{X: 0.8 * pi}},
		{"forearm under min", "RightForeArm", AboutX(-1), math.Euler{}},
		{"knee bends backwards only", "LeftLeg", AboutX(0.5), math.Euler{}},
		{"knee over min", "RightLeg", AboutX(-4), math.Euler{X: -0.8 * pi}},
		{"asymmetric hip", "LeftUpLeg", AboutY(-1), math.Euler{Y: -pi / 6}},
		{"inside range", "Neck", AboutY(0.5), math.Euler{Y: 0.5}},
		{"all axes", "Head", Full(math.Euler{X: 3, Y: -3, Z: 0.1}), math.Euler{X: pi / 6, Y: -pi / 4, Z: 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !c.SetRotation(tt.joint, tt.set) {
				t.Fatalf("SetRotation(%s) failed", tt.joint)
			}
			got, _ := c.Rotation(tt.joint)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.Z, tt.want.Z) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClampHoldsForEveryConstrainedAxis(t *testing.T) {
	c := newHumanoid(t, DefaultConstraints())
	limits := DefaultConstraints()

	for joint, l := range limits {
		for _, v := range []float32{-10, -1, 0, 1, 10} {
			c.SetRotation(joint, Full(math.Euler{X: v, Y: v, Z: v}))
			got, _ := c.Rotation(joint)
			for _, ax := range []struct {
				r *Range
				v float32
			}{{l.X, got.X}, {l.Y, got.Y}, {l.Z, got.Z}} {
				if ax.r != nil && (ax.v < ax.r.Min || ax.v > ax.r.Max) {
					t.Errorf("%s: %f outside [%f, %f]", joint, ax.v, ax.r.Min, ax.r.Max)
				}
			}
		}
	}
}

func TestSetRotationLeavesOtherAxes(t *testing.T) {
	c := newHumanoid(t, nil)
	c.SetRotation("Spine", Full(math.Euler{X: 0.1, Y: 0.2, Z: 0.3}))
	c.SetRotation("Spine", AboutY(1))

	got, _ := c.Rotation("Spine")
	if got != (math.Euler{X: 0.1, Y: 1, Z: 0.3}) {
		t.Errorf("got %+v", got)
	}
}

func TestUnknownJoint(t *testing.T) {
	c := newHumanoid(t, nil)
	if c.SetRotation("Tail", AboutX(1)) {
		t.Error("SetRotation on unknown joint should report false")
	}
	if c.AddRotation("Tail", AboutX(1)) {
		t.Error("AddRotation on unknown joint should report false")
	}
	if c.ResetJoint("Tail") {
		t.Error("ResetJoint on unknown joint should report false")
	}
	if _, ok := c.Rotation("Tail"); ok {
		t.Error("Rotation of unknown joint should report false")
	}
}

func TestAddRotationAccumulatesThenClamps(t *testing.T) {
	c := newHumanoid(t, DefaultConstraints())
	for i := 0; i < 10; i++ {
		c.AddRotation("LeftHand", AboutZ(0.1))
	}
	got, _ := c.Rotation("LeftHand")
	if !near(got.Z, pi/6) {
		t.Errorf("z: got %f, want %f", got.Z, pi/6)
	}

	c.AddRotation("LeftHand", AboutZ(-0.2))
	got, _ = c.Rotation("LeftHand")
	if !near(got.Z, pi/6-0.2) {
		t.Errorf("z after backing off: got %f", got.Z)
	}
}

func TestReset(t *testing.T) {
	c := newHumanoid(t, nil)
	c.SetRotation("Spine", AboutX(0.4))
	c.SetRotation("LeftArm", AboutZ(1))

	c.ResetJoint("Spine")
	if r, _ := c.Rotation("Spine"); !r.IsZero() {
		t.Errorf("Spine not reset: %+v", r)
	}
	if r, _ := c.Rotation("LeftArm"); r.IsZero() {
		t.Error("ResetJoint touched another joint")
	}

	c.ResetAll()
	for _, n := range c.Hierarchy().Names() {
		if r, _ := c.Rotation(n); !r.IsZero() {
			t.Errorf("%s not reset: %+v", n, r)
		}
	}
}

func TestSetConstraintsReclamps(t *testing.T) {
	c := newHumanoid(t, nil)
	c.SetRotation("LeftForeArm", AboutX(pi))
	c.SetRotation("Spine", AboutX(1))

	var changed []string
	c.OnChange(func(joint string, _ math.Euler) {
		changed = append(changed, joint)
	})

	c.SetConstraints(DefaultConstraints())

	if r, _ := c.Rotation("LeftForeArm"); !near(r.X, 0.8*pi) {
		t.Errorf("LeftForeArm.x: got %f, want %f", r.X, 0.8*pi)
	}
	if r, _ := c.Rotation("Spine"); !near(r.X, pi/6) {
		t.Errorf("Spine.x: got %f, want %f", r.X, pi/6)
	}
	if len(changed) != 2 {
		t.Errorf("listeners saw %v, want two changes", changed)
	}
}

func TestOnChangeSkipsNoop(t *testing.T) {
	c := newHumanoid(t, DefaultConstraints())
	calls := 0
	c.OnChange(func(string, math.Euler) { calls++ })

	c.SetRotation("LeftForeArm", AboutX(pi))
	c.SetRotation("LeftForeArm", AboutX(4)) // clamps to the same value
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestRotationMarksSubtreeStale(t *testing.T) {
	c := newHumanoid(t, nil)
	h := c.Hierarchy()
	c.SetRotation("LeftLeg", AboutX(-1))

	stale := h.Stale()
	want := []string{"LeftLeg", "LeftFoot", "LeftToeBase", "LeftToe_End"}
	if len(stale) != len(want) {
		t.Fatalf("stale: got %v, want %v", stale, want)
	}
	for i := range want {
		if stale[i] != want[i] {
			t.Errorf("stale[%d]: got %s, want %s", i, stale[i], want[i])
		}
	}
}

func TestTableLookupStripsNamespace(t *testing.T) {
	limits := DefaultConstraints()
	l, ok := limits.Lookup("mixamorig:LeftForeArm")
	if !ok || l.X == nil || !near(l.X.Max, 0.8*pi) {
		t.Errorf("namespaced lookup failed: %+v %v", l, ok)
	}
	if _, ok := limits.Lookup("mixamorig:Tail"); ok {
		t.Error("unexpected limits for unknown joint")
	}
	if _, ok := limits.Lookup("HeadTop_End"); ok {
		t.Error("HeadTop_End should be free")
	}
}

func TestParseConstraints(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, tbl Table)
	}{
		{
			name: "valid",
			yaml: `
LeftForeArm:
  x: {min: 0, max: 2}
Neck:
  y: {min: -0.5, max: 0.5}
  z: {min: -0.1, max: 0.1}
`,
			check: func(t *testing.T, tbl Table) {
				if len(tbl) != 2 {
					t.Fatalf("entries: got %d", len(tbl))
				}
				if tbl["Neck"].X != nil {
					t.Error("Neck.x should be free")
				}
				if tbl["LeftForeArm"].X.Max != 2 {
					t.Errorf("LeftForeArm.x.max: got %f", tbl["LeftForeArm"].X.Max)
				}
			},
		},
		{name: "empty", yaml: "", check: func(t *testing.T, tbl Table) {
			if tbl == nil || len(tbl) != 0 {
				t.Errorf("want empty table, got %v", tbl)
			}
		}},
		{name: "inverted range", yaml: "Spine:\n  x: {min: 1, max: -1}\n", wantErr: true},
		{name: "malformed", yaml: "Spine: [1, 2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ParseConstraints([]byte(tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConstraints: %v", err)
			}
			tt.check(t, tbl)
		})
	}
}

func TestLoadConstraintsMissing(t *testing.T) {
	if _, err := LoadConstraints(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatchConstraintsDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "limits.yaml")
	if err := os.WriteFile(path, []byte("Spine:\n  x: {min: -0.1, max: 0.1}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Table, 1)
	done := make(chan error, 1)
	go func() { done <- WatchConstraints(ctx, path, out) }()

	// Give the watcher time to register, then write an invalid and a valid
	// version. Only the valid one may arrive.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("Spine:\n  x: {min: 1, max: -1}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(2 * ReloadDebounce)
	if err := os.WriteFile(path, []byte("Spine:\n  x: {min: -0.2, max: 0.2}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case tbl := <-out:
		if r := tbl["Spine"].X; r == nil || r.Max != 0.2 {
			t.Errorf("unexpected reload: %+v", tbl)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload delivered")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watcher returned %v", err)
	}
}

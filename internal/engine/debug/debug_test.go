package debug

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ftrvxmtrx/tga"

	"github.com/Faultbox/anypose/internal/engine/interaction"
	"github.com/Faultbox/anypose/internal/engine/skeleton"
	"github.com/Faultbox/anypose/pkg/math"
)

func TestBoxEdges(t *testing.T) {
	m, _ := skeleton.BuildHumanoid()
	frame := m.Hierarchy.Snapshot()
	corners, ok := frame.PartCorners(m.BodyParts()[0])
	if !ok {
		t.Fatal("no corners")
	}

	var l Lines
	l.Box(corners, BodyColor)
	if l.Len() != 24 {
		t.Fatalf("vertices: got %d, want 24", l.Len())
	}

	// Every edge of an unrotated box is parallel to one axis.
	v := l.Vertices()
	for i := 0; i < len(v); i += 2 {
		changed := 0
		if v[i].X != v[i+1].X {
			changed++
		}
		if v[i].Y != v[i+1].Y {
			changed++
		}
		if v[i].Z != v[i+1].Z {
			changed++
		}
		if changed != 1 {
			t.Errorf("edge %d is not axis aligned: %+v -> %+v", i/2, v[i], v[i+1])
		}
	}
}

func TestCircleStaysOnRadius(t *testing.T) {
	var l Lines
	center := math.Vec3{X: 1, Y: 2, Z: 3}
	l.Circle(center, math.Vec3{X: 1}, math.Vec3{Z: 1}, 2, 16, RingY)
	if l.Len() != 32 {
		t.Fatalf("vertices: got %d, want 32", l.Len())
	}
	for _, v := range l.Vertices() {
		d := math.Vec3{X: v.X, Y: v.Y, Z: v.Z}.Distance(center)
		if d < 1.999 || d > 2.001 {
			t.Errorf("vertex %+v at distance %f", v, d)
		}
		if v.Y != 2 {
			t.Errorf("vertex left the XZ plane: %+v", v)
		}
	}

	l.Reset()
	l.Circle(center, math.Vec3{X: 1}, math.Vec3{Z: 1}, 1, 1, RingY)
	if l.Len() != 6 {
		t.Errorf("degenerate segment count not raised to 3: %d vertices", l.Len())
	}
}

func TestGrid(t *testing.T) {
	var l Lines
	l.Grid(5, 1, 0)
	// 11 lines in each direction
	if l.Len() != 44 {
		t.Fatalf("vertices: got %d, want 44", l.Len())
	}
	axis := 0
	for _, v := range l.Vertices() {
		c := Color{v.R, v.G, v.B}
		if c == AxisXColor || c == AxisZColor {
			axis++
		}
	}
	if axis != 4 {
		t.Errorf("axis vertices: got %d, want 4", axis)
	}

	l.Reset()
	l.Grid(0, 1, 0)
	if l.Len() != 0 {
		t.Error("empty grid produced lines")
	}
}

func TestModelLines(t *testing.T) {
	m, _ := skeleton.BuildHumanoid()
	frame := m.Hierarchy.Snapshot()
	h := m.Hierarchy

	perSphere := 3 * JointSegments * 2
	bones := (h.Len() - 1) * 2
	boxes := len(m.BodyParts()) * 24

	var l Lines
	l.Model(m, frame, func(j string) interaction.Style {
		if j == "Head" {
			return interaction.StyleSelected
		}
		return interaction.StyleNormal
	})
	if want := boxes + bones + h.Len()*perSphere; l.Len() != want {
		t.Errorf("vertices: got %d, want %d", l.Len(), want)
	}
	selected := 0
	for _, v := range l.Vertices() {
		if (Color{v.R, v.G, v.B}) == SelectedColor {
			selected++
		}
	}
	if selected != perSphere {
		t.Errorf("selected vertices: got %d, want %d", selected, perSphere)
	}

	l.Reset()
	m.SetJointsVisible(false)
	l.Model(m, frame, nil)
	if want := boxes + bones; l.Len() != want {
		t.Errorf("hidden joints: got %d vertices, want %d", l.Len(), want)
	}
}

func TestRotationRings(t *testing.T) {
	var l Lines
	l.RotationRings(math.Translate(0, 1, 0).Mul(math.RotateZ(0.5)), 0.5)
	if l.Len() != 3*RingSegments*2 {
		t.Fatalf("vertices: got %d", l.Len())
	}
	for _, v := range l.Vertices() {
		d := math.Vec3{X: v.X, Y: v.Y, Z: v.Z}.Distance(math.Vec3{Y: 1})
		if d < 0.499 || d > 0.501 {
			t.Errorf("ring vertex at distance %f", d)
		}
	}
}

func TestScreenshotCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "anypose")
	sc.now = fixedNow

	pixels := twoRows
	path, err := sc.CaptureFromPixels(pixels, 2, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if filepath.Base(path) != "anypose_2024-05-01_12-30-00.000.png" {
		t.Errorf("filename %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, _, b, _ := img.At(0, 0).RGBA()
	if b == 0 || r != 0 {
		t.Errorf("top-left pixel should be blue after the flip, got r=%d b=%d", r, b)
	}

	if _, err := sc.CaptureFromPixels(pixels[:4], 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

// 2x2 image: bottom row red, top row blue (OpenGL order).
var twoRows = []byte{
	255, 0, 0, 255, 255, 0, 0, 255,
	0, 0, 255, 255, 0, 0, 255, 255,
}

func TestScreenshotFormats(t *testing.T) {
	dir := t.TempDir()

	webp := NewScreenshotCapture(dir, "shot", WithFormat(FormatWebP))
	webp.now = fixedNow
	path, err := webp.CaptureFromPixels(twoRows, 2, 2)
	if err != nil {
		t.Fatalf("webp: %v", err)
	}
	if filepath.Ext(path) != ".webp" {
		t.Errorf("webp extension: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) < 12 || !bytes.Equal(data[:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WEBP")) {
		t.Errorf("not a WebP container: % x", data[:min(len(data), 12)])
	}

	tg := NewScreenshotCapture(dir, "shot", WithFormat(FormatTGA))
	tg.now = fixedNow
	path, err = tg.CaptureFromPixels(twoRows, 2, 2)
	if err != nil {
		t.Fatalf("tga: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := tga.Decode(f)
	if err != nil {
		t.Fatalf("decode tga: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("tga bounds %v", b)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); b == 0 || r != 0 {
		t.Errorf("tga top-left pixel r=%d b=%d", r, b)
	}

	if got := NewScreenshotCapture(dir, "shot", WithFormat("bmp")).Format(); got != FormatPNG {
		t.Errorf("unknown format fell back to %s", got)
	}
}

func TestScreenshotMaxSize(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "shot", WithMaxSize(2))
	sc.now = fixedNow

	pixels := make([]byte, 4*2*4)
	for i := range pixels {
		pixels[i] = 200
	}
	path, err := sc.CaptureFromPixels(pixels, 4, 2)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("downscaled bounds %v, want 2x1", b)
	}
}

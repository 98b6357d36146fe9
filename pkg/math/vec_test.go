package math

import (
	"testing"
)

func TestVec2Distance(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec2
		want float32
	}{
		{"same point", Vec2{10, 20}, Vec2{10, 20}, 0},
		{"3-4-5", Vec2{100, 100}, Vec2{103, 96}, 5},
		{"axis", Vec2{0, 0}, Vec2{0, -7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Distance(tt.b); got != tt.want {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
	if d := (Vec2{5, 2}).Sub(Vec2{1, 4}); d != (Vec2{4, -2}) {
		t.Errorf("Sub() = %v", d)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, -10, 4}
	if got := a.Lerp(b, 0.5); got != (Vec3{5, -5, 2}) {
		t.Errorf("Lerp(0.5) = %v", got)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 0}
	if got := a.Min(b); got != (Vec3{1, -1, -2}) {
		t.Errorf("Min = %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, 0}) {
		t.Errorf("Max = %v", got)
	}
}

package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 6, 8}
	if got := a.Add(b); got != (Vec3{5, 8, 11}) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 4, 5}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale = %v", got)
	}
}

func TestVec3Blend(t *testing.T) {
	tests := []struct {
		name string
		t    float32
		want Vec3
	}{
		{"start", 0, Vec3{1, 2, 3}},
		{"mid", 0.5, Vec3{2.5, 3.5, 4.5}},
		{"end", 1, Vec3{4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Vec3{1, 2, 3}).Blend(Vec3{4, 5, 6}, tt.t); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMglConversion(t *testing.T) {
	v := Vec3From([3]float32{1, 2, 3})
	if got := v.Mgl(); got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("Mgl = %v", got)
	}
	if got := Vec3FromMgl(v.Mgl()); got != v {
		t.Errorf("Vec3 round trip = %v", got)
	}
}

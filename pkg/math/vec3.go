// Package math provides the vector and rotation value types carried by
// decoded models and animated by keyframe curves. Arithmetic is delegated
// to mgl32; the named-field types exist so curves and decoded records can
// share one representation.
package math

import "github.com/go-gl/mathgl/mgl32"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec3From converts a decoded [3]float32 field.
func Vec3From(a [3]float32) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// Vec3FromMgl converts an mgl32 vector.
func Vec3FromMgl(m mgl32.Vec3) Vec3 {
	return Vec3{m[0], m[1], m[2]}
}

// Mgl returns v as an mgl32 vector.
func (v Vec3) Mgl() mgl32.Vec3 { return mgl32.Vec3{v.X, v.Y, v.Z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3FromMgl(v.Mgl().Add(o.Mgl())) }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3FromMgl(v.Mgl().Sub(o.Mgl())) }
func (v Vec3) Scale(s float32) Vec3 { return Vec3FromMgl(v.Mgl().Mul(s)) }

// Blend linearly interpolates toward o.
func (v Vec3) Blend(o Vec3, t float32) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Quat is a rotation quaternion. W is the scalar part, matching the
// X, Y, Z, W order of motion keyframes.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFrom converts a decoded [4]float32 (x, y, z, w) field.
func QuatFrom(a [4]float32) Quat {
	return Quat{a[0], a[1], a[2], a[3]}
}

// Mgl returns q as an mgl32 quaternion.
func (q Quat) Mgl() mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

// Normalize returns a unit quaternion. Near-zero input yields identity.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.Dot(q))))
	if length < 0.0001 {
		return QuatIdentity()
	}
	inv := 1 / length
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// Dot returns the 4D dot product.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Slerp performs spherical linear interpolation along the shorter arc.
func (q Quat) Slerp(other Quat, t float32) Quat {
	dot := q.Dot(other)
	if dot < 0 {
		other = Quat{-other.X, -other.Y, -other.Z, -other.W}
		dot = -dot
	}

	// Nearly parallel: normalized lerp avoids dividing by sin(~0).
	if dot > 0.9995 {
		return Quat{
			lerp(q.X, other.X, t),
			lerp(q.Y, other.Y, t),
			lerp(q.Z, other.Z, t),
			lerp(q.W, other.W, t),
		}.Normalize()
	}

	theta0 := math.Acos(float64(dot))
	sin0 := math.Sin(theta0)
	s0 := float32(math.Sin((1-float64(t))*theta0) / sin0)
	s1 := float32(math.Sin(float64(t)*theta0) / sin0)

	return Quat{
		q.X*s0 + other.X*s1,
		q.Y*s0 + other.Y*s1,
		q.Z*s0 + other.Z*s1,
		q.W*s0 + other.W*s1,
	}
}

// Blend interpolates rotations with Slerp.
func (q Quat) Blend(other Quat, t float32) Quat {
	return q.Slerp(other, t)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

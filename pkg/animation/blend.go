// Package animation evaluates keyframed values over time.
//
// An Animator holds clips, a clip holds named curves, and a curve holds
// time-sorted keyframes. Evaluating a clip sends each curve's value to the
// clip's event sinks.
package animation

// Float is satisfied by the scalar types curves blend natively.
type Float interface {
	~float32 | ~float64
}

// Blender is implemented by composite values (vectors, rotations) that
// know how to move toward another value by a fraction.
type Blender[T any] interface {
	Blend(other T, t float32) T
}

// BlendFunc blends a toward b by fraction t.
type BlendFunc[T any] func(a, b T, t float32) T

// Lerp linearly interpolates between two scalars.
func Lerp[T Float](a, b T, t float32) T {
	return a + (b-a)*T(t)
}

func blendMethod[T Blender[T]](a, b T, t float32) T {
	return a.Blend(b, t)
}

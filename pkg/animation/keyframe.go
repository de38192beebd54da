package animation

// Keyframe is a value sampled at a point in time. Interpolator, when set,
// overrides the curve default for the segment that starts at this keyframe.
type Keyframe[T any] struct {
	Time         float32
	Value        T
	Interpolator Interpolator
}

// NewKeyframe returns a keyframe using the curve's default interpolator.
func NewKeyframe[T any](time float32, value T) Keyframe[T] {
	return Keyframe[T]{Time: time, Value: value}
}

package animation

import "sort"

// AnimationCurve is a time series of keyframes.
//
// Keyframes must be added in ascending time order; Add does not sort.
type AnimationCurve[T any] struct {
	Keyframes []Keyframe[T]

	// Interpolator is used for segments whose left keyframe has none.
	Interpolator Interpolator

	blend BlendFunc[T]
}

// NewCurve returns a curve of scalars blended with Lerp.
func NewCurve[T Float]() *AnimationCurve[T] {
	return NewCurveFunc[T](Lerp[T])
}

// NewBlendCurve returns a curve of values that blend themselves.
func NewBlendCurve[T Blender[T]]() *AnimationCurve[T] {
	return NewCurveFunc[T](blendMethod[T])
}

// NewCurveFunc returns a curve using a custom blend function.
func NewCurveFunc[T any](blend BlendFunc[T]) *AnimationCurve[T] {
	return &AnimationCurve[T]{
		Interpolator: LinearInterpolator{},
		blend:        blend,
	}
}

// Add appends a keyframe.
func (c *AnimationCurve[T]) Add(kf Keyframe[T]) {
	c.Keyframes = append(c.Keyframes, kf)
}

// AddKeyframe appends a keyframe built from its parts. interp may be nil.
func (c *AnimationCurve[T]) AddKeyframe(time float32, value T, interp Interpolator) {
	c.Keyframes = append(c.Keyframes, Keyframe[T]{Time: time, Value: value, Interpolator: interp})
}

// Len returns the number of keyframes.
func (c *AnimationCurve[T]) Len() int {
	return len(c.Keyframes)
}

// Duration returns the time of the last keyframe, or 0 for an empty curve.
func (c *AnimationCurve[T]) Duration() float32 {
	if len(c.Keyframes) == 0 {
		return 0
	}
	return c.Keyframes[len(c.Keyframes)-1].Time
}

// Evaluate returns the value at time.
//
// Before the first keyframe the first value is held, at or after the last
// keyframe the last value is held. An empty curve yields the zero value.
func (c *AnimationCurve[T]) Evaluate(time float32) T {
	n := len(c.Keyframes)
	if n == 0 {
		var zero T
		return zero
	}

	i := sort.Search(n, func(i int) bool { return c.Keyframes[i].Time >= time })
	if i == n || c.Keyframes[i].Time != time {
		i--
	}

	// The last-keyframe check comes first; only a search that underflows
	// the first keyframe falls through to the first value.
	if i >= n-1 {
		return c.Keyframes[n-1].Value
	}
	if i < 0 {
		return c.Keyframes[0].Value
	}

	k0, k1 := &c.Keyframes[i], &c.Keyframes[i+1]

	var u float32
	if span := k1.Time - k0.Time; span != 0 {
		u = (time - k0.Time) / span
	}

	interp := k0.Interpolator
	if interp == nil {
		interp = c.Interpolator
	}
	if interp != nil {
		u = interp.Interpolate(u)
	}

	return c.blend(k0.Value, k1.Value, u)
}

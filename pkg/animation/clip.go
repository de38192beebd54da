package animation

// EventFunc receives each curve value produced by a clip evaluation.
type EventFunc[T any] func(name string, value T)

// AnimationClip groups the named curves that drive one target, such as a
// bone or a morph.
type AnimationClip[T any] struct {
	Name string

	names  []string
	curves map[string]*AnimationCurve[T]
	events []EventFunc[T]
}

// NewClip returns an empty clip.
func NewClip[T any](name string) *AnimationClip[T] {
	return &AnimationClip[T]{
		Name:   name,
		curves: make(map[string]*AnimationCurve[T]),
	}
}

// SetCurve stores curve under name, replacing any previous curve with that
// name in place.
func (c *AnimationClip[T]) SetCurve(name string, curve *AnimationCurve[T]) {
	if _, ok := c.curves[name]; !ok {
		c.names = append(c.names, name)
	}
	c.curves[name] = curve
}

// Curve returns the named curve, or nil.
func (c *AnimationClip[T]) Curve(name string) *AnimationCurve[T] {
	return c.curves[name]
}

// CurveNames returns curve names in evaluation order.
func (c *AnimationClip[T]) CurveNames() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of curves.
func (c *AnimationClip[T]) Len() int {
	return len(c.names)
}

// Empty reports whether the clip has no curves.
func (c *AnimationClip[T]) Empty() bool {
	return len(c.names) == 0
}

// Duration returns the latest keyframe time over all curves.
func (c *AnimationClip[T]) Duration() float32 {
	var d float32
	for _, name := range c.names {
		if cd := c.curves[name].Duration(); cd > d {
			d = cd
		}
	}
	return d
}

// AddEvent registers fn to receive values on every evaluation.
func (c *AnimationClip[T]) AddEvent(fn EventFunc[T]) *AnimationClip[T] {
	c.events = append(c.events, fn)
	return c
}

// Evaluate computes every curve at time and calls each event sink once per
// curve, synchronously.
func (c *AnimationClip[T]) Evaluate(time float32) {
	for _, name := range c.names {
		value := c.curves[name].Evaluate(time)
		for _, fn := range c.events {
			fn(name, value)
		}
	}
}

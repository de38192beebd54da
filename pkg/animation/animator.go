package animation

// Animator is an ordered set of clips making up one motion.
type Animator[T any] struct {
	Name  string
	Clips []*AnimationClip[T]
}

// NewAnimator returns an empty animator.
func NewAnimator[T any](name string) *Animator[T] {
	return &Animator[T]{Name: name}
}

// AddClip appends a clip.
func (a *Animator[T]) AddClip(clip *AnimationClip[T]) {
	a.Clips = append(a.Clips, clip)
}

// AddClips appends clips in order.
func (a *Animator[T]) AddClips(clips ...*AnimationClip[T]) {
	a.Clips = append(a.Clips, clips...)
}

// Clip returns the first clip with the given name, or nil.
func (a *Animator[T]) Clip(name string) *AnimationClip[T] {
	for _, c := range a.Clips {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Len returns the number of clips.
func (a *Animator[T]) Len() int {
	return len(a.Clips)
}

// Empty reports whether the animator has no clips.
func (a *Animator[T]) Empty() bool {
	return len(a.Clips) == 0
}

// Duration returns the longest clip duration.
func (a *Animator[T]) Duration() float32 {
	var d float32
	for _, c := range a.Clips {
		if cd := c.Duration(); cd > d {
			d = cd
		}
	}
	return d
}

// Evaluate evaluates every clip in order.
func (a *Animator[T]) Evaluate(time float32) {
	for _, c := range a.Clips {
		c.Evaluate(time)
	}
}

// OnEach registers fn on every clip. The clip name is passed along with the
// curve name and value.
func (a *Animator[T]) OnEach(fn func(clip, curve string, value T)) {
	for _, c := range a.Clips {
		clip := c.Name
		c.AddEvent(func(curve string, value T) { fn(clip, curve, value) })
	}
}

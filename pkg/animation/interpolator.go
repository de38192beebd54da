package animation

import "math"

// Interpolator remaps the normalized fraction between two keyframes.
type Interpolator interface {
	Interpolate(t float32) float32
}

// LinearInterpolator leaves the fraction unchanged.
type LinearInterpolator struct{}

func (LinearInterpolator) Interpolate(t float32) float32 { return t }

// FixedInterpolator ignores the fraction and always returns Value.
// A Value of 0 holds the left keyframe until the next one.
type FixedInterpolator struct {
	Value float32
}

func (f FixedInterpolator) Interpolate(float32) float32 { return f.Value }

// BezierTolerance is the convergence threshold of the bezier search.
const BezierTolerance = 0.0001

// BezierInterpolator eases along a cubic bezier from (0,0) to (1,1) with
// control points (X1,Y1) and (X2,Y2). Control coordinates lie in [0,1].
type BezierInterpolator struct {
	X1, Y1, X2, Y2 float32

	// MaxIterations caps the bisection search, after which the current
	// parameter is used. Zero searches until x is within BezierTolerance
	// of t with no other stop, so t must lie in [0,1].
	MaxIterations int
}

// NewBezierInterpolator returns an unbounded bezier interpolator.
func NewBezierInterpolator(x1, y1, x2, y2 float32) *BezierInterpolator {
	return &BezierInterpolator{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Interpolate finds the curve parameter whose x equals t and returns the
// matching y.
func (b *BezierInterpolator) Interpolate(t float32) float32 {
	lo, hi := float32(0), float32(1)
	ct := t

	for i := 0; b.MaxIterations <= 0 || i < b.MaxIterations; i++ {
		x := cubic(b.X1, b.X2, ct)
		if float32(math.Abs(float64(x-t))) < BezierTolerance {
			break
		}
		if x > t {
			hi = ct
		} else {
			lo = ct
		}
		ct = (lo + hi) / 2
	}

	return cubic(b.Y1, b.Y2, ct)
}

// cubic evaluates one coordinate of the bezier with endpoints 0 and 1 by
// repeated linear subdivision.
func cubic(p1, p2, t float32) float32 {
	a := p1 * t
	b := p1 + (p2-p1)*t
	c := p2 + (1-p2)*t

	ab := a + (b-a)*t
	bc := b + (c-b)*t

	return ab + (bc-ab)*t
}

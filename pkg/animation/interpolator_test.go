package animation

import (
	"fmt"
	"testing"
)

func TestLinearInterpolator(t *testing.T) {
	var li LinearInterpolator
	for _, v := range []float32{0, 0.3, 1} {
		if got := li.Interpolate(v); got != v {
			t.Errorf("Interpolate(%v) = %v", v, got)
		}
	}
}

func TestFixedInterpolator(t *testing.T) {
	fi := FixedInterpolator{Value: 0.75}
	for _, v := range []float32{0, 0.5, 1} {
		if got := fi.Interpolate(v); got != 0.75 {
			t.Errorf("Interpolate(%v) = %v, want 0.75", v, got)
		}
	}
}

var bezierControls = []struct{ x1, y1, x2, y2 float32 }{
	{0.25, 0.25, 0.75, 0.75},
	{0.42, 0, 1, 1},
	{0, 0, 0.58, 1},
	{0.42, 0, 0.58, 1},
	{1, 0, 0, 1},
	{0.1, 0.9, 0.2, 1},
	{0, 1, 1, 0},
}

func TestBezierInterpolator_Endpoints(t *testing.T) {
	for _, c := range bezierControls {
		name := fmt.Sprintf("%v,%v,%v,%v", c.x1, c.y1, c.x2, c.y2)
		t.Run(name, func(t *testing.T) {
			b := NewBezierInterpolator(c.x1, c.y1, c.x2, c.y2)
			if got := b.Interpolate(0); !near(got, 0, 1e-3) {
				t.Errorf("Interpolate(0) = %v, want ~0", got)
			}
			if got := b.Interpolate(1); !near(got, 1, 1e-3) {
				t.Errorf("Interpolate(1) = %v, want ~1", got)
			}
		})
	}
}

func TestBezierInterpolator_Monotonic(t *testing.T) {
	for _, c := range bezierControls[:5] {
		name := fmt.Sprintf("%v,%v,%v,%v", c.x1, c.y1, c.x2, c.y2)
		t.Run(name, func(t *testing.T) {
			b := NewBezierInterpolator(c.x1, c.y1, c.x2, c.y2)
			prev := b.Interpolate(0)
			for i := 1; i <= 100; i++ {
				got := b.Interpolate(float32(i) / 100)
				if got < prev-1e-3 {
					t.Fatalf("Interpolate(%v) = %v < previous %v", float32(i)/100, got, prev)
				}
				prev = got
			}
		})
	}
}

func TestBezierInterpolator_Linear(t *testing.T) {
	b := NewBezierInterpolator(0.25, 0.25, 0.75, 0.75)
	for i := 0; i <= 10; i++ {
		x := float32(i) / 10
		if got := b.Interpolate(x); !near(got, x, 1e-3) {
			t.Errorf("Interpolate(%v) = %v, want ~%v", x, got, x)
		}
	}
}

func TestBezierInterpolator_MaxIterations(t *testing.T) {
	b := &BezierInterpolator{X1: 1, Y1: 0, X2: 0, Y2: 1, MaxIterations: 3}
	for i := 0; i <= 10; i++ {
		got := b.Interpolate(float32(i) / 10)
		if got < 0 || got > 1 {
			t.Errorf("Interpolate(%v) = %v, out of [0,1]", float32(i)/10, got)
		}
	}

	// A cap the search never reaches changes nothing.
	for _, c := range bezierControls {
		unbounded := NewBezierInterpolator(c.x1, c.y1, c.x2, c.y2)
		capped := &BezierInterpolator{X1: c.x1, Y1: c.y1, X2: c.x2, Y2: c.y2, MaxIterations: 64}
		for i := 0; i <= 20; i++ {
			x := float32(i) / 20
			if a, b := unbounded.Interpolate(x), capped.Interpolate(x); a != b {
				t.Errorf("%v at %v: capped %v != unbounded %v", c, x, b, a)
			}
		}
	}
}

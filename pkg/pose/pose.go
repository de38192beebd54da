// Package pose evaluates bone motions against a model skeleton and produces
// world and skinning matrices.
package pose

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mmd-core/pkg/animation"
	"github.com/Faultbox/mmd-core/pkg/formats"
	mmath "github.com/Faultbox/mmd-core/pkg/math"
	"github.com/Faultbox/mmd-core/pkg/model"
)

// ErrBadHierarchy is returned for parent links that are out of range or
// form a cycle.
var ErrBadHierarchy = errors.New("invalid bone hierarchy")

// Joint is one bone in bind pose.
type Joint struct {
	Name   string
	Parent int // -1 for roots

	// Offset is the bind position relative to the parent joint.
	Offset      mgl32.Vec3
	InverseBind mgl32.Mat4
}

// Skeleton is the bone hierarchy of a model.
type Skeleton struct {
	Joints []Joint
	order  []int // parents before children
	byName map[string]int
}

// NewSkeleton builds the skeleton of m.
func NewSkeleton(m *model.Model) (*Skeleton, error) {
	n := len(m.Bones)
	s := &Skeleton{
		Joints: make([]Joint, n),
		order:  make([]int, 0, n),
		byName: make(map[string]int, n),
	}

	for i, b := range m.Bones {
		if b.Parent >= n || b.Parent < -1 || b.Parent == i {
			return nil, fmt.Errorf("%w: bone %d (%s) parent %d", ErrBadHierarchy, i, b.Name, b.Parent)
		}
		pos := mmath.Vec3From(b.Position)
		offset := pos
		if b.Parent >= 0 {
			offset = pos.Sub(mmath.Vec3From(m.Bones[b.Parent].Position))
		}
		s.Joints[i] = Joint{
			Name:        b.Name,
			Parent:      b.Parent,
			Offset:      offset.Mgl(),
			InverseBind: mgl32.Translate3D(-pos.X, -pos.Y, -pos.Z),
		}
		if _, dup := s.byName[b.Name]; !dup {
			s.byName[b.Name] = i
		}
	}

	const (
		visiting = iota + 1
		done
	)
	state := make([]uint8, n)
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: cycle through bone %d (%s)", ErrBadHierarchy, i, s.Joints[i].Name)
		}
		state[i] = visiting
		if p := s.Joints[i].Parent; p >= 0 {
			if err := visit(p); err != nil {
				return err
			}
		}
		state[i] = done
		s.order = append(s.order, i)
		return nil
	}
	for i := range s.Joints {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Index returns the first joint with the given name, or -1.
func (s *Skeleton) Index(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	return -1
}

// Transform is a joint's local motion on top of its bind offset.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// Pose holds per-joint transforms of a skeleton.
type Pose struct {
	Skeleton *Skeleton
	Local    []Transform
	World    []mgl32.Mat4
	Skin     []mgl32.Mat4

	// merged rotation curves, built on first use of a clip
	rotations map[*animation.AnimationClip[float32]]*animation.AnimationCurve[mmath.Quat]
}

// NewPose returns the skeleton's rest pose.
func (s *Skeleton) NewPose() *Pose {
	n := len(s.Joints)
	p := &Pose{
		Skeleton: s,
		Local:    make([]Transform, n),
		World:    make([]mgl32.Mat4, n),
		Skin:     make([]mgl32.Mat4, n),

		rotations: make(map[*animation.AnimationClip[float32]]*animation.AnimationCurve[mmath.Quat]),
	}
	p.Reset()
	return p
}

// Reset returns every joint to bind pose.
func (p *Pose) Reset() {
	for i := range p.Local {
		p.Local[i] = Transform{Rotation: mgl32.QuatIdent()}
	}
	p.Update()
}

// Sample sets the local transform of every joint driven by a clip of anim
// at the given frame and updates the matrices. Joints without a clip keep
// their transform. It returns the number of driven joints.
//
// Translation components are evaluated separately. The four rotation
// components are merged into one curve and interpolated with slerp; the
// merged curve is kept, so clips must not change between calls.
func (p *Pose) Sample(anim *animation.Animator[float32], frame float32) int {
	driven := 0
	for i := range p.Skeleton.Joints {
		clip := anim.Clip(p.Skeleton.Joints[i].Name)
		if clip == nil {
			continue
		}
		var t mmath.Vec3
		for c, dst := range []*float32{&t.X, &t.Y, &t.Z} {
			if curve := clip.Curve(formats.BoneCurveNames[c]); curve != nil {
				*dst = curve.Evaluate(frame)
			}
		}
		rot := mmath.QuatIdentity()
		if curve := p.rotationCurve(clip); curve != nil {
			rot = curve.Evaluate(frame).Normalize()
		}
		p.Local[i] = Transform{Translation: t.Mgl(), Rotation: rot.Mgl()}
		driven++
	}
	p.Update()
	return driven
}

func (p *Pose) rotationCurve(clip *animation.AnimationClip[float32]) *animation.AnimationCurve[mmath.Quat] {
	if curve, ok := p.rotations[clip]; ok {
		return curve
	}
	curve := mergeRotation(clip)
	p.rotations[clip] = curve
	return curve
}

// mergeRotation builds a quaternion curve from the Rotation.X..W curves of
// clip. Key times and easing come from the first component present; the
// others are sampled at those times, and a missing W reads as 1. It
// returns nil when clip has no rotation curve.
func mergeRotation(clip *animation.AnimationClip[float32]) *animation.AnimationCurve[mmath.Quat] {
	var comps [4]*animation.AnimationCurve[float32]
	var key *animation.AnimationCurve[float32]
	for c := range comps {
		comps[c] = clip.Curve(formats.BoneCurveNames[3+c])
		if key == nil && comps[c] != nil {
			key = comps[c]
		}
	}
	if key == nil {
		return nil
	}

	merged := animation.NewBlendCurve[mmath.Quat]()
	merged.Interpolator = key.Interpolator
	for _, kf := range key.Keyframes {
		v := [4]float32{0, 0, 0, 1}
		for c, comp := range comps {
			if comp != nil {
				v[c] = comp.Evaluate(kf.Time)
			}
		}
		merged.AddKeyframe(kf.Time, mmath.QuatFrom(v).Normalize(), kf.Interpolator)
	}
	return merged
}

// Update recomputes World and Skin from Local.
func (p *Pose) Update() {
	for _, i := range p.Skeleton.order {
		j := &p.Skeleton.Joints[i]
		t := j.Offset.Add(p.Local[i].Translation)
		local := mgl32.Translate3D(t[0], t[1], t[2]).Mul4(p.Local[i].Rotation.Mat4())
		if j.Parent >= 0 {
			local = p.World[j.Parent].Mul4(local)
		}
		p.World[i] = local
		p.Skin[i] = local.Mul4(j.InverseBind)
	}
}

// Position returns the world position of joint i.
func (p *Pose) Position(i int) mgl32.Vec3 {
	return p.World[i].Col(3).Vec3()
}

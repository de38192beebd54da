// VMD (Vocaloid Motion Data) format parser for bone, morph and scene keyframes.
package formats

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mmd-core/pkg/animation"
)

// VMD format errors.
var (
	ErrInvalidVMDMagic = errors.New("invalid VMD magic: expected 'Vocaloid Motion Data 0002'")
)

// VMDMagic is the signature stored in the first 30 bytes.
const VMDMagic = "Vocaloid Motion Data 0002"

// Fixed field sizes.
const (
	vmdMagicSize = 30
	vmdNameSize  = 20
	vmdFrameName = 15
)

// Record sizes, used to bound declared counts.
const (
	vmdBoneFrameSize   = 15 + 4 + 12 + 16 + 64
	vmdMorphFrameSize  = 15 + 4 + 4
	vmdCameraFrameSize = 4 + 4 + 12 + 12 + 24 + 4 + 1
	vmdLightFrameSize  = 4 + 12 + 12
	vmdShadowFrameSize = 4 + 1 + 4
)

// BoneCurveNames are the curves of a bone clip, in clip order.
var BoneCurveNames = [7]string{
	"Position.X", "Position.Y", "Position.Z",
	"Rotation.X", "Rotation.Y", "Rotation.Z", "Rotation.W",
}

// MorphCurveName is the single curve of a morph clip.
const MorphCurveName = "Weight"

// Bezier channels of a bone keyframe.
const (
	ChannelX = iota
	ChannelY
	ChannelZ
	ChannelRotation
)

// VMDHeader is the motion file header.
type VMDHeader struct {
	Magic string
	Name  string // target model name
}

// VMDBoneFrame is a bone keyframe.
type VMDBoneFrame struct {
	Name     string
	Frame    uint32
	Position [3]float32
	Rotation [4]float32 // quaternion x, y, z, w

	// Four 16-byte interpolation blocks. Row 0 holds X1, Y1, X2, Y2 for the
	// x, y, z and rotation channels; rows 1-3 repeat it shifted by one byte.
	Curves [4][16]byte
}

// Interpolator returns the bezier easing stored for a channel
// (ChannelX..ChannelRotation). Control bytes are scaled from 0..127 to 0..1.
func (f *VMDBoneFrame) Interpolator(channel int) *animation.BezierInterpolator {
	row := &f.Curves[0]
	scale := func(b byte) float32 { return float32(b) / 127 }
	return animation.NewBezierInterpolator(
		scale(row[channel]),
		scale(row[4+channel]),
		scale(row[8+channel]),
		scale(row[12+channel]),
	)
}

// VMDMorphFrame is a morph weight keyframe.
type VMDMorphFrame struct {
	Name   string
	Frame  uint32
	Weight float32
}

// VMDCameraFrame is a camera keyframe.
type VMDCameraFrame struct {
	Frame       uint32
	Distance    float32
	Position    [3]float32
	Rotation    [3]float32 // euler radians
	Curve       [24]byte
	ViewAngle   uint32 // degrees
	Perspective uint8  // 0 = on, 1 = off
}

// VMDLightFrame is a light keyframe.
type VMDLightFrame struct {
	Frame    uint32
	Color    [3]float32
	Position [3]float32
}

// VMDSelfShadowFrame is a self-shadow keyframe.
type VMDSelfShadowFrame struct {
	Frame    uint32
	Mode     uint8 // 0 = off, 1 = mode 1, 2 = mode 2
	Distance float32
}

// VMD represents a parsed VMD file.
type VMD struct {
	Header      VMDHeader
	Bones       []VMDBoneFrame
	Morphs      []VMDMorphFrame
	Cameras     []VMDCameraFrame
	Lights      []VMDLightFrame
	SelfShadows []VMDSelfShadowFrame
}

// ParseVMDHeader parses and validates only the header.
func ParseVMDHeader(data []byte) (*VMDHeader, error) {
	return parseVMDHeader(newReader(data))
}

// ParseVMD parses a VMD file from raw bytes.
func ParseVMD(data []byte) (*VMD, error) {
	r := newReader(data)

	header, err := parseVMDHeader(r)
	if err != nil {
		return nil, err
	}

	vmd := &VMD{Header: *header}

	if vmd.Bones, err = parseVMDBones(r); err != nil {
		return nil, fmt.Errorf("parsing bone frames: %w", err)
	}
	if vmd.Morphs, err = parseVMDMorphs(r); err != nil {
		return nil, fmt.Errorf("parsing morph frames: %w", err)
	}
	if vmd.Cameras, err = parseVMDCameras(r); err != nil {
		return nil, fmt.Errorf("parsing camera frames: %w", err)
	}
	if vmd.Lights, err = parseVMDLights(r); err != nil {
		return nil, fmt.Errorf("parsing light frames: %w", err)
	}
	if vmd.SelfShadows, err = parseVMDShadows(r); err != nil {
		return nil, fmt.Errorf("parsing self shadow frames: %w", err)
	}

	return vmd, nil
}

func parseVMDHeader(r *reader) (*VMDHeader, error) {
	magic, err := r.fixedString("magic", vmdMagicSize)
	if err != nil {
		return nil, err
	}
	if magic != VMDMagic {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidVMDMagic, magic)
	}

	name, err := r.fixedString("model name", vmdNameSize)
	if err != nil {
		return nil, err
	}
	return &VMDHeader{Magic: magic, Name: name}, nil
}

func parseVMDBones(r *reader) ([]VMDBoneFrame, error) {
	n, err := r.count("bone frame", vmdBoneFrameSize)
	if err != nil {
		return nil, err
	}

	frames := make([]VMDBoneFrame, n)
	for i := range frames {
		f := &frames[i]
		if f.Name, err = r.fixedString("bone name", vmdFrameName); err != nil {
			return nil, err
		}
		if f.Frame, err = r.u32("frame"); err != nil {
			return nil, err
		}
		if f.Position, err = r.vec3("position"); err != nil {
			return nil, err
		}
		if f.Rotation, err = r.vec4("rotation"); err != nil {
			return nil, err
		}
		if err := r.read("interpolation", &f.Curves); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

func parseVMDMorphs(r *reader) ([]VMDMorphFrame, error) {
	n, err := r.count("morph frame", vmdMorphFrameSize)
	if err != nil {
		return nil, err
	}

	frames := make([]VMDMorphFrame, n)
	for i := range frames {
		f := &frames[i]
		if f.Name, err = r.fixedString("morph name", vmdFrameName); err != nil {
			return nil, err
		}
		if f.Frame, err = r.u32("frame"); err != nil {
			return nil, err
		}
		if f.Weight, err = r.f32("weight"); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

func parseVMDCameras(r *reader) ([]VMDCameraFrame, error) {
	n, err := r.count("camera frame", vmdCameraFrameSize)
	if err != nil {
		return nil, err
	}

	frames := make([]VMDCameraFrame, n)
	for i := range frames {
		f := &frames[i]
		if f.Frame, err = r.u32("frame"); err != nil {
			return nil, err
		}
		if f.Distance, err = r.f32("distance"); err != nil {
			return nil, err
		}
		if f.Position, err = r.vec3("position"); err != nil {
			return nil, err
		}
		if f.Rotation, err = r.vec3("rotation"); err != nil {
			return nil, err
		}
		if err := r.read("interpolation", &f.Curve); err != nil {
			return nil, err
		}
		if f.ViewAngle, err = r.u32("view angle"); err != nil {
			return nil, err
		}
		if f.Perspective, err = r.u8("perspective"); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

func parseVMDLights(r *reader) ([]VMDLightFrame, error) {
	n, err := r.count("light frame", vmdLightFrameSize)
	if err != nil {
		return nil, err
	}

	frames := make([]VMDLightFrame, n)
	for i := range frames {
		f := &frames[i]
		if f.Frame, err = r.u32("frame"); err != nil {
			return nil, err
		}
		if f.Color, err = r.vec3("color"); err != nil {
			return nil, err
		}
		if f.Position, err = r.vec3("position"); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

func parseVMDShadows(r *reader) ([]VMDSelfShadowFrame, error) {
	n, err := r.count("self shadow frame", vmdShadowFrameSize)
	if err != nil {
		return nil, err
	}

	frames := make([]VMDSelfShadowFrame, n)
	for i := range frames {
		f := &frames[i]
		if f.Frame, err = r.u32("frame"); err != nil {
			return nil, err
		}
		if f.Mode, err = r.u8("mode"); err != nil {
			return nil, err
		}
		if f.Distance, err = r.f32("distance"); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

// BoneAnimator groups bone frames by name into one clip per bone, in
// first-seen order. Keyframes keep file order and are not re-sorted, and
// every segment uses the curve's linear default.
func (v *VMD) BoneAnimator() *animation.Animator[float32] {
	return v.boneAnimator(false, 0)
}

// EasedBoneAnimator is BoneAnimator with the stored bezier easing attached.
// A frame's curve block describes the segment that ends at it, so each
// keyframe carries the easing of the next frame of the same bone.
// maxIterations is passed to every BezierInterpolator.
func (v *VMD) EasedBoneAnimator(maxIterations int) *animation.Animator[float32] {
	return v.boneAnimator(true, maxIterations)
}

// boneChannels maps each entry of BoneCurveNames to its easing channel.
var boneChannels = [7]int{
	ChannelX, ChannelY, ChannelZ,
	ChannelRotation, ChannelRotation, ChannelRotation, ChannelRotation,
}

func (v *VMD) boneAnimator(eased bool, maxIterations int) *animation.Animator[float32] {
	type boneCurves [7]*animation.AnimationCurve[float32]

	var order []string
	groups := make(map[string]*boneCurves)

	for i := range v.Bones {
		f := &v.Bones[i]
		curves, ok := groups[f.Name]
		if !ok {
			curves = &boneCurves{}
			for c := range curves {
				curves[c] = animation.NewCurve[float32]()
			}
			groups[f.Name] = curves
			order = append(order, f.Name)
		}

		t := float32(f.Frame)
		values := [7]float32{
			f.Position[0], f.Position[1], f.Position[2],
			f.Rotation[0], f.Rotation[1], f.Rotation[2], f.Rotation[3],
		}
		for c, value := range values {
			curve := curves[c]
			if eased && curve.Len() > 0 {
				b := f.Interpolator(boneChannels[c])
				b.MaxIterations = maxIterations
				curve.Keyframes[curve.Len()-1].Interpolator = b
			}
			curve.AddKeyframe(t, value, nil)
		}
	}

	animator := animation.NewAnimator[float32](v.Header.Name)
	for _, name := range order {
		clip := animation.NewClip[float32](name)
		for c, curve := range groups[name] {
			clip.SetCurve(BoneCurveNames[c], curve)
		}
		animator.AddClip(clip)
	}
	return animator
}

// MorphAnimator groups morph frames by name into one single-curve clip per
// morph, in first-seen order.
func (v *VMD) MorphAnimator() *animation.Animator[float32] {
	var order []string
	groups := make(map[string]*animation.AnimationCurve[float32])

	for i := range v.Morphs {
		f := &v.Morphs[i]
		curve, ok := groups[f.Name]
		if !ok {
			curve = animation.NewCurve[float32]()
			groups[f.Name] = curve
			order = append(order, f.Name)
		}
		curve.AddKeyframe(float32(f.Frame), f.Weight, nil)
	}

	animator := animation.NewAnimator[float32](v.Header.Name)
	for _, name := range order {
		clip := animation.NewClip[float32](name)
		clip.SetCurve(MorphCurveName, groups[name])
		animator.AddClip(clip)
	}
	return animator
}

// FrameCount returns the last keyframe number over all tracks.
func (v *VMD) FrameCount() uint32 {
	var last uint32
	bump := func(f uint32) {
		if f > last {
			last = f
		}
	}
	for i := range v.Bones {
		bump(v.Bones[i].Frame)
	}
	for i := range v.Morphs {
		bump(v.Morphs[i].Frame)
	}
	for i := range v.Cameras {
		bump(v.Cameras[i].Frame)
	}
	for i := range v.Lights {
		bump(v.Lights[i].Frame)
	}
	for i := range v.SelfShadows {
		bump(v.SelfShadows[i].Frame)
	}
	return last
}

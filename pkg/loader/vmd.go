package loader

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mmd-core/internal/logger"
	"github.com/Faultbox/mmd-core/pkg/animation"
	"github.com/Faultbox/mmd-core/pkg/formats"
)

// VMDLoader decodes VMD motions into a bone Animator.
//
// Only the bone tracks are returned. Morph tracks are parsed but have to be
// grouped through formats.VMD.MorphAnimator.
type VMDLoader struct {
	// Eased attaches each frame's stored bezier easing to its segment.
	// By default every segment is linear.
	Eased bool

	// BezierMaxIterations caps the easing search when Eased is set.
	BezierMaxIterations int
}

// CanRead reports whether data starts with the VMD magic.
func (l *VMDLoader) CanRead(data []byte) bool {
	_, err := formats.ParseVMDHeader(data)
	return err == nil
}

// Decode parses data and groups its bone frames.
func (l *VMDLoader) Decode(data []byte) (*animation.Animator[float32], error) {
	vmd, err := formats.ParseVMD(data)
	if err != nil {
		return nil, fmt.Errorf("decoding VMD: %w", err)
	}

	var a *animation.Animator[float32]
	if l.Eased {
		a = vmd.EasedBoneAnimator(l.BezierMaxIterations)
	} else {
		a = vmd.BoneAnimator()
	}

	logger.Named("loader").Debug("motion decoded",
		zap.String("name", a.Name),
		zap.Int("bone_frames", len(vmd.Bones)),
		zap.Int("morph_frames", len(vmd.Morphs)),
		zap.Int("clips", a.Len()),
		zap.Uint32("last_frame", vmd.FrameCount()))

	return a, nil
}

package model

// Bone is a skeleton joint.
type Bone struct {
	Name        string
	NameEnglish string
	Parent      int // -1 for roots
	Position    [3]float32
	Level       uint32 // deform order
	Flags       uint16
}

// IsRoot reports whether the bone has no parent.
func (b *Bone) IsRoot() bool {
	return b.Parent < 0
}

// Solver is an inverse kinematics chain driven by Bone toward TargetBone.
type Solver struct {
	Bone        int
	TargetBone  int
	LoopCount   uint32
	LimitRadian float32
	Links       []BoneLink
}

// BoneLink is one joint of an IK chain with optional per-axis limits.
type BoneLink struct {
	Bone    int
	Limited bool
	Min     [3]float32
	Max     [3]float32
}

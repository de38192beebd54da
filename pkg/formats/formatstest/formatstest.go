// Package formatstest builds PMX and VMD byte streams for tests.
package formatstest

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/mmd-core/pkg/encoding"
)

// Writer appends little-endian primitives to a buffer.
type Writer struct {
	bytes.Buffer
}

func (w *Writer) U8(v uint8)   { w.WriteByte(v) }
func (w *Writer) U16(v uint16) { binary.Write(&w.Buffer, binary.LittleEndian, v) }
func (w *Writer) U32(v uint32) { binary.Write(&w.Buffer, binary.LittleEndian, v) }
func (w *Writer) F32(v float32) {
	binary.Write(&w.Buffer, binary.LittleEndian, v)
}

// Floats writes each value as f32.
func (w *Writer) Floats(v ...float32) {
	for _, f := range v {
		w.F32(f)
	}
}

// Index writes v with the given byte width (1, 2 or 4).
func (w *Writer) Index(width uint8, v int32) {
	switch width {
	case 1:
		binary.Write(&w.Buffer, binary.LittleEndian, int8(v))
	case 2:
		binary.Write(&w.Buffer, binary.LittleEndian, int16(v))
	default:
		binary.Write(&w.Buffer, binary.LittleEndian, v)
	}
}

// Text writes a u32 length-prefixed string, UTF-16LE when enc is 0 and UTF-8 otherwise.
func (w *Writer) Text(enc uint8, s string) {
	var raw []byte
	if enc == 0 {
		raw = encoding.UTF8ToUTF16LE(s)
	} else {
		raw = []byte(s)
	}
	w.RawText(raw)
}

// RawText writes a u32 length prefix followed by raw.
func (w *Writer) RawText(raw []byte) {
	w.U32(uint32(len(raw)))
	w.Write(raw)
}

// Fixed writes s as a zero-padded Shift-JIS field of n bytes.
func (w *Writer) Fixed(s string, n int) {
	w.Write(encoding.UTF8ToFixedString(s, n))
}

// Header describes the PMX header fields.
type Header struct {
	Magic         string
	Version       float32
	Offset        uint8
	DataSize      uint8
	Encoding      uint8
	AdditionalUVs uint8
	VertexIndex   uint8
	TextureIndex  uint8
	MaterialIndex uint8
	BoneIndex     uint8
	MorphIndex    uint8
	BodyIndex     uint8
}

// NewHeader returns a valid PMX 2.0 header using the given text encoding.
func NewHeader(enc uint8) Header {
	return Header{
		Magic:         "PMX",
		Version:       2.0,
		Offset:        0x20,
		DataSize:      8,
		Encoding:      enc,
		VertexIndex:   4,
		TextureIndex:  1,
		MaterialIndex: 1,
		BoneIndex:     2,
		MorphIndex:    1,
		BodyIndex:     1,
	}
}

// Bytes returns the 17-byte encoded header.
func (h Header) Bytes() []byte {
	var w Writer
	magic := make([]byte, 3)
	copy(magic, h.Magic)
	w.Write(magic)
	w.U8(h.Offset)
	w.F32(h.Version)
	w.U8(h.DataSize)
	w.U8(h.Encoding)
	w.U8(h.AdditionalUVs)
	w.U8(h.VertexIndex)
	w.U8(h.TextureIndex)
	w.U8(h.MaterialIndex)
	w.U8(h.BoneIndex)
	w.U8(h.MorphIndex)
	w.U8(h.BodyIndex)
	return w.Bytes()
}

// Vertex is a PMX vertex. Weight is the first weight of BDEF2/SDEF/QDEF;
// BDEF4 uses Weights.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
	Extra    [][4]float32
	Kind     uint8
	Bones    []int32
	Weight   float32
	Weights  [4]float32
	Edge     float32
}

// Material is a PMX material record.
type Material struct {
	Name          string
	Diffuse       [4]float32
	Flags         uint8
	Texture       int32
	SphereTexture int32
	SharedToon    uint8
	Toon          int32
	Memo          string
	IndexCount    uint32
}

// IKLink is one link of an IK chain.
type IKLink struct {
	Bone    int32
	Limited bool
	Min     [3]float32
	Max     [3]float32
}

// Bone is a PMX bone record.
type Bone struct {
	Name          string
	Position      [3]float32
	Parent        int32
	Level         uint32
	Flags         uint16
	Tail          int32
	TailOffset    [3]float32
	InheritParent int32
	InheritRatio  float32
	FixedAxis     [3]float32
	LocalX        [3]float32
	LocalZ        [3]float32
	IKTarget      int32
	IKLoops       uint32
	IKLimit       float32
	IKLinks       []IKLink
}

// PMX is a model to be encoded.
type PMX struct {
	Header         Header
	Name           string
	NameEnglish    string
	Comment        string
	CommentEnglish string
	Vertices       []Vertex
	Indices        []uint32
	Textures       []string
	Materials      []Material
	Bones          []Bone
}

// NewPMX returns a model with a valid UTF-16 header.
func NewPMX() *PMX {
	return &PMX{Header: NewHeader(0)}
}

// Bytes encodes the model.
func (m *PMX) Bytes() []byte {
	h := m.Header
	enc := h.Encoding
	var w Writer
	w.Write(h.Bytes())

	w.Text(enc, m.Name)
	w.Text(enc, m.NameEnglish)
	w.Text(enc, m.Comment)
	w.Text(enc, m.CommentEnglish)

	w.U32(uint32(len(m.Vertices)))
	for _, v := range m.Vertices {
		w.Floats(v.Position[:]...)
		w.Floats(v.Normal[:]...)
		w.Floats(v.UV[:]...)
		for i := 0; i < int(h.AdditionalUVs); i++ {
			var uv [4]float32
			if i < len(v.Extra) {
				uv = v.Extra[i]
			}
			w.Floats(uv[:]...)
		}
		w.U8(v.Kind)
		bone := func(i int) int32 {
			if i < len(v.Bones) {
				return v.Bones[i]
			}
			return 0
		}
		switch v.Kind {
		case 0:
			w.Index(h.BoneIndex, bone(0))
		case 1, 4:
			w.Index(h.BoneIndex, bone(0))
			w.Index(h.BoneIndex, bone(1))
			w.F32(v.Weight)
		case 2:
			for i := 0; i < 4; i++ {
				w.Index(h.BoneIndex, bone(i))
			}
			w.Floats(v.Weights[:]...)
		case 3:
			w.Index(h.BoneIndex, bone(0))
			w.Index(h.BoneIndex, bone(1))
			w.F32(v.Weight)
			w.Floats(make([]float32, 9)...)
		}
		w.F32(v.Edge)
	}

	w.U32(uint32(len(m.Indices)))
	for _, idx := range m.Indices {
		switch h.VertexIndex {
		case 1:
			w.U8(uint8(idx))
		case 2:
			w.U16(uint16(idx))
		default:
			w.U32(idx)
		}
	}

	w.U32(uint32(len(m.Textures)))
	for _, t := range m.Textures {
		w.Text(enc, t)
	}

	w.U32(uint32(len(m.Materials)))
	for _, mat := range m.Materials {
		w.Text(enc, mat.Name)
		w.Text(enc, "")
		w.Floats(mat.Diffuse[:]...)
		w.Floats(0, 0, 0, 5) // specular, shininess
		w.Floats(0, 0, 0)    // ambient
		w.U8(mat.Flags)
		w.Floats(0, 0, 0, 1) // edge color
		w.F32(1)             // edge size
		w.Index(h.TextureIndex, mat.Texture)
		w.Index(h.TextureIndex, mat.SphereTexture)
		w.U8(0)
		w.U8(mat.SharedToon)
		if mat.SharedToon == 1 {
			w.U8(uint8(mat.Toon))
		} else {
			w.Index(h.TextureIndex, mat.Toon)
		}
		w.Text(enc, mat.Memo)
		w.U32(mat.IndexCount)
	}

	w.U32(uint32(len(m.Bones)))
	for _, b := range m.Bones {
		w.Text(enc, b.Name)
		w.Text(enc, "")
		w.Floats(b.Position[:]...)
		w.Index(h.BoneIndex, b.Parent)
		w.U32(b.Level)
		w.U16(b.Flags)
		if b.Flags&(1<<0) != 0 {
			w.Index(h.BoneIndex, b.Tail)
		} else {
			w.Floats(b.TailOffset[:]...)
		}
		if b.Flags&(1<<8) != 0 {
			w.Index(h.BoneIndex, b.InheritParent)
			w.F32(b.InheritRatio)
		}
		if b.Flags&(1<<10) != 0 {
			w.Floats(b.FixedAxis[:]...)
		}
		if b.Flags&(1<<11) != 0 {
			w.Floats(b.LocalX[:]...)
			w.Floats(b.LocalZ[:]...)
		}
		if b.Flags&(1<<5) != 0 {
			w.Index(h.BoneIndex, b.IKTarget)
			w.U32(b.IKLoops)
			w.F32(b.IKLimit)
			w.U32(uint32(len(b.IKLinks)))
			for _, l := range b.IKLinks {
				w.Index(h.BoneIndex, l.Bone)
				if l.Limited {
					w.U8(1)
					w.Floats(l.Min[:]...)
					w.Floats(l.Max[:]...)
				} else {
					w.U8(0)
				}
			}
		}
	}

	return w.Bytes()
}

// VMDMagic is the signature written by NewVMD.
const VMDMagic = "Vocaloid Motion Data 0002"

// BoneFrame is a VMD bone keyframe.
type BoneFrame struct {
	Name     string
	Frame    uint32
	Position [3]float32
	Rotation [4]float32
	Curves   [64]byte
}

// MorphFrame is a VMD morph keyframe.
type MorphFrame struct {
	Name   string
	Frame  uint32
	Weight float32
}

// CameraFrame is a VMD camera keyframe.
type CameraFrame struct {
	Frame       uint32
	Distance    float32
	Position    [3]float32
	Rotation    [3]float32
	Curve       [24]byte
	ViewAngle   uint32
	Perspective uint8
}

// LightFrame is a VMD light keyframe.
type LightFrame struct {
	Frame    uint32
	Color    [3]float32
	Position [3]float32
}

// ShadowFrame is a VMD self-shadow keyframe.
type ShadowFrame struct {
	Frame    uint32
	Mode     uint8
	Distance float32
}

// VMD is a motion to be encoded.
type VMD struct {
	Magic   string
	Name    string
	Bones   []BoneFrame
	Morphs  []MorphFrame
	Cameras []CameraFrame
	Lights  []LightFrame
	Shadows []ShadowFrame
}

// NewVMD returns an empty motion with the standard signature.
func NewVMD(name string) *VMD {
	return &VMD{Magic: VMDMagic, Name: name}
}

// Bytes encodes the motion.
func (m *VMD) Bytes() []byte {
	var w Writer
	w.Fixed(m.Magic, 30)
	w.Fixed(m.Name, 20)

	w.U32(uint32(len(m.Bones)))
	for _, f := range m.Bones {
		w.Fixed(f.Name, 15)
		w.U32(f.Frame)
		w.Floats(f.Position[:]...)
		w.Floats(f.Rotation[:]...)
		w.Write(f.Curves[:])
	}

	w.U32(uint32(len(m.Morphs)))
	for _, f := range m.Morphs {
		w.Fixed(f.Name, 15)
		w.U32(f.Frame)
		w.F32(f.Weight)
	}

	w.U32(uint32(len(m.Cameras)))
	for _, f := range m.Cameras {
		w.U32(f.Frame)
		w.F32(f.Distance)
		w.Floats(f.Position[:]...)
		w.Floats(f.Rotation[:]...)
		w.Write(f.Curve[:])
		w.U32(f.ViewAngle)
		w.U8(f.Perspective)
	}

	w.U32(uint32(len(m.Lights)))
	for _, f := range m.Lights {
		w.U32(f.Frame)
		w.Floats(f.Color[:]...)
		w.Floats(f.Position[:]...)
	}

	w.U32(uint32(len(m.Shadows)))
	for _, f := range m.Shadows {
		w.U32(f.Frame)
		w.U8(f.Mode)
		w.F32(f.Distance)
	}

	return w.Bytes()
}

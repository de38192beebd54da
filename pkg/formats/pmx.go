// PMX (Polygon Model eXtended) format parser for skinned character models.
package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Faultbox/mmd-core/pkg/encoding"
)

// PMX format errors.
var (
	ErrInvalidPMXHeader      = errors.New("invalid PMX header")
	ErrInvalidPMXMagic       = errors.New("invalid PMX magic: expected 'PMX'")
	ErrUnsupportedPMXVersion = errors.New("unsupported PMX version")
	ErrUnknownWeightKind     = errors.New("unknown PMX bone weight kind")
)

// PMXVersion is the only version accepted by the parser.
const PMXVersion float32 = 2.0

// pmxHeaderSize is magic[3] + offset + version f32 + data size + eight info bytes.
const pmxHeaderSize = 3 + 1 + 4 + 1 + 8

// TextEncoding is the string encoding declared in the PMX header.
type TextEncoding uint8

const (
	EncodingUTF16 TextEncoding = 0
	EncodingUTF8  TextEncoding = 1
)

// String returns the encoding name.
func (e TextEncoding) String() string {
	switch e {
	case EncodingUTF16:
		return "UTF-16LE"
	case EncodingUTF8:
		return "UTF-8"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(e))
	}
}

// HeaderError describes a header field that failed validation.
type HeaderError struct {
	Field string
	Value any
	kind  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%v: %s = %v", e.kind, e.Field, e.Value)
}

// Is matches ErrInvalidPMXHeader for every header failure, plus the more
// specific magic and version sentinels.
func (e *HeaderError) Is(target error) bool {
	return target == ErrInvalidPMXHeader || target == e.kind
}

// PMXHeader is the fixed-size PMX file header.
type PMXHeader struct {
	Magic         [3]byte
	Offset        uint8 // always 0x20 in practice
	Version       float32
	DataSize      uint8 // number of info bytes that follow, 8 for 2.0
	Encoding      TextEncoding
	AdditionalUVs uint8 // 0..8 extra vec4 UV channels per vertex
	VertexIndex   uint8
	TextureIndex  uint8
	MaterialIndex uint8
	BoneIndex     uint8
	MorphIndex    uint8
	BodyIndex     uint8
}

// PMXWidths holds the resolved index widths used by every record after the header.
type PMXWidths struct {
	Vertex   IndexWidth
	Texture  IndexWidth
	Material IndexWidth
	Bone     IndexWidth
	Morph    IndexWidth
	Body     IndexWidth
}

// Validate checks the header fields. It never touches the body.
func (h *PMXHeader) Validate() error {
	for i, want := range [3]byte{'p', 'm', 'x'} {
		if h.Magic[i] != want && h.Magic[i] != want-('a'-'A') {
			return &HeaderError{Field: "magic", Value: string(h.Magic[:]), kind: ErrInvalidPMXMagic}
		}
	}
	if h.Version != PMXVersion {
		return &HeaderError{Field: "version", Value: h.Version, kind: ErrUnsupportedPMXVersion}
	}

	invalid := func(field string, value uint8) error {
		return &HeaderError{Field: field, Value: value, kind: ErrInvalidPMXHeader}
	}
	oneOf := func(v uint8, set ...uint8) bool {
		for _, s := range set {
			if v == s {
				return true
			}
		}
		return false
	}

	switch {
	case h.Offset == 0:
		return invalid("offset", h.Offset)
	case h.DataSize == 0:
		return invalid("data_size", h.DataSize)
	case !oneOf(uint8(h.Encoding), 0, 1):
		return invalid("encoding", uint8(h.Encoding))
	case h.AdditionalUVs > 8:
		return invalid("additional_uvs", h.AdditionalUVs)
	case !oneOf(h.VertexIndex, 1, 2, 4):
		return invalid("vertex_index_size", h.VertexIndex)
	case !oneOf(h.TextureIndex, 1, 2):
		return invalid("texture_index_size", h.TextureIndex)
	case !oneOf(h.MaterialIndex, 1, 2, 4):
		return invalid("material_index_size", h.MaterialIndex)
	case !oneOf(h.BoneIndex, 1, 2):
		return invalid("bone_index_size", h.BoneIndex)
	case !oneOf(h.MorphIndex, 1, 2, 4):
		return invalid("morph_index_size", h.MorphIndex)
	case !oneOf(h.BodyIndex, 1, 2, 4):
		return invalid("body_index_size", h.BodyIndex)
	}
	return nil
}

// Widths resolves the header width bytes. Call after Validate.
func (h *PMXHeader) Widths() (PMXWidths, error) {
	var w PMXWidths
	var err error
	resolve := func(dst *IndexWidth, code uint8, field string) {
		if err != nil {
			return
		}
		if *dst, err = ResolveIndexWidth(code); err != nil {
			err = fmt.Errorf("%s: %w", field, err)
		}
	}
	resolve(&w.Vertex, h.VertexIndex, "vertex index")
	resolve(&w.Texture, h.TextureIndex, "texture index")
	resolve(&w.Material, h.MaterialIndex, "material index")
	resolve(&w.Bone, h.BoneIndex, "bone index")
	resolve(&w.Morph, h.MorphIndex, "morph index")
	resolve(&w.Body, h.BodyIndex, "body index")
	return w, err
}

// PMXDescription holds the raw model name and comment bytes.
//
// The English name and comment bytes end up appended to the Japanese buffers;
// the English buffers stay empty. Consumers rely on this layout, so it is kept.
type PMXDescription struct {
	JapaneseNameLength    uint32
	EnglishNameLength     uint32
	JapaneseCommentLength uint32
	EnglishCommentLength  uint32

	JapaneseName    []byte
	JapaneseComment []byte
	EnglishName     []byte
	EnglishComment  []byte
}

// Name decodes the native name buffer with enc, substituting U+FFFD for
// invalid sequences.
func (d *PMXDescription) Name(enc TextEncoding) string {
	return decodeLenient(d.JapaneseName, enc)
}

// Comment decodes the native comment buffer like Name.
func (d *PMXDescription) Comment(enc TextEncoding) string {
	return decodeLenient(d.JapaneseComment, enc)
}

func decodeLenient(data []byte, enc TextEncoding) string {
	if enc == EncodingUTF8 {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return encoding.UTF16LEToUTF8Lossy(data)
}

// WeightKind selects the bone weight layout of a vertex.
type WeightKind uint8

const (
	WeightBDEF1 WeightKind = 0 // one bone, weight 1
	WeightBDEF2 WeightKind = 1 // two bones, second weight = 1 - first
	WeightBDEF4 WeightKind = 2 // four bones, four weights
	WeightSDEF  WeightKind = 3 // BDEF2 plus spherical deformation vectors
	WeightQDEF  WeightKind = 4 // dual quaternion, BDEF2 layout
)

// String returns the conventional name of the weight kind.
func (k WeightKind) String() string {
	switch k {
	case WeightBDEF1:
		return "BDEF1"
	case WeightBDEF2:
		return "BDEF2"
	case WeightBDEF4:
		return "BDEF4"
	case WeightSDEF:
		return "SDEF"
	case WeightQDEF:
		return "QDEF"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// BoneWeight is the skinning record of a vertex.
type BoneWeight struct {
	Kind    WeightKind
	Bones   [4]int32
	Weights [4]float32

	// SDEF only
	C  [3]float32
	R0 [3]float32
	R1 [3]float32
}

// PMXVertex is a single vertex record.
type PMXVertex struct {
	Position      [3]float32
	Normal        [3]float32
	UV            [2]float32
	AdditionalUVs [8][4]float32 // only the first header.AdditionalUVs are set
	Weight        BoneWeight
	EdgeScale     float32
}

// IndexBuffer is the shared triangle index list in one of three widths.
type IndexBuffer interface {
	Len() int
	At(i int) uint32
	Width() IndexWidth
}

// Index8 is an IndexBuffer of 1-byte indices.
type Index8 []uint8

// Index16 is an IndexBuffer of 2-byte indices.
type Index16 []uint16

// Index32 is an IndexBuffer of 4-byte indices.
type Index32 []uint32

func (b Index8) Len() int           { return len(b) }
func (b Index8) At(i int) uint32    { return uint32(b[i]) }
func (b Index8) Width() IndexWidth  { return Width8 }
func (b Index16) Len() int          { return len(b) }
func (b Index16) At(i int) uint32   { return uint32(b[i]) }
func (b Index16) Width() IndexWidth { return Width16 }
func (b Index32) Len() int          { return len(b) }
func (b Index32) At(i int) uint32   { return b[i] }
func (b Index32) Width() IndexWidth { return Width32 }

// Material flag bits.
const (
	MaterialFlagDoubleSided  uint8 = 1 << 0
	MaterialFlagGroundShadow uint8 = 1 << 1
	MaterialFlagCastShadow   uint8 = 1 << 2
	MaterialFlagSelfShadow   uint8 = 1 << 3
	MaterialFlagEdge         uint8 = 1 << 4
)

// PMXMaterial is a material record. IndexCount entries of the shared index
// buffer, following the previous material's, belong to it.
type PMXMaterial struct {
	Name          string
	NameEnglish   string
	Diffuse       [3]float32
	Opacity       float32
	Specular      [3]float32
	Shininess     float32
	Ambient       [3]float32
	Flags         uint8
	EdgeColor     [4]float32
	EdgeSize      float32
	Texture       int32 // -1 = none
	SphereTexture int32 // -1 = none
	SphereMode    uint8
	SharedToon    uint8 // 1 = ToonTexture is a shared toon number (one byte)
	ToonTexture   int32
	Memo          string
	IndexCount    uint32
}

// Bone flag bits.
const (
	BoneFlagTailIsBone         uint16 = 1 << 0
	BoneFlagRotatable          uint16 = 1 << 1
	BoneFlagMovable            uint16 = 1 << 2
	BoneFlagVisible            uint16 = 1 << 3
	BoneFlagOperable           uint16 = 1 << 4
	BoneFlagIK                 uint16 = 1 << 5
	BoneFlagInheritRotation    uint16 = 1 << 8 // gates the inherit block
	BoneFlagInheritTranslation uint16 = 1 << 9 // no payload of its own
	BoneFlagFixedAxis          uint16 = 1 << 10
	BoneFlagLocalAxis          uint16 = 1 << 11
)

// PMXIKLink is one link of an IK chain.
type PMXIKLink struct {
	Bone        int32
	LimitAngles uint8 // non-zero when Min/Max are present
	Min         [3]float32
	Max         [3]float32
}

// PMXBone is a bone record. Optional fields are zero unless the matching
// flag bit is set.
type PMXBone struct {
	Name        string
	NameEnglish string
	Position    [3]float32
	Parent      int32
	Level       uint32
	Flags       uint16

	TailBone   int32      // BoneFlagTailIsBone
	TailOffset [3]float32 // !BoneFlagTailIsBone

	InheritParent int32 // BoneFlagInheritRotation
	InheritRatio  float32

	FixedAxis [3]float32 // BoneFlagFixedAxis

	LocalX [3]float32 // BoneFlagLocalAxis
	LocalZ [3]float32

	IKTarget     int32 // BoneFlagIK
	IKLoopCount  uint32
	IKLimitAngle float32
	IKLinks      []PMXIKLink
}

// HasFlag reports whether all bits of flag are set.
func (b *PMXBone) HasFlag(flag uint16) bool {
	return b.Flags&flag == flag
}

// PMX represents a parsed PMX file.
type PMX struct {
	Header      PMXHeader
	Widths      PMXWidths
	Description PMXDescription
	Vertices    []PMXVertex
	Indices     IndexBuffer
	Textures    []string
	Materials   []PMXMaterial
	Bones       []PMXBone
}

// ParsePMXHeader parses and validates only the header.
func ParsePMXHeader(data []byte) (*PMXHeader, error) {
	return parsePMXHeader(newReader(data))
}

// ParsePMX parses a PMX file from raw bytes.
func ParsePMX(data []byte) (*PMX, error) {
	r := newReader(data)

	header, err := parsePMXHeader(r)
	if err != nil {
		return nil, err
	}
	widths, err := header.Widths()
	if err != nil {
		return nil, err
	}

	pmx := &PMX{Header: *header, Widths: widths}
	p := &pmxParser{r: r, header: header, widths: widths}

	if pmx.Description, err = p.parseDescription(); err != nil {
		return nil, fmt.Errorf("parsing description: %w", err)
	}
	if pmx.Vertices, err = p.parseVertices(); err != nil {
		return nil, err
	}
	if pmx.Indices, err = p.parseIndices(); err != nil {
		return nil, fmt.Errorf("parsing indices: %w", err)
	}
	if pmx.Textures, err = p.parseTextures(); err != nil {
		return nil, err
	}
	if pmx.Materials, err = p.parseMaterials(); err != nil {
		return nil, err
	}
	if pmx.Bones, err = p.parseBones(); err != nil {
		return nil, err
	}

	return pmx, nil
}

func parsePMXHeader(r *reader) (*PMXHeader, error) {
	raw, err := r.bytes("header", pmxHeaderSize)
	if err != nil {
		return nil, err
	}

	h := &PMXHeader{}
	copy(h.Magic[:], raw[0:3])
	h.Offset = raw[3]
	h.Version = math.Float32frombits(binary.LittleEndian.Uint32(raw[4:8]))
	h.DataSize = raw[8]
	h.Encoding = TextEncoding(raw[9])
	h.AdditionalUVs = raw[10]
	h.VertexIndex = raw[11]
	h.TextureIndex = raw[12]
	h.MaterialIndex = raw[13]
	h.BoneIndex = raw[14]
	h.MorphIndex = raw[15]
	h.BodyIndex = raw[16]

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

type pmxParser struct {
	r      *reader
	header *PMXHeader
	widths PMXWidths
}

func (p *pmxParser) text(field string) (string, error) {
	return p.r.text(field, p.header.Encoding)
}

func (p *pmxParser) parseDescription() (PMXDescription, error) {
	var d PMXDescription
	var err error
	var buf []byte

	if d.JapaneseNameLength, err = p.r.u32("japanese name length"); err != nil {
		return d, err
	}
	if buf, err = p.r.bytes("japanese name", int(d.JapaneseNameLength)); err != nil {
		return d, err
	}
	d.JapaneseName = append(d.JapaneseName, buf...)

	if d.EnglishNameLength, err = p.r.u32("english name length"); err != nil {
		return d, err
	}
	if buf, err = p.r.bytes("english name", int(d.EnglishNameLength)); err != nil {
		return d, err
	}
	d.JapaneseName = append(d.JapaneseName, buf...)

	if d.JapaneseCommentLength, err = p.r.u32("japanese comment length"); err != nil {
		return d, err
	}
	if buf, err = p.r.bytes("japanese comment", int(d.JapaneseCommentLength)); err != nil {
		return d, err
	}
	d.JapaneseComment = append(d.JapaneseComment, buf...)

	if d.EnglishCommentLength, err = p.r.u32("english comment length"); err != nil {
		return d, err
	}
	if buf, err = p.r.bytes("english comment", int(d.EnglishCommentLength)); err != nil {
		return d, err
	}
	d.JapaneseComment = append(d.JapaneseComment, buf...)

	return d, nil
}

func (p *pmxParser) parseVertices() ([]PMXVertex, error) {
	// position + normal + uv + weight kind + one bone + edge
	minSize := 12 + 12 + 8 + 1 + 1 + 4
	n, err := p.r.count("vertex", minSize)
	if err != nil {
		return nil, err
	}

	vertices := make([]PMXVertex, n)
	for i := range vertices {
		if err := p.parseVertex(&vertices[i]); err != nil {
			return nil, fmt.Errorf("parsing vertex %d: %w", i, err)
		}
	}
	return vertices, nil
}

func (p *pmxParser) parseVertex(v *PMXVertex) error {
	var err error
	if v.Position, err = p.r.vec3("position"); err != nil {
		return err
	}
	if v.Normal, err = p.r.vec3("normal"); err != nil {
		return err
	}
	if v.UV, err = p.r.vec2("uv"); err != nil {
		return err
	}
	for i := 0; i < int(p.header.AdditionalUVs); i++ {
		if v.AdditionalUVs[i], err = p.r.vec4("additional uv"); err != nil {
			return err
		}
	}
	if v.Weight, err = p.parseWeight(); err != nil {
		return err
	}
	v.EdgeScale, err = p.r.f32("edge scale")
	return err
}

func (p *pmxParser) parseWeight() (BoneWeight, error) {
	var w BoneWeight

	kind, err := p.r.u8("weight kind")
	if err != nil {
		return w, err
	}
	w.Kind = WeightKind(kind)

	bones := func(n int) error {
		for i := 0; i < n; i++ {
			if w.Bones[i], err = p.r.index("weight bone", p.widths.Bone); err != nil {
				return err
			}
		}
		return nil
	}

	switch w.Kind {
	case WeightBDEF1:
		if err := bones(1); err != nil {
			return w, err
		}
		w.Weights[0] = 1.0

	case WeightBDEF2, WeightQDEF:
		if err := bones(2); err != nil {
			return w, err
		}
		if w.Weights[0], err = p.r.f32("weight"); err != nil {
			return w, err
		}
		w.Weights[1] = 1.0 - w.Weights[0]

	case WeightBDEF4:
		if err := bones(4); err != nil {
			return w, err
		}
		if err := p.r.read("weights", &w.Weights); err != nil {
			return w, err
		}

	case WeightSDEF:
		if err := bones(2); err != nil {
			return w, err
		}
		if w.Weights[0], err = p.r.f32("weight"); err != nil {
			return w, err
		}
		if w.C, err = p.r.vec3("sdef c"); err != nil {
			return w, err
		}
		if w.R0, err = p.r.vec3("sdef r0"); err != nil {
			return w, err
		}
		if w.R1, err = p.r.vec3("sdef r1"); err != nil {
			return w, err
		}
		w.Weights[1] = 1.0 - w.Weights[0]

	default:
		return w, fmt.Errorf("%w: %d", ErrUnknownWeightKind, kind)
	}

	return w, nil
}

func (p *pmxParser) parseIndices() (IndexBuffer, error) {
	n, err := p.r.count("index", int(p.widths.Vertex))
	if err != nil {
		return nil, err
	}

	switch p.widths.Vertex {
	case Width8:
		buf, err := p.r.bytes("indices", n)
		return Index8(buf), err
	case Width16:
		buf := make(Index16, n)
		return buf, p.r.read("indices", []uint16(buf))
	case Width32:
		buf := make(Index32, n)
		return buf, p.r.read("indices", []uint32(buf))
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndexWidth, uint8(p.widths.Vertex))
	}
}

func (p *pmxParser) parseTextures() ([]string, error) {
	n, err := p.r.count("texture", 4)
	if err != nil {
		return nil, err
	}

	textures := make([]string, n)
	for i := range textures {
		if textures[i], err = p.text("texture path"); err != nil {
			return nil, fmt.Errorf("parsing texture %d: %w", i, err)
		}
	}
	return textures, nil
}

func (p *pmxParser) parseMaterials() ([]PMXMaterial, error) {
	n, err := p.r.count("material", 4+4+12+4+12+4+12+1+16+4+1+1+1+1+1+4+4)
	if err != nil {
		return nil, err
	}

	materials := make([]PMXMaterial, n)
	for i := range materials {
		if err := p.parseMaterial(&materials[i]); err != nil {
			return nil, fmt.Errorf("parsing material %d: %w", i, err)
		}
	}
	return materials, nil
}

func (p *pmxParser) parseMaterial(m *PMXMaterial) error {
	var err error
	if m.Name, err = p.text("material name"); err != nil {
		return err
	}
	if m.NameEnglish, err = p.text("material english name"); err != nil {
		return err
	}
	if m.Diffuse, err = p.r.vec3("diffuse"); err != nil {
		return err
	}
	if m.Opacity, err = p.r.f32("opacity"); err != nil {
		return err
	}
	if m.Specular, err = p.r.vec3("specular"); err != nil {
		return err
	}
	if m.Shininess, err = p.r.f32("shininess"); err != nil {
		return err
	}
	if m.Ambient, err = p.r.vec3("ambient"); err != nil {
		return err
	}
	if m.Flags, err = p.r.u8("material flags"); err != nil {
		return err
	}
	if m.EdgeColor, err = p.r.vec4("edge color"); err != nil {
		return err
	}
	if m.EdgeSize, err = p.r.f32("edge size"); err != nil {
		return err
	}
	if m.Texture, err = p.r.index("texture", p.widths.Texture); err != nil {
		return err
	}
	if m.SphereTexture, err = p.r.index("sphere texture", p.widths.Texture); err != nil {
		return err
	}
	if m.SphereMode, err = p.r.u8("sphere mode"); err != nil {
		return err
	}
	if m.SharedToon, err = p.r.u8("toon mode"); err != nil {
		return err
	}

	if m.SharedToon == 1 {
		toon, err := p.r.u8("shared toon")
		if err != nil {
			return err
		}
		m.ToonTexture = int32(toon)
	} else if m.ToonTexture, err = p.r.index("toon texture", p.widths.Texture); err != nil {
		return err
	}

	if m.Memo, err = p.text("memo"); err != nil {
		return err
	}
	m.IndexCount, err = p.r.u32("index count")
	return err
}

func (p *pmxParser) parseBones() ([]PMXBone, error) {
	n, err := p.r.count("bone", 4+4+12+1+4+2)
	if err != nil {
		return nil, err
	}

	bones := make([]PMXBone, n)
	for i := range bones {
		if err := p.parseBone(&bones[i]); err != nil {
			return nil, fmt.Errorf("parsing bone %d: %w", i, err)
		}
	}
	return bones, nil
}

func (p *pmxParser) parseBone(b *PMXBone) error {
	var err error
	if b.Name, err = p.text("bone name"); err != nil {
		return err
	}
	if b.NameEnglish, err = p.text("bone english name"); err != nil {
		return err
	}
	if b.Position, err = p.r.vec3("bone position"); err != nil {
		return err
	}
	if b.Parent, err = p.r.index("parent bone", p.widths.Bone); err != nil {
		return err
	}
	if b.Level, err = p.r.u32("bone level"); err != nil {
		return err
	}
	if b.Flags, err = p.r.u16("bone flags"); err != nil {
		return err
	}

	if b.Flags&BoneFlagTailIsBone != 0 {
		if b.TailBone, err = p.r.index("tail bone", p.widths.Bone); err != nil {
			return err
		}
	} else if b.TailOffset, err = p.r.vec3("tail offset"); err != nil {
		return err
	}

	if b.Flags&BoneFlagInheritRotation != 0 {
		if b.InheritParent, err = p.r.index("inherit parent", p.widths.Bone); err != nil {
			return err
		}
		if b.InheritRatio, err = p.r.f32("inherit ratio"); err != nil {
			return err
		}
	}

	if b.Flags&BoneFlagFixedAxis != 0 {
		if b.FixedAxis, err = p.r.vec3("fixed axis"); err != nil {
			return err
		}
	}

	if b.Flags&BoneFlagLocalAxis != 0 {
		if b.LocalX, err = p.r.vec3("local x axis"); err != nil {
			return err
		}
		if b.LocalZ, err = p.r.vec3("local z axis"); err != nil {
			return err
		}
	}

	if b.Flags&BoneFlagIK != 0 {
		if err := p.parseIK(b); err != nil {
			return fmt.Errorf("parsing IK: %w", err)
		}
	}

	return nil
}

func (p *pmxParser) parseIK(b *PMXBone) error {
	var err error
	if b.IKTarget, err = p.r.index("ik target", p.widths.Bone); err != nil {
		return err
	}
	if b.IKLoopCount, err = p.r.u32("ik loop count"); err != nil {
		return err
	}
	if b.IKLimitAngle, err = p.r.f32("ik limit angle"); err != nil {
		return err
	}

	n, err := p.r.count("ik link", int(p.widths.Bone)+1)
	if err != nil {
		return err
	}

	b.IKLinks = make([]PMXIKLink, n)
	for i := range b.IKLinks {
		link := &b.IKLinks[i]
		if link.Bone, err = p.r.index("ik link bone", p.widths.Bone); err != nil {
			return err
		}
		if link.LimitAngles, err = p.r.u8("ik link limit flag"); err != nil {
			return err
		}
		if link.LimitAngles > 0 {
			if link.Min, err = p.r.vec3("ik link min"); err != nil {
				return err
			}
			if link.Max, err = p.r.vec3("ik link max"); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetTotalIndexCount returns the sum of IndexCount over all materials.
func (pmx *PMX) GetTotalIndexCount() int {
	total := 0
	for i := range pmx.Materials {
		total += int(pmx.Materials[i].IndexCount)
	}
	return total
}

// GetBoneByName returns a bone by its name, or nil if not found.
func (pmx *PMX) GetBoneByName(name string) *PMXBone {
	for i := range pmx.Bones {
		if pmx.Bones[i].Name == name {
			return &pmx.Bones[i]
		}
	}
	return nil
}

// IKBones returns the indices of all bones carrying an IK block.
func (pmx *PMX) IKBones() []int {
	var ik []int
	for i := range pmx.Bones {
		if pmx.Bones[i].Flags&BoneFlagIK != 0 {
			ik = append(ik, i)
		}
	}
	return ik
}

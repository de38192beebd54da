package loader

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mmd-core/internal/logger"
	"github.com/Faultbox/mmd-core/pkg/formats"
	"github.com/Faultbox/mmd-core/pkg/model"
)

// PMXLoader decodes PMX 2.0 models.
type PMXLoader struct{}

// CanRead reports whether data starts with a valid PMX header.
func (l *PMXLoader) CanRead(data []byte) bool {
	_, err := formats.ParsePMXHeader(data)
	return err == nil
}

// Decode parses data and assembles one mesh per material.
func (l *PMXLoader) Decode(data []byte) (*model.Model, error) {
	pmx, err := formats.ParsePMX(data)
	if err != nil {
		return nil, fmt.Errorf("decoding PMX: %w", err)
	}
	m, err := BuildModel(pmx)
	if err != nil {
		return nil, err
	}

	logger.Named("loader").Debug("model decoded",
		zap.String("name", m.Name),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("textures", len(m.Textures)),
		zap.Int("materials", len(m.Materials)),
		zap.Int("bones", len(m.Bones)),
		zap.Int("iks", len(m.IKs)),
		zap.Int("vertices", m.VertexCount()))

	return m, nil
}

// BuildModel assembles a Model from a parsed PMX file.
func BuildModel(pmx *formats.PMX) (*model.Model, error) {
	m := &model.Model{
		Name:      pmx.Description.Name(pmx.Header.Encoding),
		Textures:  pmx.Textures,
		Materials: make([]model.Material, len(pmx.Materials)),
		Meshes:    make([]model.Mesh, len(pmx.Materials)),
		Bones:     make([]model.Bone, len(pmx.Bones)),
	}

	b := newMeshBuilder(pmx)
	for i := range pmx.Materials {
		mat := &pmx.Materials[i]
		m.Materials[i] = convertMaterial(mat)

		mesh, err := b.build(mat)
		if err != nil {
			return nil, fmt.Errorf("material %d (%s): %w", i, mat.Name, err)
		}
		mesh.MaterialID = i
		m.Meshes[i] = mesh
	}

	for i := range pmx.Bones {
		bone := &pmx.Bones[i]
		m.Bones[i] = model.Bone{
			Name:        bone.Name,
			NameEnglish: bone.NameEnglish,
			Parent:      int(bone.Parent),
			Position:    bone.Position,
			Level:       bone.Level,
			Flags:       bone.Flags,
		}
		if bone.Flags&formats.BoneFlagIK != 0 {
			m.IKs = append(m.IKs, convertIK(i, bone))
		}
	}

	return m, nil
}

// meshBuilder slices the shared index buffer material by material.
type meshBuilder struct {
	pmx     *formats.PMX
	next    int     // first unconsumed index buffer entry
	remap   []int32 // global vertex -> local index, -1 when unseen
	skinned bool
}

func newMeshBuilder(pmx *formats.PMX) *meshBuilder {
	remap := make([]int32, len(pmx.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	return &meshBuilder{pmx: pmx, remap: remap, skinned: len(pmx.Bones) > 0}
}

// build consumes mat.IndexCount entries and returns the mesh they describe.
// Local indices are assigned in first-reference order.
func (b *meshBuilder) build(mat *formats.PMXMaterial) (model.Mesh, error) {
	mesh := model.Mesh{Name: mat.Name, Bounds: model.EmptyBounds()}

	indices := b.pmx.Indices
	count := int(mat.IndexCount)
	if count > indices.Len()-b.next {
		return mesh, fmt.Errorf("%w: %d entries from %d, buffer holds %d",
			ErrIndexOverrun, count, b.next, indices.Len())
	}

	var touched []uint32
	defer func() {
		for _, v := range touched {
			b.remap[v] = -1
		}
	}()

	mesh.Indices = make([]uint32, count)
	for i := 0; i < count; i++ {
		global := indices.At(b.next + i)
		if int(global) >= len(b.pmx.Vertices) {
			return mesh, fmt.Errorf("%w: index %d of %d vertices", ErrVertexOutOfRange, global, len(b.pmx.Vertices))
		}

		local := b.remap[global]
		if local < 0 {
			local = int32(len(touched))
			b.remap[global] = local
			touched = append(touched, global)
			b.addVertex(&mesh, &b.pmx.Vertices[global])
		}
		mesh.Indices[i] = uint32(local)
	}
	b.next += count

	return mesh, nil
}

func (b *meshBuilder) addVertex(mesh *model.Mesh, v *formats.PMXVertex) {
	mesh.Positions = append(mesh.Positions, v.Position)
	mesh.Normals = append(mesh.Normals, v.Normal)
	mesh.TexCoords = append(mesh.TexCoords, v.UV)
	if b.skinned {
		mesh.Weights = append(mesh.Weights, model.VertexWeight{
			Bones:   v.Weight.Bones,
			Weights: v.Weight.Weights,
		})
	}
	mesh.Bounds.Expand(v.Position)
}

func convertMaterial(mat *formats.PMXMaterial) model.Material {
	return model.Material{
		Name:           mat.Name,
		NameEnglish:    mat.NameEnglish,
		Ambient:        mat.Ambient,
		Diffuse:        mat.Diffuse,
		Specular:       mat.Specular,
		Shininess:      mat.Shininess,
		Opacity:        mat.Opacity,
		Flags:          mat.Flags,
		EdgeColor:      mat.EdgeColor,
		EdgeSize:       mat.EdgeSize,
		DiffuseTexture: textureRef(mat.Texture),
		SphereTexture:  textureRef(mat.SphereTexture),
		SphereMode:     mat.SphereMode,
		ToonTexture:    int(mat.ToonTexture),
		SharedToon:     mat.SharedToon == 1,
		Memo:           mat.Memo,
	}
}

// textureRef maps a texture index to a reference, nil for "none".
func textureRef(idx int32) *int {
	if idx < 0 {
		return nil
	}
	ref := int(idx)
	return &ref
}

func convertIK(index int, bone *formats.PMXBone) model.Solver {
	s := model.Solver{
		Bone:        index,
		TargetBone:  int(bone.IKTarget),
		LoopCount:   bone.IKLoopCount,
		LimitRadian: bone.IKLimitAngle,
		Links:       make([]model.BoneLink, len(bone.IKLinks)),
	}
	for i, link := range bone.IKLinks {
		s.Links[i] = model.BoneLink{
			Bone:    int(link.Bone),
			Limited: link.LimitAngles != 0,
			Min:     link.Min,
			Max:     link.Max,
		}
	}
	return s
}

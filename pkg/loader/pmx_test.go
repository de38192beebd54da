package loader

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Faultbox/mmd-core/pkg/formats"
	"github.com/Faultbox/mmd-core/pkg/formats/formatstest"
)

func vertexAt(x float32) formatstest.Vertex {
	return formatstest.Vertex{
		Position: [3]float32{x, x * 2, 0},
		Normal:   [3]float32{0, 0, 1},
		UV:       [2]float32{x / 10, 0},
		Kind:     1,
		Bones:    []int32{0, 1},
		Weight:   0.25,
	}
}

// makeTestPMX builds five vertices shared by two materials: a triangle
// over vertices 0-2 and a quad over vertices 2-4.
func makeTestPMX() *formatstest.PMX {
	p := formatstest.NewPMX()
	p.Name = "テスト"
	p.NameEnglish = "Test"
	for i := 0; i < 5; i++ {
		p.Vertices = append(p.Vertices, vertexAt(float32(i)))
	}
	p.Indices = []uint32{
		0, 1, 2,
		4, 3, 2, 2, 3, 4,
	}
	p.Textures = []string{"tex/body.png", "toon/skin.bmp"}
	p.Materials = []formatstest.Material{
		{Name: "体", Diffuse: [4]float32{1, 1, 1, 1}, Texture: 0, SphereTexture: -1, SharedToon: 1, Toon: 3, IndexCount: 3},
		{Name: "髪", Diffuse: [4]float32{0.5, 0.5, 0.5, 0.8}, Texture: -1, SphereTexture: -1, Toon: 1, IndexCount: 6},
	}
	p.Bones = []formatstest.Bone{
		{Name: "センター", Parent: -1, Flags: formats.BoneFlagRotatable | formats.BoneFlagMovable},
		{Name: "右足", Parent: 0, Level: 1, Flags: formats.BoneFlagRotatable},
		{
			Name: "右足ＩＫ", Parent: 0, Position: [3]float32{1, 2, 3},
			Flags:    formats.BoneFlagIK | formats.BoneFlagMovable,
			IKTarget: 1, IKLoops: 40, IKLimit: 2,
			IKLinks: []formatstest.IKLink{
				{Bone: 1, Limited: true, Min: [3]float32{-3.14, 0, 0}, Max: [3]float32{-0.01, 0, 0}},
				{Bone: 0},
			},
		},
	}
	return p
}

func TestPMXLoader_Meshes(t *testing.T) {
	m, err := (&PMXLoader{}).Decode(makeTestPMX().Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if m.Name != "テストTest" {
		t.Errorf("Name = %q, want テストTest", m.Name)
	}
	if len(m.Meshes) != 2 || len(m.Materials) != 2 {
		t.Fatalf("meshes/materials = %d/%d, want 2/2", len(m.Meshes), len(m.Materials))
	}

	tests := []struct {
		name      string
		positions []float32 // x of each local vertex
		indices   []uint32
	}{
		{"体", []float32{0, 1, 2}, []uint32{0, 1, 2}},
		{"髪", []float32{4, 3, 2}, []uint32{0, 1, 2, 2, 1, 0}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := &m.Meshes[i]
			if mesh.Name != tt.name || mesh.MaterialID != i {
				t.Errorf("Name/MaterialID = %q/%d", mesh.Name, mesh.MaterialID)
			}
			if !reflect.DeepEqual(mesh.Indices, tt.indices) {
				t.Errorf("Indices = %v, want %v", mesh.Indices, tt.indices)
			}
			if mesh.VertexCount() != len(tt.positions) {
				t.Fatalf("VertexCount = %d, want %d", mesh.VertexCount(), len(tt.positions))
			}
			for j, x := range tt.positions {
				if mesh.Positions[j] != [3]float32{x, x * 2, 0} {
					t.Errorf("Positions[%d] = %v, want x=%v", j, mesh.Positions[j], x)
				}
				if mesh.TexCoords[j] != [2]float32{x / 10, 0} {
					t.Errorf("TexCoords[%d] = %v", j, mesh.TexCoords[j])
				}
			}
			if len(mesh.Normals) != len(tt.positions) || len(mesh.Weights) != len(tt.positions) {
				t.Errorf("normals/weights = %d/%d", len(mesh.Normals), len(mesh.Weights))
			}
			w := mesh.Weights[0]
			if w.Bones[0] != 0 || w.Bones[1] != 1 || w.Weights[0] != 0.25 || w.Weights[1] != 0.75 {
				t.Errorf("Weights[0] = %+v", w)
			}
		})
	}

	if b := m.Meshes[1].Bounds; b.Min != [3]float32{2, 4, 0} || b.Max != [3]float32{4, 8, 0} {
		t.Errorf("hair bounds = %+v", b)
	}
}

func TestPMXLoader_LocalRangeIsContiguous(t *testing.T) {
	p := makeTestPMX()
	// Scattered references into a larger vertex pool.
	for i := 5; i < 12; i++ {
		p.Vertices = append(p.Vertices, vertexAt(float32(i)))
	}
	p.Indices = []uint32{11, 5, 7, 7, 5, 9, 0, 11, 3, 3, 3, 3}
	p.Materials = []formatstest.Material{
		{Name: "a", Texture: -1, SphereTexture: -1, IndexCount: 6},
		{Name: "b", Texture: -1, SphereTexture: -1, IndexCount: 3},
		{Name: "c", Texture: -1, SphereTexture: -1, IndexCount: 3},
	}

	m, err := (&PMXLoader{}).Decode(p.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.Meshes) != 3 {
		t.Fatalf("meshes = %d, want 3", len(m.Meshes))
	}

	wantVertices := []int{4, 3, 1}
	total := 0
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		n := mesh.VertexCount()
		if n != wantVertices[i] {
			t.Errorf("mesh %d vertices = %d, want %d", i, n, wantVertices[i])
		}
		seen := make([]bool, n)
		for _, idx := range mesh.Indices {
			if int(idx) >= n {
				t.Fatalf("mesh %d index %d outside 0..%d", i, idx, n-1)
			}
			seen[idx] = true
		}
		for j, ok := range seen {
			if !ok {
				t.Errorf("mesh %d local vertex %d unreferenced", i, j)
			}
		}
		total += len(mesh.Indices)
	}
	if total != len(p.Indices) {
		t.Errorf("indices consumed = %d, want %d", total, len(p.Indices))
	}

	// Vertex 3 is shared by the second and third slice; each mesh owns a copy.
	if m.Meshes[1].Positions[2] != m.Meshes[2].Positions[0] {
		t.Error("shared vertex differs between meshes")
	}
}

func TestPMXLoader_Materials(t *testing.T) {
	m, err := (&PMXLoader{}).Decode(makeTestPMX().Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	body, hair := m.Materials[0], m.Materials[1]
	if path, ok := m.Texture(body.DiffuseTexture); !ok || path != "tex/body.png" {
		t.Errorf("body texture = %q, %v", path, ok)
	}
	if body.SphereTexture != nil || hair.DiffuseTexture != nil {
		t.Error("-1 texture references should be nil")
	}
	if !body.SharedToon || body.ToonTexture != 3 {
		t.Errorf("body toon = %v/%d, want shared 3", body.SharedToon, body.ToonTexture)
	}
	if hair.SharedToon || hair.ToonTexture != 1 {
		t.Errorf("hair toon = %v/%d, want texture 1", hair.SharedToon, hair.ToonTexture)
	}
	if hair.Diffuse != [3]float32{0.5, 0.5, 0.5} || hair.Opacity != 0.8 {
		t.Errorf("hair diffuse/opacity = %v/%v", hair.Diffuse, hair.Opacity)
	}
	if body.EdgeSize != 1 || body.Shininess != 5 {
		t.Errorf("edge size/shininess = %v/%v", body.EdgeSize, body.Shininess)
	}
}

func TestPMXLoader_BonesAndIK(t *testing.T) {
	m, err := (&PMXLoader{}).Decode(makeTestPMX().Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(m.Bones) != 3 {
		t.Fatalf("bones = %d, want 3", len(m.Bones))
	}
	if !m.Bones[0].IsRoot() || m.Bones[1].Parent != 0 || m.Bones[1].Level != 1 {
		t.Errorf("bones = %+v", m.Bones)
	}
	if m.Bones[2].Position != [3]float32{1, 2, 3} {
		t.Errorf("IK bone position = %v", m.Bones[2].Position)
	}

	if len(m.IKs) != 1 {
		t.Fatalf("IKs = %d, want 1", len(m.IKs))
	}
	ik := m.IKs[0]
	if ik.Bone != 2 || ik.TargetBone != 1 || ik.LoopCount != 40 || ik.LimitRadian != 2 {
		t.Errorf("solver = %+v", ik)
	}
	if len(ik.Links) != 2 {
		t.Fatalf("links = %d, want 2", len(ik.Links))
	}
	if !ik.Links[0].Limited || ik.Links[0].Min[0] != -3.14 || ik.Links[1].Limited {
		t.Errorf("links = %+v", ik.Links)
	}
}

func TestPMXLoader_NoBonesNoWeights(t *testing.T) {
	p := makeTestPMX()
	p.Bones = nil
	m, err := (&PMXLoader{}).Decode(p.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range m.Meshes {
		if len(m.Meshes[i].Weights) != 0 {
			t.Errorf("mesh %d has %d weights without bones", i, len(m.Meshes[i].Weights))
		}
	}
	if len(m.IKs) != 0 {
		t.Errorf("IKs = %d, want 0", len(m.IKs))
	}
}

func TestPMXLoader_Deterministic(t *testing.T) {
	data := makeTestPMX().Bytes()
	a, err := (&PMXLoader{}).Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, err := (&PMXLoader{}).Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("decoding the same buffer twice gave different models")
	}
}

func TestPMXLoader_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*formatstest.PMX)
		want   error
	}{
		{
			name:   "material overruns index buffer",
			modify: func(p *formatstest.PMX) { p.Materials[1].IndexCount = 9 },
			want:   ErrIndexOverrun,
		},
		{
			name:   "index past vertex array",
			modify: func(p *formatstest.PMX) { p.Indices[4] = 5 },
			want:   ErrVertexOutOfRange,
		},
		{
			name:   "unknown weight kind",
			modify: func(p *formatstest.PMX) { p.Vertices[3].Kind = 7 },
			want:   formats.ErrUnknownWeightKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := makeTestPMX()
			tt.modify(p)
			m, err := (&PMXLoader{}).Decode(p.Bytes())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if m != nil {
				t.Error("failed decode returned a partial model")
			}
		})
	}
}

func TestPMXLoader_CanRead(t *testing.T) {
	l := &PMXLoader{}
	if !l.CanRead(makeTestPMX().Bytes()) {
		t.Error("CanRead rejected a valid model")
	}
	if !l.CanRead(formatstest.NewHeader(1).Bytes()) {
		t.Error("CanRead should only need the header")
	}
	if l.CanRead([]byte("PMX")) || l.CanRead(formatstest.NewVMD("").Bytes()) {
		t.Error("CanRead accepted a non-model buffer")
	}
}

// Package model holds decoded polygon models ready for upload to a renderer.
package model

// Model is a decoded character model. Each material owns exactly one mesh,
// at the same index.
type Model struct {
	Name      string
	Meshes    []Mesh
	Materials []Material
	Textures  []string
	Bones     []Bone
	IKs       []Solver
}

// VertexCount returns the number of vertices over all meshes.
func (m *Model) VertexCount() int {
	n := 0
	for i := range m.Meshes {
		n += len(m.Meshes[i].Positions)
	}
	return n
}

// IndexCount returns the number of indices over all meshes.
func (m *Model) IndexCount() int {
	n := 0
	for i := range m.Meshes {
		n += len(m.Meshes[i].Indices)
	}
	return n
}

// Texture returns the texture path for a material texture reference.
func (m *Model) Texture(ref *int) (string, bool) {
	if ref == nil || *ref < 0 || *ref >= len(m.Textures) {
		return "", false
	}
	return m.Textures[*ref], true
}

// BoneIndex returns the index of the named bone, or -1.
func (m *Model) BoneIndex(name string) int {
	for i := range m.Bones {
		if m.Bones[i].Name == name {
			return i
		}
	}
	return -1
}

// Bounds computes the axis-aligned bounding box over all meshes.
func (m *Model) Bounds() Bounds {
	b := EmptyBounds()
	for i := range m.Meshes {
		b = b.Union(m.Meshes[i].Bounds)
	}
	return b
}

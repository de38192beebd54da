package model

// VertexWeight binds a vertex to up to four bones.
type VertexWeight struct {
	Bones   [4]int32
	Weights [4]float32
}

// Mesh is the geometry drawn with one material. Per-vertex arrays share
// the local index space referenced by Indices.
type Mesh struct {
	Name       string
	MaterialID int

	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Weights   []VertexWeight // empty when the model has no bones
	Indices   []uint32

	Bounds Bounds
}

// VertexCount returns the number of distinct vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns an inverted box that any point expands.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// Expand grows the box to contain p.
func (b *Bounds) Expand(p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Union returns the box containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	if other.Empty() {
		return b
	}
	b.Expand(other.Min)
	b.Expand(other.Max)
	return b
}

// Size returns the extent on each axis.
func (b Bounds) Size() [3]float32 {
	if b.Empty() {
		return [3]float32{}
	}
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}
